package app

import (
	"strings"

	"github.com/okian/upg/internal/adapters/repository"
	"github.com/okian/upg/pkg/logger"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStore sets the persistence store. The controller does not close it.
func WithStore(s repository.Store) Option {
	return func(c *Controller) {
		if s != nil {
			c.store = s
		}
	}
}

// WithStorageKey sets the key the document is stored under.
func WithStorageKey(key string) Option {
	return func(c *Controller) {
		if k := strings.TrimSpace(key); k != "" {
			c.key = k
		}
	}
}

// WithQueueSize sets the capacity of the persist queue.
func WithQueueSize(size int) Option {
	return func(c *Controller) {
		if size > 0 {
			c.queueSize = size
		}
	}
}
