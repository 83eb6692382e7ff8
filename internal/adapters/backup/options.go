package backup

import (
	"time"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithDir sets the directory backups are written to.
func WithDir(dir string) Option {
	return func(s *Scheduler) {
		if dir != "" {
			s.dir = dir
		}
	}
}

// WithKeep sets how many backup files are retained.
func WithKeep(keep int) Option {
	return func(s *Scheduler) {
		if keep > 0 {
			s.keep = keep
		}
	}
}

// WithFormat sets the document format of backup files.
func WithFormat(f codec.Format) Option {
	return func(s *Scheduler) {
		if f != "" {
			s.format = f
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}
