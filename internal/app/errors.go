package app

import (
	"errors"

	"github.com/okian/upg/internal/domain/model"
)

// Sentinel kinds for controller errors.
var (
	// ErrNotFound is model.ErrNotFound, re-exported for callers of the controller.
	ErrNotFound     = model.ErrNotFound
	ErrInvalidInput = errors.New("invalid input")
	ErrNotStarted   = errors.New("controller not started")
)
