package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound          = errors.New("key not found")
	ErrStore             = errors.New("store failure")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
