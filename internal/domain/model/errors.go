package model

import "errors"

// Sentinel kinds for model lookups.
var (
	ErrNotFound = errors.New("not found")
)
