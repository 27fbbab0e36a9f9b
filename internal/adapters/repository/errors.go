package repository

import "errors"

// Sentinel errors for board lookups.
var (
	ErrNotFound     = errors.New("board entry not found")
	ErrInvalidLimit = errors.New("invalid board limit")
	ErrInvalidEntry = errors.New("invalid board entry")
)
