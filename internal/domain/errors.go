package domain

import "errors"

// Shared repository error taxonomy. Repos translate driver errors into
// these so callers never match on gorm internals.
var (
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("unique constraint violation")
	ErrValidation = errors.New("invalid input")
)
