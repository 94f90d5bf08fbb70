package repository

import "errors"

var (
	// ErrCorruptData is returned in strict mode when a stored value cannot
	// be decoded into its expected shape.
	ErrCorruptData = errors.New("stored data is corrupt")

	// ErrValidation marks input rejected before anything is persisted.
	ErrValidation = errors.New("validation failed")
)
