package core

import "errors"

// Rejection errors returned by Result.Err.
var (
	ErrLimitReached    = errors.New("shape limit reached")
	ErrContained       = errors.New("shape is fully inside another shape")
	ErrFullyOverlapped = errors.New("shape fully overlaps existing area")
	ErrInvalidGeometry = errors.New("shape geometry is missing or unsupported")
)

// Storage errors.
var (
	ErrReadOnly     = errors.New("repository is in read-only mode")
	ErrCorruptStore = errors.New("stored shape collection is corrupt")
)
