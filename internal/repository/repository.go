package repository

import "errors"

// Sentinel errors shared by every store implementation so services can
// branch with errors.Is instead of matching error strings.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)
