package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested entity was not found
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername indicates an account with the same username already exists
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrConflict indicates the stored account changed since it was read
	ErrConflict = errors.New("version conflict")
)
