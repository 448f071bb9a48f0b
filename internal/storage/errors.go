package storage

import "errors"

// Domain errors for the storage system.
var (
	// ErrNotFound indicates the requested key does not exist.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidKey indicates the key is empty or escapes the base path.
	ErrInvalidKey = errors.New("invalid storage key")
)
