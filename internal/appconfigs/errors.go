package appconfigs

import "errors"

// Domain errors for application settings.
var (
	// ErrNotFound indicates no active setting exists for the key.
	ErrNotFound = errors.New("app configuration not found")

	// ErrValidation indicates a malformed set request.
	ErrValidation = errors.New("validation failed")

	// ErrCorrupt indicates a stored value that can no longer be decoded
	// or decrypted.
	ErrCorrupt = errors.New("app configuration corrupt")
)
