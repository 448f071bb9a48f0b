package modelconfigs

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for provider configurations.
var (
	// ErrNotFound indicates the requested configuration does not exist
	// among active rows. Its message is safe to return to callers.
	ErrNotFound = errors.New("model configuration not found")

	// ErrNoConfigs indicates the system has zero usable configurations.
	// Distinct from ErrNotFound: it signals a bootstrapping problem, not
	// a caller mistake.
	ErrNoConfigs = errors.New("no AI model configurations found")

	// ErrCorrupt indicates a stored record whose credential no longer
	// decrypts or whose params no longer deserialize. Never conflated
	// with ErrNotFound, and its detail never reaches callers.
	ErrCorrupt = errors.New("model configuration corrupt")

	// ErrValidation indicates a malformed create or update request.
	ErrValidation = errors.New("validation failed")
)

// MissingFieldsError reports required create fields that were absent.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrValidation }

// notFoundByName wraps ErrNotFound with the literal name so callers see
// which configuration was requested.
func notFoundByName(name string) error {
	return fmt.Errorf("%w: named config '%s' not found", ErrNotFound, name)
}
