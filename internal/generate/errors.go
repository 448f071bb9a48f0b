package generate

import (
	"errors"
	"fmt"
)

// ErrNotConfigured indicates no usable provider credential exists
// anywhere: neither a stored configuration nor the environment.
var ErrNotConfigured = errors.New("AI service not configured")

// UpstreamError reports a provider call that was rejected or returned a
// body the service could not use. Detail carries provider error text and
// must only be surfaced in non-production mode.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Detail)
}
