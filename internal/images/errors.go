package images

import (
	"errors"
	"fmt"
)

// Domain errors for image generation.
var (
	// ErrValidation indicates a malformed generation request.
	ErrValidation = errors.New("validation failed")

	// ErrModelLoading indicates the upstream model is still warming up.
	ErrModelLoading = errors.New("image model is loading")

	// ErrRateLimited indicates the upstream rejected the call for rate
	// limiting; passed through to the caller.
	ErrRateLimited = errors.New("image provider rate limit exceeded")

	// ErrInvalidToken indicates the Hugging Face credential was
	// rejected.
	ErrInvalidToken = errors.New("invalid Hugging Face API token")
)

// UpstreamError reports any other upstream rejection.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("image upstream returned %d: %s", e.Status, e.Detail)
}
