package secrets

import "errors"

// Domain errors for the secrets package.
var (
	// ErrDecrypt indicates a token could not be decrypted: wrong key,
	// tampered data, or a malformed token.
	ErrDecrypt = errors.New("failed to decrypt data")

	// ErrKeyTooShort indicates strict-mode key validation rejected the
	// supplied key material.
	ErrKeyTooShort = errors.New("encryption key too short")
)
