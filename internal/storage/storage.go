// Package storage provides blob persistence for generated images.
// Implementations handle the underlying mechanism while exposing a
// consistent API for storing and retrieving binary data.
package storage

import "context"

// System defines the storage operations interface.
type System interface {
	// Store saves data at the specified key, overwriting existing
	// contents. Returns ErrInvalidKey if the key is empty or contains
	// path traversal.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at the specified key.
	// Returns ErrNotFound if the key does not exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the data at the specified key. Deleting a missing
	// key is a no-op.
	Delete(ctx context.Context, key string) error

	// Path resolves a key to an absolute filesystem path for static
	// serving.
	Path(ctx context.Context, key string) (string, error)
}
