package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xenai/xenai-server/internal/config"
)

// filesystem implements System using the local filesystem. Keys map
// directly to relative file paths under a configurable base path.
type filesystem struct {
	basePath string
	logger   *slog.Logger
}

// New creates a filesystem storage system rooted at the configured base
// path, creating the directory if needed.
func New(cfg *config.StorageConfig, logger *slog.Logger) (System, error) {
	absPath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base_path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &filesystem{
		basePath: absPath,
		logger:   logger.With("system", "storage"),
	}, nil
}

func (f *filesystem) Store(ctx context.Context, key string, data []byte) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}

	f.logger.Debug("blob stored", "key", key, "bytes", len(data))
	return nil
}

func (f *filesystem) Retrieve(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (f *filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func (f *filesystem) Path(ctx context.Context, key string) (string, error) {
	return f.fullPath(key)
}

func (f *filesystem) fullPath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	path := filepath.Join(f.basePath, filepath.FromSlash(key))
	if !strings.HasPrefix(path, f.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return path, nil
}
