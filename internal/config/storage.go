package config

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const (
	// EnvStorageBasePath overrides the image storage base path.
	EnvStorageBasePath = "STORAGE_BASE_PATH"

	// EnvStorageMaxImageSize overrides the maximum stored image size.
	EnvStorageMaxImageSize = "STORAGE_MAX_IMAGE_SIZE"
)

// StorageConfig contains generated-image storage configuration.
type StorageConfig struct {
	// BasePath is the root directory for stored images.
	// Default: ".data/images"
	BasePath        string `toml:"base_path"`
	MaxImageSize    string `toml:"max_image_size"`
	maxImageSizeVal int64
}

// MaxImageSizeBytes returns the parsed maximum image size.
func (c *StorageConfig) MaxImageSizeBytes() int64 {
	return c.maxImageSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates
// the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if size, err := units.FromHumanSize(overlay.MaxImageSize); err == nil {
		c.MaxImageSize = overlay.MaxImageSize
		c.maxImageSizeVal = size
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = ".data/images"
	}
	if c.MaxImageSize == "" {
		c.MaxImageSize = "25MB"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStorageMaxImageSize); v != "" {
		c.MaxImageSize = v
	}
}

func (c *StorageConfig) validate() error {
	if c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxImageSize)
	if err != nil {
		return fmt.Errorf("invalid max_image_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_image_size must be positive")
	}
	c.maxImageSizeVal = size

	return nil
}
