// Package config provides application configuration management with
// support for TOML files, environment variable overrides, and
// configuration overlays.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/xenai/xenai-server/pkg/logging"
	"github.com/xenai/xenai-server/pkg/pagination"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for
	// environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration
	// overlays and the production flag.
	EnvServiceEnv = "SERVICE_ENV"
)

// Config represents the root service configuration.
type Config struct {
	Environment string            `toml:"-"`
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logging     logging.Config    `toml:"logging"`
	CORS        CORSConfig        `toml:"cors"`
	Pagination  pagination.Config `toml:"pagination"`
	Security    SecurityConfig    `toml:"security"`
	Providers   ProvidersConfig   `toml:"providers"`
	Storage     StorageConfig     `toml:"storage"`
	Redis       RedisConfig       `toml:"redis"`
}

// IsProduction reports whether the service runs with the production
// environment name. Non-production mode exposes upstream error detail in
// responses.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads and parses the base configuration file and applies any
// environment-specific overlay. A .env file in the working directory is
// loaded first so overrides behave identically in containers and local
// development. A missing base file yields a zero config that Finalize
// fills from defaults and environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{}
	if loaded, err := load(BaseConfigFile); err == nil {
		cfg = loaded
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	cfg.Environment = os.Getenv(EnvServiceEnv)
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates
// the configuration.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.CORS.Finalize(); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.Security.Finalize(); err != nil {
		return fmt.Errorf("security: %w", err)
	}
	if err := c.Providers.Finalize(); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Storage.Finalize(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Redis.Finalize(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Logging.Merge(&overlay.Logging)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.Security.Merge(&overlay.Security)
	c.Providers.Merge(&overlay.Providers)
	c.Storage.Merge(&overlay.Storage)
	c.Redis.Merge(&overlay.Redis)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		overlayPath := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(overlayPath); err == nil {
			return overlayPath
		}
	}
	return ""
}
