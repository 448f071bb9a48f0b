package config

import "os"

// EnvRedisURL overrides the Redis connection URL. An empty value
// disables chat history retention.
const EnvRedisURL = "REDIS_URL"

// RedisConfig contains chat history store configuration.
type RedisConfig struct {
	URL string `toml:"url"`
}

// Enabled reports whether a Redis endpoint is configured.
func (c *RedisConfig) Enabled() bool {
	return c.URL != ""
}

// Finalize loads environment overrides.
func (c *RedisConfig) Finalize() error {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.URL = v
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *RedisConfig) Merge(overlay *RedisConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
}
