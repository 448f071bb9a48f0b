package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	// EnvFrontendURL overrides the allowed frontend origin. Kept separate
	// from EnvCORSOrigins because the same value feeds the HTTP-Referer
	// header on outbound provider calls.
	EnvFrontendURL = "FRONTEND_URL"

	// EnvCORSOrigins overrides the allowed CORS origins (comma-separated).
	EnvCORSOrigins = "CORS_ORIGINS"

	// EnvCORSAllowedMethods overrides the allowed HTTP methods
	// (comma-separated).
	EnvCORSAllowedMethods = "CORS_ALLOWED_METHODS"

	// EnvCORSAllowedHeaders overrides the allowed HTTP headers
	// (comma-separated).
	EnvCORSAllowedHeaders = "CORS_ALLOWED_HEADERS"

	// EnvCORSAllowCredentials overrides the allow credentials flag.
	EnvCORSAllowCredentials = "CORS_ALLOW_CREDENTIALS"

	// EnvCORSMaxAge overrides the preflight cache duration in seconds.
	EnvCORSMaxAge = "CORS_MAX_AGE"
)

// CORSConfig contains Cross-Origin Resource Sharing configuration.
type CORSConfig struct {
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// FrontendURL returns the first configured origin, used for the
// HTTP-Referer header on outbound provider calls.
func (c *CORSConfig) FrontendURL() string {
	if len(c.Origins) > 0 {
		return c.Origins[0]
	}
	return ""
}

// Finalize applies defaults and loads environment overrides.
func (c *CORSConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge applies values from overlay configuration, including boolean and
// array fields.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.AllowCredentials = overlay.AllowCredentials

	if overlay.Origins != nil {
		c.Origins = overlay.Origins
	}
	if overlay.AllowedMethods != nil {
		c.AllowedMethods = overlay.AllowedMethods
	}
	if overlay.AllowedHeaders != nil {
		c.AllowedHeaders = overlay.AllowedHeaders
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.Origins) == 0 {
		c.Origins = []string{"http://localhost:5173"}
		c.AllowCredentials = true
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Internal-Token"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv() {
	if v := os.Getenv(EnvFrontendURL); v != "" {
		c.Origins = []string{v}
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		c.Origins = splitTrimmed(v)
	}
	if v := os.Getenv(EnvCORSAllowedMethods); v != "" {
		c.AllowedMethods = splitTrimmed(v)
	}
	if v := os.Getenv(EnvCORSAllowedHeaders); v != "" {
		c.AllowedHeaders = splitTrimmed(v)
	}
	if v := os.Getenv(EnvCORSAllowCredentials); v != "" {
		if creds, err := strconv.ParseBool(v); err == nil {
			c.AllowCredentials = creds
		}
	}
	if v := os.Getenv(EnvCORSMaxAge); v != "" {
		if maxAge, err := strconv.Atoi(v); err == nil {
			c.MaxAge = maxAge
		}
	}
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
