package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	// EnvEncryptionKey supplies the symmetric key protecting credentials
	// at rest.
	EnvEncryptionKey = "ENCRYPTION_KEY"

	// EnvSecurityStrictKeys opts in to rejecting undersized encryption
	// keys at startup.
	EnvSecurityStrictKeys = "SECURITY_STRICT_KEYS"

	// EnvJWTSecret supplies the bearer-token signing secret.
	EnvJWTSecret = "JWT_SECRET"

	// EnvInternalToken supplies the shared token guarding
	// service-to-service endpoints.
	EnvInternalToken = "INTERNAL_API_TOKEN"
)

// Development fallbacks matching the deployed defaults. Operators are
// expected to override all three in any real environment.
const (
	defaultEncryptionKey = "xen-ai-default-key-change-in-production-32-chars"
	defaultJWTSecret     = "xen-ai-secret-key-change-in-production"
	defaultInternalToken = "xen-ai-internal-token"
)

// SecurityConfig contains key material and trust-boundary tokens.
type SecurityConfig struct {
	// EncryptionKey is normalized to 32 bytes by the cipher: truncated if
	// long, padded with '0' if short. That normalization never refuses a
	// key, which is a deliberate weakening that trades key-strength
	// enforcement for never failing to boot. Set StrictKeys to reject
	// short keys instead.
	EncryptionKey string `toml:"encryption_key"`
	StrictKeys    bool   `toml:"strict_keys"`
	JWTSecret     string `toml:"jwt_secret"`
	InternalToken string `toml:"internal_token"`
}

// Finalize applies defaults, loads environment overrides, and validates
// the security configuration.
func (c *SecurityConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *SecurityConfig) Merge(overlay *SecurityConfig) {
	if overlay.EncryptionKey != "" {
		c.EncryptionKey = overlay.EncryptionKey
	}
	if overlay.StrictKeys {
		c.StrictKeys = true
	}
	if overlay.JWTSecret != "" {
		c.JWTSecret = overlay.JWTSecret
	}
	if overlay.InternalToken != "" {
		c.InternalToken = overlay.InternalToken
	}
}

func (c *SecurityConfig) loadDefaults() {
	if c.EncryptionKey == "" {
		c.EncryptionKey = defaultEncryptionKey
	}
	if c.JWTSecret == "" {
		c.JWTSecret = defaultJWTSecret
	}
	if c.InternalToken == "" {
		c.InternalToken = defaultInternalToken
	}
}

func (c *SecurityConfig) loadEnv() {
	if v := os.Getenv(EnvEncryptionKey); v != "" {
		c.EncryptionKey = v
	}
	if v := os.Getenv(EnvSecurityStrictKeys); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			c.StrictKeys = strict
		}
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv(EnvInternalToken); v != "" {
		c.InternalToken = v
	}
}

func (c *SecurityConfig) validate() error {
	if c.EncryptionKey == "" {
		return fmt.Errorf("encryption_key required")
	}
	return nil
}
