// Package modelconfigs manages AI provider configurations: persistence
// with encrypted credentials, default/fallback resolution, and the two
// output shapes (internal with plaintext key, public without any
// credential field).
package modelconfigs

import (
	"encoding/json"
	"time"
)

// ModelConfig is the stored form of a provider configuration. The
// credential is held encrypted; model params stay serialized.
type ModelConfig struct {
	ID              int64
	ConfigName      string
	Provider        string
	ModelName       string
	EndpointURL     string
	APIKeyEncrypted string
	ModelParams     json.RawMessage
	SystemPrompt    string
	MaxTokens       int
	Temperature     float64
	IsDefault       bool
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ResolvedConfig is the internal shape handed to generation callers:
// credential decrypted, params decoded. It must never be serialized to
// admin-facing endpoints; use Public for those.
type ResolvedConfig struct {
	ID           int64          `json:"id"`
	ConfigName   string         `json:"config_name"`
	Provider     string         `json:"provider"`
	ModelName    string         `json:"model_name"`
	EndpointURL  string         `json:"endpoint_url"`
	APIKey       string         `json:"api_key"`
	ModelParams  map[string]any `json:"model_params"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	MaxTokens    int            `json:"max_tokens"`
	Temperature  float64        `json:"temperature"`
	IsDefault    bool           `json:"is_default"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// PublicModelConfig is the external shape. The credential field does not
// exist on this type at all, so no serialization path can leak it.
type PublicModelConfig struct {
	ID           int64          `json:"id"`
	ConfigName   string         `json:"config_name"`
	Provider     string         `json:"provider"`
	ModelName    string         `json:"model_name"`
	EndpointURL  string         `json:"endpoint_url"`
	ModelParams  map[string]any `json:"model_params"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	MaxTokens    int            `json:"max_tokens"`
	Temperature  float64        `json:"temperature"`
	IsDefault    bool           `json:"is_default"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Public projects the resolved config into its external shape.
func (r *ResolvedConfig) Public() PublicModelConfig {
	return PublicModelConfig{
		ID:           r.ID,
		ConfigName:   r.ConfigName,
		Provider:     r.Provider,
		ModelName:    r.ModelName,
		EndpointURL:  r.EndpointURL,
		ModelParams:  r.ModelParams,
		SystemPrompt: r.SystemPrompt,
		MaxTokens:    r.MaxTokens,
		Temperature:  r.Temperature,
		IsDefault:    r.IsDefault,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateCommand describes a new provider configuration.
type CreateCommand struct {
	ConfigName   string         `json:"config_name"`
	Provider     string         `json:"provider"`
	ModelName    string         `json:"model_name"`
	EndpointURL  string         `json:"endpoint_url"`
	APIKey       string         `json:"api_key"`
	ModelParams  map[string]any `json:"model_params"`
	SystemPrompt string         `json:"system_prompt"`
	MaxTokens    int            `json:"max_tokens"`
	Temperature  *float64       `json:"temperature"`
	IsDefault    bool           `json:"is_default"`
}

// MissingFields returns the names of required fields that are absent, in
// declaration order.
func (c *CreateCommand) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"config_name", c.ConfigName},
		{"provider", c.Provider},
		{"model_name", c.ModelName},
		{"endpoint_url", c.EndpointURL},
		{"api_key", c.APIKey},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// UpdateCommand describes a partial update. Nil fields are left
// unchanged; a supplied api_key is re-encrypted.
type UpdateCommand struct {
	ConfigName   *string        `json:"config_name"`
	Provider     *string        `json:"provider"`
	ModelName    *string        `json:"model_name"`
	EndpointURL  *string        `json:"endpoint_url"`
	APIKey       *string        `json:"api_key"`
	ModelParams  map[string]any `json:"model_params"`
	SystemPrompt *string        `json:"system_prompt"`
	MaxTokens    *int           `json:"max_tokens"`
	Temperature  *float64       `json:"temperature"`
	IsDefault    *bool          `json:"is_default"`
}

// UpdateFields is the stored-form counterpart of UpdateCommand handed to
// the store after credential encryption and params serialization.
type UpdateFields struct {
	ConfigName      *string
	Provider        *string
	ModelName       *string
	EndpointURL     *string
	APIKeyEncrypted *string
	ModelParams     json.RawMessage
	SystemPrompt    *string
	MaxTokens       *int
	Temperature     *float64
	IsDefault       *bool
}

// SearchFilters narrows paginated searches.
type SearchFilters struct {
	Provider *string `json:"provider,omitempty"`
}

// Defaults applied when a create request omits tuning parameters.
const (
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)
