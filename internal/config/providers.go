package config

import "os"

const (
	// EnvOpenRouterAPIKey seeds the default model configuration's
	// credential at bootstrap and backs the degraded env fallback.
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"

	// EnvHFToken supplies the Hugging Face credential for image
	// generation.
	EnvHFToken = "HF_TOKEN"

	// EnvProvidersRequestTimeout overrides the outbound provider call
	// timeout.
	EnvProvidersRequestTimeout = "PROVIDERS_REQUEST_TIMEOUT"
)

// ProvidersConfig contains settings for outbound AI provider calls and
// bootstrap seeding.
type ProvidersConfig struct {
	// OpenRouterAPIKey may be empty: the seeded default config is then
	// created disabled-in-effect until an operator supplies a real key.
	OpenRouterAPIKey string `toml:"openrouter_api_key"`
	HFToken          string `toml:"hf_token"`

	// AppTitle is sent as the X-Title header on outbound calls.
	AppTitle string `toml:"app_title"`

	// DefaultEndpoint and DefaultModel back the degraded env fallback
	// when the config store is unreachable.
	DefaultEndpoint string `toml:"default_endpoint"`
	DefaultModel    string `toml:"default_model"`

	// ImageEndpoint is the Hugging Face router URL for image generation.
	ImageEndpoint string `toml:"image_endpoint"`

	RequestTimeout string `toml:"request_timeout"`
}

// Finalize applies defaults and loads environment overrides.
func (c *ProvidersConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return nil
}

// Merge applies values from overlay configuration that differ from zero
// values.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	if overlay.OpenRouterAPIKey != "" {
		c.OpenRouterAPIKey = overlay.OpenRouterAPIKey
	}
	if overlay.HFToken != "" {
		c.HFToken = overlay.HFToken
	}
	if overlay.AppTitle != "" {
		c.AppTitle = overlay.AppTitle
	}
	if overlay.DefaultEndpoint != "" {
		c.DefaultEndpoint = overlay.DefaultEndpoint
	}
	if overlay.DefaultModel != "" {
		c.DefaultModel = overlay.DefaultModel
	}
	if overlay.ImageEndpoint != "" {
		c.ImageEndpoint = overlay.ImageEndpoint
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
}

func (c *ProvidersConfig) loadDefaults() {
	if c.AppTitle == "" {
		c.AppTitle = "Xen AI"
	}
	if c.DefaultEndpoint == "" {
		c.DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "mistralai/mistral-7b-instruct:free"
	}
	if c.ImageEndpoint == "" {
		c.ImageEndpoint = "https://router.huggingface.co/fal-ai/fal-ai/stabilityai/stable-diffusion"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "2m"
	}
}

func (c *ProvidersConfig) loadEnv() {
	if v := os.Getenv(EnvOpenRouterAPIKey); v != "" {
		c.OpenRouterAPIKey = v
	}
	if v := os.Getenv(EnvHFToken); v != "" {
		c.HFToken = v
	}
	if v := os.Getenv(EnvProvidersRequestTimeout); v != "" {
		c.RequestTimeout = v
	}
}
