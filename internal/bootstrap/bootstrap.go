// Package bootstrap seeds the minimum configuration a fresh deployment
// needs: one default model configuration and the baseline application
// settings. Seeding is idempotent and never blocks startup; a deployment
// with a broken database still serves its degraded fallbacks.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/xenai/xenai-server/internal/appconfigs"
	"github.com/xenai/xenai-server/internal/config"
	"github.com/xenai/xenai-server/internal/modelconfigs"
	"github.com/xenai/xenai-server/pkg/secrets"
)

// SeedConfigName is the model configuration created on first boot.
const SeedConfigName = "openrouter_mistral_default"

// ModelConfigStore is the slice of the configuration store bootstrap
// needs. Insert is used directly so the seed can carry an empty
// credential, which the create validation path rejects by design.
type ModelConfigStore interface {
	FindDefault(ctx context.Context) (*modelconfigs.ModelConfig, error)
	Insert(ctx context.Context, cfg modelconfigs.ModelConfig) (*modelconfigs.ModelConfig, error)
}

// Settings is the slice of the application settings system bootstrap
// needs.
type Settings interface {
	Get(ctx context.Context, key string) (appconfigs.Value, error)
	Set(ctx context.Context, cmd appconfigs.SetCommand) (*appconfigs.AppConfig, error)
}

// Run seeds missing configuration. Failures are logged and swallowed:
// bootstrap problems are operational, not fatal.
func Run(ctx context.Context, store ModelConfigStore, settings Settings, cipher *secrets.Cipher, providers *config.ProvidersConfig, logger *slog.Logger) {
	logger = logger.With("system", "bootstrap")

	seedModelConfig(ctx, store, cipher, providers, logger)
	seedSettings(ctx, settings, logger)
}

func seedModelConfig(ctx context.Context, store ModelConfigStore, cipher *secrets.Cipher, providers *config.ProvidersConfig, logger *slog.Logger) {
	_, err := store.FindDefault(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, modelconfigs.ErrNotFound) {
		logger.Warn("skipping model config seed", "error", err)
		return
	}

	// An empty env credential still seeds the row; resolution then
	// reports not-configured until an operator supplies a key.
	encrypted, err := cipher.Encrypt(providers.OpenRouterAPIKey)
	if err != nil {
		logger.Warn("seed credential encryption failed", "error", err)
		return
	}

	seeded, err := store.Insert(ctx, modelconfigs.ModelConfig{
		ConfigName:      SeedConfigName,
		Provider:        "openrouter",
		ModelName:       providers.DefaultModel,
		EndpointURL:     providers.DefaultEndpoint,
		APIKeyEncrypted: encrypted,
		ModelParams:     json.RawMessage(`{}`),
		MaxTokens:       modelconfigs.DefaultMaxTokens,
		Temperature:     modelconfigs.DefaultTemperature,
		IsDefault:       true,
	})
	if err != nil {
		logger.Warn("model config seed failed", "error", err)
		return
	}

	logger.Info("seeded default model config",
		"config_name", seeded.ConfigName,
		"has_credential", providers.OpenRouterAPIKey != "")
}

func seedSettings(ctx context.Context, settings Settings, logger *slog.Logger) {
	seeds := []appconfigs.SetCommand{
		{
			Key:         "app_name",
			Value:       json.RawMessage(`"Xen AI"`),
			Type:        appconfigs.TypeString,
			Description: "Display name of the application",
		},
		{
			Key:         "max_chat_history",
			Value:       json.RawMessage(`50`),
			Type:        appconfigs.TypeNumber,
			Description: "Number of chat turns retained per user",
		},
		{
			Key:         "enable_voice_features",
			Value:       json.RawMessage(`true`),
			Type:        appconfigs.TypeBoolean,
			Description: "Whether voice input and output are offered",
		},
	}

	for _, seed := range seeds {
		// Only absent keys are seeded; operator changes survive
		// restarts.
		if _, err := settings.Get(ctx, seed.Key); err == nil {
			continue
		} else if !errors.Is(err, appconfigs.ErrNotFound) {
			logger.Warn("skipping setting seed", "key", seed.Key, "error", err)
			continue
		}

		if _, err := settings.Set(ctx, seed); err != nil {
			logger.Warn("setting seed failed", "key", seed.Key, "error", err)
			continue
		}
		logger.Info("seeded app setting", "key", seed.Key)
	}
}
