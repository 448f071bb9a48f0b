package modelconfigs

import (
	"database/sql"

	"github.com/xenai/xenai-server/pkg/query"
)

// projection maps view-level field names onto ai_model_configs columns.
// Registration order is the scan order; keep scanConfig in sync.
func projection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "ai_model_configs", "mc").
		Project("id", "id").
		Project("config_name", "config_name").
		Project("provider", "provider").
		Project("model_name", "model_name").
		Project("endpoint_url", "endpoint_url").
		Project("api_key_encrypted", "api_key_encrypted").
		Project("model_params", "model_params").
		Project("system_prompt", "system_prompt").
		Project("max_tokens", "max_tokens").
		Project("temperature", "temperature").
		Project("is_default", "is_default").
		Project("is_active", "is_active").
		Project("created_at", "created_at").
		Project("updated_at", "updated_at")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConfig(row rowScanner) (*ModelConfig, error) {
	var cfg ModelConfig
	var apiKey, systemPrompt sql.NullString
	var params []byte

	err := row.Scan(
		&cfg.ID,
		&cfg.ConfigName,
		&cfg.Provider,
		&cfg.ModelName,
		&cfg.EndpointURL,
		&apiKey,
		&params,
		&systemPrompt,
		&cfg.MaxTokens,
		&cfg.Temperature,
		&cfg.IsDefault,
		&cfg.IsActive,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.APIKeyEncrypted = apiKey.String
	cfg.SystemPrompt = systemPrompt.String
	cfg.ModelParams = params
	return &cfg, nil
}
