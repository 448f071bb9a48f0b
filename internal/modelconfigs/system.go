package modelconfigs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xenai/xenai-server/pkg/pagination"
	"github.com/xenai/xenai-server/pkg/secrets"
)

// System defines provider configuration operations.
type System interface {
	// Resolve returns the configuration to use for a request: the named
	// one when name is non-empty (miss → ErrNotFound), otherwise the
	// active default, otherwise the earliest-created active row,
	// otherwise ErrNoConfigs. Decrypt or params failures on the chosen
	// row → ErrCorrupt.
	Resolve(ctx context.Context, name string) (*ResolvedConfig, error)

	// List returns all active configurations in public shape.
	List(ctx context.Context) ([]PublicModelConfig, error)

	// Search returns a page of active configurations in public shape.
	Search(ctx context.Context, page pagination.PageRequest, filters SearchFilters) (*pagination.PageResult[PublicModelConfig], error)

	// Create validates, encrypts the credential, and stores a new
	// configuration. The returned internal shape echoes the plaintext
	// key the caller supplied.
	Create(ctx context.Context, cmd CreateCommand) (*ResolvedConfig, error)

	// Update applies a partial update, re-encrypting only a supplied
	// credential, and returns the stored row in internal shape.
	Update(ctx context.Context, id int64, cmd UpdateCommand) (*ResolvedConfig, error)

	// Delete soft-deletes a configuration. Reports whether a row
	// changed.
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	store  Store
	cipher *secrets.Cipher
	logger *slog.Logger
}

// NewSystem creates the configuration system backed by the given store.
func NewSystem(store Store, cipher *secrets.Cipher, logger *slog.Logger) System {
	return &service{
		store:  store,
		cipher: cipher,
		logger: logger.With("system", "modelconfigs"),
	}
}

func (s *service) Resolve(ctx context.Context, name string) (*ResolvedConfig, error) {
	if name != "" {
		cfg, err := s.store.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, notFoundByName(name)
			}
			return nil, err
		}
		return s.resolve(cfg)
	}

	cfg, err := s.store.FindDefault(ctx)
	if errors.Is(err, ErrNotFound) {
		// No flagged default: fall back to the earliest-created active
		// row so a deleted default degrades instead of breaking.
		cfg, err = s.firstActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	return s.resolve(cfg)
}

func (s *service) List(ctx context.Context) ([]PublicModelConfig, error) {
	configs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return s.publicShapes(configs), nil
}

func (s *service) Search(ctx context.Context, page pagination.PageRequest, filters SearchFilters) (*pagination.PageResult[PublicModelConfig], error) {
	configs, total, err := s.store.Search(ctx, page, filters)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(s.publicShapes(configs), total, page.Page, page.PageSize)
	return &result, nil
}

func (s *service) Create(ctx context.Context, cmd CreateCommand) (*ResolvedConfig, error) {
	if missing := cmd.MissingFields(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if cmd.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: max_tokens must be positive", ErrValidation)
	}
	if cmd.Temperature != nil && (*cmd.Temperature < 0 || *cmd.Temperature > 2) {
		return nil, fmt.Errorf("%w: temperature must be between 0 and 2", ErrValidation)
	}

	encrypted, err := s.cipher.Encrypt(cmd.APIKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt api key: %w", err)
	}

	params := cmd.ModelParams
	if params == nil {
		params = map[string]any{}
	}
	serialized, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: model_params not serializable", ErrValidation)
	}

	maxTokens := cmd.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if cmd.Temperature != nil {
		temperature = *cmd.Temperature
	}

	stored, err := s.store.Insert(ctx, ModelConfig{
		ConfigName:      cmd.ConfigName,
		Provider:        cmd.Provider,
		ModelName:       cmd.ModelName,
		EndpointURL:     cmd.EndpointURL,
		APIKeyEncrypted: encrypted,
		ModelParams:     serialized,
		SystemPrompt:    cmd.SystemPrompt,
		MaxTokens:       maxTokens,
		Temperature:     temperature,
		IsDefault:       cmd.IsDefault,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("model config created",
		"id", stored.ID, "config_name", stored.ConfigName, "default", stored.IsDefault)

	// Echo the caller's plaintext key back rather than decrypting the
	// stored token; the round trip adds nothing but a failure mode.
	resolved, err := s.resolveWithKey(stored, cmd.APIKey)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

func (s *service) Update(ctx context.Context, id int64, cmd UpdateCommand) (*ResolvedConfig, error) {
	if cmd.MaxTokens != nil && *cmd.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: max_tokens must be positive", ErrValidation)
	}
	if cmd.Temperature != nil && (*cmd.Temperature < 0 || *cmd.Temperature > 2) {
		return nil, fmt.Errorf("%w: temperature must be between 0 and 2", ErrValidation)
	}

	fields := UpdateFields{
		ConfigName:   cmd.ConfigName,
		Provider:     cmd.Provider,
		ModelName:    cmd.ModelName,
		EndpointURL:  cmd.EndpointURL,
		SystemPrompt: cmd.SystemPrompt,
		MaxTokens:    cmd.MaxTokens,
		Temperature:  cmd.Temperature,
		IsDefault:    cmd.IsDefault,
	}

	if cmd.APIKey != nil {
		encrypted, err := s.cipher.Encrypt(*cmd.APIKey)
		if err != nil {
			return nil, fmt.Errorf("encrypt api key: %w", err)
		}
		fields.APIKeyEncrypted = &encrypted
	}

	if cmd.ModelParams != nil {
		serialized, err := json.Marshal(cmd.ModelParams)
		if err != nil {
			return nil, fmt.Errorf("%w: model_params not serializable", ErrValidation)
		}
		fields.ModelParams = serialized
	}

	stored, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Info("model config updated", "id", id, "config_name", stored.ConfigName)
	return s.resolve(stored)
}

func (s *service) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("model config deleted", "id", id)
	}
	return deleted, nil
}

// firstActive returns the earliest-created active configuration,
// leaning on the store's resolution ordering.
func (s *service) firstActive(ctx context.Context) (*ModelConfig, error) {
	configs, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, ErrNoConfigs
	}
	return &configs[0], nil
}

// resolve decrypts the stored credential and decodes params into the
// internal shape.
func (s *service) resolve(cfg *ModelConfig) (*ResolvedConfig, error) {
	apiKey, err := s.cipher.Decrypt(cfg.APIKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: config '%s': %v", ErrCorrupt, cfg.ConfigName, err)
	}
	return s.resolveWithKey(cfg, apiKey)
}

func (s *service) resolveWithKey(cfg *ModelConfig, apiKey string) (*ResolvedConfig, error) {
	params, err := decodeParams(cfg.ModelParams)
	if err != nil {
		return nil, fmt.Errorf("%w: config '%s': %v", ErrCorrupt, cfg.ConfigName, err)
	}

	return &ResolvedConfig{
		ID:           cfg.ID,
		ConfigName:   cfg.ConfigName,
		Provider:     cfg.Provider,
		ModelName:    cfg.ModelName,
		EndpointURL:  cfg.EndpointURL,
		APIKey:       apiKey,
		ModelParams:  params,
		SystemPrompt: cfg.SystemPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		IsDefault:    cfg.IsDefault,
		IsActive:     cfg.IsActive,
		CreatedAt:    cfg.CreatedAt,
		UpdatedAt:    cfg.UpdatedAt,
	}, nil
}

// publicShapes maps stored rows straight to the external shape; the
// credential never needs decrypting just to be omitted.
func (s *service) publicShapes(configs []ModelConfig) []PublicModelConfig {
	public := make([]PublicModelConfig, 0, len(configs))
	for i := range configs {
		cfg := &configs[i]

		params, err := decodeParams(cfg.ModelParams)
		if err != nil {
			s.logger.Warn("model config has undecodable params",
				"config_name", cfg.ConfigName, "error", err)
			params = map[string]any{}
		}

		public = append(public, PublicModelConfig{
			ID:           cfg.ID,
			ConfigName:   cfg.ConfigName,
			Provider:     cfg.Provider,
			ModelName:    cfg.ModelName,
			EndpointURL:  cfg.EndpointURL,
			ModelParams:  params,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.MaxTokens,
			Temperature:  cfg.Temperature,
			IsDefault:    cfg.IsDefault,
			IsActive:     cfg.IsActive,
			CreatedAt:    cfg.CreatedAt,
			UpdatedAt:    cfg.UpdatedAt,
		})
	}
	return public
}

func decodeParams(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decode model_params: %w", err)
	}
	if params == nil {
		params = map[string]any{}
	}
	return params, nil
}
