package appconfigs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xenai/xenai-server/pkg/secrets"
)

// System defines application settings operations.
type System interface {
	// Get returns the decoded value for an active setting, decrypting
	// sensitive values. Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) (Value, error)

	// GetConfig returns the full setting including metadata.
	GetConfig(ctx context.Context, key string) (*AppConfig, error)

	// List returns all active settings. Sensitive values are decrypted;
	// a setting whose stored value no longer decodes is skipped with a
	// log entry rather than failing the whole listing.
	List(ctx context.Context) ([]AppConfig, error)

	// Set creates or replaces a setting, encrypting sensitive values
	// before storage.
	Set(ctx context.Context, cmd SetCommand) (*AppConfig, error)
}

type service struct {
	store  Store
	cipher *secrets.Cipher
	logger *slog.Logger
}

// NewSystem creates the settings system backed by the given store.
func NewSystem(store Store, cipher *secrets.Cipher, logger *slog.Logger) System {
	return &service{
		store:  store,
		cipher: cipher,
		logger: logger.With("system", "appconfigs"),
	}
}

func (s *service) Get(ctx context.Context, key string) (Value, error) {
	cfg, err := s.GetConfig(ctx, key)
	if err != nil {
		return Value{}, err
	}
	return cfg.Value, nil
}

func (s *service) GetConfig(ctx context.Context, key string) (*AppConfig, error) {
	rec, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.decode(rec)
}

func (s *service) List(ctx context.Context) ([]AppConfig, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	configs := make([]AppConfig, 0, len(records))
	for i := range records {
		cfg, err := s.decode(&records[i])
		if err != nil {
			s.logger.Warn("skipping undecodable app config",
				"key", records[i].Key, "error", err)
			continue
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}

func (s *service) Set(ctx context.Context, cmd SetCommand) (*AppConfig, error) {
	if cmd.Key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrValidation)
	}
	if len(cmd.Value) == 0 {
		return nil, fmt.Errorf("%w: value is required", ErrValidation)
	}

	valueType := cmd.Type
	if valueType == "" {
		valueType = TypeString
	}
	if err := valueType.Validate(); err != nil {
		return nil, err
	}

	value, err := ValueFromJSON(valueType, cmd.Value)
	if err != nil {
		return nil, err
	}

	encoded, err := value.Encode()
	if err != nil {
		return nil, err
	}

	if cmd.IsSensitive {
		encoded, err = s.cipher.Encrypt(encoded)
		if err != nil {
			return nil, fmt.Errorf("encrypt app config value: %w", err)
		}
	}

	stored, err := s.store.Upsert(ctx, Record{
		Key:         cmd.Key,
		Value:       encoded,
		Type:        valueType,
		Description: cmd.Description,
		IsSensitive: cmd.IsSensitive,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("app config set", "key", cmd.Key, "type", string(valueType),
		"sensitive", cmd.IsSensitive)
	return s.decode(stored)
}

// decode converts a stored record into its typed form, decrypting
// sensitive values before per-type parsing.
func (s *service) decode(rec *Record) (*AppConfig, error) {
	encoded := rec.Value
	if rec.IsSensitive {
		plaintext, err := s.cipher.Decrypt(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, rec.Key, err)
		}
		encoded = plaintext
	}

	value, err := DecodeValue(rec.Type, encoded)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rec.Key, err)
	}

	return &AppConfig{
		ID:          rec.ID,
		Key:         rec.Key,
		Value:       value,
		Type:        rec.Type,
		Description: rec.Description,
		IsSensitive: rec.IsSensitive,
		IsActive:    rec.IsActive,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}
