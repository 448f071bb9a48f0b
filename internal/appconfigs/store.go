package appconfigs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Store persists application settings.
type Store interface {
	// FindByKey returns the active record for a key, or ErrNotFound.
	FindByKey(ctx context.Context, key string) (*Record, error)

	// List returns all active records ordered by key.
	List(ctx context.Context) ([]Record, error)

	// Upsert inserts the record or replaces the value, type, description,
	// and sensitivity of an existing key, reactivating it if needed.
	Upsert(ctx context.Context, rec Record) (*Record, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed settings store.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

const recordColumns = `id, config_key, config_value, config_type,
	COALESCE(description, ''), is_sensitive, is_active, created_at, updated_at`

func (s *postgresStore) FindByKey(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM public.app_configs WHERE config_key = $1 AND is_active = TRUE",
		recordColumns,
	), key)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("find app config: %w", err)
	}
	return rec, nil
}

func (s *postgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM public.app_configs WHERE is_active = TRUE ORDER BY config_key ASC",
		recordColumns,
	))
	if err != nil {
		return nil, fmt.Errorf("list app configs: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app config: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (s *postgresStore) Upsert(ctx context.Context, rec Record) (*Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO public.app_configs
			(config_key, config_value, config_type, description, is_sensitive)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (config_key) DO UPDATE SET
			config_value = EXCLUDED.config_value,
			config_type = EXCLUDED.config_type,
			description = EXCLUDED.description,
			is_sensitive = EXCLUDED.is_sensitive,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING %s`, recordColumns),
		rec.Key, rec.Value, string(rec.Type), rec.Description, rec.IsSensitive,
	)

	stored, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("upsert app config: %w", err)
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var configType string

	err := row.Scan(
		&rec.ID,
		&rec.Key,
		&rec.Value,
		&configType,
		&rec.Description,
		&rec.IsSensitive,
		&rec.IsActive,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Type = ValueType(configType)
	return &rec, nil
}
