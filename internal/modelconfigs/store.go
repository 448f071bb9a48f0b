package modelconfigs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xenai/xenai-server/pkg/pagination"
	"github.com/xenai/xenai-server/pkg/query"
)

// Store persists provider configurations. All read operations see only
// active rows unless noted.
type Store interface {
	// ListActive returns active configurations ordered is_default DESC,
	// created_at ASC. Resolution fallback depends on this ordering.
	ListActive(ctx context.Context) ([]ModelConfig, error)

	// FindByName returns the active configuration with the given name,
	// or ErrNotFound.
	FindByName(ctx context.Context, name string) (*ModelConfig, error)

	// FindDefault returns the active default configuration, or
	// ErrNotFound when no active row is flagged default.
	FindDefault(ctx context.Context) (*ModelConfig, error)

	// FindByID returns the configuration with the given id regardless of
	// active state, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*ModelConfig, error)

	// Search returns a page of active configurations plus the total
	// count of matches.
	Search(ctx context.Context, page pagination.PageRequest, filters SearchFilters) ([]ModelConfig, int, error)

	// Insert stores a new configuration. When it is flagged default, all
	// other default flags are cleared in the same transaction.
	Insert(ctx context.Context, cfg ModelConfig) (*ModelConfig, error)

	// Update applies the non-nil fields to the row with the given id,
	// clearing other default flags in the same transaction when the
	// update sets is_default. Returns ErrNotFound when no row matched.
	Update(ctx context.Context, id int64, fields UpdateFields) (*ModelConfig, error)

	// SoftDelete deactivates the row. Reports whether a row changed.
	SoftDelete(ctx context.Context, id int64) (bool, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed configuration store.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) ListActive(ctx context.Context) ([]ModelConfig, error) {
	p := projection()
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE mc.is_active = TRUE ORDER BY mc.is_default DESC, mc.created_at ASC",
		p.Columns(), p.Table(),
	))
	if err != nil {
		return nil, fmt.Errorf("list model configs: %w", err)
	}
	defer rows.Close()

	return collectConfigs(rows)
}

func (s *postgresStore) FindByName(ctx context.Context, name string) (*ModelConfig, error) {
	p := projection()
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE mc.config_name = $1 AND mc.is_active = TRUE",
		p.Columns(), p.Table(),
	), name)

	return s.scanOne(row, "find model config by name")
}

func (s *postgresStore) FindDefault(ctx context.Context) (*ModelConfig, error) {
	p := projection()
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE mc.is_default = TRUE AND mc.is_active = TRUE",
		p.Columns(), p.Table(),
	))

	return s.scanOne(row, "find default model config")
}

func (s *postgresStore) FindByID(ctx context.Context, id int64) (*ModelConfig, error) {
	p := projection()
	sqlText, args := query.NewBuilder(p, query.SortField{Field: "created_at"}).
		BuildSingle("id", id)

	return s.scanOne(s.db.QueryRowContext(ctx, sqlText, args...), "find model config by id")
}

func (s *postgresStore) Search(ctx context.Context, page pagination.PageRequest, filters SearchFilters) ([]ModelConfig, int, error) {
	p := projection()
	active := true

	builder := query.NewBuilder(p,
		query.SortField{Field: "is_default", Descending: true},
		query.SortField{Field: "created_at"},
	).
		WhereEquals("is_active", active).
		WhereEquals("provider", nilable(filters.Provider)).
		WhereSearch(page.Search, "config_name", "provider", "model_name").
		OrderBy(page.Sort)

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count model configs: %w", err)
	}

	pageSQL, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	rows, err := s.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search model configs: %w", err)
	}
	defer rows.Close()

	configs, err := collectConfigs(rows)
	if err != nil {
		return nil, 0, err
	}
	return configs, total, nil
}

func (s *postgresStore) Insert(ctx context.Context, cfg ModelConfig) (*ModelConfig, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	if cfg.IsDefault {
		if err := clearDefaults(ctx, tx, 0); err != nil {
			return nil, err
		}
	}

	p := projection()
	row := tx.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO public.ai_model_configs AS mc
			(config_name, provider, model_name, endpoint_url, api_key_encrypted,
			 model_params, system_prompt, max_tokens, temperature, is_default)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, $9, $10)
		RETURNING %s`, p.Columns()),
		cfg.ConfigName, cfg.Provider, cfg.ModelName, cfg.EndpointURL,
		cfg.APIKeyEncrypted, cfg.ModelParams, cfg.SystemPrompt,
		cfg.MaxTokens, cfg.Temperature, cfg.IsDefault,
	)

	stored, err := scanConfig(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: config_name '%s' already exists",
				ErrValidation, cfg.ConfigName)
		}
		return nil, fmt.Errorf("insert model config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return stored, nil
}

func (s *postgresStore) Update(ctx context.Context, id int64, fields UpdateFields) (*ModelConfig, error) {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 10)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.ConfigName != nil {
		add("config_name", *fields.ConfigName)
	}
	if fields.Provider != nil {
		add("provider", *fields.Provider)
	}
	if fields.ModelName != nil {
		add("model_name", *fields.ModelName)
	}
	if fields.EndpointURL != nil {
		add("endpoint_url", *fields.EndpointURL)
	}
	if fields.APIKeyEncrypted != nil {
		add("api_key_encrypted", *fields.APIKeyEncrypted)
	}
	if fields.ModelParams != nil {
		add("model_params", []byte(fields.ModelParams))
	}
	if fields.SystemPrompt != nil {
		add("system_prompt", *fields.SystemPrompt)
	}
	if fields.MaxTokens != nil {
		add("max_tokens", *fields.MaxTokens)
	}
	if fields.Temperature != nil {
		add("temperature", *fields.Temperature)
	}
	if fields.IsDefault != nil {
		add("is_default", *fields.IsDefault)
	}

	if len(sets) == 0 {
		return s.FindByID(ctx, id)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	if fields.IsDefault != nil && *fields.IsDefault {
		if err := clearDefaults(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	args = append(args, id)
	p := projection()
	row := tx.QueryRowContext(ctx, fmt.Sprintf(
		"UPDATE public.ai_model_configs mc SET %s, updated_at = NOW() WHERE mc.id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), p.Columns(),
	), args...)

	stored, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: config_name already exists", ErrValidation)
		}
		return nil, fmt.Errorf("update model config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return stored, nil
}

func (s *postgresStore) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE public.ai_model_configs SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active = TRUE",
		id,
	)
	if err != nil {
		return false, fmt.Errorf("soft delete model config: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete model config: %w", err)
	}
	return affected > 0, nil
}

// clearDefaults drops the default flag from every row except the one
// being promoted, keeping the single-default invariant inside the
// caller's transaction.
func clearDefaults(ctx context.Context, tx *sql.Tx, keep int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE public.ai_model_configs SET is_default = FALSE WHERE is_default = TRUE AND id != $1",
		keep,
	)
	if err != nil {
		return fmt.Errorf("clear default flags: %w", err)
	}
	return nil
}

func (s *postgresStore) scanOne(row rowScanner, op string) (*ModelConfig, error) {
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func collectConfigs(rows *sql.Rows) ([]ModelConfig, error) {
	configs := make([]ModelConfig, 0)
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan model config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nilable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
