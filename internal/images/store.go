package images

import (
	"context"
	"database/sql"
	"fmt"
)

// Store persists generation metadata.
type Store interface {
	// Insert records a stored image.
	Insert(ctx context.Context, img GeneratedImage) (*GeneratedImage, error)

	// ListByCreator returns a creator's images, newest first.
	ListByCreator(ctx context.Context, createdBy string) ([]GeneratedImage, error)
}

type postgresStore struct {
	db *sql.DB
}

// NewStore creates a Postgres-backed image metadata store.
func NewStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Insert(ctx context.Context, img GeneratedImage) (*GeneratedImage, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO public.generated_images (file_name, prompt, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, file_name, prompt, created_by, created_at`,
		img.FileName, img.Prompt, img.CreatedBy,
	)

	var stored GeneratedImage
	err := row.Scan(&stored.ID, &stored.FileName, &stored.Prompt,
		&stored.CreatedBy, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert generated image: %w", err)
	}
	return &stored, nil
}

func (s *postgresStore) ListByCreator(ctx context.Context, createdBy string) ([]GeneratedImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, prompt, created_by, created_at
		FROM public.generated_images
		WHERE created_by = $1
		ORDER BY created_at DESC`,
		createdBy,
	)
	if err != nil {
		return nil, fmt.Errorf("list generated images: %w", err)
	}
	defer rows.Close()

	images := make([]GeneratedImage, 0)
	for rows.Next() {
		var img GeneratedImage
		if err := rows.Scan(&img.ID, &img.FileName, &img.Prompt,
			&img.CreatedBy, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}
