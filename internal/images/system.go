package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/xenai/xenai-server/internal/storage"
)

// servingPrefix is the public path images are served under.
const servingPrefix = "/images/"

// System defines image generation operations.
type System interface {
	// Generate produces an image, stores it, and records metadata.
	Generate(ctx context.Context, createdBy string, req GenerateRequest) (*GeneratedImage, error)

	// History returns the creator's previous generations, newest first.
	History(ctx context.Context, createdBy string) ([]GeneratedImage, error)
}

type service struct {
	client *Client
	store  Store
	blobs  storage.System
	logger *slog.Logger
}

// NewSystem creates the image generation system.
func NewSystem(client *Client, store Store, blobs storage.System, logger *slog.Logger) System {
	return &service{
		client: client,
		store:  store,
		blobs:  blobs,
		logger: logger.With("system", "images"),
	}
}

func (s *service) Generate(ctx context.Context, createdBy string, req GenerateRequest) (*GeneratedImage, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrValidation)
	}

	data, err := s.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	fileName := "generated_" + uuid.New().String() + ".png"
	if err := s.blobs.Store(ctx, fileName, data); err != nil {
		return nil, fmt.Errorf("store image blob: %w", err)
	}

	stored, err := s.store.Insert(ctx, GeneratedImage{
		FileName:  fileName,
		Prompt:    req.Prompt,
		CreatedBy: createdBy,
	})
	if err != nil {
		// Blob without a row is invisible junk; clean it up.
		if cleanupErr := s.blobs.Delete(ctx, fileName); cleanupErr != nil {
			s.logger.Warn("orphaned image blob", "file", fileName, "error", cleanupErr)
		}
		return nil, err
	}

	stored.URL = servingPrefix + stored.FileName
	s.logger.Info("image generated",
		"file", fileName, "created_by", createdBy, "bytes", len(data))
	return stored, nil
}

func (s *service) History(ctx context.Context, createdBy string) ([]GeneratedImage, error) {
	images, err := s.store.ListByCreator(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	for i := range images {
		images[i].URL = servingPrefix + images[i].FileName
	}
	return images, nil
}
