package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xenai/xenai-server/internal/config"
)

const maxErrorBodyBytes = 2048

// Client calls the Hugging Face router for synchronous image
// generation.
type Client struct {
	http     *http.Client
	endpoint string
	token    string
	maxBytes int64
	logger   *slog.Logger
}

// NewClient creates the image generation client. Responses larger than
// maxBytes are rejected.
func NewClient(cfg *config.ProvidersConfig, maxBytes int64, logger *slog.Logger) *Client {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		http:     &http.Client{Timeout: timeout},
		endpoint: cfg.ImageEndpoint,
		token:    cfg.HFToken,
		maxBytes: maxBytes,
		logger:   logger.With("system", "images.client"),
	}
}

// Generate requests a single image and returns the raw PNG bytes.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	if c.token == "" {
		return nil, ErrInvalidToken
	}

	payload, err := json.Marshal(struct {
		SyncMode          bool   `json:"sync_mode"`
		Prompt            string `json:"prompt"`
		NegativePrompt    string `json:"negative_prompt,omitempty"`
		Width             int    `json:"width,omitempty"`
		Height            int    `json:"height,omitempty"`
		NumInferenceSteps int    `json:"num_inference_steps,omitempty"`
	}{
		SyncMode:          true,
		Prompt:            req.Prompt,
		NegativePrompt:    req.NegativePrompt,
		Width:             req.Width,
		Height:            req.Height,
		NumInferenceSteps: req.NumInferenceSteps,
	})
	if err != nil {
		return nil, fmt.Errorf("encode image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image provider call: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("image call completed",
		"status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read image response: %w", err)
		}
		if int64(len(data)) > c.maxBytes {
			return nil, fmt.Errorf("image exceeds maximum size of %d bytes", c.maxBytes)
		}
		return data, nil
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, ErrModelLoading
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &UpstreamError{Status: resp.StatusCode, Detail: string(detail)}
	}
}
