package generate

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
	"github.com/xenai/xenai-server/internal/modelconfigs"
)

// maxErrorBodyBytes caps how much provider error text is retained.
const maxErrorBodyBytes = 2048

// Message is a single chat-completions message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client performs chat-completions calls against whatever endpoint a
// resolved configuration points at. One POST per generation, no retry.
type Client struct {
	http    *http.Client
	referer string
	title   string
	logger  *slog.Logger
}

// NewClient creates a provider client. The referer identifies the
// frontend origin to providers that meter by application.
func NewClient(cfg *config.ProvidersConfig, referer string, logger *slog.Logger) *Client {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		http:    &http.Client{Timeout: timeout},
		referer: referer,
		title:   cfg.AppTitle,
		logger:  logger.With("system", "generate.client"),
	}
}

// ChatCompletion sends the messages to the configured endpoint and
// returns the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, cfg *modelconfigs.ResolvedConfig, messages []Message) (string, error) {
	body := map[string]any{
		"model":       cfg.ModelName,
		"messages":    messages,
		"temperature": cfg.Temperature,
		"max_tokens":  cfg.MaxTokens,
	}
	// Stored params override the base request verbatim; they are the
	// operator's escape hatch for provider-specific tuning.
	for k, v := range cfg.ModelParams {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider call: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("provider call completed",
		"endpoint", cfg.EndpointURL, "model", cfg.ModelName,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &UpstreamError{Status: resp.StatusCode, Detail: string(detail)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: "malformed provider response"}
	}
	if len(parsed.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Detail: "provider response contains no choices"}
	}

	return parsed.Choices[0].Message.Content, nil
}
