// Package generate implements the text generation features: chat, story
// writing, and resume drafting over provider chat-completions endpoints.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xenai/xenai-server/internal/config"
	"github.com/xenai/xenai-server/internal/modelconfigs"
)

// Feature system prompts applied when a configuration carries none.
const (
	chatSystemPrompt = "You are a helpful AI assistant for the Xen AI platform. " +
		"Be concise, friendly, and accurate."
	storySystemPrompt = "You are a creative story writer. Write engaging, " +
		"well-structured stories matching the requested genre and length."
	resumeSystemPrompt = "You are a professional resume writer. Produce clear, " +
		"achievement-oriented resume content tailored to the target role."
)

// ChatRequest is a conversational message from a user.
type ChatRequest struct {
	Message    string `json:"message"`
	ConfigName string `json:"config_name"`
}

// StoryRequest describes a story to generate.
type StoryRequest struct {
	Prompt     string `json:"prompt"`
	Genre      string `json:"genre"`
	Length     string `json:"length"`
	ConfigName string `json:"config_name"`
}

// ResumeRequest describes resume content to generate.
type ResumeRequest struct {
	UserInput      string `json:"user_input"`
	JobDescription string `json:"job_description"`
	Format         string `json:"format"`
	ConfigName     string `json:"config_name"`
}

// Result carries generated text plus the configuration that produced it.
type Result struct {
	Response   string `json:"response"`
	ConfigUsed string `json:"config_used"`
}

// Recorder persists conversation turns. The history system implements
// it; a no-op implementation stands in when history is disabled.
type Recorder interface {
	Record(ctx context.Context, subject, role, content string) error
}

// System defines the text generation operations.
type System interface {
	Chat(ctx context.Context, subject string, req ChatRequest) (*Result, error)
	Story(ctx context.Context, req StoryRequest) (*Result, error)
	Resume(ctx context.Context, req ResumeRequest) (*Result, error)
}

type service struct {
	configs   modelconfigs.System
	client    *Client
	recorder  Recorder
	providers *config.ProvidersConfig
	logger    *slog.Logger
}

// NewSystem creates the generation system.
func NewSystem(configs modelconfigs.System, client *Client, recorder Recorder, providers *config.ProvidersConfig, logger *slog.Logger) System {
	return &service{
		configs:   configs,
		client:    client,
		recorder:  recorder,
		providers: providers,
		logger:    logger.With("system", "generate"),
	}
}

func (s *service) Chat(ctx context.Context, subject string, req ChatRequest) (*Result, error) {
	result, err := s.generate(ctx, req.ConfigName, chatSystemPrompt, req.Message)
	if err != nil {
		return nil, err
	}

	s.record(ctx, subject, "user", req.Message)
	s.record(ctx, subject, "assistant", result.Response)
	return result, nil
}

func (s *service) Story(ctx context.Context, req StoryRequest) (*Result, error) {
	length := req.Length
	if length == "" {
		length = "short"
	}

	var b strings.Builder
	b.WriteString("Write a ")
	b.WriteString(length)
	if req.Genre != "" {
		b.WriteString(" ")
		b.WriteString(req.Genre)
	}
	b.WriteString(" story about: ")
	b.WriteString(req.Prompt)

	return s.generate(ctx, req.ConfigName, storySystemPrompt, b.String())
}

func (s *service) Resume(ctx context.Context, req ResumeRequest) (*Result, error) {
	var b strings.Builder
	b.WriteString("Create resume content from the following background:\n")
	b.WriteString(req.UserInput)
	if req.JobDescription != "" {
		b.WriteString("\n\nTarget job description:\n")
		b.WriteString(req.JobDescription)
	}
	if req.Format != "" {
		b.WriteString("\n\nDesired format: ")
		b.WriteString(req.Format)
	}

	return s.generate(ctx, req.ConfigName, resumeSystemPrompt, b.String())
}

func (s *service) generate(ctx context.Context, configName, featurePrompt, userContent string) (*Result, error) {
	cfg, err := s.resolve(ctx, configName)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: configuration '%s' has no credential",
			ErrNotConfigured, cfg.ConfigName)
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = featurePrompt
	}

	response, err := s.client.ChatCompletion(ctx, cfg, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userContent},
	})
	if err != nil {
		return nil, err
	}

	return &Result{Response: response, ConfigUsed: cfg.ConfigName}, nil
}

// resolve fetches the requested configuration. Caller mistakes (unknown
// name) and corrupt records propagate; infrastructure failures degrade
// to an ephemeral configuration built from the environment, which is
// never persisted.
func (s *service) resolve(ctx context.Context, name string) (*modelconfigs.ResolvedConfig, error) {
	cfg, err := s.configs.Resolve(ctx, name)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, modelconfigs.ErrNotFound) || errors.Is(err, modelconfigs.ErrCorrupt) {
		return nil, err
	}

	if s.providers.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	s.logger.Warn("config resolution unavailable, using environment fallback", "error", err)
	return &modelconfigs.ResolvedConfig{
		ConfigName:  "env_fallback",
		Provider:    "openrouter",
		ModelName:   s.providers.DefaultModel,
		EndpointURL: s.providers.DefaultEndpoint,
		APIKey:      s.providers.OpenRouterAPIKey,
		ModelParams: map[string]any{},
		MaxTokens:   modelconfigs.DefaultMaxTokens,
		Temperature: modelconfigs.DefaultTemperature,
	}, nil
}

// record logs history failures instead of failing the generation; the
// reply already exists and belongs to the caller.
func (s *service) record(ctx context.Context, subject, role, content string) {
	if err := s.recorder.Record(ctx, subject, role, content); err != nil {
		s.logger.Warn("history record failed", "subject", subject, "error", err)
	}
}
