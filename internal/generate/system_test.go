package generate_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xenai/xenai-server/internal/config"
	"github.com/xenai/xenai-server/internal/generate"
	"github.com/xenai/xenai-server/internal/modelconfigs"
	"github.com/xenai/xenai-server/pkg/pagination"
)

// fakeConfigs stubs configuration resolution.
type fakeConfigs struct {
	resolve func(ctx context.Context, name string) (*modelconfigs.ResolvedConfig, error)
}

func (f *fakeConfigs) Resolve(ctx context.Context, name string) (*modelconfigs.ResolvedConfig, error) {
	return f.resolve(ctx, name)
}

func (f *fakeConfigs) List(context.Context) ([]modelconfigs.PublicModelConfig, error) {
	return nil, nil
}

func (f *fakeConfigs) Search(context.Context, pagination.PageRequest, modelconfigs.SearchFilters) (*pagination.PageResult[modelconfigs.PublicModelConfig], error) {
	return nil, nil
}

func (f *fakeConfigs) Create(context.Context, modelconfigs.CreateCommand) (*modelconfigs.ResolvedConfig, error) {
	return nil, nil
}

func (f *fakeConfigs) Update(context.Context, int64, modelconfigs.UpdateCommand) (*modelconfigs.ResolvedConfig, error) {
	return nil, nil
}

func (f *fakeConfigs) Delete(context.Context, int64) (bool, error) {
	return false, nil
}

// memoryRecorder captures recorded turns.
type memoryRecorder struct {
	entries []string
}

func (m *memoryRecorder) Record(_ context.Context, subject, role, content string) error {
	m.entries = append(m.entries, subject+"/"+role+": "+content)
	return nil
}

func newUpstream(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		})
	}))
}

func newTestSystem(t *testing.T, configs modelconfigs.System, providers *config.ProvidersConfig, recorder generate.Recorder) generate.System {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if providers == nil {
		providers = &config.ProvidersConfig{AppTitle: "Xen AI", RequestTimeout: "5s"}
	}
	if recorder == nil {
		recorder = &memoryRecorder{}
	}

	client := generate.NewClient(providers, "http://localhost:5173", logger)
	return generate.NewSystem(configs, client, recorder, providers, logger)
}

func TestChat_RecordsHistory(t *testing.T) {
	upstream := newUpstream(t, "generated reply")
	defer upstream.Close()

	configs := &fakeConfigs{
		resolve: func(_ context.Context, name string) (*modelconfigs.ResolvedConfig, error) {
			return resolvedConfig(upstream.URL), nil
		},
	}
	recorder := &memoryRecorder{}
	sys := newTestSystem(t, configs, nil, recorder)

	result, err := sys.Chat(context.Background(), "42", generate.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Response != "generated reply" {
		t.Errorf("Response = %q", result.Response)
	}
	if result.ConfigUsed != "test" {
		t.Errorf("ConfigUsed = %q, want test", result.ConfigUsed)
	}

	if len(recorder.entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(recorder.entries))
	}
	if recorder.entries[0] != "42/user: hello" {
		t.Errorf("first entry = %q", recorder.entries[0])
	}
	if recorder.entries[1] != "42/assistant: generated reply" {
		t.Errorf("second entry = %q", recorder.entries[1])
	}
}

func TestGenerate_NamedConfigNotFoundPropagates(t *testing.T) {
	configs := &fakeConfigs{
		resolve: func(_ context.Context, name string) (*modelconfigs.ResolvedConfig, error) {
			return nil, modelconfigs.ErrNotFound
		},
	}
	sys := newTestSystem(t, configs, &config.ProvidersConfig{
		OpenRouterAPIKey: "sk-or-env", RequestTimeout: "5s",
	}, nil)

	_, err := sys.Chat(context.Background(), "42", generate.ChatRequest{
		Message: "hello", ConfigName: "missing",
	})
	if !errors.Is(err, modelconfigs.ErrNotFound) {
		t.Errorf("Chat() error = %v, want ErrNotFound (no env fallback for caller mistakes)", err)
	}
}

func TestGenerate_StoreOutageFallsBackToEnv(t *testing.T) {
	upstream := newUpstream(t, "fallback reply")
	defer upstream.Close()

	configs := &fakeConfigs{
		resolve: func(context.Context, string) (*modelconfigs.ResolvedConfig, error) {
			return nil, errors.New("connection refused")
		},
	}
	sys := newTestSystem(t, configs, &config.ProvidersConfig{
		OpenRouterAPIKey: "sk-or-env",
		DefaultModel:     "mistralai/mistral-7b-instruct:free",
		DefaultEndpoint:  upstream.URL,
		AppTitle:         "Xen AI",
		RequestTimeout:   "5s",
	}, nil)

	result, err := sys.Chat(context.Background(), "42", generate.ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.ConfigUsed != "env_fallback" {
		t.Errorf("ConfigUsed = %q, want env_fallback", result.ConfigUsed)
	}
}

func TestGenerate_NotConfigured(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(context.Context, string) (*modelconfigs.ResolvedConfig, error)
	}{
		{
			"store outage without env key",
			func(context.Context, string) (*modelconfigs.ResolvedConfig, error) {
				return nil, errors.New("connection refused")
			},
		},
		{
			"resolved config with empty credential",
			func(context.Context, string) (*modelconfigs.ResolvedConfig, error) {
				cfg := resolvedConfig("http://unused")
				cfg.APIKey = ""
				return cfg, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := newTestSystem(t, &fakeConfigs{resolve: tt.resolve}, nil, nil)

			_, err := sys.Chat(context.Background(), "42", generate.ChatRequest{Message: "hello"})
			if !errors.Is(err, generate.ErrNotConfigured) {
				t.Errorf("Chat() error = %v, want ErrNotConfigured", err)
			}
		})
	}
}

func TestStory_PromptComposition(t *testing.T) {
	var captured map[string]any
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "once upon a time"}},
			},
		})
	}))
	defer upstream.Close()

	configs := &fakeConfigs{
		resolve: func(context.Context, string) (*modelconfigs.ResolvedConfig, error) {
			return resolvedConfig(upstream.URL), nil
		},
	}
	sys := newTestSystem(t, configs, nil, nil)

	_, err := sys.Story(context.Background(), generate.StoryRequest{
		Prompt: "a lighthouse keeper", Genre: "mystery", Length: "long",
	})
	if err != nil {
		t.Fatalf("Story() error = %v", err)
	}

	messages := captured["messages"].([]any)
	user := messages[1].(map[string]any)["content"].(string)
	if !strings.Contains(user, "long mystery story") || !strings.Contains(user, "a lighthouse keeper") {
		t.Errorf("user prompt = %q", user)
	}
}
