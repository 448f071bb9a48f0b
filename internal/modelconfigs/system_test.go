package modelconfigs_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/xenai/xenai-server/internal/modelconfigs"
	"github.com/xenai/xenai-server/pkg/pagination"
	"github.com/xenai/xenai-server/pkg/secrets"
)

// fakeStore keeps configurations in memory and honors the resolution
// ordering contract (is_default DESC, created_at ASC) plus the
// clear-then-set default behavior of the real store.
type fakeStore struct {
	configs map[int64]modelconfigs.ModelConfig
	nextID  int64
	clock   time.Time
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		configs: make(map[int64]modelconfigs.ModelConfig),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeStore) ListActive(context.Context) ([]modelconfigs.ModelConfig, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	out := make([]modelconfigs.ModelConfig, 0, len(f.configs))
	for _, cfg := range f.configs {
		if cfg.IsActive {
			out = append(out, cfg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) FindByName(_ context.Context, name string) (*modelconfigs.ModelConfig, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	for _, cfg := range f.configs {
		if cfg.IsActive && cfg.ConfigName == name {
			return &cfg, nil
		}
	}
	return nil, modelconfigs.ErrNotFound
}

func (f *fakeStore) FindDefault(context.Context) (*modelconfigs.ModelConfig, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	for _, cfg := range f.configs {
		if cfg.IsActive && cfg.IsDefault {
			return &cfg, nil
		}
	}
	return nil, modelconfigs.ErrNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*modelconfigs.ModelConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, modelconfigs.ErrNotFound
	}
	return &cfg, nil
}

func (f *fakeStore) Search(ctx context.Context, page pagination.PageRequest, _ modelconfigs.SearchFilters) ([]modelconfigs.ModelConfig, int, error) {
	all, err := f.ListActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, len(all), nil
}

func (f *fakeStore) Insert(_ context.Context, cfg modelconfigs.ModelConfig) (*modelconfigs.ModelConfig, error) {
	for _, existing := range f.configs {
		if existing.ConfigName == cfg.ConfigName {
			return nil, fmt.Errorf("%w: config_name '%s' already exists",
				modelconfigs.ErrValidation, cfg.ConfigName)
		}
	}
	if cfg.IsDefault {
		f.clearDefaults(0)
	}

	f.nextID++
	cfg.ID = f.nextID
	cfg.IsActive = true
	cfg.CreatedAt = f.tick()
	cfg.UpdatedAt = cfg.CreatedAt
	f.configs[cfg.ID] = cfg
	return &cfg, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, fields modelconfigs.UpdateFields) (*modelconfigs.ModelConfig, error) {
	cfg, ok := f.configs[id]
	if !ok {
		return nil, modelconfigs.ErrNotFound
	}

	if fields.IsDefault != nil && *fields.IsDefault {
		f.clearDefaults(id)
	}
	if fields.ConfigName != nil {
		cfg.ConfigName = *fields.ConfigName
	}
	if fields.Provider != nil {
		cfg.Provider = *fields.Provider
	}
	if fields.ModelName != nil {
		cfg.ModelName = *fields.ModelName
	}
	if fields.EndpointURL != nil {
		cfg.EndpointURL = *fields.EndpointURL
	}
	if fields.APIKeyEncrypted != nil {
		cfg.APIKeyEncrypted = *fields.APIKeyEncrypted
	}
	if fields.ModelParams != nil {
		cfg.ModelParams = fields.ModelParams
	}
	if fields.SystemPrompt != nil {
		cfg.SystemPrompt = *fields.SystemPrompt
	}
	if fields.MaxTokens != nil {
		cfg.MaxTokens = *fields.MaxTokens
	}
	if fields.Temperature != nil {
		cfg.Temperature = *fields.Temperature
	}
	if fields.IsDefault != nil {
		cfg.IsDefault = *fields.IsDefault
	}
	cfg.UpdatedAt = f.tick()
	f.configs[id] = cfg
	return &cfg, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id int64) (bool, error) {
	cfg, ok := f.configs[id]
	if !ok || !cfg.IsActive {
		return false, nil
	}
	cfg.IsActive = false
	f.configs[id] = cfg
	return true, nil
}

func (f *fakeStore) clearDefaults(keep int64) {
	for id, cfg := range f.configs {
		if id != keep && cfg.IsDefault {
			cfg.IsDefault = false
			f.configs[id] = cfg
		}
	}
}

func newTestSystem(t *testing.T) (modelconfigs.System, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	cipher := secrets.New("unit-test-key")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return modelconfigs.NewSystem(store, cipher, logger), store
}

func createCommand(name string) modelconfigs.CreateCommand {
	return modelconfigs.CreateCommand{
		ConfigName:  name,
		Provider:    "openrouter",
		ModelName:   "mistralai/mistral-7b-instruct:free",
		EndpointURL: "https://openrouter.ai/api/v1/chat/completions",
		APIKey:      "sk-or-" + name,
	}
}

func TestCreate_MissingFields(t *testing.T) {
	sys, _ := newTestSystem(t)

	_, err := sys.Create(context.Background(), modelconfigs.CreateCommand{
		ConfigName: "incomplete",
		Provider:   "openrouter",
	})
	if !errors.Is(err, modelconfigs.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}

	var missing *modelconfigs.MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("Create() error = %v, want MissingFieldsError", err)
	}
	want := []string{"model_name", "endpoint_url", "api_key"}
	if len(missing.Fields) != len(want) {
		t.Fatalf("missing fields = %v, want %v", missing.Fields, want)
	}
	for i, field := range want {
		if missing.Fields[i] != field {
			t.Errorf("missing fields = %v, want %v", missing.Fields, want)
			break
		}
	}
}

func TestCreate_EncryptsKeyAtRestAndEchoesPlaintext(t *testing.T) {
	sys, store := newTestSystem(t)

	created, err := sys.Create(context.Background(), createCommand("primary"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if created.APIKey != "sk-or-primary" {
		t.Errorf("Create() api key = %q, want plaintext echo", created.APIKey)
	}

	stored := store.configs[created.ID].APIKeyEncrypted
	if strings.Contains(stored, "sk-or-primary") {
		t.Error("stored credential contains plaintext")
	}
	if !strings.Contains(stored, ":") {
		t.Errorf("stored credential %q is not an encrypted token", stored)
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	sys, _ := newTestSystem(t)

	created, err := sys.Create(context.Background(), createCommand("tuned"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.MaxTokens != modelconfigs.DefaultMaxTokens {
		t.Errorf("MaxTokens = %d, want %d", created.MaxTokens, modelconfigs.DefaultMaxTokens)
	}
	if created.Temperature != modelconfigs.DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", created.Temperature, modelconfigs.DefaultTemperature)
	}
	if created.ModelParams == nil || len(created.ModelParams) != 0 {
		t.Errorf("ModelParams = %v, want empty map", created.ModelParams)
	}
}

func TestCreate_DefaultFlagUnique(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	first := createCommand("a")
	first.IsDefault = true
	if _, err := sys.Create(ctx, first); err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}

	second := createCommand("b")
	second.IsDefault = true
	if _, err := sys.Create(ctx, second); err != nil {
		t.Fatalf("Create(b) error = %v", err)
	}

	configs, err := sys.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	defaults := 0
	for _, cfg := range configs {
		if cfg.IsDefault {
			defaults++
			if cfg.ConfigName != "b" {
				t.Errorf("default = %q, want b", cfg.ConfigName)
			}
		}
	}
	if defaults != 1 {
		t.Errorf("default count = %d, want 1", defaults)
	}
}

func TestResolve_NamedMissIncludesName(t *testing.T) {
	sys, _ := newTestSystem(t)

	_, err := sys.Resolve(context.Background(), "nonexistent")
	if !errors.Is(err, modelconfigs.ErrNotFound) {
		t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("Resolve() error message %q does not name the config", err.Error())
	}
}

func TestResolve_FallbackAfterDefaultDeleted(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	a, err := sys.Create(ctx, createCommand("a"))
	if err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}

	cmdB := createCommand("b")
	cmdB.IsDefault = true
	b, err := sys.Create(ctx, cmdB)
	if err != nil {
		t.Fatalf("Create(b) error = %v", err)
	}

	resolved, err := sys.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.ID != b.ID {
		t.Fatalf("Resolve() = %q, want default b", resolved.ConfigName)
	}

	if _, err := sys.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete(b) error = %v", err)
	}

	resolved, err = sys.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("Resolve() after delete error = %v", err)
	}
	if resolved.ID != a.ID {
		t.Errorf("Resolve() after delete = %q, want earliest-created a", resolved.ConfigName)
	}
}

func TestResolve_NoConfigs(t *testing.T) {
	sys, _ := newTestSystem(t)

	_, err := sys.Resolve(context.Background(), "")
	if !errors.Is(err, modelconfigs.ErrNoConfigs) {
		t.Errorf("Resolve() error = %v, want ErrNoConfigs", err)
	}
}

func TestResolve_CorruptCredential(t *testing.T) {
	sys, store := newTestSystem(t)
	ctx := context.Background()

	created, err := sys.Create(ctx, createCommand("damaged"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	cfg := store.configs[created.ID]
	cfg.APIKeyEncrypted = "zz:not-hex"
	store.configs[created.ID] = cfg

	_, err = sys.Resolve(ctx, "damaged")
	if !errors.Is(err, modelconfigs.ErrCorrupt) {
		t.Fatalf("Resolve(corrupt) error = %v, want ErrCorrupt", err)
	}
	if errors.Is(err, modelconfigs.ErrNotFound) {
		t.Error("corrupt record reported as not found")
	}
}

func TestList_OmitsCredentials(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	if _, err := sys.Create(ctx, createCommand("visible")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	configs, err := sys.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	payload, err := json.Marshal(configs)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(payload), "api_key") {
		t.Error("public shape serializes a credential field")
	}
	if strings.Contains(string(payload), "sk-or-visible") {
		t.Error("public shape contains the plaintext credential")
	}
}

func TestUpdate_ReencryptsOnlySuppliedKey(t *testing.T) {
	sys, store := newTestSystem(t)
	ctx := context.Background()

	created, err := sys.Create(ctx, createCommand("stable"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	before := store.configs[created.ID].APIKeyEncrypted

	newName := "renamed"
	if _, err := sys.Update(ctx, created.ID, modelconfigs.UpdateCommand{
		ConfigName: &newName,
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if store.configs[created.ID].APIKeyEncrypted != before {
		t.Error("credential re-encrypted without a supplied key")
	}

	newKey := "sk-or-rotated"
	updated, err := sys.Update(ctx, created.ID, modelconfigs.UpdateCommand{
		APIKey: &newKey,
	})
	if err != nil {
		t.Fatalf("Update(key) error = %v", err)
	}
	if store.configs[created.ID].APIKeyEncrypted == before {
		t.Error("credential not re-encrypted for supplied key")
	}
	if updated.APIKey != newKey {
		t.Errorf("resolved key = %q, want %q", updated.APIKey, newKey)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	sys, _ := newTestSystem(t)

	name := "ghost"
	_, err := sys.Update(context.Background(), 404, modelconfigs.UpdateCommand{
		ConfigName: &name,
	})
	if !errors.Is(err, modelconfigs.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDelete_SoftDeleteHidesFromResolution(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	created, err := sys.Create(ctx, createCommand("ephemeral"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := sys.Delete(ctx, created.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete() = %v, %v, want true, nil", deleted, err)
	}

	if _, err := sys.Resolve(ctx, "ephemeral"); !errors.Is(err, modelconfigs.ErrNotFound) {
		t.Errorf("Resolve(deleted) error = %v, want ErrNotFound", err)
	}

	deleted, err = sys.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if deleted {
		t.Error("second Delete() reported a change")
	}
}

func TestScenario_CreateResolveList(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	temp := 0.9
	cmd := modelconfigs.CreateCommand{
		ConfigName:  "anthropic_main",
		Provider:    "anthropic",
		ModelName:   "claude-3",
		EndpointURL: "https://api.anthropic.com/v1/messages",
		APIKey:      "sk-ant-secret",
		ModelParams: map[string]any{"top_p": 0.95},
		Temperature: &temp,
		IsDefault:   true,
	}
	if _, err := sys.Create(ctx, cmd); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resolved, err := sys.Resolve(ctx, "anthropic_main")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved.APIKey != "sk-ant-secret" {
		t.Errorf("resolved key = %q, want plaintext", resolved.APIKey)
	}
	if resolved.ModelParams["top_p"] != 0.95 {
		t.Errorf("resolved params = %v, want top_p 0.95", resolved.ModelParams)
	}

	configs, err := sys.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(configs) != 1 || configs[0].ConfigName != "anthropic_main" {
		t.Fatalf("List() = %+v, want one config", configs)
	}
}
