// Package history retains recent conversation turns per user in Redis.
// Retention length follows the max_chat_history application setting.
// Without a configured Redis endpoint the system degrades to a no-op.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xenai/xenai-server/internal/appconfigs"
	"github.com/xenai/xenai-server/internal/config"
)

const (
	keyPrefix       = "history:"
	retentionKey    = "max_chat_history"
	defaultMaxItems = 50
)

// Entry is a single retained conversation turn.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Settings supplies the retention length.
type Settings interface {
	Get(ctx context.Context, key string) (appconfigs.Value, error)
}

// System defines conversation history operations.
type System interface {
	// Record appends a turn for the subject, trimming to the retention
	// length.
	Record(ctx context.Context, subject, role, content string) error

	// List returns the retained turns for the subject, newest first.
	List(ctx context.Context, subject string) ([]Entry, error)

	// Clear drops all retained turns for the subject.
	Clear(ctx context.Context, subject string) error
}

type redisSystem struct {
	client   *redis.Client
	settings Settings
	logger   *slog.Logger
}

// New creates the history system. An unconfigured Redis endpoint yields
// a no-op system; an unreachable one is logged but not fatal, since the
// endpoint may come up after the service.
func New(cfg *config.RedisConfig, settings Settings, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "history")

	if !cfg.Enabled() {
		logger.Info("history retention disabled: no redis endpoint configured")
		return &noopSystem{}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at startup", "error", err)
	}

	return &redisSystem{
		client:   client,
		settings: settings,
		logger:   logger,
	}, nil
}

func (s *redisSystem) Record(ctx context.Context, subject, role, content string) error {
	payload, err := json.Marshal(Entry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	key := keyPrefix + subject
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.maxItems(ctx))-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

func (s *redisSystem) List(ctx context.Context, subject string) ([]Entry, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+subject, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.Warn("dropping undecodable history entry", "subject", subject)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *redisSystem) Clear(ctx context.Context, subject string) error {
	if err := s.client.Del(ctx, keyPrefix+subject).Err(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *redisSystem) maxItems(ctx context.Context) int {
	value, err := s.settings.Get(ctx, retentionKey)
	if err != nil || value.Type != appconfigs.TypeNumber || value.Num < 1 {
		return defaultMaxItems
	}
	return int(value.Num)
}

type noopSystem struct{}

func (noopSystem) Record(context.Context, string, string, string) error { return nil }
func (noopSystem) List(context.Context, string) ([]Entry, error)        { return []Entry{}, nil }
func (noopSystem) Clear(context.Context, string) error                  { return nil }
