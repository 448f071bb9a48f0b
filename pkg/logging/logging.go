// Package logging builds the process-wide slog.Logger from configuration.
// Systems derive child loggers from it with logger.With.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New creates a logger writing to stdout per the configuration.
func New(cfg *Config) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger against an explicit writer. Tests use
// this to capture output.
func NewWithWriter(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.Level.slogLevel(),
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Level is a logging severity as it appears in config and env values.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var slogLevels = map[Level]slog.Level{
	LevelDebug: slog.LevelDebug,
	LevelInfo:  slog.LevelInfo,
	LevelWarn:  slog.LevelWarn,
	LevelError: slog.LevelError,
}

// Validate reports whether the level is one of the known severities.
func (l Level) Validate() error {
	if _, ok := slogLevels[l]; !ok {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l)
	}
	return nil
}

// slogLevel maps the level onto slog; unknown values fall back to info.
func (l Level) slogLevel() slog.Level {
	if lvl, ok := slogLevels[l]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// Format selects the handler encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Validate reports whether the format is one of the known encodings.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", f)
	}
}
