// Package logger builds the structured logger for a run. The terminal belongs
// to the UI, so records are written as JSON lines to a file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/idilsaglam/shopping/internal/config"
)

// New returns a JSON logger writing to cfg.Log.File, tagged with a fresh
// session_id so lines from separate runs can be told apart in one file.
// The returned close func releases the file.
func New(cfg *config.Config) (*slog.Logger, func() error, error) {
	if cfg.Log.File == "" {
		return NewWriter(io.Discard, cfg.Log.Level), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriter(f, cfg.Log.Level), f.Close, nil
}

// NewWriter returns a JSON logger writing to w at the given level.
func NewWriter(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	return slog.New(slog.NewJSONHandler(w, opts)).With("session_id", uuid.NewString())
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
