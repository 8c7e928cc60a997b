package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/idilsaglam/shopping/internal/config"
	"github.com/idilsaglam/shopping/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWriter_JSONWithSessionID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter(&buf, "info")
	log.Debug("hidden")
	log.Info("item added", "text", "Milk")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "item added" || rec["text"] != "Milk" {
		t.Fatalf("unexpected record: %v", rec)
	}
	id, _ := rec["session_id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("session_id %q is not a UUID: %v", id, err)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	cfg.Log.File = filepath.Join(t.TempDir(), "shopping.log")

	log, closeFn, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug("hello")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"hello"`) {
		t.Fatalf("log file missing record: %q", b)
	}
}

func TestNew_EmptyFileDiscards(t *testing.T) {
	cfg := &config.Config{}
	log, closeFn, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info("nowhere")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
