package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(Config{Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", zap.String("folder", "p"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") || !strings.Contains(out, `"folder": "p"`) {
		t.Errorf("unexpected console output: %q", out)
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pubcorpus.log")
	var console bytes.Buffer
	logger, err := newLogger(Config{Level: "debug", File: path}, &console)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Debug("corpus loaded", zap.Int("posts", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log file line is not JSON: %v (%q)", err, data)
	}
	if entry["msg"] != "corpus loaded" || entry["level"] != "DEBUG" || entry["posts"] != float64(2) {
		t.Errorf("unexpected entry: %v", entry)
	}
	if !strings.Contains(console.String(), "corpus loaded") {
		t.Error("console should receive the entry too")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
