package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/ironsheep/wellscan/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"chatty", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("sampled wells", "wells", 96)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["level"] != "info" {
		t.Errorf("level: got %v, want info", rec["level"])
	}
	if rec["msg"] != "sampled wells" {
		t.Errorf("msg: got %v", rec["msg"])
	}
	if rec["wells"] != float64(96) {
		t.Errorf("wells: got %v", rec["wells"])
	}
	if _, ok := rec["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewConsoleDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("line scan", "well", "A1")

	out := buf.String()
	if !strings.Contains(out, "level=debug") {
		t.Errorf("missing level: %q", out)
	}
	if !strings.Contains(out, "well=A1") {
		t.Errorf("missing attr: %q", out)
	}
	if !strings.Contains(out, "logger_test.go:") {
		t.Errorf("missing source: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger, err := NewFromConfig(cfg, &buf)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("scan clipped", "well", "A1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the warn record, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "scan clipped" || rec["well"] != "A1" || rec["level"] != "warn" {
		t.Errorf("unexpected record: %v", rec)
	}

	if _, err := NewFromConfig(nil, nil); err != nil {
		t.Fatalf("NewFromConfig(nil) returned error: %v", err)
	}

	cfg.Log.Format = "xml"
	if _, err := NewFromConfig(cfg, &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("dropped")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Nop logger should be disabled at every level")
	}
}
