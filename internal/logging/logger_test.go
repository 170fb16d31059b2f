package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lifehub/lifehub/internal/config"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := Level(tt.in); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestNewStdout verifies records below the configured level are dropped.
func TestNewStdout(t *testing.T) {
	var buf bytes.Buffer
	log, closer := New(config.LogConfig{Level: "warn"}, &buf)
	defer closer.Close()

	log.Info("hidden")
	log.Warn("shown", "streak", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "streak=4") {
		t.Errorf("warn record missing: %q", out)
	}
}

// TestNewFile verifies a configured file receives the output instead of stdout.
func TestNewFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "lifehub.log")

	log, closer := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	log.Info("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("stdout got %q, want nothing", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q", data)
	}
}
