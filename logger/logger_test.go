package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DOCBLOCK_LOG_LEVEL", "")
	if got := levelFromEnv(); got != "error" {
		t.Errorf("Expected fallback to LOG_LEVEL, got %q", got)
	}

	t.Setenv("DOCBLOCK_LOG_LEVEL", "debug")
	if got := levelFromEnv(); got != "debug" {
		t.Errorf("Expected DOCBLOCK_LOG_LEVEL to win, got %q", got)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info message to be filtered")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, `"time"`) {
		t.Errorf("Expected timestamped warn message, got %q", out)
	}
}

func TestInitWithOptions_File(t *testing.T) {
	t.Setenv("DOCBLOCK_LOG_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "docblock.log")

	log, err := InitWithOptions(path, false)
	if err != nil {
		t.Fatalf("InitWithOptions failed: %v", err)
	}
	log.Info().Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("Expected log file to contain message, got %q", data)
	}
}

func TestInitWithOptions_BadPath(t *testing.T) {
	if _, err := InitWithOptions(filepath.Join(t.TempDir(), "missing", "x.log"), false); err == nil {
		t.Error("Expected error for unwritable log path")
	}
}
