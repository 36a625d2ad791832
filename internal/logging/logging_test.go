package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/dayburn/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) succeeded, want error")
	}
}

func TestNew_OverrideWins(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "error", Format: "console"}, "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug disabled, want override to enable it")
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}, ""); err == nil {
		t.Fatal("New with format xml succeeded, want error")
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dayburn.log")
	logger, err := New(config.LoggingConfig{Level: "info", Format: "json", File: path}, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("budget set", zap.String("op", "set_budget"))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"op":"set_budget"`) {
		t.Fatalf("log file missing op field: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line written at info level: %s", out)
	}
}
