// Package logging builds the zap logger shared by the CLI, TUI and daemon.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/dayburn/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", level)
	}
}

// New builds a logger from cfg. A non-empty levelOverride wins over the
// configured level. Console output goes to stderr so it never mixes with
// command output on stdout.
func New(cfg config.LoggingConfig, levelOverride string) (*zap.Logger, error) {
	level := cfg.Level
	if levelOverride != "" {
		level = levelOverride
	}
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	switch cfg.Format {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	case "json":
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(zapLevel)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
			}
		}
		// Plain encoder for files: color codes are noise there.
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zc.OutputPaths = []string{cfg.File}
		zc.ErrorOutputPaths = []string{cfg.File}
	}

	return zc.Build()
}
