// Package config loads dayburn settings from a TOML file, a .env file and
// the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvDatabaseURL = "DAYBURN_DATABASE_URL"
	EnvLogLevel    = "DAYBURN_LOG_LEVEL"
	EnvConfigDir   = "DAYBURN_CONFIG_DIR"
)

// DefaultCategories seeds the category picker.
var DefaultCategories = []string{"Food", "Transportation", "Entertainment", "Utilities", "Shopping", "Other"}

// Config holds all dayburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Currency         string   `toml:"currency"`
	DefaultTimeframe string   `toml:"default_timeframe"`
	Categories       []string `toml:"categories"`
}

// DatabaseConfig selects the record store. An empty DSN means the default
// SQLite file; a postgres:// URL selects PostgreSQL.
type DatabaseConfig struct {
	DSN string `toml:"dsn,omitempty"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
}

// DaemonConfig holds settings for the background HTTP service.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency:         "Ksh.",
			DefaultTimeframe: "month",
			Categories:       append([]string(nil), DefaultCategories...),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8791",
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dayburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dayburn")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// LoadEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.General.Categories) == 0 {
		cfg.General.Categories = append([]string(nil), DefaultCategories...)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// GetDatabaseDSN returns the DSN from env var or config, in that order.
func GetDatabaseDSN(cfg Config) string {
	if dsn := os.Getenv(EnvDatabaseURL); dsn != "" {
		return dsn
	}
	return cfg.Database.DSN
}

// GetLogLevel returns the log level from env var or config, in that order.
func GetLogLevel(cfg Config) string {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		return strings.ToLower(lvl)
	}
	return cfg.Logging.Level
}
