package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Fatalf("Load = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Fatal("Exists = true for empty config dir")
	}
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv(EnvConfigDir, filepath.Join(t.TempDir(), "dayburn"))

	cfg := DefaultConfig()
	cfg.General.Currency = "$"
	cfg.General.Categories = []string{"Rent", "Food"}
	cfg.Database.DSN = "postgres://localhost/budget"
	cfg.Daemon.EventsBuffer = 50

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)

	data := "[general]\ncurrency = \"EUR\"\n\n[logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Currency != "EUR" {
		t.Fatalf("Currency = %q, want EUR", cfg.General.Currency)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Fatalf("Logging = %+v, want level debug with default format", cfg.Logging)
	}
	if !reflect.DeepEqual(cfg.General.Categories, DefaultCategories) {
		t.Fatalf("Categories = %v, want defaults", cfg.General.Categories)
	}
	if cfg.Daemon.Addr == "" {
		t.Fatal("Daemon.Addr lost its default")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, dir)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[general\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded on malformed TOML, want error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.DSN = "/from/config.db"
	cfg.Logging.Level = "warn"

	t.Setenv(EnvDatabaseURL, "")
	t.Setenv(EnvLogLevel, "")
	if got := GetDatabaseDSN(cfg); got != "/from/config.db" {
		t.Fatalf("GetDatabaseDSN = %q, want config value", got)
	}
	if got := GetLogLevel(cfg); got != "warn" {
		t.Fatalf("GetLogLevel = %q, want warn", got)
	}

	t.Setenv(EnvDatabaseURL, "postgres://env/db")
	t.Setenv(EnvLogLevel, "DEBUG")
	if got := GetDatabaseDSN(cfg); got != "postgres://env/db" {
		t.Fatalf("GetDatabaseDSN = %q, want env value", got)
	}
	if got := GetLogLevel(cfg); got != "debug" {
		t.Fatalf("GetLogLevel = %q, want debug", got)
	}
}

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer func() { _ = os.Chdir(wd) }()

	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv without .env: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DAYBURN_TEST_ONLY=loaded\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("DAYBURN_TEST_ONLY", "")
	_ = os.Unsetenv("DAYBURN_TEST_ONLY")
	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := os.Getenv("DAYBURN_TEST_ONLY"); got != "loaded" {
		t.Fatalf("DAYBURN_TEST_ONLY = %q, want loaded", got)
	}
}
