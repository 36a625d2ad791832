package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/dayburn/internal/config"
	"github.com/theirongolddev/dayburn/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency:          %s\n", cfg.General.Currency)
	fmt.Printf("    Default timeframe: %s\n", cfg.General.DefaultTimeframe)
	fmt.Printf("    Categories:        %s\n", strings.Join(cfg.General.Categories, ", "))
	fmt.Println()

	fmt.Println("  [Database]")
	dsn := resolveDSN(cfg)
	switch {
	case dsn == "":
		fmt.Printf("    DSN: %s (default)\n", store.DefaultPath())
	case flagDB != "":
		fmt.Printf("    DSN: %s (--db)\n", store.Redact(dsn))
	case os.Getenv(config.EnvDatabaseURL) != "":
		fmt.Printf("    DSN: %s (%s)\n", store.Redact(dsn), config.EnvDatabaseURL)
	default:
		fmt.Printf("    DSN: %s\n", store.Redact(dsn))
	}
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", config.GetLogLevel(cfg))
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	if cfg.Logging.File != "" {
		fmt.Printf("    File:   %s\n", cfg.Logging.File)
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `dayburn setup` to reconfigure.")
	return nil
}
