// Package cmd implements the dayburn CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/theirongolddev/dayburn/internal/budget"
	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/config"
	"github.com/theirongolddev/dayburn/internal/logging"
	"github.com/theirongolddev/dayburn/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagDB       string
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "dayburn",
	Short:         "Daily budget tracker",
	Long:          "Spread a budget evenly over the days until a date and track spending against each day's allocation.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database DSN or SQLite path (default: "+store.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress hints and progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// session is what every budget command works against.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	alloc  *budget.Allocator
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// loadConfig reads .env and the config file and applies display settings.
func loadConfig() (config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return config.DefaultConfig(), err
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	cli.SetCurrency(cfg.General.Currency)
	return cfg, nil
}

// newLogger builds the logger, with --log-level winning over the
// environment and the config file.
func newLogger(cfg config.Config, fallback string) (*zap.Logger, error) {
	level := flagLogLevel
	if level == "" {
		level = config.GetLogLevel(cfg)
	}
	if level == "" {
		level = fallback
	}
	return logging.New(cfg.Logging, level)
}

// resolveDSN picks the store from --db, the environment, then the config file.
func resolveDSN(cfg config.Config) string {
	if flagDB != "" {
		return flagDB
	}
	return config.GetDatabaseDSN(cfg)
}

// openSession is the shared loading path used by all budget commands.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, "")
	if err != nil {
		return nil, err
	}
	return openSessionWith(ctx, cfg, logger)
}

func openSessionWith(ctx context.Context, cfg config.Config, logger *zap.Logger) (*session, error) {
	dsn := resolveDSN(cfg)
	st, err := store.Open(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("opening budget store %s: %w", store.Redact(dsn), err)
	}

	alloc, err := budget.New(ctx, st, budget.WithLogger(logger))
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, store: st, alloc: alloc}, nil
}

func hint(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
