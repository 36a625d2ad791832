package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/dayburn/internal/report"
	"github.com/theirongolddev/dayburn/internal/store"
	"github.com/theirongolddev/dayburn/internal/tui"
	"github.com/theirongolddev/dayburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines on stderr would tear the alt screen.
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(store.DataDir(), "dayburn-tui.log")
	}
	logger, err := newLogger(cfg, "")
	if err != nil {
		return err
	}

	s, err := openSessionWith(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	tf, err := report.ParseTimeframe(cfg.General.DefaultTimeframe)
	if err != nil {
		tf = report.Month
	}

	app := tui.NewApp(s.alloc, tui.Options{
		Categories: cfg.General.Categories,
		Timeframe:  tf,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
