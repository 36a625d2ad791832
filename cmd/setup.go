package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/dayburn/internal/config"
	"github.com/theirongolddev/dayburn/internal/report"
	"github.com/theirongolddev/dayburn/internal/store"
	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form fields before they are applied to a Config.
type setupValues struct {
	currency   string
	timeframe  string
	categories string
	dsn        string
	theme      string
}

func setupValuesFrom(cfg config.Config) setupValues {
	return setupValues{
		currency:   cfg.General.Currency,
		timeframe:  cfg.General.DefaultTimeframe,
		categories: strings.Join(cfg.General.Categories, ", "),
		dsn:        cfg.Database.DSN,
		theme:      cfg.Appearance.Theme,
	}
}

// apply copies the form values into cfg. Blank categories fall back to
// the defaults.
func (v setupValues) apply(cfg *config.Config) {
	cfg.General.Currency = strings.TrimSpace(v.currency)
	cfg.General.DefaultTimeframe = v.timeframe
	cfg.General.Categories = splitCategories(v.categories)
	if len(cfg.General.Categories) == 0 {
		cfg.General.Categories = append([]string(nil), config.DefaultCategories...)
	}
	cfg.Database.DSN = strings.TrimSpace(v.dsn)
	cfg.Appearance.Theme = v.theme
}

func splitCategories(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		c := strings.TrimSpace(part)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

func newSetupForm(vals *setupValues) *huh.Form {
	tfOpts := make([]huh.Option[string], 0, len(report.Timeframes))
	for _, tf := range report.Timeframes {
		tfOpts = append(tfOpts, huh.NewOption(string(tf), string(tf)))
	}
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to dayburn!").
				Description("Set a budget, spend against a daily allocation, and see what is left."),
			huh.NewInput().
				Title("Currency symbol").
				Placeholder("Ksh.").
				Value(&vals.currency),
			huh.NewSelect[string]().
				Title("Default report timeframe").
				Options(tfOpts...).
				Value(&vals.timeframe),
			huh.NewInput().
				Title("Categories").
				Description("Comma separated").
				Value(&vals.categories),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Database").
				Description("Leave blank for "+store.DefaultPath()+", or enter a postgres:// URL").
				Value(&vals.dsn),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	vals := setupValuesFrom(cfg)
	if err := newSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	vals.apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `dayburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
