package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the budget period and every expense",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !flagYes {
		confirmed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Reset all data?").
					Description("The budget period and every logged expense are deleted. This cannot be undone.").
					Affirmative("Reset").
					Negative("Cancel").
					Value(&confirmed),
			),
		).WithTheme(huh.ThemeDracula())
		if err := form.Run(); err != nil {
			return fmt.Errorf("reset prompt: %w", err)
		}
		if !confirmed {
			fmt.Println("\n  Reset cancelled.")
			return nil
		}
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.alloc.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("\n  All budget data has been reset.")
	return nil
}
