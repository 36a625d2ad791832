package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/dayburn/internal/budget"
	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"github.com/spf13/cobra"
)

var flagOption string

var adjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Decide what happens to today's unspent allocation",
	Long: "Apply an underflow adjustment to the part of today's allocation not yet spent:\n" +
		"  reallocate  spread it over the remaining days\n" +
		"  next_day    add it to tomorrow only\n" +
		"  save        move it out of the budget into savings\n" +
		"At most one adjustment applies per day.",
	RunE: runAdjust,
}

func init() {
	adjustCmd.Flags().StringVarP(&flagOption, "option", "o", string(model.Reallocate), "reallocate, next_day or save")
	rootCmd.AddCommand(adjustCmd)
}

func runAdjust(cmd *cobra.Command, _ []string) error {
	opt, err := model.ParseUnderflowOption(flagOption)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.alloc.AdjustForUnderflow(cmd.Context(), opt)
	if errors.Is(err, budget.ErrAlreadyAdjusted) {
		fmt.Println("\n  Today's surplus was already adjusted.")
		return nil
	}
	if err != nil {
		return err
	}
	if !res.Applied {
		fmt.Println("\n  Nothing left over today; no adjustment made.")
		return nil
	}

	fmt.Printf("\n  %s of unspent allocation ", cli.MoneyStyle.Render(cli.FormatMoney(res.Surplus)))
	switch res.Option {
	case model.Reallocate:
		fmt.Printf("spread over %s. Daily allocation is now %s.\n",
			cli.FormatDays(res.RemainingDays), cli.FormatMoney(res.Period.AllocationPerDay))
	case model.NextDay:
		fmt.Printf("carried to %s.\n", cli.FormatDate(res.Period.Earmark.Date))
	case model.Save:
		fmt.Printf("saved. Total saved: %s.\n", cli.FormatMoney(res.Period.Savings))
	}
	return nil
}
