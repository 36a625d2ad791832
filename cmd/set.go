package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagUntil string
	flagDays  int
)

var setCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Start a budget period running from today",
	Long: "Start a budget period running from today through --until (or for --days days).\n" +
		"The amount is spread evenly over every day of the period. Logged expenses are kept.",
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&flagUntil, "until", "", "Last day of the period (YYYY-MM-DD)")
	setCmd.Flags().IntVar(&flagDays, "days", 0, "Period length in days, counting today")
	setCmd.MarkFlagsMutuallyExclusive("until", "days")
	rootCmd.AddCommand(setCmd)
}

// periodEnd resolves --until or --days against today.
func periodEnd(today time.Time, until string, days int) (time.Time, error) {
	switch {
	case until != "":
		end, err := model.ParseDate(until)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --until %q (want YYYY-MM-DD)", until)
		}
		return end, nil
	case days > 0:
		return model.Day(today).AddDate(0, 0, days-1), nil
	case days < 0:
		return time.Time{}, fmt.Errorf("--days must be positive, got %d", days)
	}
	return time.Time{}, errors.New("set either --until or --days")
}

func runSet(cmd *cobra.Command, args []string) error {
	amount, err := cli.ParseAmount(args[0])
	if err != nil {
		return err
	}
	end, err := periodEnd(time.Now(), flagUntil, flagDays)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.alloc.SetBudget(cmd.Context(), amount, end)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Budget of %s set for %s (%s to %s).\n",
		cli.MoneyStyle.Render(cli.FormatMoney(p.TotalBudget)),
		cli.FormatDays(p.TotalDays()),
		cli.FormatDate(p.StartDate),
		cli.FormatDate(p.EndDate),
	)
	fmt.Printf("  Daily allocation: %s\n", cli.MoneyStyle.Render(cli.FormatMoney(p.AllocationPerDay)))
	return nil
}
