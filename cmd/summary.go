package cmd

import (
	"fmt"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Budget summary for today and the period",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	sum := s.alloc.Summary()
	if sum.State == model.StateUninitialized {
		fmt.Println("\n  No budget set.")
		hint("Run `dayburn set <amount> --days N` to start a period.")
		if len(sum.Expenses) == 0 {
			return nil
		}
	}

	fmt.Println()
	if sum.State == model.StateActive {
		fmt.Println(cli.RenderTitle(fmt.Sprintf("BUDGET  %s to %s",
			cli.FormatDate(sum.StartDate), cli.FormatDate(sum.EndDate))))
	} else {
		fmt.Println(cli.RenderTitle("BUDGET"))
	}
	fmt.Println()

	rows := [][]string{
		{"Total Budget", cli.FormatMoney(sum.TotalBudget)},
		{"Total Spent", cli.FormatMoney(sum.TotalSpent)},
		{"Remaining", cli.FormatMoney(sum.TotalRemaining)},
	}
	if sum.Savings > 0 {
		rows = append(rows, []string{"Saved", cli.FormatMoney(sum.Savings)})
	}
	rows = append(rows,
		cli.SeparatorRow,
		[]string{"Daily Allocation", cli.FormatMoney(sum.DailyAllocation)},
		[]string{"Left Today", cli.FormatMoney(sum.RemainingToday)},
	)
	if !sum.Earmark.IsZero() {
		rows = append(rows, []string{"Carried to " + cli.FormatDate(sum.Earmark.Date), cli.FormatMoney(sum.Earmark.Amount)})
	}
	if sum.State == model.StateActive {
		rows = append(rows,
			cli.SeparatorRow,
			[]string{"Days Left", fmt.Sprintf("%s of %s", cli.FormatDays(sum.DaysRemaining), cli.FormatDays(sum.TotalDays))},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if sum.State == model.StateActive {
		fmt.Println()
		fmt.Printf("  %s\n", cli.RenderBudgetBar(sum.RemainingShare(), 30))
	}
	if sum.TotalRemaining < 0 {
		fmt.Println()
		fmt.Println("  " + cli.WarnStyle.Render("Over budget by "+cli.FormatMoney(-sum.TotalRemaining)))
	}
	return nil
}
