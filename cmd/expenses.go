package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagFilterCategory string
	flagTimeframe      string
)

var expensesCmd = &cobra.Command{
	Use:     "expenses",
	Aliases: []string{"ls"},
	Short:   "List logged expenses, newest first",
	RunE:    runExpenses,
}

func init() {
	expensesCmd.Flags().StringVarP(&flagFilterCategory, "category", "c", "", "Only this category")
	expensesCmd.Flags().StringVarP(&flagTimeframe, "timeframe", "t", "", "week, month or all (default from config)")
	rootCmd.AddCommand(expensesCmd)
}

// timeframeOrDefault resolves --timeframe against the configured default.
func timeframeOrDefault(flag, configured string) (report.Timeframe, error) {
	if flag == "" {
		flag = configured
	}
	return report.ParseTimeframe(flag)
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	tf, err := timeframeOrDefault(flagTimeframe, s.cfg.General.DefaultTimeframe)
	if err != nil {
		return err
	}

	expenses := report.FilterByTimeframe(s.alloc.Expenses(), tf, time.Now())
	expenses = report.FilterByCategory(expenses, flagFilterCategory)
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses found.")
		return nil
	}
	expenses = report.NewestFirst(expenses)

	title := fmt.Sprintf("EXPENSES  %s", tf)
	if flagFilterCategory != "" {
		title += "  " + flagFilterCategory
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	rows := append(expenseRows(expenses), cli.SeparatorRow, []string{
		"Total", fmt.Sprintf("%s expenses", cli.FormatNumber(int64(len(expenses)))), "", cli.FormatMoney(total),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Description", "Category", "Amount"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}
