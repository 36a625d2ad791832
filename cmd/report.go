package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagReportTimeframe string
	flagTop             int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Spending statistics, weekly averages and top expenses",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportTimeframe, "timeframe", "t", "", "week, month or all (default from config)")
	reportCmd.Flags().IntVar(&flagTop, "top", 5, "Number of largest expenses to list")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	tf, err := timeframeOrDefault(flagReportTimeframe, s.cfg.General.DefaultTimeframe)
	if err != nil {
		return err
	}

	now := time.Now()
	expenses := report.FilterByTimeframe(s.alloc.Expenses(), tf, now)
	stats := report.Stats(s.alloc.Expenses(), tf, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SPENDING REPORT  %s", tf)))
	fmt.Println()

	if stats.ExpenseCount == 0 {
		fmt.Println("  No expenses in the selected timeframe.")
		return nil
	}

	biggest := "-"
	if stats.Biggest != nil {
		biggest = fmt.Sprintf("%s (%s)", cli.Truncate(stats.Biggest.Description, 24), cli.FormatMoney(stats.Biggest.Amount))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Period", fmt.Sprintf("%s to %s", cli.FormatDate(stats.From), cli.FormatDate(stats.To))},
			{"Total Spent", cli.FormatMoney(stats.TotalSpent)},
			{"Expenses", cli.FormatNumber(int64(stats.ExpenseCount))},
			{"Active Days", cli.FormatNumber(int64(stats.ActiveDays))},
			{"Average / Active Day", cli.FormatMoney(stats.AverageDaily)},
			cli.SeparatorRow,
			{"Biggest Expense", biggest},
			{"Most Frequent", stats.MostFrequentCategory},
			{"Trend", fmt.Sprintf("%s (%s/day)", report.TrendLabel(stats.Trend), cli.FormatDelta(stats.Trend))},
		},
	}))

	if len(stats.Weekly) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(stats.Weekly))
		for _, w := range stats.Weekly {
			rows = append(rows, []string{
				cli.FormatDate(w.WeekStart),
				cli.FormatDate(w.WeekStart.AddDate(0, 0, 6)),
				cli.FormatMoney(w.Average),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    "Weekly Averages",
			Headers:  []string{"Week Of", "Through", "Avg / Day"},
			Rows:     rows,
			LeftCols: 2,
		}))
	}

	if flagTop > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:    fmt.Sprintf("Top %d Expenses", flagTop),
			Headers:  []string{"Date", "Description", "Category", "Amount"},
			Rows:     expenseRows(report.TopExpenses(expenses, flagTop)),
			LeftCols: 3,
		}))
	}
	return nil
}

func expenseRows(expenses []model.Expense) [][]string {
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []string{
			cli.FormatDate(e.Date),
			cli.Truncate(e.Description, 32),
			e.Category,
			cli.FormatMoney(e.Amount),
		})
	}
	return rows
}
