package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"

	"github.com/spf13/cobra"
)

var flagDailyDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Spend per day against the daily allocation",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDailyDays, "days", "n", 14, "Number of days to show")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	if flagDailyDays < 1 {
		return fmt.Errorf("--days must be positive, got %d", flagDailyDays)
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	until := model.Day(time.Now())
	since := until.AddDate(0, 0, -(flagDailyDays - 1))
	days := report.AggregateDays(s.alloc.Expenses(), s.alloc.CurrentPeriod(), since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPEND  Last %dd", flagDailyDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	spent := make([]float64, len(days))
	for i, d := range days {
		left := "-"
		if d.Allocation > 0 {
			left = cli.FormatMoney(d.Remaining())
			if d.Spent > d.Allocation {
				left = cli.WarnStyle.Render(cli.FormatMoney(d.Allocation - d.Spent))
			}
		}
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Expenses)),
			cli.FormatMoney(d.Spent),
			cli.FormatMoney(d.Allocation),
			left,
		})
		// Sparkline reads oldest to newest.
		spent[len(days)-1-i] = d.Spent
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Day", "Expenses", "Spent", "Allocation", "Left"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	fmt.Printf("  Trend  %s\n", cli.RenderSparkline(spent))
	return nil
}
