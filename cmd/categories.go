package cmd

import (
	"fmt"

	"github.com/theirongolddev/dayburn/internal/cli"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	totals := s.alloc.CategoryTotals()
	if len(totals) == 0 {
		fmt.Println("\n  No expenses recorded.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SPENDING BY CATEGORY"))
	fmt.Println()

	rows := make([][]string, 0, len(totals))
	labelWidth := 0
	for _, ct := range totals {
		rows = append(rows, []string{
			ct.Category,
			cli.FormatNumber(int64(ct.Count)),
			cli.FormatMoney(ct.Amount),
			fmt.Sprintf("%.1f%%", ct.SharePercent),
		})
		if len(ct.Category) > labelWidth {
			labelWidth = len(ct.Category)
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Category", "Count", "Spent", "Share"},
		Rows:    rows,
	}))

	fmt.Println()
	maxValue := totals[0].Amount
	for _, ct := range totals {
		fmt.Println(cli.RenderHorizontalBar(ct.Category, labelWidth, ct.Amount, maxValue, 30))
	}
	return nil
}
