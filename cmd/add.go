package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"github.com/spf13/cobra"
)

var flagCategory string

var addCmd = &cobra.Command{
	Use:   "add <description> <amount>",
	Short: "Log an expense for today",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagCategory, "category", "c", "Other", "Expense category")
	rootCmd.AddCommand(addCmd)
}

// canonicalCategory matches name against the configured categories
// ignoring case, so "food" files under "Food".
func canonicalCategory(name string, known []string) string {
	name = strings.TrimSpace(name)
	for _, k := range known {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := cli.ParseAmount(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	category := canonicalCategory(flagCategory, s.cfg.General.Categories)
	before := s.alloc.DailyAllocation()

	e, err := s.alloc.AddExpense(cmd.Context(), args[0], amount, category)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Logged %s for %s (%s).\n",
		cli.MoneyStyle.Render(cli.FormatMoney(e.Amount)), e.Description, e.Category)

	sum := s.alloc.Summary()
	if sum.State == model.StateUninitialized {
		hint("No budget set; the expense is recorded against an empty budget.")
		return nil
	}
	fmt.Printf("  Left today: %s\n", cli.FormatMoney(sum.RemainingToday))
	if after := sum.DailyAllocation; after != before {
		fmt.Println("  " + cli.WarnStyle.Render(fmt.Sprintf("Over today's allocation. Daily allocation is now %s (%s).",
			cli.FormatMoney(after), cli.FormatDelta(after-before))))
	}
	return nil
}
