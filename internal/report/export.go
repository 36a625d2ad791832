package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "txt":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, text, json or yaml)", s)
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// FileName returns the export file name for a report generated at t.
func FileName(t time.Time, f Format) string {
	return fmt.Sprintf("BudgetReport_%s.%s", t.Format("20060102_150405"), f.Ext())
}

// Document is the structured report written by the JSON and YAML exporters.
type Document struct {
	GeneratedAt string        `json:"generated_at" yaml:"generated_at"`
	Currency    string        `json:"currency" yaml:"currency"`
	Timeframe   string        `json:"timeframe" yaml:"timeframe"`
	Budget      BudgetSection `json:"budget" yaml:"budget"`
	Stats       StatsSection  `json:"stats" yaml:"stats"`
	Categories  []CategoryRow `json:"categories" yaml:"categories"`
	Weekly      []WeeklyRow   `json:"weekly,omitempty" yaml:"weekly,omitempty"`
	Expenses    []ExpenseRow  `json:"expenses" yaml:"expenses"`

	// Unrounded inputs for the text renderer.
	summary   model.Summary
	stats     model.ReportStats
	generated time.Time
}

// BudgetSection mirrors the budget summary with amounts rounded to cents.
type BudgetSection struct {
	State           string  `json:"state" yaml:"state"`
	TotalBudget     float64 `json:"total_budget" yaml:"total_budget"`
	TotalSpent      float64 `json:"total_spent" yaml:"total_spent"`
	TotalRemaining  float64 `json:"total_remaining" yaml:"total_remaining"`
	DailyAllocation float64 `json:"daily_allocation" yaml:"daily_allocation"`
	RemainingToday  float64 `json:"remaining_today" yaml:"remaining_today"`
	Savings         float64 `json:"savings" yaml:"savings"`
	StartDate       string  `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate         string  `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	DaysRemaining   int     `json:"days_remaining" yaml:"days_remaining"`
}

// StatsSection holds the report figures for the selected timeframe.
type StatsSection struct {
	TotalSpent           float64     `json:"total_spent" yaml:"total_spent"`
	ExpenseCount         int         `json:"expense_count" yaml:"expense_count"`
	ActiveDays           int         `json:"active_days" yaml:"active_days"`
	AverageDaily         float64     `json:"average_daily" yaml:"average_daily"`
	Biggest              *ExpenseRow `json:"biggest,omitempty" yaml:"biggest,omitempty"`
	MostFrequentCategory string      `json:"most_frequent_category" yaml:"most_frequent_category"`
	Trend                string      `json:"trend" yaml:"trend"`
	TrendSlope           float64     `json:"trend_slope" yaml:"trend_slope"`
}

// CategoryRow is one category total.
type CategoryRow struct {
	Category     string  `json:"category" yaml:"category"`
	Amount       float64 `json:"amount" yaml:"amount"`
	Count        int     `json:"count" yaml:"count"`
	SharePercent float64 `json:"share_percent" yaml:"share_percent"`
}

// WeeklyRow is one weekly average.
type WeeklyRow struct {
	WeekStart string  `json:"week_start" yaml:"week_start"`
	Average   float64 `json:"average" yaml:"average"`
}

// ExpenseRow is one exported expense.
type ExpenseRow struct {
	ID          int64   `json:"id" yaml:"id"`
	Date        string  `json:"date" yaml:"date"`
	Description string  `json:"description" yaml:"description"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Category    string  `json:"category" yaml:"category"`
}

// Build assembles a report over the summary's expenses within tf.
func Build(s model.Summary, tf Timeframe, now time.Time) Document {
	expenses := NewestFirst(FilterByTimeframe(s.Expenses, tf, now))
	stats := Stats(s.Expenses, tf, now)

	doc := Document{
		GeneratedAt: now.Format(time.RFC3339),
		Currency:    cli.Currency(),
		Timeframe:   string(tf),
		Budget: BudgetSection{
			State:           string(s.State),
			TotalBudget:     round2(s.TotalBudget),
			TotalSpent:      round2(s.TotalSpent),
			TotalRemaining:  round2(s.TotalRemaining),
			DailyAllocation: round2(s.DailyAllocation),
			RemainingToday:  round2(s.RemainingToday),
			Savings:         round2(s.Savings),
			DaysRemaining:   s.DaysRemaining,
		},
		Stats: StatsSection{
			TotalSpent:           round2(stats.TotalSpent),
			ExpenseCount:         stats.ExpenseCount,
			ActiveDays:           stats.ActiveDays,
			AverageDaily:         round2(stats.AverageDaily),
			MostFrequentCategory: stats.MostFrequentCategory,
			Trend:                TrendLabel(stats.Trend),
			TrendSlope:           round2(stats.Trend),
		},
		Categories: []CategoryRow{},
		Expenses:   make([]ExpenseRow, 0, len(expenses)),
		summary:    s,
		stats:      stats,
		generated:  now,
	}
	if s.State == model.StateActive {
		doc.Budget.StartDate = s.StartDate.Format(model.DateLayout)
		doc.Budget.EndDate = s.EndDate.Format(model.DateLayout)
	}
	if stats.Biggest != nil {
		row := expenseRow(*stats.Biggest)
		doc.Stats.Biggest = &row
	}
	for _, ct := range AggregateCategories(expenses) {
		doc.Categories = append(doc.Categories, CategoryRow{
			Category:     ct.Category,
			Amount:       round2(ct.Amount),
			Count:        ct.Count,
			SharePercent: round2(ct.SharePercent),
		})
	}
	for _, w := range stats.Weekly {
		doc.Weekly = append(doc.Weekly, WeeklyRow{
			WeekStart: w.WeekStart.Format(model.DateLayout),
			Average:   round2(w.Average),
		})
	}
	for _, e := range expenses {
		doc.Expenses = append(doc.Expenses, expenseRow(e))
	}
	return doc
}

func expenseRow(e model.Expense) ExpenseRow {
	return ExpenseRow{
		ID:          e.ID,
		Date:        e.Date.Format(model.DateLayout),
		Description: e.Description,
		Amount:      round2(e.Amount),
		Category:    e.Category,
	}
}

// Write renders doc to w in format f.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, doc)
	case FormatText:
		_, err := io.WriteString(w, SummaryText(doc))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", f)
}

// writeCSV writes the expense list, newest first.
func writeCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Description", "Amount", "Category"}); err != nil {
		return err
	}
	for _, e := range doc.Expenses {
		record := []string{
			e.Date,
			e.Description,
			decimal.NewFromFloat(e.Amount).StringFixed(2),
			e.Category,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SummaryText renders the plain-text summary report.
func SummaryText(doc Document) string {
	var b strings.Builder
	s := doc.summary

	b.WriteString("BUDGET SUMMARY REPORT\n")
	fmt.Fprintf(&b, "Generated on: %s\n", doc.generated.Format("January 02, 2006"))
	fmt.Fprintf(&b, "Timeframe: %s\n\n", doc.Timeframe)

	fmt.Fprintf(&b, "Total Budget: %s\n", cli.FormatMoney(s.TotalBudget))
	fmt.Fprintf(&b, "Total Spent: %s\n", cli.FormatMoney(s.TotalSpent))
	fmt.Fprintf(&b, "Remaining Budget: %s\n", cli.FormatMoney(s.TotalRemaining))
	fmt.Fprintf(&b, "Daily Allocation: %s\n", cli.FormatMoney(s.DailyAllocation))
	if s.Savings > 0 {
		fmt.Fprintf(&b, "Saved: %s\n", cli.FormatMoney(s.Savings))
	}
	if s.State == model.StateActive {
		fmt.Fprintf(&b, "Budget period: %s to %s (%s left)\n",
			s.StartDate.Format(model.DateLayout), s.EndDate.Format(model.DateLayout), cli.FormatDays(s.DaysRemaining))
	}
	b.WriteString("\n")

	b.WriteString("SPENDING BY CATEGORY\n")
	if len(doc.Categories) == 0 {
		b.WriteString("No expenses recorded\n")
	}
	for _, c := range doc.Categories {
		fmt.Fprintf(&b, "%s: %s (%.1f%%)\n", c.Category, cli.FormatMoney(c.Amount), c.SharePercent)
	}
	b.WriteString("\n")

	st := doc.stats
	if st.ExpenseCount > 0 {
		b.WriteString("HIGHLIGHTS\n")
		fmt.Fprintf(&b, "Average daily spend: %s over %s\n", cli.FormatMoney(st.AverageDaily), cli.FormatDays(st.ActiveDays))
		if st.Biggest != nil {
			fmt.Fprintf(&b, "Biggest expense: %s (%s, %s)\n",
				st.Biggest.Description, cli.FormatMoney(st.Biggest.Amount), st.Biggest.Date.Format(model.DateLayout))
		}
		fmt.Fprintf(&b, "Most frequent category: %s\n", st.MostFrequentCategory)
		fmt.Fprintf(&b, "Spending trend: %s\n", TrendLabel(st.Trend))
		b.WriteString("\n")
		fmt.Fprintf(&b, "Report period: %s to %s\n", st.From.Format("Jan 02"), st.To.Format("Jan 02, 2006"))
	}

	return b.String()
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
