// Package report computes read-side aggregates over the expense log and
// renders them for export.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/dayburn/internal/model"
)

// Timeframe selects how far back a report looks.
type Timeframe string

const (
	Week  Timeframe = "week"
	Month Timeframe = "month"
	All   Timeframe = "all"
)

// Timeframes lists the accepted timeframes in display order.
var Timeframes = []Timeframe{Week, Month, All}

// ParseTimeframe validates a user-supplied timeframe name.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week, nil
	case Month:
		return Month, nil
	case All, "":
		return All, nil
	}
	return "", fmt.Errorf("unknown timeframe %q (want week, month or all)", s)
}

// Since returns the first day included by tf, or the zero time for All.
// Week covers the last seven days including today; Month covers the days
// after the same date one month back.
func (tf Timeframe) Since(today time.Time) time.Time {
	d := model.Day(today)
	switch tf {
	case Week:
		return d.AddDate(0, 0, -6)
	case Month:
		return d.AddDate(0, -1, 1)
	}
	return time.Time{}
}

// FilterByTimeframe returns expenses dated on or after tf's first day.
func FilterByTimeframe(expenses []model.Expense, tf Timeframe, today time.Time) []model.Expense {
	since := tf.Since(today)
	if since.IsZero() {
		return expenses
	}

	var result []model.Expense
	for _, e := range expenses {
		if model.Day(e.Date).Before(since) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// FilterByCategory returns expenses whose category matches, ignoring case.
func FilterByCategory(expenses []model.Expense, category string) []model.Expense {
	if category == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if strings.EqualFold(e.Category, category) {
			result = append(result, e)
		}
	}
	return result
}

// AggregateCategories totals spend per category, largest first.
func AggregateCategories(expenses []model.Expense) []model.CategoryTotal {
	catMap := make(map[string]*model.CategoryTotal)
	var total float64

	for _, e := range expenses {
		ct, ok := catMap[e.Category]
		if !ok {
			ct = &model.CategoryTotal{Category: e.Category}
			catMap[e.Category] = ct
		}
		ct.Amount += e.Amount
		ct.Count++
		total += e.Amount
	}

	result := make([]model.CategoryTotal, 0, len(catMap))
	for _, ct := range catMap {
		if total > 0 {
			ct.SharePercent = ct.Amount / total * 100
		}
		result = append(result, *ct)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Amount != result[j].Amount {
			return result[i].Amount > result[j].Amount
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// AggregateDays computes spend per calendar day against the period's
// allocation. When since and until are both set, every day in between is
// present so gaps show as zeros. Most recent first.
func AggregateDays(expenses []model.Expense, p model.Period, since, until time.Time) []model.DailyStats {
	dayMap := make(map[string]*model.DailyStats)

	get := func(day time.Time) *model.DailyStats {
		key := day.Format(model.DateLayout)
		ds, ok := dayMap[key]
		if !ok {
			ds = &model.DailyStats{Date: day, Allocation: allocationOn(p, day)}
			dayMap[key] = ds
		}
		return ds
	}

	for _, e := range expenses {
		day := model.Day(e.Date)
		if !since.IsZero() && day.Before(model.Day(since)) {
			continue
		}
		if !until.IsZero() && day.After(model.Day(until)) {
			continue
		}
		ds := get(day)
		ds.Spent += e.Amount
		ds.Expenses++
	}

	if !since.IsZero() && !until.IsZero() {
		end := model.Day(until)
		for day := model.Day(since); !day.After(end); day = day.AddDate(0, 0, 1) {
			get(day)
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// allocationOn is what the period grants for day, using the current
// allocation since past allocations are not versioned.
func allocationOn(p model.Period, day time.Time) float64 {
	if p.State() != model.StateActive {
		return 0
	}
	if day.Before(model.Day(p.StartDate)) || day.After(model.Day(p.EndDate)) {
		return 0
	}
	return p.AllocationPerDay + p.Earmark.For(day)
}

// Stats computes the report figures for expenses within tf.
func Stats(expenses []model.Expense, tf Timeframe, today time.Time) model.ReportStats {
	filtered := FilterByTimeframe(expenses, tf, today)

	stats := model.ReportStats{
		Timeframe:            string(tf),
		ExpenseCount:         len(filtered),
		MostFrequentCategory: "None",
	}
	if len(filtered) == 0 {
		return stats
	}

	totals := dailyTotals(filtered)
	counts := make(map[string]int)
	var biggest *model.Expense
	for i := range filtered {
		e := filtered[i]
		stats.TotalSpent += e.Amount
		counts[e.Category]++
		if biggest == nil || e.Amount > biggest.Amount {
			biggest = &e
		}
	}
	stats.Biggest = biggest
	stats.ActiveDays = len(totals)
	stats.AverageDaily = stats.TotalSpent / float64(stats.ActiveDays)
	stats.MostFrequentCategory = mostFrequent(counts)

	values := make([]float64, len(totals))
	for i, dt := range totals {
		values[i] = dt.amount
	}
	stats.Trend = Trend(values)
	stats.Weekly = WeeklyAverages(filtered)
	stats.From = totals[0].day
	stats.To = totals[len(totals)-1].day
	return stats
}

type dayTotal struct {
	day    time.Time
	amount float64
}

// dailyTotals sums expenses per day, oldest first.
func dailyTotals(expenses []model.Expense) []dayTotal {
	byDay := make(map[time.Time]float64)
	for _, e := range expenses {
		byDay[model.Day(e.Date)] += e.Amount
	}
	out := make([]dayTotal, 0, len(byDay))
	for d, amt := range byDay {
		out = append(out, dayTotal{day: d, amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

func mostFrequent(counts map[string]int) string {
	best, bestN := "None", 0
	for cat, n := range counts {
		if n > bestN || (n == bestN && cat < best) {
			best, bestN = cat, n
		}
	}
	return best
}

// Trend is the least-squares slope of values against their index. It is
// zero for fewer than two points.
func Trend(values []float64) float64 {
	n := float64(len(values))
	if len(values) < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / den
}

// TrendLabel describes a slope in words.
func TrendLabel(slope float64) string {
	switch {
	case slope > 0.1:
		return "increasing"
	case slope < -0.1:
		return "decreasing"
	default:
		return "stable"
	}
}

// WeekStart returns the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	d := model.Day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeeklyAverages averages daily spend over the active days of each
// Monday-based week, oldest week first. Weeks without spend are omitted.
func WeeklyAverages(expenses []model.Expense) []model.WeeklyAverage {
	type week struct {
		total float64
		days  map[time.Time]struct{}
	}
	weeks := make(map[time.Time]*week)
	for _, e := range expenses {
		ws := WeekStart(e.Date)
		w, ok := weeks[ws]
		if !ok {
			w = &week{days: make(map[time.Time]struct{})}
			weeks[ws] = w
		}
		w.total += e.Amount
		w.days[model.Day(e.Date)] = struct{}{}
	}

	result := make([]model.WeeklyAverage, 0, len(weeks))
	for ws, w := range weeks {
		result = append(result, model.WeeklyAverage{
			WeekStart: ws,
			Average:   w.total / float64(len(w.days)),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WeekStart.Before(result[j].WeekStart)
	})
	return result
}

// TopExpenses returns the n largest expenses, ties broken by ID.
func TopExpenses(expenses []model.Expense, n int) []model.Expense {
	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// NewestFirst returns a copy of expenses ordered by date descending, then
// by ID descending.
func NewestFirst(expenses []model.Expense) []model.Expense {
	sorted := make([]model.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := model.Day(sorted[i].Date), model.Day(sorted[j].Date)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}
