package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"

	"gopkg.in/yaml.v3"
)

// Tuesday.
var today = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

func sampleExpenses() []model.Expense {
	return []model.Expense{
		{ID: 1, Description: "Rent share", Amount: 900, Category: "Utilities", Date: day(-40)},
		{ID: 2, Description: "Groceries", Amount: 120, Category: "Food", Date: day(-8)},
		{ID: 3, Description: "Bus", Amount: 30, Category: "Transportation", Date: day(-6)},
		{ID: 4, Description: "Lunch", Amount: 50, Category: "Food", Date: day(-1)},
		{ID: 5, Description: "Cinema", Amount: 80, Category: "Entertainment", Date: day(-1)},
		{ID: 6, Description: `Snacks, "big" pack`, Amount: 20, Category: "Food", Date: day(0)},
	}
}

func TestParseTimeframe(t *testing.T) {
	for in, want := range map[string]Timeframe{"week": Week, " Month ": Month, "all": All, "": All} {
		got, err := ParseTimeframe(in)
		if err != nil || got != want {
			t.Errorf("ParseTimeframe(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseTimeframe("year"); err == nil {
		t.Error("ParseTimeframe(year) succeeded, want error")
	}
}

func TestFilterByTimeframe(t *testing.T) {
	exp := sampleExpenses()
	tests := []struct {
		tf   Timeframe
		want []int64
	}{
		{Week, []int64{3, 4, 5, 6}},
		{Month, []int64{2, 3, 4, 5, 6}},
		{All, []int64{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		got := FilterByTimeframe(exp, tt.tf, today)
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %d expenses, want %d", tt.tf, len(got), len(tt.want))
		}
		for i, e := range got {
			if e.ID != tt.want[i] {
				t.Fatalf("%s: expense[%d].ID = %d, want %d", tt.tf, i, e.ID, tt.want[i])
			}
		}
	}
}

func TestFilterByCategory(t *testing.T) {
	got := FilterByCategory(sampleExpenses(), "food")
	if len(got) != 3 {
		t.Fatalf("FilterByCategory(food) = %d expenses, want 3", len(got))
	}
	if n := len(FilterByCategory(sampleExpenses(), "")); n != 6 {
		t.Fatalf("empty category filter = %d, want 6", n)
	}
}

func TestAggregateCategories(t *testing.T) {
	got := AggregateCategories(FilterByTimeframe(sampleExpenses(), Week, today))
	want := []struct {
		cat   string
		amt   float64
		count int
	}{
		{"Entertainment", 80, 1},
		{"Food", 70, 2},
		{"Transportation", 30, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	var share float64
	for i, w := range want {
		if got[i].Category != w.cat || got[i].Amount != w.amt || got[i].Count != w.count {
			t.Errorf("category[%d] = %+v, want %s %.0f x%d", i, got[i], w.cat, w.amt, w.count)
		}
		share += got[i].SharePercent
	}
	if math.Abs(share-100) > 1e-9 {
		t.Errorf("shares sum to %.6f, want 100", share)
	}
	if len(AggregateCategories(nil)) != 0 {
		t.Error("AggregateCategories(nil) not empty")
	}
}

func TestAggregateDays_FillsGapsWithAllocation(t *testing.T) {
	p := model.Period{
		TotalBudget:      700,
		StartDate:        day(-3),
		EndDate:          day(3),
		AllocationPerDay: 100,
		TotalRemaining:   550,
		Earmark:          model.Earmark{Date: day(-1), Amount: 25},
	}
	days := AggregateDays(sampleExpenses(), p, day(-4), day(0))
	if len(days) != 5 {
		t.Fatalf("got %d days, want 5", len(days))
	}
	if !days[0].Date.Equal(day(0)) || !days[4].Date.Equal(day(-4)) {
		t.Fatalf("order = %s..%s, want most recent first", days[0].Date, days[4].Date)
	}

	yesterday := days[1]
	if yesterday.Spent != 130 || yesterday.Expenses != 2 || yesterday.Allocation != 125 {
		t.Fatalf("yesterday = %+v, want spent 130, 2 expenses, allocation 125", yesterday)
	}
	if yesterday.Remaining() != 0 {
		t.Errorf("yesterday Remaining = %.2f, want 0", yesterday.Remaining())
	}
	if before := days[4]; before.Allocation != 0 || before.Spent != 0 {
		t.Errorf("day before period = %+v, want zero allocation", before)
	}
	if days[2].Remaining() != 100 {
		t.Errorf("quiet day Remaining = %.2f, want 100", days[2].Remaining())
	}
}

func TestStats(t *testing.T) {
	st := Stats(sampleExpenses(), Week, today)

	if st.TotalSpent != 180 || st.ExpenseCount != 4 {
		t.Fatalf("TotalSpent/Count = %.2f/%d, want 180/4", st.TotalSpent, st.ExpenseCount)
	}
	if st.ActiveDays != 3 {
		t.Fatalf("ActiveDays = %d, want 3", st.ActiveDays)
	}
	if st.AverageDaily != 60 {
		t.Fatalf("AverageDaily = %.2f, want 60", st.AverageDaily)
	}
	if st.Biggest == nil || st.Biggest.ID != 5 {
		t.Fatalf("Biggest = %+v, want the cinema expense", st.Biggest)
	}
	if st.MostFrequentCategory != "Food" {
		t.Fatalf("MostFrequentCategory = %q, want Food", st.MostFrequentCategory)
	}
	if !st.From.Equal(day(-6)) || !st.To.Equal(day(0)) {
		t.Fatalf("range = %s..%s, want %s..%s", st.From, st.To, day(-6), day(0))
	}

	empty := Stats(nil, All, today)
	if empty.MostFrequentCategory != "None" || empty.Biggest != nil || empty.AverageDaily != 0 {
		t.Fatalf("empty stats = %+v", empty)
	}
}

func TestTrend(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{5}, 0},
		{[]float64{10, 20, 30}, 10},
		{[]float64{30, 20, 10}, -10},
		{[]float64{7, 7, 7, 7}, 0},
	}
	for _, tt := range tests {
		if got := Trend(tt.values); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Trend(%v) = %.4f, want %.4f", tt.values, got, tt.want)
		}
	}
	if TrendLabel(0.5) != "increasing" || TrendLabel(-0.5) != "decreasing" || TrendLabel(0.05) != "stable" {
		t.Error("TrendLabel thresholds wrong")
	}
}

func TestWeeklyAverages(t *testing.T) {
	if ws := WeekStart(today); ws.Weekday() != time.Monday || !ws.Equal(day(-1)) {
		t.Fatalf("WeekStart(Tuesday) = %s, want the Monday before", ws)
	}
	if ws := WeekStart(day(-1)); !ws.Equal(day(-1)) {
		t.Fatalf("WeekStart(Monday) = %s, want same day", ws)
	}

	got := WeeklyAverages(FilterByTimeframe(sampleExpenses(), Week, today))
	if len(got) != 2 {
		t.Fatalf("got %d weeks, want 2", len(got))
	}
	// Previous week: only the bus ride.
	if !got[0].WeekStart.Equal(day(-8)) || got[0].Average != 30 {
		t.Errorf("week[0] = %+v, want start %s avg 30", got[0], day(-8))
	}
	// This week: 130 on Monday, 20 on Tuesday.
	if !got[1].WeekStart.Equal(day(-1)) || got[1].Average != 75 {
		t.Errorf("week[1] = %+v, want start %s avg 75", got[1], day(-1))
	}
}

func TestTopExpensesAndNewestFirst(t *testing.T) {
	top := TopExpenses(sampleExpenses(), 2)
	if len(top) != 2 || top[0].ID != 1 || top[1].ID != 2 {
		t.Fatalf("TopExpenses = %+v, want IDs 1, 2", top)
	}

	newest := NewestFirst(sampleExpenses())
	ids := make([]int64, len(newest))
	for i, e := range newest {
		ids[i] = e.ID
	}
	want := []int64{6, 5, 4, 3, 2, 1}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("NewestFirst IDs = %v, want %v", ids, want)
		}
	}
}

func sampleSummary() model.Summary {
	exp := sampleExpenses()
	var spent float64
	for _, e := range exp {
		spent += e.Amount
	}
	return model.Summary{
		State:           model.StateActive,
		TotalBudget:     2000,
		DailyAllocation: 100,
		TotalRemaining:  2000 - spent,
		TotalSpent:      spent,
		StartDate:       day(-45),
		EndDate:         day(5),
		DaysRemaining:   6,
		Expenses:        exp,
	}
}

func TestWriteCSV(t *testing.T) {
	doc := Build(sampleSummary(), Week, today.Add(15*time.Hour))
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want header + 4", len(records))
	}
	if strings.Join(records[0], ",") != "Date,Description,Amount,Category" {
		t.Fatalf("header = %v", records[0])
	}
	first := records[1]
	if first[0] != "2026-03-10" || first[1] != `Snacks, "big" pack` || first[2] != "20.00" || first[3] != "Food" {
		t.Fatalf("first row = %v, want newest expense", first)
	}
}

func TestWriteJSONAndYAML(t *testing.T) {
	doc := Build(sampleSummary(), Month, today)

	var jbuf bytes.Buffer
	if err := Write(&jbuf, FormatJSON, doc); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	var fromJSON Document
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if fromJSON.Stats.ExpenseCount != 5 || fromJSON.Budget.TotalBudget != 2000 {
		t.Fatalf("json doc = %+v", fromJSON)
	}
	if fromJSON.Stats.Biggest == nil || fromJSON.Stats.Biggest.Description != "Groceries" {
		t.Fatalf("json biggest = %+v, want Groceries", fromJSON.Stats.Biggest)
	}

	var ybuf bytes.Buffer
	if err := Write(&ybuf, FormatYAML, doc); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	var fromYAML Document
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(fromYAML.Expenses) != 5 || fromYAML.Budget.EndDate != "2026-03-15" {
		t.Fatalf("yaml doc = %+v", fromYAML)
	}
}

func TestSummaryText(t *testing.T) {
	cli.SetCurrency("Ksh.")
	doc := Build(sampleSummary(), All, today)
	out := SummaryText(doc)

	for _, want := range []string{
		"BUDGET SUMMARY REPORT",
		"Generated on: March 10, 2026",
		"Total Budget: Ksh. 2,000.00",
		"Total Spent: Ksh. 1,200.00",
		"Utilities: Ksh. 900.00 (75.0%)",
		"Most frequent category: Food",
		"Report period: Jan 29 to Mar 10, 2026",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFileNameAndFormats(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 5, 9, 0, time.UTC)
	if got := FileName(at, FormatText); got != "BudgetReport_20260310_140509.txt" {
		t.Fatalf("FileName = %q", got)
	}
	if got := FileName(at, FormatCSV); got != "BudgetReport_20260310_140509.csv" {
		t.Fatalf("FileName = %q", got)
	}
	if f, err := ParseFormat("YML"); err != nil || f != FormatYAML {
		t.Fatalf("ParseFormat(YML) = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("ParseFormat(pdf) succeeded, want error")
	}
}
