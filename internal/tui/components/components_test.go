package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	got := LayoutRow(10, 3)
	want := []int{4, 3, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LayoutRow(10, 3) = %v, want %v", got, want)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i, line := range lines {
		if !strings.Contains(line, "\x1b[") {
			t.Errorf("line %d has no ANSI codes: %q", i, line)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricCardRow([]Metric{
		{Label: "Budget", Value: "Ksh. 700.00"},
		{Label: "Spent", Value: "Ksh. 40.00", Note: "today"},
		{Label: "Left", Value: "Ksh. 660.00", Color: theme.Active.Green},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Fatalf("line %d width = %d, want 90", i, w)
		}
	}
	if !strings.Contains(row, "Ksh. 660.00") {
		t.Fatal("metric row missing value")
	}
}

func TestBudgetBar(t *testing.T) {
	out := BudgetBar("Budget", 0.25, 8, 20)
	if !strings.Contains(out, "25% left") {
		t.Fatalf("BudgetBar missing percentage: %q", out)
	}
	if !strings.Contains(BudgetBar("Budget", 3, 8, 20), "100% left") {
		t.Fatal("BudgetBar share above 1 should clamp to 100%")
	}
}

func TestDayMeter(t *testing.T) {
	if out := DayMeter("Today", 50, 100, 8, 20); !strings.Contains(out, "50% used") {
		t.Fatalf("DayMeter = %q, want 50%% used", out)
	}
	if out := DayMeter("Today", 150, 100, 8, 20); !strings.Contains(out, "150% used") {
		t.Fatalf("DayMeter overspend = %q, want 150%% used", out)
	}
}

func TestHBarChart(t *testing.T) {
	out := HBarChart([]Bar{
		{Label: "Food", Value: 300, Text: "300"},
		{Label: "Transportation", Value: 150, Text: "150"},
		{Label: "Other", Value: 0, Text: "0"},
	}, 41, theme.Active.Accent)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("bar lines = %d, want 3", len(lines))
	}
	food, transport := strings.Count(lines[0], "█"), strings.Count(lines[1], "█")
	if food != 2*transport {
		t.Fatalf("bar lengths = %d and %d, want 2:1", food, transport)
	}
	if strings.Contains(lines[2], "█") {
		t.Fatal("zero value should draw no bar")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 41 {
			t.Fatalf("line %d width = %d, want 41", i, w)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('2'); got != 1 {
		t.Fatalf("TabIdxByKey('2') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestRenderStatusBar(t *testing.T) {
	bar := RenderStatusBar(100, "", false, "updated 09:30")
	if !strings.Contains(bar, "[a]dd") || !strings.Contains(bar, "updated 09:30") {
		t.Fatalf("status bar missing hints: %q", bar)
	}
	if w := lipgloss.Width(bar); w != 100 {
		t.Fatalf("status bar width = %d, want 100", w)
	}
	if bar := RenderStatusBar(100, "storage failed", true, ""); strings.Contains(bar, "[a]dd") {
		t.Fatal("notice should replace key hints")
	}
}
