package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/dayburn/internal/cli"
	"github.com/theirongolddev/dayburn/internal/model"
	"github.com/theirongolddev/dayburn/internal/report"
	"github.com/theirongolddev/dayburn/internal/tui/components"
	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  dayburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Scroll expenses"},
			{"t", "Cycle report timeframe"},
		}},
		{"Budget", []struct{ key, desc string }{
			{"a", "Add expense"},
			{"b", "Set budget"},
			{"u", "Adjust today's unspent allocation"},
			{"x", "Reset all data"},
			{"r", "Reload from storage"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	right := "updated " + a.loadedAt.Format("15:04")
	if a.busy {
		right = a.spinner.View() + " saving"
	}
	statusBar := components.RenderStatusBar(w, a.notice, a.noticeErr, right)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderTodayTab(cw)
	case 1:
		content = a.renderExpensesTab(cw, contentH)
	case 2:
		content = a.renderReportTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderTodayTab(cw int) string {
	t := theme.Active
	s := a.summary
	var b strings.Builder

	if s.State == model.StateUninitialized {
		body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
			Render("No budget set. Press b to start a period.")
		if len(s.Expenses) > 0 {
			body += "\n" + lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
				Render(fmt.Sprintf("%s spent without a budget.", cli.FormatMoney(s.TotalSpent)))
		}
		b.WriteString(components.ContentCard("Budget", body, cw))
		b.WriteString("\n")
		b.WriteString(a.renderRecent(cw))
		return b.String()
	}

	remainingColor := t.ForShare(s.RemainingShare())
	todayColor := t.Green
	if s.RemainingToday <= 0 {
		todayColor = t.Red
	}
	savedNote := ""
	if s.Savings > 0 {
		savedNote = "saved " + cli.FormatMoney(s.Savings)
	}
	earmarkNote := ""
	if !s.Earmark.IsZero() {
		earmarkNote = fmt.Sprintf("+%s on %s", cli.FormatMoney(s.Earmark.Amount), s.Earmark.Date.Format("Jan 02"))
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Budget", Value: cli.FormatMoney(s.TotalBudget),
			Note: fmt.Sprintf("%s to %s", s.StartDate.Format("Jan 02"), s.EndDate.Format("Jan 02"))},
		{Label: "Spent", Value: cli.FormatMoney(s.TotalSpent),
			Note: fmt.Sprintf("%d expenses", len(s.Expenses))},
		{Label: "Remaining", Value: cli.FormatMoney(s.TotalRemaining), Note: savedNote, Color: remainingColor},
		{Label: "Left Today", Value: cli.FormatMoney(s.RemainingToday),
			Note: cli.FormatMoney(s.DailyAllocation) + "/day", Color: todayColor},
	}, cw))
	b.WriteString("\n")

	innerW := components.CardInnerWidth(cw)
	labelW := 10
	barW := max(innerW-labelW-12, 10)
	spentToday := spentOn(s.Expenses, a.now())
	bars := components.BudgetBar("Period", s.RemainingShare(), labelW, barW) + "\n" +
		components.DayMeter("Today", spentToday, s.DailyAllocation+s.Earmark.For(a.now()), labelW, barW)
	footer := fmt.Sprintf("%s left of %s", cli.FormatDays(s.DaysRemaining), cli.FormatDays(s.TotalDays))
	if earmarkNote != "" {
		footer += "  ·  " + earmarkNote
	}
	bars += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(footer)
	b.WriteString(components.ContentCard("Progress", bars, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("By Category", a.categoryChart(components.CardInnerWidth(halves[0])), halves[0]),
		a.renderRecent(halves[1]),
	}))
	return b.String()
}

func (a App) categoryChart(width int) string {
	t := theme.Active
	if len(a.totals) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No expenses yet")
	}
	bars := make([]components.Bar, 0, len(a.totals))
	for _, ct := range a.totals {
		bars = append(bars, components.Bar{Label: ct.Category, Value: ct.Amount, Text: cli.FormatMoney(ct.Amount)})
	}
	return components.HBarChart(bars, width, t.Accent)
}

func (a App) renderRecent(width int) string {
	t := theme.Active
	recent := report.NewestFirst(a.summary.Expenses)
	if len(recent) > 6 {
		recent = recent[:6]
	}
	if len(recent) == 0 {
		return components.ContentCard("Recent", lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("Press a to log an expense"), width)
	}

	inner := components.CardInnerWidth(width)
	lines := make([]string, 0, len(recent))
	for _, e := range recent {
		lines = append(lines, expenseLine(e, inner, false))
	}
	return components.ContentCard("Recent", strings.Join(lines, "\n"), width)
}

// expenseLine lays out date, description, category and amount in width.
func expenseLine(e model.Expense, width int, selected bool) string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.Border
	}
	amount := cli.FormatMoney(e.Amount)
	date := e.Date.Format("Jan 02")
	cat := cli.Truncate(e.Category, 14)
	descW := max(width-len(date)-lipgloss.Width(amount)-16-3, 6)
	desc := cli.Truncate(e.Description, descW)

	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
	money := lipgloss.NewStyle().Foreground(t.Orange).Background(bg)

	left := dim.Render(date+" ") + text.Render(desc) + dim.Render("  "+cat)
	pad := max(width-lipgloss.Width(left)-lipgloss.Width(amount), 1)
	return left + text.Render(strings.Repeat(" ", pad)) + money.Render(amount)
}

func (a App) renderExpensesTab(cw, h int) string {
	t := theme.Active
	expenses := report.NewestFirst(a.summary.Expenses)
	if len(expenses) == 0 {
		return components.ContentCard("Expenses", lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).
			Render("No expenses recorded"), cw)
	}

	visible := max(h-4, 1)
	start := 0
	if a.scroll >= visible {
		start = a.scroll - visible + 1
	}
	end := min(start+visible, len(expenses))

	inner := components.CardInnerWidth(cw)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, expenseLine(expenses[i], inner, i == a.scroll))
	}
	title := fmt.Sprintf("Expenses  %d-%d of %d  ·  total %s",
		start+1, end, len(expenses), cli.FormatMoney(a.summary.TotalSpent))
	return components.ContentCard(title, strings.Join(lines, "\n"), cw)
}

func (a App) renderReportTab(cw int) string {
	t := theme.Active
	st := a.stats
	var b strings.Builder

	if st.ExpenseCount == 0 {
		return components.ContentCard(fmt.Sprintf("Report  %s  (t to change)", a.timeframe),
			lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No expenses in this timeframe"), cw)
	}

	biggest := "-"
	if st.Biggest != nil {
		biggest = cli.FormatMoney(st.Biggest.Amount)
	}
	biggestNote := ""
	if st.Biggest != nil {
		biggestNote = cli.Truncate(st.Biggest.Description, 20)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Spent (" + string(a.timeframe) + ")", Value: cli.FormatMoney(st.TotalSpent),
			Note: fmt.Sprintf("%d expenses", st.ExpenseCount)},
		{Label: "Avg / Active Day", Value: cli.FormatMoney(st.AverageDaily),
			Note: cli.FormatDays(st.ActiveDays)},
		{Label: "Biggest", Value: biggest, Note: biggestNote},
		{Label: "Most Frequent", Value: st.MostFrequentCategory, Note: "trend " + report.TrendLabel(st.Trend)},
	}, cw))
	b.WriteString("\n")

	spent := make([]float64, len(a.days))
	for i, d := range a.days {
		spent[len(a.days)-1-i] = d.Spent
	}
	b.WriteString(components.ContentCard(fmt.Sprintf("Daily Spend (%dd)", trendDays),
		components.Sparkline(spent, t.Accent), cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	weekly := make([]string, 0, len(st.Weekly))
	dim := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	val := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	for _, w := range st.Weekly {
		weekly = append(weekly, dim.Render("Week of "+w.WeekStart.Format("Jan 02")+"  ")+val.Render(cli.FormatMoney(w.Average)+"/day"))
	}

	top := report.TopExpenses(report.FilterByTimeframe(a.summary.Expenses, a.timeframe, a.now()), 5)
	inner := components.CardInnerWidth(halves[1])
	topLines := make([]string, 0, len(top))
	for _, e := range top {
		topLines = append(topLines, expenseLine(e, inner, false))
	}

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Weekly Averages", strings.Join(weekly, "\n"), halves[0]),
		components.ContentCard("Top Expenses", strings.Join(topLines, "\n"), halves[1]),
	}))
	return b.String()
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
