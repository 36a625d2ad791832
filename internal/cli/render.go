package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	// Exported for command output.
	MoneyStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	WarnStyle  = lipgloss.NewStyle().Foreground(ColorOrange)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed)
	MutedStyle = mutedStyle
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// LeftCols is the number of leading left-aligned columns. The rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// SeparatorRow renders as a horizontal rule inside a table.
var SeparatorRow = []string{"---"}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)
	leftCols := t.LeftCols
	if leftCols <= 0 {
		leftCols = 1
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
		return b.String()
	}

	line := func(cells []string, style lipgloss.Style, align bool) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			if align && i >= leftCols {
				cell = strings.Repeat(" ", pad) + cell
			} else {
				cell += strings.Repeat(" ", pad)
			}
			b.WriteString(style.Render(" " + cell + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		return b.String()
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(line(t.Headers, headerStyle, false))
		b.WriteString(rule("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == SeparatorRow[0] {
			b.WriteString(rule("├", "┼", "┤"))
			continue
		}
		b.WriteString(line(row, valueStyle, true))
	}
	b.WriteString(rule("╰", "┴", "╯"))

	return b.String()
}

func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		if w := lipgloss.Width(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == SeparatorRow[0] {
			continue
		}
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < numCols && w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// ShareColor maps the fraction of budget left (0..1) onto a red to green
// gradient.
func ShareColor(share float64) lipgloss.Color {
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	red := int(255 * (1 - share))
	green := int(255 * share)
	return lipgloss.Color(fmt.Sprintf("#%02X%02X00", red, green))
}

// RenderBudgetBar renders the remaining share of a budget as a colored bar
// followed by the percentage.
func RenderBudgetBar(share float64, width int) string {
	if width <= 0 {
		return ""
	}
	if share < 0 {
		share = 0
	}
	if share > 1 {
		share = 1
	}
	filled := int(share * float64(width))
	bar := lipgloss.NewStyle().Foreground(ShareColor(share)).Render(strings.Repeat("█", filled))
	track := dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("[%s%s] %s left", bar, track, FormatPercent(share))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders one labelled bar of a bar chart.
func RenderHorizontalBar(label string, labelWidth int, value, maxValue float64, maxWidth int) string {
	barLen := 0
	if maxValue > 0 {
		barLen = int(value / maxValue * float64(maxWidth))
	}
	if barLen < 0 {
		barLen = 0
	}
	if barLen > maxWidth {
		barLen = maxWidth
	}
	return fmt.Sprintf("  %-*s %s %s",
		labelWidth, Truncate(label, labelWidth),
		MoneyStyle.Render(strings.Repeat("█", barLen))+strings.Repeat(" ", maxWidth-barLen),
		FormatMoney(value),
	)
}
