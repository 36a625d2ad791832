package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		buf.WriteRune(blocks[idx])
	}
	return style.Render(buf.String())
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // shown after the bar, e.g. a formatted amount
}

// HBarChart renders horizontal bars scaled to the largest value so the
// whole chart fits in width.
func HBarChart(bars []Bar, width int, color lipgloss.Color) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	for _, b := range bars {
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(b.Text))
		peak = max(peak, b.Value)
	}
	if labelW > 16 {
		labelW = 16
	}
	barMax := width - labelW - textW - 2
	if barMax < 4 {
		barMax = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := 0
		if peak > 0 {
			n = int(b.Value / peak * float64(barMax))
		}
		n = min(max(n, 0), barMax)
		if n == 0 && b.Value > 0 {
			n = 1
		}

		label := b.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:labelW-1]) + "…"
		}
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, label))+
				spaceStyle.Render(" ")+
				barStyle.Render(strings.Repeat("█", n))+
				spaceStyle.Render(strings.Repeat(" ", barMax-n+1))+
				textStyle.Render(strings.Repeat(" ", textW-lipgloss.Width(b.Text))+b.Text))
	}
	return strings.Join(lines, "\n")
}
