package components

import (
	"strings"

	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. A notice replaces the key
// hints; isErr colors it as a failure.
func RenderStatusBar(width int, notice string, isErr bool, right string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [a]dd  [b]udget  [u]nderflow  [x]reset  [r]eload  [?]help  [q]uit"
	if notice != "" {
		color := t.Green
		if isErr {
			color = t.Red
		}
		left = " " + lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(notice)
	}
	if right != "" {
		right += " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
