package components

import (
	"strings"

	"github.com/theirongolddev/dayburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Today", Key: '1'},
	{Name: "Expenses", Key: '2'},
	{Name: "Report", Key: '3'},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		style := inactiveStyle
		if i == activeIdx {
			style = activeStyle
		}
		parts = append(parts, keyStyle.Render(string(tab.Key))+style.Render(tab.Name))
	}

	row := lipgloss.NewStyle().Background(t.Surface).Width(width)
	return row.Render(" " + strings.Join(parts, keyStyle.Render(" ")))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
