package components

import (
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indexes, in display order.
const (
	TabStandings = iota
	TabResults
	TabLaps
	TabStints
	TabPits
	TabPositions
	TabWeather
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Standings", Key: 's', KeyPos: 0},
	{Name: "Results", Key: 'e', KeyPos: 1},
	{Name: "Laps", Key: 'l', KeyPos: 0},
	{Name: "Stints", Key: 't', KeyPos: 1},
	{Name: "Pits", Key: 'p', KeyPos: 0},
	{Name: "Positions", Key: 'o', KeyPos: 1},
	{Name: "Weather", Key: 'w', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // x is not in "Settings"
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := nameStyle.Render(" ")

	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		return space +
			nameStyle.Render(tab.Name[:tab.KeyPos]) +
			keyStyle.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
			nameStyle.Render(tab.Name[tab.KeyPos+1:]) +
			space
	}
	return space + nameStyle.Render(tab.Name) +
		dimStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimStyle.Render("]") +
		space
}

// TabVisualWidth returns the rendered width of a tab, for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the single-row tab bar with the given active index,
// filled to width.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	row := strings.Join(parts, sep)

	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(row)
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
