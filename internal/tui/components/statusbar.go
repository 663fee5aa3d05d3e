package components

import (
	"fmt"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	Updated     string // age of the loaded data, e.g. "2m ago"
	Loading     bool
	Warnings    int
	LastWarning string
}

// RenderStatusBar renders the bottom status bar. The latest fetch warning
// takes the middle when there is room.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" ") +
		keyStyle.Render("f") + base.Render(" filter  ") +
		keyStyle.Render("r") + base.Render(" refresh  ") +
		keyStyle.Render("?") + base.Render(" help  ") +
		keyStyle.Render("q") + base.Render(" quit")

	right := ""
	switch {
	case s.Loading:
		right = "loading… "
	case s.Updated != "":
		right = fmt.Sprintf("updated %s ", s.Updated)
	}
	rightR := base.Render(right)

	middle := ""
	if s.Warnings > 0 {
		middle = fmt.Sprintf("  ⚠ %d", s.Warnings)
		if s.LastWarning != "" {
			middle += " · " + s.LastWarning
		}
	}
	room := width - lipgloss.Width(left) - lipgloss.Width(rightR) - 2
	if room < 0 {
		room = 0
	}
	if lipgloss.Width(middle) > room {
		middle = truncate(middle, room)
	}
	middleR := warnStyle.Render(middle)

	padding := width - lipgloss.Width(left) - lipgloss.Width(middleR) - lipgloss.Width(rightR)
	if padding < 0 {
		padding = 0
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).
		Render(left + middleR + base.Render(spaces(padding)) + rightR)
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// truncate shortens s to at most limit cells, ending in an ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
