package components

import (
	"fmt"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders the loading bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clampPct(pct)
	filled := clampInt(int(pct*float64(width)), 0, width)

	barColor := t.Accent
	if pct >= 0.8 {
		barColor = t.AccentBright
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ValueBar renders a labelled bar of value against maxVal, followed by the
// formatted value: one row of a ranked list such as pit stop durations.
func ValueBar(label string, value, maxVal float64, formatted string, labelW, barWidth int, color lipgloss.Color) string {
	t := theme.Active

	pct := 0.0
	if maxVal > 0 {
		pct = clampPct(value / maxVal)
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.SurfaceBright)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(pct) +
		spaceStyle.Render(" ") +
		valueStyle.Render(formatted)
}

func clampPct(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
