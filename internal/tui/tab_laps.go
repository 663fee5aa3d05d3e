package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderLapsTab(cw int) string {
	t := theme.Active
	if !a.query.HasSession() {
		return sessionMessage("lap times", cw)
	}
	v := a.data.laps
	if len(v.Rows) == 0 {
		return components.Message(pipeline.MsgNoLaps, cw)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total laps", Value: fmt.Sprintf("%d", v.TotalLaps)},
		{Label: "Fastest lap", Value: cli.FormatOptLap(v.Fastest), Delta: fmt.Sprintf("lap %d", v.FastestLap), Color: t.Purple},
		{Label: "Fastest driver", Value: v.FastestDriver},
		{Label: "Drivers", Value: fmt.Sprintf("%d", len(v.Series))},
	}, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Lap Times", lapSeriesBody(v, cw), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Lap Time Distribution", lapSpreadBody(v.Spread, cw), cw))
	return b.String()
}

// lapSeriesBody draws one sparkline per driver, lap by lap, with their best.
func lapSeriesBody(v pipeline.LapsView, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	bestStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	fastestStyle := lipgloss.NewStyle().Foreground(t.Purple).Background(t.Surface).Bold(true)

	const labelW, bestW = 18, 9
	lineW := max(8, inner-labelW-bestW-2)

	lines := make([]string, 0, len(v.Series))
	for _, s := range v.Series {
		best := math.Inf(1)
		for _, sec := range s.Seconds {
			best = math.Min(best, sec)
		}
		style := bestStyle
		if s.Driver == v.FastestDriver {
			style = fastestStyle
		}
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s ", labelW, truncStr(s.Driver, labelW)))+
				components.Sparkline(s.Seconds, lipgloss.Color(s.Colour), lineW)+
				style.Render(fmt.Sprintf(" %*s", bestW, cli.FormatLapTime(best))))
	}
	return strings.Join(lines, "\n")
}

// lapSpreadBody draws min / median / max whiskers on a shared axis.
func lapSpreadBody(spread []pipeline.LapSpread, outer int) string {
	inner := components.CardInnerWidth(outer)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range spread {
		if s.Count == 0 {
			continue
		}
		lo = math.Min(lo, s.Min)
		hi = math.Max(hi, s.Max)
	}

	const nameW, timeW = 18, 9
	barW := flexWidth(inner, nameW, timeW, timeW, timeW)
	cols := []column{
		{title: "Driver", width: nameW},
		{title: "Min", width: timeW, right: true},
		{title: "Median", width: timeW, right: true},
		{title: "Max", width: timeW, right: true},
		{title: "", width: barW},
	}

	rows := make([][]cell, 0, len(spread))
	for _, s := range spread {
		if s.Count == 0 {
			continue
		}
		rows = append(rows, []cell{
			{text: s.Driver, color: lipgloss.Color(s.Colour)},
			plain(cli.FormatLapTime(s.Min)),
			{text: cli.FormatLapTime(s.Median), bold: true},
			plain(cli.FormatLapTime(s.Max)),
			{text: components.RangeBar(s.Min, s.Median, s.Max, lo, hi, barW, lipgloss.Color(s.Colour)), raw: true},
		})
	}
	return renderGrid(cols, rows)
}
