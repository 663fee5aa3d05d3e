package tui

import (
	"fmt"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPositionsTab(cw int) string {
	if !a.query.HasSession() {
		return sessionMessage("position data", cw)
	}
	v := a.data.positions
	if len(v.Samples) == 0 {
		return components.Message(pipeline.MsgNoPositions, cw)
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Position Changes", positionChangesBody(v.Changes, cw), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Position History", positionTraceBody(v, cw), cw))
	return b.String()
}

func positionChangesBody(changes []pipeline.PositionChange, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)

	driverW := flexWidth(inner, 1, 3, 18, 5, 6, 6)
	cols := []column{
		{title: "", width: 1},
		{title: "#", width: 3, right: true},
		{title: "Driver", width: driverW},
		{title: "Team", width: 18},
		{title: "Start", width: 5, right: true},
		{title: "Latest", width: 6, right: true},
		{title: "+/-", width: 6, right: true},
	}

	rows := make([][]cell, len(changes))
	for i, c := range changes {
		gained := cell{text: cli.FormatGained(c.Gained), bold: true, color: t.TextMuted}
		switch {
		case c.Gained > 0:
			gained.color = t.Green
		case c.Gained < 0:
			gained.color = t.Red
		}
		rows[i] = []cell{
			swatch(c.Colour),
			plain(fmt.Sprintf("%d", c.DriverNumber)),
			plain(c.Driver),
			{text: c.Team, color: t.TextMuted},
			plain(fmt.Sprintf("P%d", c.Start)),
			{text: fmt.Sprintf("P%d", c.Latest), bold: true},
			gained,
		}
	}
	return renderGrid(cols, rows)
}

// positionTraceBody draws each driver's position over time. Values are
// negated so gaining places reads as the line rising.
func positionTraceBody(v pipeline.PositionsView, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const labelW = 20
	lineW := max(8, inner-labelW-1)

	series := map[int][]float64{}
	for _, s := range v.Samples {
		if s.Position.Valid {
			series[s.DriverNumber] = append(series[s.DriverNumber], -float64(s.Position.Value))
		}
	}

	lines := make([]string, 0, len(v.Changes))
	for _, c := range v.Changes {
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s ", labelW, truncStr(fmt.Sprintf("P%-2d %s", c.Latest, c.Driver), labelW)))+
				components.Sparkline(series[c.DriverNumber], lipgloss.Color(c.Colour), lineW))
	}
	return strings.Join(lines, "\n")
}
