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

func (a App) renderResultsTab(cw int) string {
	o := a.data.overview

	if a.query.MeetingKey == 0 && a.query.SessionKey == 0 {
		return components.Message(pipeline.MsgNoSelection, cw)
	}
	if o.Empty() {
		return components.Message(pipeline.MsgNoResults, cw)
	}

	var b strings.Builder
	if len(o.Results) > 0 {
		b.WriteString(components.ContentCard("Results", a.resultsBody(o.Results, cw), cw))
	} else {
		b.WriteString(components.Message(pipeline.MsgNoResults, cw))
	}
	if len(o.Grid) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Driver Grid", gridBody(o.Grid, cw), cw))
	}
	return b.String()
}

func (a App) resultsBody(results []pipeline.ResultRow, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)

	teamW := 18
	driverW := flexWidth(inner, 4, 1, 3, teamW, 12, 6, 9)
	cols := []column{
		{title: "Pos", width: 4},
		{title: "", width: 1},
		{title: "#", width: 3, right: true},
		{title: "Driver", width: driverW},
		{title: "Team", width: teamW},
		{title: "Gap", width: 12, right: true},
		{title: "Pts", width: 6, right: true},
		{title: "Status", width: 9},
	}

	rows := make([][]cell, 0, len(results))
	for _, r := range results {
		if !a.matchesSearch(r.Driver, r.Team) {
			continue
		}
		pos := cell{text: cli.FormatPosition(r.Position), bold: true}
		if r.Position.Valid && r.Position.Value <= 3 {
			pos.color = t.AccentBright
		}
		rows = append(rows, []cell{
			pos,
			swatch(r.Colour),
			plain(fmt.Sprintf("%d", r.DriverNumber)),
			plain(r.Driver),
			{text: r.Team, color: t.TextMuted},
			plain(r.Gap),
			{text: cli.FormatSeconds(r.Points, 0), bold: true},
			{text: r.Status, color: t.Orange},
		})
	}
	if len(rows) == 0 {
		return "No drivers match \"" + a.searchQuery + "\"."
	}
	return renderGrid(cols, rows)
}

// gridBody renders the driver grid as team-coloured chips.
func gridBody(grid []pipeline.GridCard, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)

	const chipW = 24
	perRow := max(1, (inner+1)/(chipW+1))
	gap := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var lines []string
	var row []string
	for i, g := range grid {
		chip := lipgloss.NewStyle().
			Foreground(t.Background).
			Background(lipgloss.Color(g.Colour)).
			Bold(true).
			Width(chipW).
			Render(truncStr(fmt.Sprintf(" %2d %s %s", g.Number, g.Acronym, g.Name), chipW))
		row = append(row, chip)
		if len(row) == perRow || i == len(grid)-1 {
			lines = append(lines, strings.Join(row, gap))
			row = nil
		}
	}
	return strings.Join(lines, "\n")
}
