package tui

import (
	"fmt"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// progressionDrivers is how many drivers the points progression card traces.
const progressionDrivers = 6

func (a App) renderStandingsTab(cw int) string {
	t := theme.Active
	s := a.data.standings

	if len(s.Drivers) == 0 {
		return components.Message(fmt.Sprintf("No race results available for the %d season yet.", a.query.Year), cw)
	}

	leader, _ := s.Leader()
	leaderColor := lipgloss.Color(config.TeamColor(s.DriverTeams[leader.Name], ""))
	cards := []components.Metric{
		{Label: "Leader", Value: leader.Name, Delta: s.DriverTeams[leader.Name], Color: leaderColor},
		{Label: "Points", Value: cli.FormatPoints(leader.Points), Delta: gapToSecond(s.Drivers)},
	}
	if len(s.Teams) > 0 {
		top := s.Teams[0]
		cards = append(cards, components.Metric{
			Label: "Constructors", Value: top.Name, Delta: cli.FormatPoints(top.Points) + " pts",
			Color: lipgloss.Color(config.TeamColor(top.Name, "")),
		})
	}
	cards = append(cards, components.Metric{
		Label: "Races", Value: fmt.Sprintf("%d", s.SessionsCounted),
		Delta: fmt.Sprintf("of %d race sessions", s.SessionsFound),
	})

	var b strings.Builder
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Drivers' Championship", a.driverStandings(s, cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Constructors' Championship", teamStandings(s, cw), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Drivers' Championship", a.driverStandings(s, widths[0]), widths[0]),
			components.ContentCard("Constructors' Championship", teamStandings(s, widths[1]), widths[1]),
		}))
	}
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Points Progression", progressionBody(s, cw), cw))

	if len(s.Races) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Points per Race (leader)", leaderPerRace(s, leader.Name, cw), cw))
	}

	if s.SessionsFound > s.SessionsCounted {
		muted := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
		b.WriteString("\n")
		b.WriteString(muted.Render(fmt.Sprintf(" %d race session(s) had no classification yet and were skipped.",
			s.SessionsFound-s.SessionsCounted)))
	}
	return b.String()
}

func gapToSecond(ds []model.Standing) string {
	if len(ds) < 2 {
		return ""
	}
	return cli.FormatPoints(ds[0].Points-ds[1].Points) + " ahead of " + ds[1].Name
}

func (a App) driverStandings(s model.Standings, outer int) string {
	inner := components.CardInnerWidth(outer)
	maxPts := s.Drivers[0].Points

	cols := []column{
		{title: "Pos", width: 3, right: true},
		{title: "", width: 1},
		{title: "Driver", width: 20},
		{title: "Pts", width: 5, right: true},
		{title: "W", width: 2, right: true},
		{title: "Pod", width: 3, right: true},
	}
	barW := flexWidth(inner, 3, 1, 20, 5, 2, 3)
	cols = append(cols, column{title: "", width: barW})

	rows := make([][]cell, 0, len(s.Drivers))
	for i, d := range s.Drivers {
		team := s.DriverTeams[d.Name]
		if !a.matchesSearch(d.Name, team) {
			continue
		}
		color := config.TeamColor(team, "")
		rows = append(rows, []cell{
			plain(fmt.Sprintf("%d", i+1)),
			swatch(color),
			{text: d.Name, bold: i == 0},
			{text: cli.FormatPoints(d.Points), bold: true},
			plain(fmt.Sprintf("%d", d.Wins)),
			plain(fmt.Sprintf("%d", d.Podiums)),
			{text: components.HBar(d.Points, maxPts, barW, lipgloss.Color(color)), raw: true},
		})
	}
	if len(rows) == 0 {
		return "No drivers match \"" + a.searchQuery + "\"."
	}
	return renderGrid(cols, rows)
}

func teamStandings(s model.Standings, outer int) string {
	if len(s.Teams) == 0 {
		return ""
	}
	inner := components.CardInnerWidth(outer)
	maxPts := s.Teams[0].Points

	barW := flexWidth(inner, 3, 1, 18, 5, 2)
	cols := []column{
		{title: "Pos", width: 3, right: true},
		{title: "", width: 1},
		{title: "Team", width: 18},
		{title: "Pts", width: 5, right: true},
		{title: "W", width: 2, right: true},
		{title: "", width: barW},
	}
	rows := make([][]cell, len(s.Teams))
	for i, team := range s.Teams {
		color := config.TeamColor(team.Name, "")
		rows[i] = []cell{
			plain(fmt.Sprintf("%d", i+1)),
			swatch(color),
			{text: team.Name, bold: i == 0},
			{text: cli.FormatPoints(team.Points), bold: true},
			plain(fmt.Sprintf("%d", team.Wins)),
			{text: components.HBar(team.Points, maxPts, barW, lipgloss.Color(color)), raw: true},
		}
	}
	return renderGrid(cols, rows)
}

// progressionBody traces cumulative points race by race for the top drivers.
func progressionBody(s model.Standings, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	const labelW, valueW = 20, 6
	lineW := max(8, inner-labelW-valueW-2)

	var lines []string
	for i, d := range s.Drivers {
		if i == progressionDrivers {
			break
		}
		series := pipeline.DriverSeries(s.Progression, d.Name)
		values := make([]float64, len(series))
		for j, p := range series {
			values[j] = p.Cumulative
		}
		color := lipgloss.Color(config.TeamColor(s.DriverTeams[d.Name], ""))
		lines = append(lines,
			labelStyle.Render(fmt.Sprintf("%-*s ", labelW, truncStr(d.Name, labelW)))+
				components.Sparkline(values, color, lineW)+
				valueStyle.Render(fmt.Sprintf(" %*s", valueW, cli.FormatPoints(d.Points))))
	}
	return strings.Join(lines, "\n")
}

// leaderPerRace charts the leader's points in each counted race.
func leaderPerRace(s model.Standings, leader string, outer int) string {
	var values []float64
	var labels []string
	for _, p := range pipeline.DriverSeries(s.Progression, leader) {
		values = append(values, p.Points)
		labels = append(labels, raceLabel(p.Race))
	}
	color := lipgloss.Color(config.TeamColor(s.DriverTeams[leader], ""))
	return components.BarChart(values, labels, color, components.CardInnerWidth(outer), 8)
}

// raceLabel shortens "Bahrain Grand Prix" to "BAH" for chart axes.
func raceLabel(race string) string {
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(race), "Grand Prix"))
	runes := []rune(strings.ToUpper(strings.ReplaceAll(name, " ", "")))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
