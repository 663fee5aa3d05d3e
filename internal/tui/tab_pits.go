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

func (a App) renderPitsTab(cw int) string {
	t := theme.Active
	if !a.query.HasSession() {
		return sessionMessage("pit stop data", cw)
	}
	v := a.data.pits
	if v.Count == 0 {
		return components.Message(pipeline.MsgNoPits, cw)
	}

	fastestBy := ""
	if len(v.Stops) > 0 && v.Stops[0].Duration.Valid {
		fastestBy = v.Stops[0].Driver
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Pit stops", Value: fmt.Sprintf("%d", v.Count)},
		{Label: "Fastest", Value: cli.FormatMeasure(v.Fastest, "s"), Delta: fastestBy, Color: t.Green},
		{Label: "Average", Value: cli.FormatMeasure(v.Average, "s")},
	}, cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Pit Stop Durations", pitsBody(v, cw), cw))
	return b.String()
}

// pitsBody lists stops fastest first, each with a duration bar. Untimed
// stops sort last and draw an empty bar.
func pitsBody(v pipeline.PitsView, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	lapStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var slowest float64
	for _, s := range v.Stops {
		if s.Duration.Valid {
			slowest = max(slowest, s.Duration.Value)
		}
	}

	const labelW, lapW = 20, 7
	barW := max(8, inner-labelW-lapW-12)

	lines := make([]string, 0, len(v.Stops))
	for _, s := range v.Stops {
		value := 0.0
		if s.Duration.Valid {
			value = s.Duration.Value
		}
		lap := "-"
		if s.Lap > 0 {
			lap = fmt.Sprintf("L%d", s.Lap)
		}
		lines = append(lines,
			lapStyle.Render(fmt.Sprintf("%-*s", lapW, lap))+
				components.ValueBar(s.Driver, value, slowest, cli.FormatMeasure(s.Duration, "s"),
					labelW, barW, lipgloss.Color(s.Colour)))
	}
	return strings.Join(lines, "\n")
}
