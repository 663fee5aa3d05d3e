package tui

import (
	"fmt"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// compoundOrder is the legend order.
var compoundOrder = []string{"SOFT", "MEDIUM", "HARD", "INTERMEDIATE", "WET"}

func (a App) renderStintsTab(cw int) string {
	if !a.query.HasSession() {
		return sessionMessage("stints", cw)
	}
	v := a.data.stints
	if len(v.Rows) == 0 {
		return components.Message(pipeline.MsgNoStints, cw)
	}
	return components.ContentCard("Tyre Strategy", stintsBody(v, cw), cw)
}

// stintsBody draws one Gantt row per driver, in first-appearance order.
func stintsBody(v pipeline.StintsView, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const labelW = 18
	chartW := max(10, inner-labelW-1)
	maxLap := max(1, v.MaxLap)

	byDriver := map[string][]components.Segment{}
	var order []string
	for _, r := range v.Rows {
		if !r.LapStart.Valid || !r.LapEnd.Valid {
			continue
		}
		if _, ok := byDriver[r.Driver]; !ok {
			order = append(order, r.Driver)
		}
		mark := rune(0)
		if c := strings.ToUpper(r.Compound); c != "" {
			mark = []rune(c)[0]
		}
		byDriver[r.Driver] = append(byDriver[r.Driver], components.Segment{
			Start: r.LapStart.Value,
			End:   r.LapEnd.Value,
			Color: lipgloss.Color(r.Colour),
			Mark:  mark,
		})
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-*s ", labelW, "")))
	b.WriteString(dimStyle.Render(lapAxis(maxLap, chartW)))
	for _, name := range order {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, truncStr(name, labelW))))
		b.WriteString(components.GanttRow(byDriver[name], maxLap, chartW))
	}

	b.WriteString("\n\n")
	legend := make([]string, 0, len(compoundOrder))
	for _, c := range compoundOrder {
		sw := lipgloss.NewStyle().Foreground(lipgloss.Color(config.CompoundColor(c))).Background(t.Surface).Render("■")
		legend = append(legend, sw+labelStyle.Render(" "+strings.ToLower(c)))
	}
	b.WriteString(strings.Join(legend, labelStyle.Render("   ")))
	return b.String()
}

// lapAxis labels lap 1 on the left and the last lap on the right.
func lapAxis(maxLap, width int) string {
	left := "Lap 1"
	right := fmt.Sprintf("%d", maxLap)
	gap := width - len(left) - len(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}
