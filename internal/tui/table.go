package tui

import (
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// column is one column of a card table.
type column struct {
	title string
	width int
	right bool
}

// cell is one styled table value. A zero color uses the primary text color.
type cell struct {
	text  string
	color lipgloss.Color
	bold  bool
	raw   bool // text is pre-rendered, e.g. a bar; width is trusted
}

func plain(text string) cell { return cell{text: text} }

// renderGrid lays out rows under a header line, truncating cells to their
// column width.
func renderGrid(cols []column, rows [][]cell) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	gapStyle := lipgloss.NewStyle().Background(t.Surface)

	fit := func(s string, c column) string {
		s = truncStr(s, c.width)
		pad := strings.Repeat(" ", max(0, c.width-lipgloss.Width(s)))
		if c.right {
			return pad + s
		}
		return s + pad
	}

	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString(gapStyle.Render(" "))
		}
		b.WriteString(headerStyle.Render(fit(c.title, c)))
	}

	for _, row := range rows {
		b.WriteString("\n")
		for i, c := range cols {
			if i > 0 {
				b.WriteString(gapStyle.Render(" "))
			}
			if i >= len(row) {
				b.WriteString(gapStyle.Render(strings.Repeat(" ", c.width)))
				continue
			}
			v := row[i]
			if v.raw {
				b.WriteString(v.text)
				if pad := c.width - lipgloss.Width(v.text); pad > 0 {
					b.WriteString(gapStyle.Render(strings.Repeat(" ", pad)))
				}
				continue
			}
			color := v.color
			if color == "" {
				color = t.TextPrimary
			}
			style := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(v.bold)
			b.WriteString(style.Render(fit(v.text, c)))
		}
	}
	return b.String()
}

// swatch is a team colour marker.
func swatch(hex string) cell {
	return cell{text: "▌", color: lipgloss.Color(hex)}
}

// flexWidth gives the last flexible column whatever width the fixed ones leave.
func flexWidth(inner int, fixed ...int) int {
	used := 0
	for _, w := range fixed {
		used += w + 1
	}
	return max(8, inner-used)
}
