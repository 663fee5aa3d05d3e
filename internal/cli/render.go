package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pit wall palette
var (
	ColorBg        = lipgloss.Color("#0B0C10")
	ColorSurface   = lipgloss.Color("#15171E")
	ColorBorder    = lipgloss.Color("#2A2D37")
	ColorTextDim   = lipgloss.Color("#555A68")
	ColorTextMuted = lipgloss.Color("#7D8292")
	ColorText      = lipgloss.Color("#F2F3F5")
	ColorAccent    = lipgloss.Color("#E10600")
	ColorGreen     = lipgloss.Color("#3CCB6C")
	ColorOrange    = lipgloss.Color("#FF8700")
	ColorRed       = lipgloss.Color("#E8002D")
	ColorBlue      = lipgloss.Color("#3671C6")
	ColorPurple    = lipgloss.Color("#B36BFF")
	ColorYellow    = lipgloss.Color("#FFD12E")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	Left    int   // leading columns aligned left; 0 means just the first
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("⚠ " + msg)
}

// RenderInfo renders an informational message such as an empty-data notice.
func RenderInfo(msg string) string {
	return mutedStyle.Render("  " + msg)
}

// RenderMetric renders a labelled headline value.
func RenderMetric(label, value string) string {
	return fmt.Sprintf("  %s %s", mutedStyle.Render(label+":"), valueStyle.Render(value))
}

// Swatch renders text in the given hex colour. Empty colours render plain.
func Swatch(hex, text string) string {
	if hex == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(text)
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	left := t.Left
	if left <= 0 {
		left = 1
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if w := lipgloss.Width(h); w > widths[i] {
				widths[i] = w
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if w := lipgloss.Width(cell); i < numCols && w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(l, mid, r string) {
		b.WriteString(dimStyle.Render(l))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(r))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], true) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// Text columns left, numbers right.
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], i < left) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")

	return b.String()
}

// pad pads s to width w by display width, so styled and wide cells line up.
func pad(s string, w int, left bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if left {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// ProgressLine writes a one-line progress indicator to w, overwriting itself.
func ProgressLine(w io.Writer, label string, current, total int) {
	_, _ = fmt.Fprintf(w, "\r  %s %s", label, RenderProgressBar(current, total, 25))
	if current >= total {
		_, _ = fmt.Fprintln(w)
	}
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a horizontal bar scaled against maxValue.
func RenderHorizontalBar(value, maxValue float64, maxWidth int, hex string) string {
	if maxValue <= 0 {
		return ""
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	if barLen > maxWidth {
		barLen = maxWidth
	}
	return Swatch(hex, strings.Repeat("█", barLen))
}
