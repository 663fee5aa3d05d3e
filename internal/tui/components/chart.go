package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	barBlocks   = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	hbarBlocks  = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}
)

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Sparkline renders values scaled between their own minimum and maximum,
// so lap times a few tenths apart still show shape. When values is longer
// than width, it is resampled.
func Sparkline(values []float64, color lipgloss.Color, width int) string {
	if len(values) == 0 {
		return ""
	}
	values = resample(values, width)
	t := theme.Active

	lo, hi := bounds(values)
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(sparkBlocks) / 2
		if span > 0 {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		}
		idx = clampInt(idx, 0, len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// resample picks evenly spaced values so the result fits in width cells.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = values[i*(len(values)-1)/max(1, width-1)]
	}
	return out
}

// BarChart renders a column chart from zero with a labelled Y axis. Labels,
// when given, must match values one to one.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color, width)
	}
	t := theme.Active

	_, peak := bounds(values)
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step
	ticks := int(math.Round(ceiling / step))
	rowsPerTick := max(1, height/max(1, ticks))
	chartH := rowsPerTick * ticks

	yLabelW := max(4, len(formatChartLabel(ceiling))+1)
	chartW := max(5, width-yLabelW-1)

	if len(labels) != len(values) {
		labels = nil
	}
	if len(values) > chartW {
		values = resample(values, chartW)
		labels = nil
	}
	n := len(values)
	gap := 0
	barW := chartW / n
	if barW >= 3 {
		gap = 1
		barW = (chartW - (n - 1)) / n
	}
	barW = clampInt(barW, 1, 6)
	axisLen := n*barW + (n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		top := ceiling * float64(row) / float64(chartH)
		bottom := ceiling * float64(row-1) / float64(chartH)

		label := ""
		if row%rowsPerTick == 0 {
			label = formatChartLabel(step * float64(row/rowsPerTick))
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(" "))
			}
			switch {
			case v >= top:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := clampInt(int((v-bottom)/(top-bottom)*8), 1, 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(barBlocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└%s", yLabelW, "0", strings.Repeat("─", axisLen))))

	if labels != nil {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// axisLabels places labels under their bars, skipping any that would overlap.
func axisLabels(labels []string, pitch, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	for i, lbl := range labels {
		pos := i * pitch
		r := []rune(lbl)
		if pos <= lastEnd || pos+len(r) > axisLen {
			continue
		}
		copy(buf[pos:], r)
		lastEnd = pos + len(r)
	}
	return strings.TrimRight(string(buf), " ")
}

// HBar renders a horizontal bar of value relative to maxVal in width cells,
// with eighth-cell resolution.
func HBar(value, maxVal float64, width int, color lipgloss.Color) string {
	t := theme.Active
	if width <= 0 {
		return ""
	}
	frac := 0.0
	if maxVal > 0 {
		frac = math.Max(0, math.Min(1, value/maxVal))
	}
	eighths := int(math.Round(frac * float64(width*8)))
	full := eighths / 8
	part := eighths % 8

	bar := strings.Repeat("█", full)
	if part > 0 {
		bar += string(hbarBlocks[part])
	}
	pad := width - full
	if part > 0 {
		pad--
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(bar) +
		lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", max(0, pad)))
}

// RangeBar draws a min/median/max whisker on an axis from axisLo to axisHi:
// "├──┼────┤" positioned within width cells.
func RangeBar(lo, mid, hi, axisLo, axisHi float64, width int, color lipgloss.Color) string {
	t := theme.Active
	if width < 3 {
		return ""
	}
	span := axisHi - axisLo
	pos := func(v float64) int {
		if span <= 0 {
			return width / 2
		}
		return clampInt(int(math.Round((v-axisLo)/span*float64(width-1))), 0, width-1)
	}
	l, m, h := pos(lo), pos(mid), pos(hi)

	cells := []rune(strings.Repeat(" ", width))
	for i := l; i <= h; i++ {
		cells[i] = '─'
	}
	cells[l] = '├'
	cells[h] = '┤'
	cells[m] = '┼'
	if l == h {
		cells[m] = '│'
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(string(cells))
}

// Segment is one coloured span of a Gantt row, in lap numbers.
type Segment struct {
	Start int
	End   int
	Color lipgloss.Color
	Mark  rune // drawn at the start of the span when it fits; 0 for none
}

// GanttRow renders segments on a lap axis from 1 to maxLap in width cells.
func GanttRow(segs []Segment, maxLap, width int) string {
	t := theme.Active
	if width <= 0 || maxLap <= 0 {
		return ""
	}
	col := func(lap int) int {
		return clampInt((lap-1)*width/maxLap, 0, width-1)
	}

	cells := make([]string, width)
	blank := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	for i := range cells {
		cells[i] = blank
	}
	for _, s := range segs {
		if s.End < s.Start {
			continue
		}
		style := lipgloss.NewStyle().Foreground(t.Background).Background(s.Color)
		from, to := col(s.Start), col(s.End)
		for i := from; i <= to; i++ {
			ch := " "
			if i == from && s.Mark != 0 && to > from {
				ch = string(s.Mark)
			}
			cells[i] = style.Render(ch)
		}
	}
	return strings.Join(cells, "")
}

// chartTickStep computes a round tick interval targeting about five ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("%.1fk", v/1000)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	case v >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
