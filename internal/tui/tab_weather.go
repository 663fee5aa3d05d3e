package tui

import (
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderWeatherTab(cw int) string {
	t := theme.Active
	if !a.query.HasSession() {
		return sessionMessage("weather data", cw)
	}
	v := a.data.weather
	if len(v.Samples) == 0 {
		return components.Message(pipeline.MsgNoWeather, cw)
	}

	rain := components.Metric{Label: "Rain", Value: "No", Color: t.Green}
	if v.Rain {
		rain = components.Metric{Label: "Rain", Value: "Yes", Color: t.Blue}
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Air temp", Value: cli.FormatMeasure(v.AvgAir, "°C"), Delta: "average", Color: t.Orange},
		{Label: "Track temp", Value: cli.FormatMeasure(v.AvgTrack, "°C"), Delta: "average", Color: t.Red},
		{Label: "Humidity", Value: cli.FormatMeasure(v.AvgHumidity, "%"), Delta: "average", Color: t.Cyan},
		{Label: "Max wind", Value: cli.FormatMeasure(v.MaxWind, " m/s")},
		rain,
	}, cw))
	b.WriteString("\n")

	air := weatherSeries(v.Samples, func(w model.Weather) model.OptFloat { return w.AirTemperature })
	inner := components.CardInnerWidth(cw)
	b.WriteString(components.ContentCard("Air Temperature (°C)",
		components.BarChart(resampleWeather(air, inner-8), nil, t.Orange, inner, 8), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Conditions", conditionsBody(v.Samples, cw), cw))
	return b.String()
}

// conditionsBody traces the remaining measurements as sparklines.
func conditionsBody(samples []model.Weather, outer int) string {
	t := theme.Active
	inner := components.CardInnerWidth(outer)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const labelW = 14
	lineW := max(8, inner-labelW-1)

	traces := []struct {
		label string
		color lipgloss.Color
		pick  func(model.Weather) model.OptFloat
	}{
		{"Track temp", t.Red, func(w model.Weather) model.OptFloat { return w.TrackTemperature }},
		{"Humidity", t.Cyan, func(w model.Weather) model.OptFloat { return w.Humidity }},
		{"Wind speed", t.Blue, func(w model.Weather) model.OptFloat { return w.WindSpeed }},
		{"Pressure", t.Purple, func(w model.Weather) model.OptFloat { return w.Pressure }},
	}

	var lines []string
	for _, tr := range traces {
		values := weatherSeries(samples, tr.pick)
		if len(values) == 0 {
			continue
		}
		lines = append(lines, labelStyle.Render(truncStr(tr.label, labelW)+strings.Repeat(" ", max(0, labelW-len(tr.label)))+" ")+
			components.Sparkline(values, tr.color, lineW))
	}
	return strings.Join(lines, "\n")
}

// weatherSeries keeps the known values of one measurement, in sample order.
func weatherSeries(samples []model.Weather, pick func(model.Weather) model.OptFloat) []float64 {
	var out []float64
	for _, w := range samples {
		if v := pick(w); v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// resampleWeather averages samples into at most n buckets so one bar
// column holds a time window.
func resampleWeather(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range n {
		lo := i * len(values) / n
		hi := max(lo+1, (i+1)*len(values)/n)
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
