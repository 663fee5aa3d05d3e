package pipeline

import (
	"sort"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

// Progression computes each driver's running points total race by race.
// Races are ordered by session start date, then by listing order; the race
// label plays no part in ordering. Sessions without a date sort after dated
// ones.
func Progression(races []model.RaceRow) []model.ProgressPoint {
	rows := append([]model.RaceRow(nil), races...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date.IsZero() != b.Date.IsZero() {
			return b.Date.IsZero()
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Round < b.Round
	})

	running := make(map[string]float64)
	out := make([]model.ProgressPoint, 0, len(rows))
	for _, r := range rows {
		running[r.Driver] += r.Points
		out = append(out, model.ProgressPoint{
			Driver:     r.Driver,
			Race:       r.Race,
			Round:      r.Round,
			Date:       r.Date,
			Points:     r.Points,
			Cumulative: running[r.Driver],
		})
	}
	return out
}

// DriverSeries returns one driver's progression points.
func DriverSeries(points []model.ProgressPoint, driver string) []model.ProgressPoint {
	var out []model.ProgressPoint
	for _, p := range points {
		if p.Driver == driver {
			out = append(out, p)
		}
	}
	return out
}
