package pipeline

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

// Messages shown in place of an empty view.
const (
	MsgNoSelection = "Select a season and race/session to see driver and result data."
	MsgNoResults   = "No results match the current filters."
	MsgNoLaps      = "No lap data available for this session."
	MsgNoStints    = "No stint data available."
	MsgNoPits      = "No pit stop data available."
	MsgNoPositions = "No position data available."
	MsgNoWeather   = "No weather data available."
)

// Selection lists the choices available for the next filter down.
type Selection struct {
	Meetings []model.Meeting
	Sessions []model.Session
	Drivers  []model.Driver
	Teams    []string
}

// Selection returns the meetings of the season, the sessions of the selected
// meeting, and the drivers and teams of the selected session or meeting.
func (d *Dashboard) Selection(ctx context.Context, q Query) Selection {
	return remember(ctx, d, "selection", Query{Year: q.Year, MeetingKey: q.MeetingKey, SessionKey: q.SessionKey},
		func() (Selection, bool) {
			var sel Selection
			sel.Meetings = d.src.Meetings(ctx, q.Year)
			if q.MeetingKey != 0 {
				sel.Sessions = d.src.Sessions(ctx, openf1.SessionFilter{MeetingKey: q.MeetingKey})
			}
			sel.Drivers = d.rosterList(ctx, q)
			sel.Teams = teamsOf(sel.Drivers)
			return sel, len(sel.Meetings) > 0
		})
}

// rosterList returns the roster for the selected session, or the whole
// meeting, deduplicated by driver number keeping the first entry.
func (d *Dashboard) rosterList(ctx context.Context, q Query) []model.Driver {
	if q.SessionKey == 0 && q.MeetingKey == 0 {
		return nil
	}
	return dedupDrivers(d.src.Drivers(ctx, q.SessionKey, q.MeetingKey))
}

func (d *Dashboard) roster(ctx context.Context, q Query) map[int]model.Driver {
	list := d.rosterList(ctx, q)
	out := make(map[int]model.Driver, len(list))
	for _, dr := range list {
		out[dr.DriverNumber] = dr
	}
	return out
}

func dedupDrivers(ds []model.Driver) []model.Driver {
	seen := make(map[int]bool, len(ds))
	out := make([]model.Driver, 0, len(ds))
	for _, d := range ds {
		if seen[d.DriverNumber] {
			continue
		}
		seen[d.DriverNumber] = true
		out = append(out, d)
	}
	return out
}

func teamsOf(ds []model.Driver) []string {
	set := make(map[string]bool)
	for _, d := range ds {
		if d.TeamName != "" {
			set[d.TeamName] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// joined is a record's driver identity after the roster join.
type joined struct {
	name, team, colour string
}

func join(roster map[int]model.Driver, number int) joined {
	d, ok := roster[number]
	j := joined{name: DriverName(d, ok, number), team: d.TeamName}
	j.colour = config.TeamColor(d.TeamName, d.TeamColour)
	return j
}

// --- Overview ---

// ResultRow is one classified driver in the overview table.
type ResultRow struct {
	Position     model.OptInt   `json:"position"`
	DriverNumber int            `json:"driver_number"`
	Driver       string         `json:"driver"`
	Team         string         `json:"team"`
	Colour       string         `json:"colour"`
	Gap          string         `json:"gap"`
	Points       model.OptFloat `json:"points"`
	Status       string         `json:"status,omitempty"`
}

// GridCard is one entry of the driver grid.
type GridCard struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Acronym string `json:"acronym"`
	Team    string `json:"team"`
	Colour  string `json:"colour"`
}

// Overview is the results table plus the driver grid.
type Overview struct {
	Results []ResultRow `json:"results"`
	Grid    []GridCard  `json:"grid"`
}

// Empty reports whether there is nothing to show.
func (o Overview) Empty() bool {
	return len(o.Results) == 0 && len(o.Grid) == 0
}

// Overview joins session (or meeting) results to the roster.
func (d *Dashboard) Overview(ctx context.Context, q Query) Overview {
	return remember(ctx, d, "overview", q, func() (Overview, bool) {
		var results []model.Result
		switch {
		case q.SessionKey != 0:
			results = d.src.SessionResults(ctx, q.SessionKey)
		case q.MeetingKey != 0:
			results = d.src.MeetingResults(ctx, q.MeetingKey)
		}

		list := d.rosterList(ctx, q)
		roster := make(map[int]model.Driver, len(list))
		for _, dr := range list {
			roster[dr.DriverNumber] = dr
		}

		var ov Overview
		for _, r := range results {
			j := join(roster, r.DriverNumber)
			team := j.team
			if team == "" {
				team = r.TeamName
			}
			if !q.keep(r.DriverNumber, team) {
				continue
			}
			ov.Results = append(ov.Results, ResultRow{
				Position:     r.Position,
				DriverNumber: r.DriverNumber,
				Driver:       j.name,
				Team:         team,
				Colour:       j.colour,
				Gap:          r.GapToLeader.String(),
				Points:       r.Points,
				Status:       status(r),
			})
		}
		for _, dr := range list {
			if !q.keep(dr.DriverNumber, dr.TeamName) {
				continue
			}
			ov.Grid = append(ov.Grid, GridCard{
				Number:  dr.DriverNumber,
				Name:    dr.FullName,
				Acronym: dr.NameAcronym,
				Team:    dr.TeamName,
				Colour:  config.TeamColor(dr.TeamName, dr.TeamColour),
			})
		}
		return ov, !ov.Empty()
	})
}

func status(r model.Result) string {
	switch {
	case r.DSQ:
		return "DSQ"
	case r.DNS:
		return "DNS"
	case r.DNF:
		return "DNF"
	}
	return ""
}

// --- Laps ---

// LapRow is one lap joined to its driver.
type LapRow struct {
	DriverNumber int            `json:"driver_number"`
	Driver       string         `json:"driver"`
	Team         string         `json:"team"`
	Colour       string         `json:"colour"`
	LapNumber    int            `json:"lap_number"`
	Duration     model.OptFloat `json:"lap_duration"`
	Sector1      model.OptFloat `json:"sector_1"`
	Sector2      model.OptFloat `json:"sector_2"`
	Sector3      model.OptFloat `json:"sector_3"`
	PitOut       bool           `json:"pit_out"`
}

// LapSeries is one driver's lap times in lap order.
type LapSeries struct {
	Driver  string    `json:"driver"`
	Colour  string    `json:"colour"`
	Laps    []int     `json:"laps"`
	Seconds []float64 `json:"seconds"`
}

// LapSpread summarises one driver's lap time distribution.
type LapSpread struct {
	Driver string  `json:"driver"`
	Colour string  `json:"colour"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// LapsView is the lap time view.
type LapsView struct {
	Rows          []LapRow       `json:"rows"`
	TotalLaps     int            `json:"total_laps"`
	Fastest       model.OptFloat `json:"fastest"`
	FastestDriver string         `json:"fastest_driver"`
	FastestLap    int            `json:"fastest_lap"`
	Series        []LapSeries    `json:"series"`
	Spread        []LapSpread    `json:"spread"`
}

// Laps returns lap times for the selected session.
func (d *Dashboard) Laps(ctx context.Context, q Query) (LapsView, error) {
	if !q.HasSession() {
		return LapsView{}, ErrNoSession
	}
	return remember(ctx, d, "laps", q, func() (LapsView, bool) {
		roster := d.roster(ctx, q)
		var v LapsView
		byDriver := map[string]*LapSeries{}
		var order []string

		for _, l := range d.src.Laps(ctx, q.SessionKey, q.DriverNumber) {
			j := join(roster, l.DriverNumber)
			if !q.keep(l.DriverNumber, j.team) {
				continue
			}
			v.Rows = append(v.Rows, LapRow{
				DriverNumber: l.DriverNumber,
				Driver:       j.name,
				Team:         j.team,
				Colour:       j.colour,
				LapNumber:    l.LapNumber,
				Duration:     l.LapDuration,
				Sector1:      l.DurationSector1,
				Sector2:      l.DurationSector2,
				Sector3:      l.DurationSector3,
				PitOut:       l.IsPitOutLap,
			})
			if !l.LapDuration.Valid {
				continue
			}
			if l.LapNumber > v.TotalLaps {
				v.TotalLaps = l.LapNumber
			}
			if !v.Fastest.Valid || l.LapDuration.Value < v.Fastest.Value {
				v.Fastest = model.SomeFloat(l.LapDuration.Value)
				v.FastestDriver = j.name
				v.FastestLap = l.LapNumber
			}
			s, ok := byDriver[j.name]
			if !ok {
				s = &LapSeries{Driver: j.name, Colour: j.colour}
				byDriver[j.name] = s
				order = append(order, j.name)
			}
			s.Laps = append(s.Laps, l.LapNumber)
			s.Seconds = append(s.Seconds, l.LapDuration.Value)
		}

		for _, name := range order {
			s := byDriver[name]
			sortSeries(s)
			v.Series = append(v.Series, *s)
			v.Spread = append(v.Spread, spread(*s))
		}
		return v, len(v.Rows) > 0
	}), nil
}

func sortSeries(s *LapSeries) {
	idx := make([]int, len(s.Laps))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return s.Laps[idx[a]] < s.Laps[idx[b]] })
	laps := make([]int, len(idx))
	secs := make([]float64, len(idx))
	for i, j := range idx {
		laps[i] = s.Laps[j]
		secs[i] = s.Seconds[j]
	}
	s.Laps, s.Seconds = laps, secs
}

func spread(s LapSeries) LapSpread {
	vals := append([]float64(nil), s.Seconds...)
	sort.Float64s(vals)
	out := LapSpread{Driver: s.Driver, Colour: s.Colour, Count: len(vals)}
	if len(vals) == 0 {
		return out
	}
	out.Min = vals[0]
	out.Max = vals[len(vals)-1]
	out.Median = Median(vals)
	return out
}

// Median returns the median of sorted values.
func Median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// --- Stints ---

// StintRow is one tyre stint joined to its driver.
type StintRow struct {
	DriverNumber int          `json:"driver_number"`
	Driver       string       `json:"driver"`
	Team         string       `json:"team"`
	Stint        int          `json:"stint"`
	Compound     string       `json:"compound"`
	Colour       string       `json:"colour"`
	LapStart     model.OptInt `json:"lap_start"`
	LapEnd       model.OptInt `json:"lap_end"`
	TyreAge      model.OptInt `json:"tyre_age_at_start"`
}

// Laps is the stint length, or zero when either end is unknown.
func (s StintRow) Laps() int {
	if !s.LapStart.Valid || !s.LapEnd.Valid || s.LapEnd.Value < s.LapStart.Value {
		return 0
	}
	return s.LapEnd.Value - s.LapStart.Value + 1
}

// StintsView is the tyre strategy view.
type StintsView struct {
	Rows   []StintRow `json:"rows"`
	MaxLap int        `json:"max_lap"`
}

// Stints returns tyre stints for the selected session.
func (d *Dashboard) Stints(ctx context.Context, q Query) (StintsView, error) {
	if !q.HasSession() {
		return StintsView{}, ErrNoSession
	}
	return remember(ctx, d, "stints", q, func() (StintsView, bool) {
		roster := d.roster(ctx, q)
		var v StintsView
		for _, s := range d.src.Stints(ctx, q.SessionKey, q.DriverNumber) {
			j := join(roster, s.DriverNumber)
			if !q.keep(s.DriverNumber, j.team) {
				continue
			}
			v.Rows = append(v.Rows, StintRow{
				DriverNumber: s.DriverNumber,
				Driver:       j.name,
				Team:         j.team,
				Stint:        s.StintNumber,
				Compound:     s.Compound,
				Colour:       config.CompoundColor(s.Compound),
				LapStart:     s.LapStart,
				LapEnd:       s.LapEnd,
				TyreAge:      s.TyreAgeAtStart,
			})
			if s.LapEnd.Valid && s.LapEnd.Value > v.MaxLap {
				v.MaxLap = s.LapEnd.Value
			}
		}
		return v, len(v.Rows) > 0
	}), nil
}

// --- Pits ---

// PitRow is one pit stop joined to its driver.
type PitRow struct {
	DriverNumber int            `json:"driver_number"`
	Driver       string         `json:"driver"`
	Team         string         `json:"team"`
	Colour       string         `json:"colour"`
	Lap          int            `json:"lap"`
	Duration     model.OptFloat `json:"pit_duration"`
	Date         time.Time      `json:"date"`
}

// PitsView is the pit stop view. Stops are sorted by duration, fastest
// first, with unknown durations last.
type PitsView struct {
	Stops   []PitRow       `json:"stops"`
	Count   int            `json:"count"`
	Fastest model.OptFloat `json:"fastest"`
	Average model.OptFloat `json:"average"`
}

// Pits returns pit stops for the selected session.
func (d *Dashboard) Pits(ctx context.Context, q Query) (PitsView, error) {
	if !q.HasSession() {
		return PitsView{}, ErrNoSession
	}
	return remember(ctx, d, "pits", q, func() (PitsView, bool) {
		roster := d.roster(ctx, q)
		var v PitsView
		var sum float64
		var timed int
		for _, p := range d.src.Pits(ctx, q.SessionKey, q.DriverNumber) {
			j := join(roster, p.DriverNumber)
			if !q.keep(p.DriverNumber, j.team) {
				continue
			}
			v.Stops = append(v.Stops, PitRow{
				DriverNumber: p.DriverNumber,
				Driver:       j.name,
				Team:         j.team,
				Colour:       j.colour,
				Lap:          p.LapNumber,
				Duration:     p.PitDuration,
				Date:         p.Date.Time,
			})
			if p.PitDuration.Valid {
				sum += p.PitDuration.Value
				timed++
				if !v.Fastest.Valid || p.PitDuration.Value < v.Fastest.Value {
					v.Fastest = model.SomeFloat(p.PitDuration.Value)
				}
			}
		}
		v.Count = len(v.Stops)
		if timed > 0 {
			v.Average = model.SomeFloat(sum / float64(timed))
		}
		sort.SliceStable(v.Stops, func(i, j int) bool {
			a, b := v.Stops[i].Duration, v.Stops[j].Duration
			if a.Valid != b.Valid {
				return a.Valid
			}
			return a.Value < b.Value
		})
		return v, v.Count > 0
	}), nil
}

// --- Positions ---

// PositionRow is one timestamped position sample.
type PositionRow struct {
	DriverNumber int          `json:"driver_number"`
	Driver       string       `json:"driver"`
	Team         string       `json:"team"`
	Colour       string       `json:"colour"`
	Position     model.OptInt `json:"position"`
	Date         time.Time    `json:"date"`
}

// PositionChange compares a driver's first and latest known position.
type PositionChange struct {
	DriverNumber int    `json:"driver_number"`
	Driver       string `json:"driver"`
	Team         string `json:"team"`
	Colour       string `json:"colour"`
	Start        int    `json:"start"`
	Latest       int    `json:"latest"`
	Gained       int    `json:"gained"`
}

// PositionsView is the position history view.
type PositionsView struct {
	Samples []PositionRow    `json:"samples"`
	Changes []PositionChange `json:"changes"`
}

// Positions returns position samples for the selected session, ordered by time.
func (d *Dashboard) Positions(ctx context.Context, q Query) (PositionsView, error) {
	if !q.HasSession() {
		return PositionsView{}, ErrNoSession
	}
	return remember(ctx, d, "positions", q, func() (PositionsView, bool) {
		roster := d.roster(ctx, q)
		var v PositionsView
		for _, p := range d.src.Positions(ctx, q.SessionKey, q.DriverNumber) {
			j := join(roster, p.DriverNumber)
			if !q.keep(p.DriverNumber, j.team) {
				continue
			}
			v.Samples = append(v.Samples, PositionRow{
				DriverNumber: p.DriverNumber,
				Driver:       j.name,
				Team:         j.team,
				Colour:       j.colour,
				Position:     p.Position,
				Date:         p.Date.Time,
			})
		}
		sort.SliceStable(v.Samples, func(i, j int) bool {
			return v.Samples[i].Date.Before(v.Samples[j].Date)
		})

		changes := map[int]*PositionChange{}
		var order []int
		for _, s := range v.Samples {
			if !s.Position.Valid {
				continue
			}
			c, ok := changes[s.DriverNumber]
			if !ok {
				c = &PositionChange{
					DriverNumber: s.DriverNumber,
					Driver:       s.Driver,
					Team:         s.Team,
					Colour:       s.Colour,
					Start:        s.Position.Value,
				}
				changes[s.DriverNumber] = c
				order = append(order, s.DriverNumber)
			}
			c.Latest = s.Position.Value
		}
		for _, n := range order {
			c := changes[n]
			c.Gained = c.Start - c.Latest
			v.Changes = append(v.Changes, *c)
		}
		sort.SliceStable(v.Changes, func(i, j int) bool {
			return v.Changes[i].Latest < v.Changes[j].Latest
		})
		return v, len(v.Samples) > 0
	}), nil
}

// --- Weather ---

// WeatherView is the weather view. Samples are ordered by time.
type WeatherView struct {
	Samples     []model.Weather `json:"samples"`
	AvgAir      model.OptFloat  `json:"avg_air_temperature"`
	AvgTrack    model.OptFloat  `json:"avg_track_temperature"`
	AvgHumidity model.OptFloat  `json:"avg_humidity"`
	MaxWind     model.OptFloat  `json:"max_wind_speed"`
	Rain        bool            `json:"rain"`
}

// Weather returns weather samples for the selected session. Driver and team
// filters do not apply.
func (d *Dashboard) Weather(ctx context.Context, q Query) (WeatherView, error) {
	if !q.HasSession() {
		return WeatherView{}, ErrNoSession
	}
	return remember(ctx, d, "weather", Query{Year: q.Year, MeetingKey: q.MeetingKey, SessionKey: q.SessionKey},
		func() (WeatherView, bool) {
			v := WeatherView{Samples: d.src.Weather(ctx, q.SessionKey)}
			sort.SliceStable(v.Samples, func(i, j int) bool {
				return v.Samples[i].Date.Before(v.Samples[j].Date.Time)
			})
			var air, track, hum mean
			for _, w := range v.Samples {
				air.add(w.AirTemperature)
				track.add(w.TrackTemperature)
				hum.add(w.Humidity)
				if w.WindSpeed.Valid && (!v.MaxWind.Valid || w.WindSpeed.Value > v.MaxWind.Value) {
					v.MaxWind = model.SomeFloat(w.WindSpeed.Value)
				}
				if w.Rainfall.Valid && w.Rainfall.Value > 0 {
					v.Rain = true
				}
			}
			v.AvgAir, v.AvgTrack, v.AvgHumidity = air.value(), track.value(), hum.value()
			return v, len(v.Samples) > 0
		}), nil
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v model.OptFloat) {
	if v.Valid {
		m.sum += v.Value
		m.n++
	}
}

func (m mean) value() model.OptFloat {
	if m.n == 0 {
		return model.OptFloat{}
	}
	return model.SomeFloat(m.sum / float64(m.n))
}
