package cli

import (
	"strconv"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

// DriverStandingsTable builds the drivers' championship table.
func DriverStandingsTable(s model.Standings) Table {
	t := Table{
		Title:   strconv.Itoa(s.Year) + " Drivers' Championship",
		Headers: []string{"Pos", "Driver", "Team", "Points", "Gap", "Wins", "Podiums"},
		Left:    3,
	}
	var lead float64
	if l, ok := s.Leader(); ok {
		lead = l.Points
	}
	for i, d := range s.Drivers {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			d.Name,
			d.Team,
			FormatPoints(d.Points),
			FormatGap(lead, d.Points),
			strconv.Itoa(d.Wins),
			strconv.Itoa(d.Podiums),
		})
	}
	return t
}

// TeamStandingsTable builds the constructors' championship table.
func TeamStandingsTable(s model.Standings) Table {
	t := Table{
		Title:   strconv.Itoa(s.Year) + " Constructors' Championship",
		Headers: []string{"Pos", "Team", "Points", "Gap", "Wins", "Podiums"},
		Left:    2,
	}
	var lead float64
	if len(s.Teams) > 0 {
		lead = s.Teams[0].Points
	}
	for i, tm := range s.Teams {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			tm.Name,
			FormatPoints(tm.Points),
			FormatGap(lead, tm.Points),
			strconv.Itoa(tm.Wins),
			strconv.Itoa(tm.Podiums),
		})
	}
	return t
}

// RaceLogTable builds the per-race points log.
func RaceLogTable(rows []model.RaceRow) Table {
	t := Table{
		Title:   "Race Log",
		Headers: []string{"Rd", "Race", "Driver", "Team", "Pos", "Points", "Basis"},
		Left:    4,
	}
	for _, r := range rows {
		basis := model.PointsZero
		if r.Source != nil {
			basis = r.Source.Kind()
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Round),
			r.Race,
			r.Driver,
			r.Team,
			FormatPosition(r.Position),
			FormatPoints(r.Points),
			basis.String(),
		})
	}
	return t
}

// MeetingsTable lists the meetings of a season.
func MeetingsTable(year int, ms []model.Meeting) Table {
	t := Table{
		Title:   strconv.Itoa(year) + " Meetings",
		Headers: []string{"Key", "Meeting", "Country", "Circuit", "Date"},
		Left:    5,
	}
	for _, m := range ms {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(m.MeetingKey),
			m.MeetingName,
			m.CountryName,
			m.CircuitShortName,
			FormatDate(m.DateStart.Time),
		})
	}
	return t
}

// SessionsTable lists sessions.
func SessionsTable(ss []model.Session) Table {
	t := Table{
		Title:   "Sessions",
		Headers: []string{"Key", "Session", "Type", "Circuit", "Start"},
		Left:    5,
	}
	for _, s := range ss {
		start := "-"
		if !s.DateStart.IsZero() {
			start = s.DateStart.Format("2006-01-02 15:04")
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(s.SessionKey),
			s.SessionName,
			s.SessionType,
			s.CircuitShortName,
			start,
		})
	}
	return t
}

// ResultsTable builds the session results table.
func ResultsTable(rows []pipeline.ResultRow) Table {
	t := Table{
		Title:   "Results",
		Headers: []string{"Pos", "No.", "Driver", "Team", "Gap", "Points", "Status"},
		Left:    4,
	}
	for _, r := range rows {
		pts := "-"
		if r.Points.Valid {
			pts = FormatPoints(r.Points.Value)
		}
		t.Rows = append(t.Rows, []string{
			r.Position.String(),
			strconv.Itoa(r.DriverNumber),
			r.Driver,
			r.Team,
			r.Gap,
			pts,
			r.Status,
		})
	}
	return t
}

// GridTable builds the driver grid.
func GridTable(cards []pipeline.GridCard) Table {
	t := Table{
		Title:   "Drivers",
		Headers: []string{"No.", "Driver", "Code", "Team"},
		Left:    4,
	}
	for _, c := range cards {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c.Number), c.Name, c.Acronym, c.Team})
	}
	return t
}

// LapSpreadTable summarises each driver's lap time distribution.
func LapSpreadTable(spread []pipeline.LapSpread) Table {
	t := Table{
		Title:   "Lap Time Distribution",
		Headers: []string{"Driver", "Laps", "Best", "Median", "Worst"},
	}
	for _, s := range spread {
		t.Rows = append(t.Rows, []string{
			s.Driver,
			strconv.Itoa(s.Count),
			FormatLapTime(s.Min),
			FormatLapTime(s.Median),
			FormatLapTime(s.Max),
		})
	}
	return t
}

// LapsTable lists every lap.
func LapsTable(rows []pipeline.LapRow) Table {
	t := Table{
		Title:   "Laps",
		Headers: []string{"Driver", "Lap", "Time", "S1", "S2", "S3", "Out"},
	}
	for _, r := range rows {
		out := ""
		if r.PitOut {
			out = "pit"
		}
		t.Rows = append(t.Rows, []string{
			r.Driver,
			strconv.Itoa(r.LapNumber),
			FormatOptLap(r.Duration),
			FormatSeconds(r.Sector1, 3),
			FormatSeconds(r.Sector2, 3),
			FormatSeconds(r.Sector3, 3),
			out,
		})
	}
	return t
}

// StintsTable lists tyre stints.
func StintsTable(rows []pipeline.StintRow) Table {
	t := Table{
		Title:   "Tyre Strategy",
		Headers: []string{"Driver", "Stint", "Compound", "Start", "End", "Laps", "Age"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Driver,
			strconv.Itoa(r.Stint),
			r.Compound,
			r.LapStart.String(),
			r.LapEnd.String(),
			strconv.Itoa(r.Laps()),
			r.TyreAge.String(),
		})
	}
	return t
}

// PitsTable lists pit stops.
func PitsTable(stops []pipeline.PitRow) Table {
	t := Table{
		Title:   "Pit Stops",
		Headers: []string{"Driver", "Team", "Lap", "Duration"},
		Left:    2,
	}
	for _, p := range stops {
		t.Rows = append(t.Rows, []string{p.Driver, p.Team, strconv.Itoa(p.Lap), FormatSeconds(p.Duration, 2)})
	}
	return t
}

// PositionChangesTable lists each driver's latest position and places gained.
func PositionChangesTable(changes []pipeline.PositionChange) Table {
	t := Table{
		Title:   "Positions",
		Headers: []string{"Pos", "Driver", "Team", "Start", "Gained"},
		Left:    3,
	}
	for _, c := range changes {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(c.Latest),
			c.Driver,
			c.Team,
			strconv.Itoa(c.Start),
			FormatGained(c.Gained),
		})
	}
	return t
}

// WeatherTable lists weather samples.
func WeatherTable(samples []model.Weather) Table {
	t := Table{
		Title:   "Weather",
		Headers: []string{"Time", "Air", "Track", "Humidity", "Wind", "Rain"},
	}
	for _, w := range samples {
		ts := "-"
		if !w.Date.IsZero() {
			ts = w.Date.Format("15:04:05")
		}
		rain := "no"
		if w.Rainfall.Valid && w.Rainfall.Value > 0 {
			rain = "yes"
		}
		t.Rows = append(t.Rows, []string{
			ts,
			FormatMeasure(w.AirTemperature, "°C"),
			FormatMeasure(w.TrackTemperature, "°C"),
			FormatMeasure(w.Humidity, "%"),
			FormatMeasure(w.WindSpeed, " m/s"),
			rain,
		})
	}
	return t
}
