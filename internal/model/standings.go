package model

import (
	"encoding/json"
	"time"
)

// PointsKind names the branch a PointsSource took.
type PointsKind int

const (
	PointsZero PointsKind = iota
	PointsProvided
	PointsDerived
)

func (k PointsKind) String() string {
	switch k {
	case PointsProvided:
		return "provided"
	case PointsDerived:
		return "derived"
	default:
		return "zero"
	}
}

// ZeroReason explains why a result scored nothing.
type ZeroReason string

const (
	ZeroNoPosition   ZeroReason = "no position"
	ZeroOutsideTable ZeroReason = "outside points table"
)

// PointsSource records how a result's points were decided. It is one of
// Provided, Derived or Zero.
type PointsSource interface {
	Points() float64
	Kind() PointsKind
	isPointsSource()
}

// Provided is a numeric points value supplied by the upstream record.
type Provided struct {
	Value float64
}

func (p Provided) Points() float64  { return p.Value }
func (p Provided) Kind() PointsKind { return PointsProvided }
func (Provided) isPointsSource()    {}

// Derived is a points value looked up from the finishing position.
type Derived struct {
	Position int
	Value    float64
}

func (d Derived) Points() float64  { return d.Value }
func (d Derived) Kind() PointsKind { return PointsDerived }
func (Derived) isPointsSource()    {}

// Zero means the result scored no points.
type Zero struct {
	Reason ZeroReason
}

func (Zero) Points() float64  { return 0 }
func (Zero) Kind() PointsKind { return PointsZero }
func (Zero) isPointsSource()  {}

// RaceRow is one (session, driver) entry of the race log.
type RaceRow struct {
	Race         string       `json:"race"`
	Round        int          `json:"round"`
	Date         time.Time    `json:"date"`
	SessionKey   int          `json:"session_key"`
	DriverNumber int          `json:"driver_number"`
	Driver       string       `json:"driver"`
	Team         string       `json:"team"`
	Position     OptInt       `json:"position"`
	Points       float64      `json:"points"`
	Source       PointsSource `json:"-"`
}

// MarshalJSON adds the points basis to the row.
func (r RaceRow) MarshalJSON() ([]byte, error) {
	type alias RaceRow
	basis := PointsZero
	if r.Source != nil {
		basis = r.Source.Kind()
	}
	return json.Marshal(struct {
		alias
		Basis string `json:"basis"`
	}{alias(r), basis.String()})
}

// Standing is one line of a championship table.
type Standing struct {
	Name    string  `json:"name"`
	Team    string  `json:"team,omitempty"`
	Points  float64 `json:"points"`
	Wins    int     `json:"wins"`
	Podiums int     `json:"podiums"`
}

// ProgressPoint is a driver's running total after one race.
type ProgressPoint struct {
	Driver     string    `json:"driver"`
	Race       string    `json:"race"`
	Round      int       `json:"round"`
	Date       time.Time `json:"date"`
	Points     float64   `json:"points"`
	Cumulative float64   `json:"cumulative"`
}

// Standings is the full output of a season aggregation.
type Standings struct {
	Year            int               `json:"year"`
	Drivers         []Standing        `json:"drivers"`
	Teams           []Standing        `json:"teams"`
	Races           []RaceRow         `json:"races"`
	DriverTeams     map[string]string `json:"driver_teams"`
	Progression     []ProgressPoint   `json:"progression"`
	SessionsFound   int               `json:"sessions_found"`
	SessionsCounted int               `json:"sessions_counted"`
	ComputedAt      time.Time         `json:"computed_at"`
}

// Leader returns the top driver, if any.
func (s Standings) Leader() (Standing, bool) {
	if len(s.Drivers) == 0 {
		return Standing{}, false
	}
	return s.Drivers[0], true
}
