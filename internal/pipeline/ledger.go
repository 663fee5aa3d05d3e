package pipeline

import (
	"sort"
	"strconv"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

// UnknownTeam labels results whose team cannot be resolved.
const UnknownTeam = "Unknown"

// SessionData is everything the fold needs about one race session.
type SessionData struct {
	Session model.Session
	Order   int // position in the upstream listing
	Label   string
	Results []model.Result
	Roster  []model.Driver
}

// Countable reports whether a session has a usable classification: at least
// one result that carries a position key, even a null one.
func Countable(results []model.Result) bool {
	for _, r := range results {
		if r.Position.Present {
			return true
		}
	}
	return false
}

type tally struct {
	name    string
	points  float64
	wins    int
	podiums int
}

// Ledger accumulates standings. It is a value: Apply never mutates the
// receiver, so any intermediate ledger can be kept and inspected.
type Ledger struct {
	drivers    []tally
	teams      []tally
	driverIdx  map[string]int
	teamIdx    map[string]int
	driverTeam map[string]string
	races      []model.RaceRow
	seen       int
	counted    int
}

// EmptyLedger returns a ledger with no sessions applied.
func EmptyLedger() Ledger {
	return Ledger{
		driverIdx:  map[string]int{},
		teamIdx:    map[string]int{},
		driverTeam: map[string]string{},
	}
}

// Fold applies sessions in order to an empty ledger.
func Fold(sessions []SessionData) Ledger {
	l := EmptyLedger()
	for _, s := range sessions {
		l = l.Apply(s)
	}
	return l
}

// Apply returns a new ledger with s added. Sessions without a usable
// classification leave the totals unchanged.
func (l Ledger) Apply(s SessionData) Ledger {
	next := l.clone()
	next.seen++
	if !Countable(s.Results) {
		return next
	}
	next.counted++

	roster := make(map[int]model.Driver, len(s.Roster))
	for _, d := range s.Roster {
		if _, dup := roster[d.DriverNumber]; !dup {
			roster[d.DriverNumber] = d
		}
	}

	label := s.Label
	if label == "" {
		label = strconv.Itoa(s.Session.SessionKey)
	}

	for _, r := range s.Results {
		d, known := roster[r.DriverNumber]
		name := DriverName(d, known, r.DriverNumber)
		team := resolveTeam(d, known, r)
		src := ResolvePoints(r)
		pts := src.Points()

		next.drivers = addTally(next.drivers, next.driverIdx, name, pts, r.Position)
		next.teams = addTally(next.teams, next.teamIdx, team, pts, r.Position)
		next.driverTeam[name] = team
		next.races = append(next.races, model.RaceRow{
			Race:         label,
			Round:        s.Order + 1,
			Date:         s.Session.DateStart.Time,
			SessionKey:   s.Session.SessionKey,
			DriverNumber: r.DriverNumber,
			Driver:       name,
			Team:         team,
			Position:     r.Position,
			Points:       pts,
			Source:       src,
		})
	}
	return next
}

// DriverName is the roster name, or "#<number>" when the driver is missing
// from the roster.
func DriverName(d model.Driver, known bool, number int) string {
	if known && d.FullName != "" {
		return d.FullName
	}
	return "#" + strconv.Itoa(number)
}

func resolveTeam(d model.Driver, known bool, r model.Result) string {
	switch {
	case known && d.TeamName != "":
		return d.TeamName
	case r.TeamName != "":
		return r.TeamName
	default:
		return UnknownTeam
	}
}

func addTally(ts []tally, idx map[string]int, name string, pts float64, pos model.OptInt) []tally {
	i, ok := idx[name]
	if !ok {
		i = len(ts)
		idx[name] = i
		ts = append(ts, tally{name: name})
	}
	ts[i].points += pts
	if pos.Valid && pos.Value == 1 {
		ts[i].wins++
	}
	if pos.Valid && pos.Value >= 1 && pos.Value <= 3 {
		ts[i].podiums++
	}
	return ts
}

func (l Ledger) clone() Ledger {
	next := Ledger{
		drivers:    append([]tally(nil), l.drivers...),
		teams:      append([]tally(nil), l.teams...),
		driverIdx:  make(map[string]int, len(l.driverIdx)),
		teamIdx:    make(map[string]int, len(l.teamIdx)),
		driverTeam: make(map[string]string, len(l.driverTeam)),
		races:      append([]model.RaceRow(nil), l.races...),
		seen:       l.seen,
		counted:    l.counted,
	}
	for k, v := range l.driverIdx {
		next.driverIdx[k] = v
	}
	for k, v := range l.teamIdx {
		next.teamIdx[k] = v
	}
	for k, v := range l.driverTeam {
		next.driverTeam[k] = v
	}
	return next
}

// DriverPoints returns a driver's accumulated total.
func (l Ledger) DriverPoints(name string) float64 {
	if i, ok := l.driverIdx[name]; ok {
		return l.drivers[i].points
	}
	return 0
}

// TeamPoints returns a team's accumulated total.
func (l Ledger) TeamPoints(name string) float64 {
	if i, ok := l.teamIdx[name]; ok {
		return l.teams[i].points
	}
	return 0
}

// Races returns a copy of the race log.
func (l Ledger) Races() []model.RaceRow {
	return append([]model.RaceRow(nil), l.races...)
}

// Counted is the number of sessions that contributed rows.
func (l Ledger) Counted() int {
	return l.counted
}

// Standings renders the ledger into sorted tables and the progression series.
func (l Ledger) Standings(year int, at time.Time) model.Standings {
	driverTeams := make(map[string]string, len(l.driverTeam))
	for k, v := range l.driverTeam {
		driverTeams[k] = v
	}

	drivers := sortedStandings(l.drivers)
	for i := range drivers {
		drivers[i].Team = driverTeams[drivers[i].Name]
	}

	races := l.Races()
	if races == nil {
		races = []model.RaceRow{}
	}

	return model.Standings{
		Year:            year,
		Drivers:         drivers,
		Teams:           sortedStandings(l.teams),
		Races:           races,
		DriverTeams:     driverTeams,
		Progression:     Progression(races),
		SessionsFound:   l.seen,
		SessionsCounted: l.counted,
		ComputedAt:      at,
	}
}

// sortedStandings orders tallies by points descending. Ties keep the order
// in which names were first accumulated.
func sortedStandings(ts []tally) []model.Standing {
	out := make([]model.Standing, len(ts))
	for i, t := range ts {
		out[i] = model.Standing{Name: t.name, Points: t.points, Wins: t.wins, Podiums: t.podiums}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Points > out[j].Points
	})
	return out
}
