package pipeline

import (
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

func sessionData(order int, label string, date time.Time, results []model.Result, roster []model.Driver) SessionData {
	return SessionData{
		Session: model.Session{SessionKey: 1000 + order, DateStart: model.Timestamp{Time: date}},
		Order:   order,
		Label:   label,
		Results: results,
		Roster:  roster,
	}
}

func TestLedger_ApplyDoesNotMutate(t *testing.T) {
	roster := []model.Driver{driver(1, "Driver A", "Team X")}
	first := sessionData(0, "R1", time.Time{}, []model.Result{placed(1, 1)}, roster)
	second := sessionData(1, "R2", time.Time{}, []model.Result{placed(1, 2)}, roster)

	empty := EmptyLedger()
	one := empty.Apply(first)
	two := one.Apply(second)

	assert.Equal(t, 0.0, empty.DriverPoints("Driver A"))
	assert.Empty(t, empty.Races())
	assert.Equal(t, 25.0, one.DriverPoints("Driver A"))
	assert.Len(t, one.Races(), 1)
	assert.Equal(t, 43.0, two.DriverPoints("Driver A"))
	assert.Equal(t, 43.0, two.TeamPoints("Team X"))
	assert.Len(t, two.Races(), 2)
}

func TestLedger_FoldEqualsApplyChain(t *testing.T) {
	roster := []model.Driver{driver(1, "A", "X"), driver(2, "B", "Y")}
	sessions := []SessionData{
		sessionData(0, "R1", time.Time{}, []model.Result{placed(1, 1), placed(2, 2)}, roster),
		sessionData(1, "R2", time.Time{}, []model.Result{placed(2, 1), placed(1, 2)}, roster),
	}

	chained := EmptyLedger().Apply(sessions[0]).Apply(sessions[1])
	folded := Fold(sessions)

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, chained.Standings(2024, at), folded.Standings(2024, at))
}

func TestLedger_UnclassifiedSessionCountsAsSeen(t *testing.T) {
	l := Fold([]SessionData{
		sessionData(0, "R1", time.Time{}, nil, nil),
		sessionData(1, "R2", time.Time{}, []model.Result{{DriverNumber: 1}}, nil),
	})
	s := l.Standings(2024, time.Time{})
	assert.Equal(t, 2, s.SessionsFound)
	assert.Equal(t, 0, s.SessionsCounted)
	assert.Empty(t, s.Drivers)
}

func TestLedger_TotalsMatchRaceLog(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	teams := []string{"X", "Y", "Z"}

	var sessions []SessionData
	for order := range 12 {
		var roster []model.Driver
		var results []model.Result
		for num := 1; num <= 8; num++ {
			roster = append(roster, driver(num, "D"+strconv.Itoa(num), teams[rng.IntN(len(teams))]))
			r := model.Result{DriverNumber: num}
			switch rng.IntN(4) {
			case 0:
				r.Position = model.NullInt()
			case 1:
				r.Position = model.SomeInt(rng.IntN(20) + 1)
				r.Points = model.SomeFloat(float64(rng.IntN(30)))
			default:
				r.Position = model.SomeInt(rng.IntN(20) + 1)
			}
			results = append(results, r)
		}
		sessions = append(sessions, sessionData(order, "R"+strconv.Itoa(order), time.Time{}, results, roster))
	}

	s := Fold(sessions).Standings(2024, time.Time{})

	driverSum := map[string]float64{}
	teamSum := map[string]float64{}
	for _, r := range s.Races {
		driverSum[r.Driver] += r.Points
		teamSum[r.Team] += r.Points
	}
	for _, d := range s.Drivers {
		assert.InDelta(t, driverSum[d.Name], d.Points, 1e-9, d.Name)
	}
	for _, tm := range s.Teams {
		assert.InDelta(t, teamSum[tm.Name], tm.Points, 1e-9, tm.Name)
	}
	for i := 1; i < len(s.Drivers); i++ {
		assert.GreaterOrEqual(t, s.Drivers[i-1].Points, s.Drivers[i].Points)
	}
	for i := 1; i < len(s.Teams); i++ {
		assert.GreaterOrEqual(t, s.Teams[i-1].Points, s.Teams[i].Points)
	}
	for _, r := range s.Races {
		if r.Source.Kind() == model.PointsDerived {
			assert.Equal(t, PointsTable[r.Position.Value], r.Points)
		}
	}
}

func TestProgression_OrderedByDateNotLabel(t *testing.T) {
	roster := []model.Driver{driver(1, "A", "X")}
	march := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 7, 5, 0, 0, 0, time.UTC)

	// Listed out of date order, with labels that sort the wrong way too.
	l := Fold([]SessionData{
		sessionData(0, "Abu Dhabi", april, []model.Result{placed(1, 2)}, roster),
		sessionData(1, "Zandvoort", march, []model.Result{placed(1, 1)}, roster),
	})
	p := l.Standings(2024, time.Time{}).Progression

	require.Len(t, p, 2)
	assert.Equal(t, "Zandvoort", p[0].Race)
	assert.Equal(t, 25.0, p[0].Cumulative)
	assert.Equal(t, "Abu Dhabi", p[1].Race)
	assert.Equal(t, 43.0, p[1].Cumulative)
}

func TestProgression_UndatedFallsBackToListingOrder(t *testing.T) {
	rows := []model.RaceRow{
		{Driver: "A", Race: "second", Round: 2, Points: 18},
		{Driver: "A", Race: "first", Round: 1, Points: 25},
		{Driver: "A", Race: "dated", Round: 3, Points: 1, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	p := Progression(rows)
	require.Len(t, p, 3)
	assert.Equal(t, []string{"dated", "first", "second"}, []string{p[0].Race, p[1].Race, p[2].Race})
	assert.Equal(t, 44.0, p[2].Cumulative)
}
