package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

// --- fake source ---

type fakeSource struct {
	sessions []model.Session
	results  map[int][]model.Result
	rosters  map[int][]model.Driver
	meetings map[int]model.Meeting
	delays   map[int]time.Duration

	rosterCalls atomic.Int32
}

func (f *fakeSource) Sessions(_ context.Context, _ openf1.SessionFilter) []model.Session {
	return f.sessions
}

func (f *fakeSource) SessionResults(ctx context.Context, key int) []model.Result {
	if d, ok := f.delays[key]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil
		}
	}
	return f.results[key]
}

func (f *fakeSource) Drivers(_ context.Context, key, _ int) []model.Driver {
	f.rosterCalls.Add(1)
	return f.rosters[key]
}

func (f *fakeSource) Meeting(_ context.Context, key int) (model.Meeting, bool) {
	m, ok := f.meetings[key]
	return m, ok
}

func race(key, meeting int, date string) model.Session {
	var ts model.Timestamp
	if date != "" {
		ts.Time, _ = time.Parse("2006-01-02", date)
	}
	return model.Session{SessionKey: key, MeetingKey: meeting, SessionName: "Race", DateStart: ts}
}

func placed(number, pos int) model.Result {
	return model.Result{DriverNumber: number, Position: model.SomeInt(pos)}
}

func driver(number int, name, team string) model.Driver {
	return model.Driver{DriverNumber: number, FullName: name, TeamName: team}
}

func scenarioA() *fakeSource {
	return &fakeSource{
		sessions: []model.Session{race(100, 10, "2024-03-02")},
		results:  map[int][]model.Result{100: {placed(1, 1), placed(44, 2)}},
		rosters: map[int][]model.Driver{100: {
			driver(1, "Driver A", "Team X"),
			driver(44, "Driver B", "Team Y"),
		}},
		meetings: map[int]model.Meeting{10: {MeetingKey: 10, MeetingName: "Bahrain Grand Prix"}},
	}
}

func compute(t *testing.T, src Source) model.Standings {
	t.Helper()
	s, err := ComputeStandings(context.Background(), src, 2024, Options{})
	require.NoError(t, err)
	return s
}

func standing(name string, pts float64) model.Standing {
	return model.Standing{Name: name, Points: pts}
}

func pointsOf(ss []model.Standing, name string) float64 {
	for _, s := range ss {
		if s.Name == name {
			return s.Points
		}
	}
	return 0
}

func names(ss []model.Standing) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Name
	}
	return out
}

// --- scenarios ---

func TestComputeStandings_DerivedFromPositions(t *testing.T) {
	s := compute(t, scenarioA())

	require.Len(t, s.Drivers, 2)
	assert.Equal(t, standing("Driver A", 25), model.Standing{Name: s.Drivers[0].Name, Points: s.Drivers[0].Points})
	assert.Equal(t, standing("Driver B", 18), model.Standing{Name: s.Drivers[1].Name, Points: s.Drivers[1].Points})
	assert.Equal(t, []string{"Team X", "Team Y"}, names(s.Teams))
	assert.Equal(t, 25.0, s.Teams[0].Points)
	assert.Equal(t, 18.0, s.Teams[1].Points)

	require.Len(t, s.Races, 2)
	assert.Equal(t, "Bahrain Grand Prix", s.Races[0].Race)
	assert.Equal(t, model.PointsDerived, s.Races[0].Source.Kind())
	assert.Equal(t, "Team X", s.Drivers[0].Team)
	assert.Equal(t, 1, s.Drivers[0].Wins)
	assert.Equal(t, 1, s.Drivers[1].Podiums)
}

func TestComputeStandings_ProvidedPointsWin(t *testing.T) {
	src := scenarioA()
	r := placed(1, 1)
	r.Points = model.SomeFloat(26)
	src.results[100][0] = r

	s := compute(t, src)
	assert.Equal(t, "Driver A", s.Drivers[0].Name)
	assert.Equal(t, 26.0, s.Drivers[0].Points)
	assert.Equal(t, 18.0, s.Drivers[1].Points)
	assert.Equal(t, model.Provided{Value: 26}, s.Races[0].Source)
}

func TestComputeStandings_TwoWinsAccumulate(t *testing.T) {
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "2024-03-02"), race(2, 11, "2024-03-09")},
		results: map[int][]model.Result{
			1: {placed(1, 1)},
			2: {placed(1, 1)},
		},
		rosters: map[int][]model.Driver{
			1: {driver(1, "Driver A", "Team X")},
			2: {driver(1, "Driver A", "Team X")},
		},
		meetings: map[int]model.Meeting{
			10: {MeetingName: "Bahrain Grand Prix"},
			11: {MeetingName: "Saudi Arabian Grand Prix"},
		},
	}

	s := compute(t, src)
	require.Len(t, s.Drivers, 1)
	assert.Equal(t, 50.0, s.Drivers[0].Points)
	assert.Equal(t, 2, s.Drivers[0].Wins)
	assert.Len(t, s.Races, 2)

	series := DriverSeries(s.Progression, "Driver A")
	require.Len(t, series, 2)
	assert.Equal(t, 25.0, series[0].Cumulative)
	assert.Equal(t, 50.0, series[1].Cumulative)
}

func TestComputeStandings_NoSessions(t *testing.T) {
	s := compute(t, &fakeSource{})

	assert.Empty(t, s.Drivers)
	assert.Empty(t, s.Teams)
	assert.Empty(t, s.Races)
	assert.NotNil(t, s.Races)
	assert.Empty(t, s.Progression)
}

func TestComputeStandings_NullPositionScoresZero(t *testing.T) {
	src := scenarioA()
	src.results[100] = []model.Result{placed(1, 1), {DriverNumber: 44, Position: model.NullInt()}}

	s := compute(t, src)
	require.Len(t, s.Races, 2)
	row := s.Races[1]
	assert.Equal(t, "Driver B", row.Driver)
	assert.Equal(t, 0.0, row.Points)
	assert.Equal(t, model.Zero{Reason: model.ZeroNoPosition}, row.Source)
	assert.Equal(t, 0.0, s.Drivers[1].Points)
}

func TestComputeStandings_NullPositionFromJSON(t *testing.T) {
	bodies := map[string]string{
		"sessions?session_name=Race&year=2024": `[{"session_key": 100, "meeting_key": 10, "date_start": "2024-03-02T15:00:00+00:00"}]`,
		"session_result?session_key=100":       `[{"driver_number": 1, "position": 1}, {"driver_number": 44, "position": null}]`,
		"drivers?session_key=100":              `[{"driver_number": 1, "full_name": "Driver A", "team_name": "Team X"}, {"driver_number": 44, "full_name": "Driver B", "team_name": "Team Y"}]`,
		"meetings?meeting_key=10":              `[]`,
	}
	getter := openf1.GetterFunc(func(_ context.Context, ep string, p openf1.Params) ([]byte, error) {
		body, ok := bodies[openf1.Key(ep, p)]
		if !ok {
			return nil, openf1.ErrNotFound
		}
		return []byte(body), nil
	})
	warnings := openf1.NewWarnings()
	api := openf1.NewAPI(getter, warnings, nil)

	s, err := ComputeStandings(context.Background(), api, 2024, Options{})
	require.NoError(t, err)
	assert.Zero(t, warnings.Total())

	require.Len(t, s.Races, 2)
	assert.Equal(t, "100", s.Races[0].Race, "label falls back to session key")
	assert.Equal(t, 0.0, s.Races[1].Points)
	assert.Equal(t, []string{"Driver A", "Driver B"}, names(s.Drivers))
}

// --- skipping and fallbacks ---

func TestComputeStandings_SkipsUnclassifiedSessions(t *testing.T) {
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "2024-03-02"), race(2, 11, "2024-03-09"), race(3, 12, "2024-03-16")},
		results: map[int][]model.Result{
			1: {placed(1, 1)},
			2: {{DriverNumber: 1, Points: model.SomeFloat(25)}}, // no position key anywhere
		},
		rosters: map[int][]model.Driver{1: {driver(1, "Driver A", "Team X")}},
	}

	s := compute(t, src)
	assert.Equal(t, 3, s.SessionsFound)
	assert.Equal(t, 1, s.SessionsCounted)
	assert.Len(t, s.Races, 1)
	assert.Equal(t, 25.0, s.Drivers[0].Points)
	assert.Equal(t, int32(1), src.rosterCalls.Load(), "skipped sessions fetch no roster")
}

func TestComputeStandings_NameAndTeamFallbacks(t *testing.T) {
	withTeam := placed(63, 3)
	withTeam.TeamName = "Mercedes"
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "")},
		results:  map[int][]model.Result{1: {placed(1, 1), withTeam, placed(99, 2)}},
		rosters:  map[int][]model.Driver{1: {driver(1, "Driver A", "")}},
	}

	s := compute(t, src)
	require.Len(t, s.Races, 3)
	assert.Equal(t, "Driver A", s.Races[0].Driver)
	assert.Equal(t, UnknownTeam, s.Races[0].Team)
	assert.Equal(t, "#63", s.Races[1].Driver)
	assert.Equal(t, "Mercedes", s.Races[1].Team)
	assert.Equal(t, "#99", s.Races[2].Driver)
	assert.Equal(t, UnknownTeam, s.Races[2].Team)
	assert.Equal(t, "1", s.Races[0].Race)
	assert.Equal(t, 43.0, pointsOf(s.Teams, UnknownTeam))
}

func TestComputeStandings_RosterIsPerSession(t *testing.T) {
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "2024-03-02"), race(2, 11, "2024-03-09")},
		results: map[int][]model.Result{
			1: {placed(3, 1)},
			2: {placed(3, 1)},
		},
		rosters: map[int][]model.Driver{
			1: {driver(3, "Daniel RICCIARDO", "RB")},
			2: {driver(3, "Someone ELSE", "Alpine")},
		},
	}

	s := compute(t, src)
	assert.Equal(t, []string{"Daniel RICCIARDO", "Someone ELSE"}, names(s.Drivers))
}

// --- ordering and concurrency ---

func TestComputeStandings_LastTeamWinsInListingOrder(t *testing.T) {
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "2024-03-02"), race(2, 11, "2024-03-09")},
		results: map[int][]model.Result{
			1: {placed(3, 5)},
			2: {placed(3, 5)},
		},
		rosters: map[int][]model.Driver{
			1: {driver(3, "Driver C", "Old Team")},
			2: {driver(3, "Driver C", "New Team")},
		},
		// The first session finishes last.
		delays: map[int]time.Duration{1: 30 * time.Millisecond},
	}

	for range 3 {
		s, err := ComputeStandings(context.Background(), src, 2024, Options{Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, "New Team", s.DriverTeams["Driver C"])
		assert.Equal(t, 1, s.Races[0].Round)
		assert.Equal(t, 2, s.Races[1].Round)
	}
}

func TestComputeStandings_StableTies(t *testing.T) {
	r1 := placed(1, 1)
	r1.Points = model.SomeFloat(10)
	r2 := placed(2, 2)
	r2.Points = model.SomeFloat(10)
	r3 := placed(3, 3)
	r3.Points = model.SomeFloat(12)
	src := &fakeSource{
		sessions: []model.Session{race(1, 10, "2024-03-02")},
		results:  map[int][]model.Result{1: {r1, r2, r3}},
		rosters: map[int][]model.Driver{1: {
			driver(1, "First", "T1"),
			driver(2, "Second", "T2"),
			driver(3, "Third", "T3"),
		}},
	}

	s := compute(t, src)
	assert.Equal(t, []string{"Third", "First", "Second"}, names(s.Drivers))
	assert.Equal(t, []string{"T3", "T1", "T2"}, names(s.Teams))
}

func TestComputeStandings_ProgressCallback(t *testing.T) {
	src := scenarioA()
	src.sessions = append(src.sessions, race(101, 10, "2024-03-09"))

	var mu sync.Mutex
	var calls [][2]int
	_, err := ComputeStandings(context.Background(), src, 2024, Options{
		Progress: func(cur, total int) {
			mu.Lock()
			calls = append(calls, [2]int{cur, total})
			mu.Unlock()
		},
	})
	require.NoError(t, err)
	assert.Len(t, calls, 2)
	assert.Contains(t, calls, [2]int{2, 2})
}

func TestComputeStandings_Canceled(t *testing.T) {
	src := scenarioA()
	src.delays = map[int]time.Duration{100: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	s, err := ComputeStandings(ctx, src, 2024, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Drivers)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestComputeStandings_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ComputeStandings(ctx, scenarioA(), 2024, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
