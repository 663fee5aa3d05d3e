package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

var fixture = map[string]string{
	"sessions?session_name=Race&year=2023": `[{"session_key": 9158, "meeting_key": 1219, "session_name": "Race", "date_start": "2023-03-05T15:00:00+00:00"}]`,
	"meetings?year=2023":                   `[{"meeting_key": 1219, "meeting_name": "Bahrain Grand Prix"}]`,
	"meetings?meeting_key=1219":            `[{"meeting_key": 1219, "meeting_name": "Bahrain Grand Prix"}]`,
	"sessions?meeting_key=1219":            `[{"session_key": 9157, "session_name": "Qualifying"}, {"session_key": 9158, "session_name": "Race"}]`,
	"drivers?session_key=9158":             `[{"driver_number": 1, "full_name": "Max VERSTAPPEN", "name_acronym": "VER", "team_name": "Red Bull Racing", "team_colour": "3671C6"}, {"driver_number": 11, "full_name": "Sergio PEREZ", "name_acronym": "PER", "team_name": "Red Bull Racing", "team_colour": "3671C6"}, {"driver_number": 14, "full_name": "Fernando ALONSO", "name_acronym": "ALO", "team_name": "Aston Martin", "team_colour": "229971"}]`,
	"session_result?session_key=9158":      `[{"driver_number": 1, "position": 1, "points": 25, "gap_to_leader": 0}, {"driver_number": 11, "position": 2, "points": 18, "gap_to_leader": 11.987}, {"driver_number": 14, "position": 3, "points": 15, "gap_to_leader": 38.637}]`,
	"laps?session_key=9158":                `[{"driver_number": 1, "lap_number": 1, "lap_duration": 97.5}, {"driver_number": 1, "lap_number": 2, "lap_duration": 96.2}, {"driver_number": 14, "lap_number": 1, "lap_duration": 98.0}, {"driver_number": 14, "lap_number": 2, "lap_duration": 99.0}]`,
	"stints?session_key=9158":              `[{"driver_number": 1, "stint_number": 1, "compound": "SOFT", "lap_start": 1, "lap_end": 14}, {"driver_number": 1, "stint_number": 2, "compound": "HARD", "lap_start": 15, "lap_end": 57}]`,
	"pit?session_key=9158":                 `[{"driver_number": 1, "lap_number": 14, "pit_duration": 23.5}, {"driver_number": 14, "lap_number": 13, "pit_duration": 22.1}]`,
	"position?session_key=9158":            `[{"driver_number": 11, "position": 1, "date": "2023-03-05T15:01:00+00:00"}, {"driver_number": 1, "position": 2, "date": "2023-03-05T15:01:00+00:00"}, {"driver_number": 1, "position": 1, "date": "2023-03-05T15:03:00+00:00"}, {"driver_number": 11, "position": 2, "date": "2023-03-05T15:03:00+00:00"}]`,
	"weather?session_key=9158":             `[{"air_temperature": 26, "track_temperature": 30, "humidity": 50, "wind_speed": 2.5, "rainfall": 0, "pressure": 1010, "date": "2023-03-05T15:00:00+00:00"}, {"air_temperature": 28, "track_temperature": 34, "humidity": 40, "wind_speed": 1.5, "rainfall": 0, "pressure": 1011, "date": "2023-03-05T15:05:00+00:00"}]`,
}

func newTestDashboard() (*pipeline.Dashboard, *openf1.Warnings) {
	g := openf1.GetterFunc(func(_ context.Context, ep string, p openf1.Params) ([]byte, error) {
		if body, ok := fixture[openf1.Key(ep, p)]; ok {
			return []byte(body), nil
		}
		return []byte(`[]`), nil
	})
	w := openf1.NewWarnings()
	return pipeline.NewDashboard(openf1.NewAPI(g, w, nil), pipeline.Options{}), w
}

func raceQuery() pipeline.Query {
	return pipeline.Query{Year: 2023, MeetingKey: 1219, SessionKey: 9158}
}

// newLoadedApp returns a 120x40 app with q fully loaded.
func newLoadedApp(t *testing.T, q pipeline.Query) App {
	t.Helper()
	d, w := newTestDashboard()
	now := time.Date(2023, 3, 6, 12, 0, 0, 0, time.UTC)
	a := NewApp(Options{
		Dashboard: d,
		Warnings:  w,
		Config:    config.DefaultConfig(),
		Query:     q,
		Now:       func() time.Time { return now },
		Save:      func(config.Config) error { return nil },
	})

	data, err := loadViews(context.Background(), d, q, nil)
	require.NoError(t, err)

	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Gen: m.(App).gen, Data: data, LoadTime: time.Second})
	a = m.(App)
	require.True(t, a.loaded)
	return a
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestLoadViews_Session(t *testing.T) {
	d, _ := newTestDashboard()
	v, err := loadViews(context.Background(), d, raceQuery(), nil)
	require.NoError(t, err)

	require.NoError(t, v.standingsErr)
	leader, ok := v.standings.Leader()
	require.True(t, ok)
	assert.Equal(t, "Max VERSTAPPEN", leader.Name)
	assert.InDelta(t, 25, leader.Points, 1e-9)

	assert.Len(t, v.selection.Sessions, 2)
	assert.Len(t, v.overview.Results, 3)
	assert.Len(t, v.laps.Rows, 4)
	assert.Len(t, v.stints.Rows, 2)
	assert.Equal(t, 2, v.pits.Count)
	assert.Len(t, v.positions.Changes, 2)
	assert.Len(t, v.weather.Samples, 2)
}

func TestLoadViews_SeasonOnlySkipsSessionViews(t *testing.T) {
	d, _ := newTestDashboard()
	v, err := loadViews(context.Background(), d, pipeline.Query{Year: 2023}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, v.standings.Drivers)
	assert.Empty(t, v.laps.Rows)
	assert.Empty(t, v.weather.Samples)
}

func TestLoadViews_Cancelled(t *testing.T) {
	d, _ := newTestDashboard()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loadViews(ctx, d, raceQuery(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadViews_ReportsProgress(t *testing.T) {
	d, _ := newTestDashboard()
	var last [2]int
	_, err := loadViews(context.Background(), d, pipeline.Query{Year: 2023}, func(cur, total int) {
		last = [2]int{cur, total}
	})
	require.NoError(t, err)
	assert.Equal(t, [2]int{1, 1}, last)
}

func TestUpdate_IgnoresStaleLoad(t *testing.T) {
	a := newLoadedApp(t, raceQuery())
	a.startLoad()
	t.Cleanup(a.cancel)
	stale := a.gen - 1

	m, _ := a.Update(DataLoadedMsg{Gen: stale, Data: viewData{}})
	got := m.(App)
	assert.True(t, got.loading, "stale result must not finish the current load")
	assert.NotEmpty(t, got.data.standings.Drivers, "stale result must not replace data")
}

func TestUpdate_LoadErrorOffersRetry(t *testing.T) {
	d, _ := newTestDashboard()
	a := NewApp(Options{Dashboard: d, Config: config.DefaultConfig(), Query: raceQuery()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Gen: m.(App).gen, Err: context.DeadlineExceeded})
	a = m.(App)

	assert.False(t, a.loaded)
	assert.True(t, errors.Is(a.loadErr, context.DeadlineExceeded))
	assert.Contains(t, stripANSI(a.View()), "[r] retry")

	a = press(t, a, "r")
	assert.True(t, a.loading)
}

func TestKeys_SwitchTabs(t *testing.T) {
	a := newLoadedApp(t, raceQuery())
	assert.Equal(t, components.TabStandings, a.activeTab)

	a = press(t, a, "l")
	assert.Equal(t, components.TabLaps, a.activeTab)
	a = press(t, a, "right")
	assert.Equal(t, components.TabStints, a.activeTab)
	a = press(t, a, "x", "right")
	assert.Equal(t, components.TabStandings, a.activeTab, "wraps past settings")
	a = press(t, a, "left")
	assert.Equal(t, components.TabSettings, a.activeTab)
}

func TestKeys_MouseSelectsTab(t *testing.T) {
	a := newLoadedApp(t, raceQuery())
	x := 0
	for i := 0; i < components.TabPits; i++ {
		x += components.TabVisualWidth(components.Tabs[i], i == a.activeTab) + 1
	}
	m, _ := a.Update(tea.MouseMsg{X: x + 1, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, components.TabPits, m.(App).activeTab)
}

func TestView_EachTab(t *testing.T) {
	want := map[int]string{
		components.TabStandings: "Drivers' Championship",
		components.TabResults:   "Driver Grid",
		components.TabLaps:      "Lap Time Distribution",
		components.TabStints:    "Tyre Strategy",
		components.TabPits:      "Pit Stop Durations",
		components.TabPositions: "Position Changes",
		components.TabWeather:   "Air Temperature",
		components.TabSettings:  "Default Season",
	}
	a := newLoadedApp(t, raceQuery())
	for tab, text := range want {
		a.activeTab = tab
		out := a.View()
		plain := stripANSI(out)
		assert.Contains(t, plain, text, "tab %d", tab)

		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 40, "tab %d fills the terminal height", tab)
		for i, l := range lines {
			assert.LessOrEqual(t, lipgloss.Width(l), 120, "tab %d line %d", tab, i)
		}
	}
}

func TestView_SessionTabsNeedSession(t *testing.T) {
	a := newLoadedApp(t, pipeline.Query{Year: 2023})
	for tab, what := range map[int]string{
		components.TabLaps:      "lap times",
		components.TabStints:    "stints",
		components.TabPits:      "pit stop data",
		components.TabPositions: "position data",
		components.TabWeather:   "weather data",
	} {
		a.activeTab = tab
		assert.Contains(t, stripANSI(a.View()), "view "+what, "tab %d", tab)
	}

	a.activeTab = components.TabResults
	assert.Contains(t, stripANSI(a.View()), pipeline.MsgNoSelection)
}

func TestView_Help(t *testing.T) {
	a := press(t, newLoadedApp(t, raceQuery()), "?")
	assert.True(t, a.showHelp)
	assert.Contains(t, stripANSI(a.View()), "refresh")

	a = press(t, a, "j")
	assert.False(t, a.showHelp, "any key closes help")
}

func TestSearch_FiltersResults(t *testing.T) {
	a := newLoadedApp(t, raceQuery())
	a = press(t, a, "e", "/")
	require.True(t, a.searching)

	a = press(t, a, "a", "l", "o", "enter")
	assert.False(t, a.searching)
	assert.Equal(t, "alo", a.searchQuery)

	body := stripANSI(a.resultsBody(a.data.overview.Results, 120))
	assert.Contains(t, body, "Fernando ALONSO")
	assert.NotContains(t, body, "Sergio PEREZ")

	a = press(t, a, "esc")
	assert.Empty(t, a.searchQuery)
}

func TestSearch_OnlyOnNameTabs(t *testing.T) {
	a := press(t, newLoadedApp(t, raceQuery()), "w", "/")
	assert.False(t, a.searching)
}

func TestFilterValues_Sanitize(t *testing.T) {
	d, _ := newTestDashboard()

	v := filterValuesFrom(pipeline.Query{Year: 2023, SessionKey: 9158})
	v.sanitize(d)
	assert.Zero(t, v.Session, "a session needs its meeting")

	v = filterValuesFrom(pipeline.Query{Year: 2023, MeetingKey: 1219, SessionKey: 4242})
	v.sanitize(d)
	assert.Zero(t, v.Session, "session from another meeting")

	v = filterValuesFrom(raceQuery())
	v.sanitize(d)
	assert.Equal(t, raceQuery(), v.query())
}

func TestSettings_EditAndSave(t *testing.T) {
	var saved []config.Config
	a := newLoadedApp(t, raceQuery())
	a.save = func(c config.Config) error { saved = append(saved, c); return nil }

	a = press(t, a, "x")
	a.settings.cursor = settingsFieldCacheTTL
	a = press(t, a, "enter")
	require.True(t, a.settings.editing)

	a.settings.input.SetValue("120")
	a = press(t, a, "enter")
	require.NoError(t, a.settings.saveErr)
	assert.True(t, a.settings.saved)
	assert.Equal(t, 120, a.cfg.API.CacheTTLSec)
	require.Len(t, saved, 1)
	assert.Equal(t, 120, saved[0].API.CacheTTLSec)
}

func TestSettings_RejectsInvalid(t *testing.T) {
	cfg := config.DefaultConfig()

	_, err := applySetting(cfg, settingsFieldWorkers, "many")
	assert.Error(t, err)

	_, err = applySetting(cfg, settingsFieldTheme, "neon")
	assert.Error(t, err)

	got, err := applySetting(cfg, settingsFieldYear, "")
	require.NoError(t, err)
	assert.Zero(t, got.General.DefaultYear)

	got, err = applySetting(cfg, settingsFieldYear, "2019")
	require.NoError(t, err, "range is checked by Validate")
	assert.Error(t, got.Validate())
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
