package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

// ErrNoSession is returned by views that need a specific session.
var ErrNoSession = errors.New("select a specific session")

// Query is the full set of dashboard inputs. Zero fields mean "All".
type Query struct {
	Year         int    `json:"year"`
	MeetingKey   int    `json:"meeting_key,omitempty"`
	SessionKey   int    `json:"session_key,omitempty"`
	DriverNumber int    `json:"driver_number,omitempty"`
	Team         string `json:"team,omitempty"`
}

// HasSession reports whether a specific session is selected.
func (q Query) HasSession() bool {
	return q.SessionKey != 0
}

// keep applies the driver and team filters to a joined row.
func (q Query) keep(number int, team string) bool {
	if q.DriverNumber != 0 && number != q.DriverNumber {
		return false
	}
	if q.Team != "" && team != q.Team {
		return false
	}
	return true
}

// DataSource is everything the dashboard views read from the fetch layer.
type DataSource interface {
	Source
	Meetings(ctx context.Context, year int) []model.Meeting
	MeetingResults(ctx context.Context, meetingKey int) []model.Result
	Laps(ctx context.Context, sessionKey, driverNumber int) []model.Lap
	Stints(ctx context.Context, sessionKey, driverNumber int) []model.Stint
	Pits(ctx context.Context, sessionKey, driverNumber int) []model.Pit
	Positions(ctx context.Context, sessionKey, driverNumber int) []model.Position
	Weather(ctx context.Context, sessionKey int) []model.Weather
	// Failures is a running count of failed fetches. A view computed while
	// it moved may be missing data and is not memoized.
	Failures() uint64
}

var _ DataSource = (*openf1.API)(nil)

// DefaultMemoTTL bounds how long a computed view is reused.
const DefaultMemoTTL = openf1.DefaultTTL

// Dashboard computes every view as a function of a Query. Results are
// memoized per (view, query). Empty results and results computed while a
// fetch failed are not, so a view recovers as soon as the upstream does.
type Dashboard struct {
	src  DataSource
	opts Options
	ttl  time.Duration

	mu   sync.Mutex
	memo map[memoKey]memoEntry
}

type memoKey struct {
	view string
	q    Query
}

type memoEntry struct {
	val any
	at  time.Time
}

// NewDashboard creates a dashboard over src.
func NewDashboard(src DataSource, opts Options) *Dashboard {
	return &Dashboard{
		src:  src,
		opts: opts.withDefaults(),
		ttl:  DefaultMemoTTL,
		memo: make(map[memoKey]memoEntry),
	}
}

// SetMemoTTL changes how long views are reused. Non-positive values are ignored.
func (d *Dashboard) SetMemoTTL(ttl time.Duration) {
	if ttl > 0 {
		d.ttl = ttl
	}
}

// Reset forgets every memoized view.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memo = make(map[memoKey]memoEntry)
}

func (d *Dashboard) recall(k memoKey) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.memo[k]
	if !ok || d.opts.Clock.Since(e.at) >= d.ttl {
		return nil, false
	}
	return e.val, true
}

func (d *Dashboard) store(k memoKey, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memo[k] = memoEntry{val: v, at: d.opts.Clock.Now()}
}

// remember memoizes compute's result unless it reports itself empty, a fetch
// failed while computing, or the context ended.
func remember[T any](ctx context.Context, d *Dashboard, view string, q Query, compute func() (T, bool)) T {
	k := memoKey{view: view, q: q}
	if v, ok := d.recall(k); ok {
		return v.(T)
	}
	failures := d.src.Failures()
	v, keep := compute()
	if keep && ctx.Err() == nil && d.src.Failures() == failures {
		d.store(k, v)
	}
	return v
}

// Standings computes the season standings for q.Year.
func (d *Dashboard) Standings(ctx context.Context, q Query) (model.Standings, error) {
	return d.StandingsProgress(ctx, q, d.opts.Progress)
}

// StandingsProgress is Standings reporting session loading to progress
// instead of the dashboard's own callback. A memoized result reports nothing.
func (d *Dashboard) StandingsProgress(ctx context.Context, q Query, progress ProgressFunc) (model.Standings, error) {
	k := memoKey{view: "standings", q: Query{Year: q.Year}}
	if v, ok := d.recall(k); ok {
		return v.(model.Standings), nil
	}
	opts := d.opts
	opts.Progress = progress
	failures := d.src.Failures()
	s, err := ComputeStandings(ctx, d.src, q.Year, opts)
	if err != nil {
		return model.Standings{}, err
	}
	// A failed session_result fetch looks like an unclassified session.
	// Only a clean run is reused.
	if s.SessionsCounted > 0 && d.src.Failures() == failures {
		d.store(k, s)
	}
	return s, nil
}
