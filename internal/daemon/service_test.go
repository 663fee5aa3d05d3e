package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

// fakeBackend returns queued standings, repeating the last one.
type fakeBackend struct {
	mu    sync.Mutex
	queue []model.Standings
	err   error
	years []int
}

func (f *fakeBackend) Standings(_ context.Context, q pipeline.Query) (model.Standings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.years = append(f.years, q.Year)
	if f.err != nil {
		return model.Standings{}, f.err
	}
	if len(f.queue) == 0 {
		return model.Standings{Year: q.Year}, nil
	}
	st := f.queue[0]
	if len(f.queue) > 1 {
		f.queue = f.queue[1:]
	}
	return st, nil
}

type fakeRecords struct {
	endpoint string
	params   openf1.Params
	body     []byte
}

func (f *fakeRecords) Raw(_ context.Context, endpoint string, params openf1.Params) []byte {
	f.endpoint, f.params = endpoint, params
	return f.body
}

func standings(races int, drivers ...model.Standing) model.Standings {
	return model.Standings{Year: 2024, Drivers: drivers, SessionsCounted: races}
}

func newTestService(backend Backend, records Records, warnings *openf1.Warnings) (*Service, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC))
	s := New(Config{
		Year:         2024,
		Interval:     time.Minute,
		EventsBuffer: 10,
		Backend:      backend,
		Records:      records,
		Warnings:     warnings,
		Clock:        clock,
		Metrics:      observability.NewMetricsForTesting(),
		Gatherer:     prometheus.NewRegistry(),
	})
	return s, clock
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Races: 1, Leader: "A", Points: map[string]float64{"A": 25, "B": 18, "C": 1}}
	curr := Snapshot{Races: 2, Leader: "B", Points: map[string]float64{"A": 33, "B": 43}}

	delta := diffSnapshots(prev, curr)
	assert.Equal(t, 1, delta.Races)
	assert.Equal(t, map[string]float64{"A": 8, "B": 25, "C": -1}, delta.Points)
	assert.Equal(t, "A", delta.PreviousLeader)
	assert.False(t, delta.isZero())

	same := diffSnapshots(curr, curr)
	assert.True(t, same.isZero())
	assert.Empty(t, same.PreviousLeader)
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Backend: &fakeBackend{}, EventsBuffer: 2})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPollOnce_Events(t *testing.T) {
	backend := &fakeBackend{queue: []model.Standings{
		standings(1, model.Standing{Name: "A", Points: 25}, model.Standing{Name: "B", Points: 18}),
		standings(1, model.Standing{Name: "A", Points: 25}, model.Standing{Name: "B", Points: 18}),
		standings(2, model.Standing{Name: "A", Points: 43}, model.Standing{Name: "B", Points: 43}),
		standings(3, model.Standing{Name: "B", Points: 68}, model.Standing{Name: "A", Points: 61}),
	}}
	s, _ := newTestService(backend, nil, nil)
	ctx := context.Background()

	for range 4 {
		s.pollOnce(ctx)
	}

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()

	require.Len(t, events, 3)
	assert.Equal(t, EventSnapshot, events[0].Type)
	assert.Equal(t, EventPointsDelta, events[1].Type)
	assert.Equal(t, map[string]float64{"A": 18, "B": 25}, events[1].Delta.Points)
	assert.Equal(t, EventLeaderChange, events[2].Type)
	assert.Equal(t, "A", events[2].Delta.PreviousLeader)
	assert.Equal(t, "B", events[2].Snapshot.Leader)

	st := s.snapshotStatus()
	assert.Equal(t, int64(4), st.PollCount)
	assert.True(t, st.Ready)
	assert.Equal(t, 3, st.Summary.Races)
	assert.Equal(t, []int{2024, 2024, 2024, 2024}, backend.years)
}

func TestPollOnce_ErrorsAndWarnings(t *testing.T) {
	warnings := openf1.NewWarnings()
	backend := &fakeBackend{err: errors.New("boom")}
	s, _ := newTestService(backend, nil, warnings)

	s.pollOnce(context.Background())
	st := s.snapshotStatus()
	assert.Equal(t, "boom", st.LastError)
	assert.False(t, st.Ready)

	backend.mu.Lock()
	backend.err = nil
	backend.mu.Unlock()
	warnings.Warn("session_result", errors.New("unexpected status 500"))

	s.pollOnce(context.Background())
	st = s.snapshotStatus()
	assert.True(t, st.Ready)
	assert.Equal(t, "Could not fetch session_result: unexpected status 500", st.LastError)
	assert.Equal(t, 1, st.WarningCount)

	s.pollOnce(context.Background())
	assert.Empty(t, s.snapshotStatus().LastError)
}

func TestPollOnce_CanceledIsSilent(t *testing.T) {
	backend := &fakeBackend{err: context.Canceled}
	s, _ := newTestService(backend, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.pollOnce(ctx)
	st := s.snapshotStatus()
	assert.Zero(t, st.PollCount)
	assert.Empty(t, st.LastError)
}

func TestPoll_TicksWithClock(t *testing.T) {
	backend := &fakeBackend{}
	s, clock := newTestService(backend, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.poll(ctx)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool {
		return s.snapshotStatus().PollCount == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestHandler_HealthAndReady(t *testing.T) {
	s, _ := newTestService(&fakeBackend{}, nil, nil)
	h := s.Handler()

	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.pollOnce(context.Background())
	rec = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	s := New(Config{Backend: &fakeBackend{}, Metrics: m, Gatherer: reg})
	s.pollOnce(context.Background())

	rec := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "f1dash_daemon_polls_total 1")
}

func TestHandler_StatusAndEvents(t *testing.T) {
	backend := &fakeBackend{queue: []model.Standings{standings(1, model.Standing{Name: "A", Team: "T", Points: 25})}}
	s, _ := newTestService(backend, nil, nil)
	s.pollOnce(context.Background())
	h := s.Handler()

	var st Status
	rec := get(t, h, "/v1/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 2024, st.Year)
	assert.Equal(t, "A", st.Summary.Leader)
	assert.Equal(t, 25.0, st.Summary.LeaderPoints)
	assert.Equal(t, 60, st.PollIntervalSec)

	var events []Event
	rec = get(t, h, "/v1/events")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, EventSnapshot, events[0].Type)
}

func TestHandler_Standings(t *testing.T) {
	backend := &fakeBackend{queue: []model.Standings{standings(1, model.Standing{Name: "A", Points: 25})}}
	s, _ := newTestService(backend, nil, nil)
	h := s.Handler()

	rec := get(t, h, "/v1/standings?year=2023")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2023}, backend.years)

	var st model.Standings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Len(t, st.Drivers, 1)
	assert.Equal(t, "A", st.Drivers[0].Name)

	for _, bad := range []string{"abc", "2019"} {
		rec = get(t, h, "/v1/standings?year="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}

	backend.err = context.DeadlineExceeded
	rec = get(t, h, "/v1/standings")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Records(t *testing.T) {
	records := &fakeRecords{body: []byte(`[{"lap_number":1}]`)}
	s, _ := newTestService(&fakeBackend{}, records, nil)
	h := s.Handler()

	rec := get(t, h, "/v1/records/laps?session_key=9158&driver_number=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"lap_number":1}]`, rec.Body.String())
	assert.Equal(t, "laps", records.endpoint)
	assert.Equal(t, openf1.Params{"session_key": "9158", "driver_number": "1"}, records.params)

	records.body = nil
	rec = get(t, h, "/v1/records/laps?session_key=1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())

	rec = get(t, h, "/v1/records/car_data")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_MCPMounted(t *testing.T) {
	s := New(Config{
		Backend: &fakeBackend{},
		MCP: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
