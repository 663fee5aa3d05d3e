// Package daemon provides the long-running standings poller and its local
// read-only HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 5 * time.Minute

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventLeaderChange = "leader_change"
	EventPointsDelta  = "points_delta"
)

// Backend computes standings for the poll loop and /v1/standings.
type Backend interface {
	Standings(ctx context.Context, q pipeline.Query) (model.Standings, error)
}

// Records serves raw endpoint bodies for /v1/records.
type Records interface {
	Raw(ctx context.Context, endpoint string, params openf1.Params) []byte
}

// Config controls the daemon runtime behavior.
type Config struct {
	Year         int
	Interval     time.Duration
	Addr         string
	EventsBuffer int

	Backend  Backend
	Records  Records
	Warnings *openf1.Warnings // drained after every poll into last_error
	MCP      http.Handler     // mounted at /mcp when set

	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
}

// Snapshot is a compact standings state for status/event payloads.
type Snapshot struct {
	At            time.Time          `json:"at"`
	Year          int                `json:"year"`
	Races         int                `json:"races"`
	Leader        string             `json:"leader,omitempty"`
	LeaderTeam    string             `json:"leader_team,omitempty"`
	LeaderPoints  float64            `json:"leader_points"`
	TopTeam       string             `json:"top_team,omitempty"`
	TopTeamPoints float64            `json:"top_team_points"`
	Points        map[string]float64 `json:"points,omitempty"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Races          int                `json:"races"`
	Points         map[string]float64 `json:"points,omitempty"`
	PreviousLeader string             `json:"previous_leader,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Races == 0 && len(d.Points) == 0
}

// Event is emitted whenever the standings change.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Year            int       `json:"year"`
	Ready           bool      `json:"ready"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	WarningCount    int       `json:"warning_count"`
	EventCount      int       `json:"event_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	clock  clockwork.Clock
	logger *slog.Logger

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	lastError    string
	warningCount int
	hasSnapshot  bool
	snapshot     Snapshot
	nextEventID  int64
	events       []Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = DefaultInterval
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = observability.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetricsForTesting()
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	return &Service{
		cfg:       cfg,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		startedAt: cfg.Clock.Now(),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", "addr", s.cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	pollDone := make(chan struct{})
	pollCtx, stopPoll := context.WithCancel(ctx)
	go func() {
		defer close(pollDone)
		s.poll(pollCtx)
	}()
	defer func() {
		stopPoll()
		<-pollDone
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// poll seeds a snapshot, then recomputes standings every interval.
func (s *Service) poll(ctx context.Context) {
	s.pollOnce(ctx)

	ticker := s.clock.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.pollOnce(ctx)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, s.cfg.Interval)
	defer cancel()

	st, err := s.cfg.Backend.Standings(pollCtx, pipeline.Query{Year: s.cfg.Year})
	if ctx.Err() != nil {
		return
	}

	now := s.clock.Now()
	s.cfg.Metrics.Polls.Inc()
	s.cfg.Metrics.LastPollTime.Set(float64(now.Unix()))
	warned := s.drainWarnings()

	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.logger.Warn("poll failed", "year", s.cfg.Year, "error", err)
		return
	}

	snap := snapshotFromStandings(st, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if warned != nil {
		s.lastError = warned.String()
	}

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: EventPointsDelta, Timestamp: now, Snapshot: snap, Delta: delta}
			if delta.PreviousLeader != "" {
				ev.Type = EventLeaderChange
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.logger.Info("standings changed", "type", ev.Type, "leader", snap.Leader, "points", snap.LeaderPoints)
		s.publishEvent(ev)
	}
}

// drainWarnings folds fetch warnings raised since the last poll into the
// warning count and returns the newest one.
func (s *Service) drainWarnings() *openf1.Warning {
	if s.cfg.Warnings == nil {
		return nil
	}
	ws := s.cfg.Warnings.Drain()
	if len(ws) == 0 {
		return nil
	}
	s.mu.Lock()
	s.warningCount += len(ws)
	s.mu.Unlock()
	last := ws[len(ws)-1]
	return &last
}

func snapshotFromStandings(st model.Standings, at time.Time) Snapshot {
	snap := Snapshot{
		At:     at,
		Year:   st.Year,
		Races:  st.SessionsCounted,
		Points: make(map[string]float64, len(st.Drivers)),
	}
	if l, ok := st.Leader(); ok {
		snap.Leader = l.Name
		snap.LeaderTeam = l.Team
		snap.LeaderPoints = l.Points
	}
	if len(st.Teams) > 0 {
		snap.TopTeam = st.Teams[0].Name
		snap.TopTeamPoints = st.Teams[0].Points
	}
	for _, d := range st.Drivers {
		snap.Points[d.Name] = d.Points
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{Races: curr.Races - prev.Races}
	for name, pts := range curr.Points {
		if diff := pts - prev.Points[name]; diff != 0 {
			if d.Points == nil {
				d.Points = make(map[string]float64)
			}
			d.Points[name] = diff
		}
	}
	for name, pts := range prev.Points {
		if _, ok := curr.Points[name]; !ok && pts != 0 {
			if d.Points == nil {
				d.Points = make(map[string]float64)
			}
			d.Points[name] = -pts
		}
	}
	if prev.Leader != curr.Leader && !d.isZero() {
		d.PreviousLeader = prev.Leader
		if d.PreviousLeader == "" {
			d.PreviousLeader = "none"
		}
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Year:            s.cfg.Year,
		Ready:           s.hasSnapshot,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		WarningCount:    s.warningCount,
		EventCount:      len(s.events),
	}
}

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/standings", s.handleStandings)
	mux.HandleFunc("GET /v1/records/{endpoint}", s.handleRecords)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	if s.cfg.MCP != nil {
		mux.Handle("/mcp", s.cfg.MCP)
	}
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	ready := s.hasSnapshot
	s.mu.RUnlock()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "waiting for first poll",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleStandings(w http.ResponseWriter, r *http.Request) {
	year := s.cfg.Year
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < config.FirstSeason {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("year must be a number >= %d", config.FirstSeason),
			})
			return
		}
		year = y
	}

	st, err := s.cfg.Backend.Standings(r.Context(), pipeline.Query{Year: year})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleRecords(w http.ResponseWriter, r *http.Request) {
	endpoint := r.PathValue("endpoint")
	if !openf1.KnownEndpoint(endpoint) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown endpoint " + endpoint})
		return
	}

	params := openf1.Params{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 && v[0] != "" {
			params[k] = v[0]
		}
	}

	body := s.cfg.Records.Raw(r.Context(), endpoint, params)
	if body == nil {
		body = []byte("[]")
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
