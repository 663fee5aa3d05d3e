package openf1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
)

// Endpoint names.
const (
	EndpointMeetings      = "meetings"
	EndpointSessions      = "sessions"
	EndpointDrivers       = "drivers"
	EndpointSessionResult = "session_result"
	EndpointLaps          = "laps"
	EndpointStints        = "stints"
	EndpointPit           = "pit"
	EndpointPosition      = "position"
	EndpointWeather       = "weather"
)

// Endpoints lists every endpoint the dashboard reads.
var Endpoints = []string{
	EndpointMeetings,
	EndpointSessions,
	EndpointDrivers,
	EndpointSessionResult,
	EndpointLaps,
	EndpointStints,
	EndpointPit,
	EndpointPosition,
	EndpointWeather,
}

// KnownEndpoint reports whether name is one of Endpoints.
func KnownEndpoint(name string) bool {
	for _, ep := range Endpoints {
		if ep == name {
			return true
		}
	}
	return false
}

// API is the fail-soft fetch surface: every failure becomes a warning and an
// empty result, so callers only ever see "data" or "no data".
type API struct {
	getter   Getter
	notifier Notifier
	logger   *slog.Logger
	failures atomic.Uint64
}

// NewAPI wraps getter. A nil notifier drops warnings after logging them.
func NewAPI(getter Getter, notifier Notifier, logger *slog.Logger) *API {
	if logger == nil {
		logger = observability.Discard()
	}
	return &API{getter: getter, notifier: notifier, logger: logger}
}

// Fetch returns the raw records for endpoint and params, or nil on failure.
func (a *API) Fetch(ctx context.Context, endpoint string, params Params) []model.Record {
	var recs []model.Record
	if !a.fetchInto(ctx, endpoint, params, &recs) {
		return nil
	}
	return recs
}

// Raw returns the response body for endpoint and params, or nil on failure.
func (a *API) Raw(ctx context.Context, endpoint string, params Params) []byte {
	body, err := a.getter.Get(ctx, endpoint, params)
	if err != nil {
		a.fail(ctx, endpoint, params, err)
		return nil
	}
	return body
}

func (a *API) fetchInto(ctx context.Context, endpoint string, params Params, out any) bool {
	body := a.Raw(ctx, endpoint, params)
	if body == nil {
		return false
	}
	err := json.Unmarshal(body, out)
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		// The rest of the payload decoded; only the odd field is left zero.
		a.logger.Debug("skipped mistyped field", "endpoint", endpoint, "field", typeErr.Field, "error", err)
	case err != nil:
		a.fail(ctx, endpoint, params, fmt.Errorf("decoding %s: %w", endpoint, err))
		return false
	}
	return true
}

func (a *API) fail(ctx context.Context, endpoint string, params Params, err error) {
	// Cancellation is the caller's decision, not an upstream failure.
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		a.logger.Debug("fetch canceled", "endpoint", endpoint, "params", params.Encode())
		return
	}
	a.failures.Add(1)
	a.logger.Warn("fetch failed", "endpoint", endpoint, "params", params.Encode(), "error", err)
	if a.notifier != nil {
		a.notifier.Warn(endpoint, err)
	}
}

// Failures counts failed fetches since the API was created. Canceled
// requests are not counted.
func (a *API) Failures() uint64 {
	return a.failures.Load()
}

func fetchTyped[T any](ctx context.Context, a *API, endpoint string, params Params) []T {
	var out []T
	if !a.fetchInto(ctx, endpoint, params, &out) {
		return nil
	}
	return out
}

// Meetings returns the meetings of a season.
func (a *API) Meetings(ctx context.Context, year int) []model.Meeting {
	return fetchTyped[model.Meeting](ctx, a, EndpointMeetings, Int("year", year))
}

// Meeting returns a single meeting by key.
func (a *API) Meeting(ctx context.Context, meetingKey int) (model.Meeting, bool) {
	ms := fetchTyped[model.Meeting](ctx, a, EndpointMeetings, Int("meeting_key", meetingKey))
	if len(ms) == 0 {
		return model.Meeting{}, false
	}
	return ms[0], true
}

// SessionFilter narrows a sessions listing. Zero fields are not sent.
type SessionFilter struct {
	Year        int
	MeetingKey  int
	SessionName string
}

func (f SessionFilter) params() Params {
	return Params{}.
		WithInt("year", f.Year).
		WithInt("meeting_key", f.MeetingKey).
		With("session_name", f.SessionName)
}

// Sessions returns the sessions matching f.
func (a *API) Sessions(ctx context.Context, f SessionFilter) []model.Session {
	return fetchTyped[model.Session](ctx, a, EndpointSessions, f.params())
}

// Drivers returns the roster for a session, or for a whole meeting when
// sessionKey is zero.
func (a *API) Drivers(ctx context.Context, sessionKey, meetingKey int) []model.Driver {
	p := Params{}.WithInt("session_key", sessionKey)
	if sessionKey == 0 {
		p = p.WithInt("meeting_key", meetingKey)
	}
	return fetchTyped[model.Driver](ctx, a, EndpointDrivers, p)
}

// SessionResults returns the classification of a session.
func (a *API) SessionResults(ctx context.Context, sessionKey int) []model.Result {
	return fetchTyped[model.Result](ctx, a, EndpointSessionResult, Int("session_key", sessionKey))
}

// MeetingResults returns the classifications of every session in a meeting.
func (a *API) MeetingResults(ctx context.Context, meetingKey int) []model.Result {
	return fetchTyped[model.Result](ctx, a, EndpointSessionResult, Int("meeting_key", meetingKey))
}

// Laps returns laps for a session, optionally for one driver.
func (a *API) Laps(ctx context.Context, sessionKey, driverNumber int) []model.Lap {
	return fetchTyped[model.Lap](ctx, a, EndpointLaps, sessionDriver(sessionKey, driverNumber))
}

// Stints returns tyre stints for a session, optionally for one driver.
func (a *API) Stints(ctx context.Context, sessionKey, driverNumber int) []model.Stint {
	return fetchTyped[model.Stint](ctx, a, EndpointStints, sessionDriver(sessionKey, driverNumber))
}

// Pits returns pit stops for a session, optionally for one driver.
func (a *API) Pits(ctx context.Context, sessionKey, driverNumber int) []model.Pit {
	return fetchTyped[model.Pit](ctx, a, EndpointPit, sessionDriver(sessionKey, driverNumber))
}

// Positions returns running positions for a session, optionally for one driver.
func (a *API) Positions(ctx context.Context, sessionKey, driverNumber int) []model.Position {
	return fetchTyped[model.Position](ctx, a, EndpointPosition, sessionDriver(sessionKey, driverNumber))
}

// Weather returns weather samples for a session.
func (a *API) Weather(ctx context.Context, sessionKey int) []model.Weather {
	return fetchTyped[model.Weather](ctx, a, EndpointWeather, Int("session_key", sessionKey))
}

func sessionDriver(sessionKey, driverNumber int) Params {
	return Int("session_key", sessionKey).WithInt("driver_number", driverNumber)
}
