// Package pipeline turns OpenF1 records into championship standings and the
// per-session views of the dashboard.
package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

// DefaultWorkers bounds concurrent per-session fetches.
const DefaultWorkers = 4

// Source is the subset of the fetch layer the aggregator reads. Every method
// fails soft: an unavailable endpoint yields an empty result.
type Source interface {
	Sessions(ctx context.Context, f openf1.SessionFilter) []model.Session
	SessionResults(ctx context.Context, sessionKey int) []model.Result
	Drivers(ctx context.Context, sessionKey, meetingKey int) []model.Driver
	Meeting(ctx context.Context, meetingKey int) (model.Meeting, bool)
}

// ProgressFunc is called as sessions finish loading.
// current is the number of sessions processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Options tune ComputeStandings. The zero value is usable.
type Options struct {
	Workers  int
	Progress ProgressFunc
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Clock    clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = observability.Discard()
	}
	if o.Metrics == nil {
		o.Metrics = observability.NewMetricsForTesting()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// ComputeStandings aggregates driver and team standings for a season from
// every race session the upstream lists. Sessions load on a bounded worker
// pool and are folded in listing order. A cancelled context returns
// ctx.Err() and no standings.
func ComputeStandings(ctx context.Context, src Source, year int, opts Options) (model.Standings, error) {
	opts = opts.withDefaults()
	start := opts.Clock.Now()

	sessions := src.Sessions(ctx, openf1.SessionFilter{Year: year, SessionName: model.SessionNameRace})
	if err := ctx.Err(); err != nil {
		opts.Metrics.StandingsRuns.WithLabelValues("canceled").Inc()
		return model.Standings{}, err
	}

	data, err := LoadSessions(ctx, src, sessions, opts)
	if err != nil {
		opts.Metrics.StandingsRuns.WithLabelValues("canceled").Inc()
		return model.Standings{}, err
	}

	ledger := Fold(data)
	skipped := len(data) - ledger.Counted()
	opts.Metrics.SessionsSkipped.Add(float64(skipped))
	opts.Metrics.StandingsRuns.WithLabelValues("success").Inc()
	opts.Metrics.StandingsDuration.Observe(opts.Clock.Since(start).Seconds())
	opts.Logger.Debug("standings computed",
		"year", year,
		"sessions", len(sessions),
		"skipped", skipped,
		"duration", opts.Clock.Since(start),
	)

	return ledger.Standings(year, opts.Clock.Now()), nil
}

// LoadSessions fetches results, roster and label for each session on a
// bounded pool. The returned slice is in listing order whatever order the
// fetches complete in.
func LoadSessions(ctx context.Context, src Source, sessions []model.Session, opts Options) ([]SessionData, error) {
	opts = opts.withDefaults()
	data := make([]SessionData, len(sessions))
	if len(sessions) == 0 {
		return data, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	var processed atomic.Int64

	for i, s := range sessions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data[i] = loadSession(gctx, src, i, s)
			n := processed.Add(1)
			if opts.Progress != nil {
				opts.Progress(int(n), len(sessions))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Fetches fail soft, so cancellation only shows up on the context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func loadSession(ctx context.Context, src Source, order int, s model.Session) SessionData {
	sd := SessionData{Session: s, Order: order}

	sd.Results = src.SessionResults(ctx, s.SessionKey)
	if !Countable(sd.Results) {
		return sd
	}

	sd.Roster = src.Drivers(ctx, s.SessionKey, 0)
	sd.Label = strconv.Itoa(s.SessionKey)
	if m, ok := src.Meeting(ctx, s.MeetingKey); ok && m.MeetingName != "" {
		sd.Label = m.MeetingName
	}
	return sd
}

