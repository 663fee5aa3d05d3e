package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "f1dash"

// Metrics holds the Prometheus counters, histograms, and gauges for fetches,
// standings computations, and the daemon poll loop.
type Metrics struct {
	// Fetch layer.
	Requests        *prometheus.CounterVec   // labels: endpoint, outcome={success,error,rate_limited,not_found,canceled}
	RequestDuration *prometheus.HistogramVec // labels: endpoint
	CacheLookups    *prometheus.CounterVec   // labels: result={hit,miss,coalesced,disk_hit}

	// Aggregation.
	StandingsRuns     *prometheus.CounterVec // labels: outcome={success,canceled}
	StandingsDuration prometheus.Histogram
	SessionsSkipped   prometheus.Counter

	// Daemon.
	Polls        prometheus.Counter
	LastPollTime prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.CacheLookups,
		m.StandingsRuns,
		m.StandingsDuration,
		m.SessionsSkipped,
		m.Polls,
		m.LastPollTime,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "openf1_requests_total",
			Help:      "OpenF1 API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "openf1_request_duration_seconds",
			Help:      "OpenF1 API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
		StandingsRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_runs_total",
			Help:      "Season standings computations by outcome.",
		}, []string{"outcome"}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_duration_seconds",
			Help:      "Duration of a full season standings computation.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		SessionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_skipped_total",
			Help:      "Race sessions skipped for missing classification data.",
		}),
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "daemon_polls_total",
			Help:      "Completed daemon poll cycles.",
		}),
		LastPollTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daemon_last_poll_timestamp_seconds",
			Help:      "Unix time of the last completed poll.",
		}),
	}
}
