// Package cmd implements the f1dash CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/observability"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/store"
)

// version is set at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	flagYear      int
	flagMeeting   int
	flagSession   int
	flagDriver    int
	flagTeam      string
	flagBaseURL   string
	flagWorkers   int
	flagDiskCache bool
	flagQuiet     bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "f1dash",
	Short:         "Formula 1 season dashboard on OpenF1 data",
	Long:          "Championship standings and session views (results, laps, stints, pit stops, positions, weather) from the OpenF1 API.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStandings,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(err.Error()))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&flagYear, "year", "y", 0, "Season (default: config default_year, else the current year)")
	pf.IntVarP(&flagMeeting, "meeting", "m", 0, "Meeting key (race weekend)")
	pf.IntVarP(&flagSession, "session", "s", 0, "Session key")
	pf.IntVarP(&flagDriver, "driver", "d", 0, "Filter to a driver number")
	pf.StringVarP(&flagTeam, "team", "t", "", "Filter to a team name")
	pf.StringVar(&flagBaseURL, "base-url", "", "OpenF1 API root (default: config, else "+openf1.DefaultBaseURL+")")
	pf.IntVar(&flagWorkers, "workers", 0, "Concurrent race fetches for standings (default: config)")
	pf.BoolVar(&flagDiskCache, "disk-cache", false, "Keep responses in the on-disk SQLite cache")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress and fetch warnings")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
}

// loadConfig reads the config file and overlays command-line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagYear != 0 {
		cfg.General.DefaultYear = flagYear
	}
	if flagWorkers != 0 {
		cfg.General.Workers = flagWorkers
	}
	if flagBaseURL != "" {
		cfg.API.BaseURL = flagBaseURL
	}
	if cmd != nil && cmd.Flags().Changed("disk-cache") {
		cfg.API.DiskCache = flagDiskCache
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// currentQuery is the selection named by the command-line flags.
func currentQuery(cfg config.Config) pipeline.Query {
	return pipeline.Query{
		Year:         cfg.Year(time.Now()),
		MeetingKey:   flagMeeting,
		SessionKey:   flagSession,
		DriverNumber: flagDriver,
		Team:         flagTeam,
	}
}

// backend is the shared fetch stack: HTTP client, response cache, optional
// disk store, fail-soft API and the dashboard on top.
type backend struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	cache    *openf1.Cache
	store    *store.Cache // nil unless the disk cache is enabled
	api      *openf1.API
	dash     *pipeline.Dashboard
	warnings *openf1.Warnings
}

type backendOptions struct {
	logger   *slog.Logger
	registry prometheus.Registerer // nil keeps metrics unregistered
	notify   openf1.Notifier       // extra notifier next to the warnings buffer
	progress pipeline.ProgressFunc
}

// newBackend wires the fetch stack for cfg. A disk cache that cannot be
// opened is reported and skipped.
func newBackend(cfg config.Config, opts backendOptions) *backend {
	logger := opts.logger
	if logger == nil {
		logger = observability.NewLogger(os.Stderr, flagVerbose)
	}
	metrics := observability.NewMetricsForTesting()
	if opts.registry != nil {
		metrics = observability.NewMetrics(opts.registry)
	}

	b := &backend{cfg: cfg, logger: logger, metrics: metrics, warnings: openf1.NewWarnings()}

	cacheOpts := []openf1.CacheOption{
		openf1.WithTTL(cfg.CacheTTL()),
		openf1.WithLogger(logger),
		openf1.WithMetrics(metrics),
	}
	if cfg.API.DiskCache {
		st, err := store.Open(cfg.CacheDBPath())
		if err != nil {
			logger.Warn("disk cache unavailable, using memory only", "path", cfg.CacheDBPath(), "error", err)
		} else {
			b.store = st
			cacheOpts = append(cacheOpts, openf1.WithStore(st))
		}
	}

	client := openf1.NewClient(cfg.API.BaseURL, logger, metrics)
	b.cache = openf1.NewCache(client, cacheOpts...)

	// Fetch failures already reach the user through the notifier; the API's
	// own log lines are only wanted with --verbose.
	apiLogger := observability.Discard()
	if flagVerbose {
		apiLogger = logger
	}
	b.api = openf1.NewAPI(b.cache, openf1.Multi{b.warnings, opts.notify}, apiLogger)
	b.dash = pipeline.NewDashboard(b.api, pipeline.Options{
		Workers:  cfg.General.Workers,
		Progress: opts.progress,
		Logger:   logger,
		Metrics:  metrics,
	})
	b.dash.SetMemoTTL(cfg.CacheTTL())
	return b
}

// Close releases the disk cache, if any.
func (b *backend) Close() {
	if b.store != nil {
		_ = b.store.Close()
	}
}

// stderrNotifier prints each fetch failure as a warning line unless --quiet.
func stderrNotifier() openf1.Notifier {
	return openf1.NotifierFunc(func(endpoint string, err error) {
		if flagQuiet {
			return
		}
		w := openf1.Warning{Endpoint: endpoint, Message: err.Error()}
		fmt.Fprintln(os.Stderr, cli.RenderWarning(w.String()))
	})
}

// stderrProgress draws the standings progress line unless --quiet.
func stderrProgress(current, total int) {
	if flagQuiet || total == 0 {
		return
	}
	cli.ProgressLine(os.Stderr, "Race results", current, total)
}

// newCLIBackend is the backend used by the one-shot reporting commands.
func newCLIBackend(cmd *cobra.Command) (*backend, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newBackend(cfg, backendOptions{notify: stderrNotifier(), progress: stderrProgress}), nil
}
