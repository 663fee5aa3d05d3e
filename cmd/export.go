package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

var (
	flagExportFormat string
	flagExportOutput string
)

// exportSource builds one exportable table.
type exportSource func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error)

var exportSources = map[string]exportSource{
	"drivers": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		s, err := b.dash.Standings(ctx, q)
		return cli.DriverStandingsTable(s), err
	},
	"teams": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		s, err := b.dash.Standings(ctx, q)
		return cli.TeamStandingsTable(s), err
	},
	"races": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		s, err := b.dash.Standings(ctx, q)
		return cli.RaceLogTable(s.Races), err
	},
	"meetings": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		return cli.MeetingsTable(q.Year, b.api.Meetings(ctx, q.Year)), nil
	},
	"sessions": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		f := openf1.SessionFilter{MeetingKey: q.MeetingKey}
		if q.MeetingKey == 0 {
			f.Year = q.Year
		}
		return cli.SessionsTable(b.api.Sessions(ctx, f)), nil
	},
	"results": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		return cli.ResultsTable(b.dash.Overview(ctx, q).Results), nil
	},
	"grid": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		return cli.GridTable(b.dash.Overview(ctx, q).Grid), nil
	},
	"laps": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Laps(ctx, q)
		return cli.LapsTable(v.Rows), err
	},
	"lap-spread": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Laps(ctx, q)
		return cli.LapSpreadTable(v.Spread), err
	},
	"stints": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Stints(ctx, q)
		return cli.StintsTable(v.Rows), err
	},
	"pits": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Pits(ctx, q)
		return cli.PitsTable(v.Stops), err
	},
	"positions": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Positions(ctx, q)
		return cli.PositionChangesTable(v.Changes), err
	},
	"weather": func(ctx context.Context, b *backend, q pipeline.Query) (cli.Table, error) {
		v, err := b.dash.Weather(ctx, q)
		return cli.WeatherTable(v.Samples), err
	},
}

func exportNames() []string {
	names := make([]string, 0, len(exportSources))
	for n := range exportSources {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var exportCmd = &cobra.Command{
	Use:       "export VIEW",
	Short:     "Write a table as csv, markdown, html, json or a plain table",
	Long:      "Export one view for the selected season or session.\n\nViews: " + strings.Join(exportNames(), ", "),
	Args:      cobra.ExactArgs(1),
	ValidArgs: exportNames(),
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "csv", "Output format: table, csv, markdown, html, json")
	exportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	src, ok := exportSources[args[0]]
	if !ok {
		return fmt.Errorf("unknown view %q (want one of %s)", args[0], strings.Join(exportNames(), ", "))
	}
	format, err := cli.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}

	b, err := newCLIBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := commandContext()
	defer cancel()

	t, err := src(ctx, b, currentQuery(b.cfg))
	if err != nil {
		return fmt.Errorf("exporting %s: %w", args[0], err)
	}

	var w io.Writer = os.Stdout
	if flagExportOutput != "" {
		f, err := os.Create(flagExportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOutput, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	if err := cli.Export(w, format, t); err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	if flagExportOutput != "" && !flagQuiet {
		fmt.Fprintln(os.Stderr, cli.RenderInfo(fmt.Sprintf("Wrote %d rows to %s", len(t.Rows), flagExportOutput)))
	}
	return nil
}
