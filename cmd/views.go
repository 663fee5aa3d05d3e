package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

var flagLapsAll bool

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Classification and driver grid for a meeting or session",
	RunE:  runResults,
}

var lapsCmd = &cobra.Command{
	Use:   "laps",
	Short: "Lap times of a session",
	RunE:  runLaps,
}

var stintsCmd = &cobra.Command{
	Use:   "stints",
	Short: "Tyre strategy of a session",
	RunE:  runStints,
}

var pitsCmd = &cobra.Command{
	Use:   "pits",
	Short: "Pit stops of a session, fastest first",
	RunE:  runPits,
}

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Position changes over a session",
	RunE:  runPositions,
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Weather samples of a session",
	RunE:  runWeather,
}

func init() {
	lapsCmd.Flags().BoolVar(&flagLapsAll, "all", false, "List every lap, not just the per-driver summary")
	for _, c := range []*cobra.Command{resultsCmd, lapsCmd, stintsCmd, pitsCmd, positionsCmd, weatherCmd} {
		rootCmd.AddCommand(c)
	}
}

// sessionView runs fn against a fresh backend and the flag query. A missing
// session becomes the same hint the dashboard shows.
func sessionView(cmd *cobra.Command, what string, fn func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error) error {
	b, err := newCLIBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := commandContext()
	defer cancel()

	err = fn(ctx, b.dash, currentQuery(b.cfg))
	if errors.Is(err, pipeline.ErrNoSession) {
		return fmt.Errorf("please select a specific session to view %s (--session KEY, see `f1dash sessions`)", what)
	}
	return err
}

func printEmpty(msg string) error {
	fmt.Println()
	fmt.Println(cli.RenderInfo(msg))
	return nil
}

func runResults(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "results", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		if q.MeetingKey == 0 && q.SessionKey == 0 {
			return printEmpty(pipeline.MsgNoSelection)
		}
		ov := d.Overview(ctx, q)
		if ov.Empty() {
			return printEmpty(pipeline.MsgNoResults)
		}
		fmt.Println()
		if len(ov.Results) > 0 {
			fmt.Print(cli.RenderTable(cli.ResultsTable(ov.Results)))
		}
		if len(ov.Grid) > 0 {
			fmt.Print(cli.RenderTable(cli.GridTable(ov.Grid)))
		}
		return nil
	})
}

func runLaps(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "lap times", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		v, err := d.Laps(ctx, q)
		if err != nil {
			return err
		}
		if len(v.Rows) == 0 {
			return printEmpty(pipeline.MsgNoLaps)
		}
		fmt.Println()
		fmt.Println(cli.RenderMetric("Total laps", fmt.Sprintf("%d", v.TotalLaps)))
		fmt.Println(cli.RenderMetric("Fastest lap", fmt.Sprintf("%s  %s (lap %d)",
			cli.FormatOptLap(v.Fastest), v.FastestDriver, v.FastestLap)))
		fmt.Println()
		for _, s := range v.Series {
			fmt.Printf("  %-22s %s\n", s.Driver, cli.Swatch(s.Colour, cli.RenderSparkline(s.Seconds)))
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.LapSpreadTable(v.Spread)))
		if flagLapsAll {
			fmt.Print(cli.RenderTable(cli.LapsTable(v.Rows)))
		}
		return nil
	})
}

func runStints(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "stints", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		v, err := d.Stints(ctx, q)
		if err != nil {
			return err
		}
		if len(v.Rows) == 0 {
			return printEmpty(pipeline.MsgNoStints)
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.StintsTable(v.Rows)))
		return nil
	})
}

func runPits(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "pit stop data", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		v, err := d.Pits(ctx, q)
		if err != nil {
			return err
		}
		if v.Count == 0 {
			return printEmpty(pipeline.MsgNoPits)
		}
		fmt.Println()
		fmt.Println(cli.RenderMetric("Pit stops", fmt.Sprintf("%d", v.Count)))
		fmt.Println(cli.RenderMetric("Fastest", cli.FormatMeasure(v.Fastest, "s")))
		fmt.Println(cli.RenderMetric("Average", cli.FormatMeasure(v.Average, "s")))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.PitsTable(v.Stops)))
		return nil
	})
}

func runPositions(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "position data", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		v, err := d.Positions(ctx, q)
		if err != nil {
			return err
		}
		if len(v.Samples) == 0 {
			return printEmpty(pipeline.MsgNoPositions)
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.PositionChangesTable(v.Changes)))
		return nil
	})
}

func runWeather(cmd *cobra.Command, _ []string) error {
	return sessionView(cmd, "weather data", func(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query) error {
		v, err := d.Weather(ctx, q)
		if err != nil {
			return err
		}
		if len(v.Samples) == 0 {
			return printEmpty(pipeline.MsgNoWeather)
		}
		rain := "no"
		if v.Rain {
			rain = "yes"
		}
		fmt.Println()
		fmt.Println(cli.RenderMetric("Air temperature", cli.FormatMeasure(v.AvgAir, "°C")+" avg"))
		fmt.Println(cli.RenderMetric("Track temperature", cli.FormatMeasure(v.AvgTrack, "°C")+" avg"))
		fmt.Println(cli.RenderMetric("Humidity", cli.FormatMeasure(v.AvgHumidity, "%")+" avg"))
		fmt.Println(cli.RenderMetric("Max wind", cli.FormatMeasure(v.MaxWind, " m/s")))
		fmt.Println(cli.RenderMetric("Rain", rain))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.WeatherTable(v.Samples)))
		return nil
	})
}
