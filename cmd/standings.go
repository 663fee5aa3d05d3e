package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
)

var (
	flagStandingsRaces bool
	flagStandingsTop   int
)

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Drivers' and constructors' championship for a season",
	RunE:  runStandings,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, standingsCmd} {
		c.Flags().BoolVar(&flagStandingsRaces, "races", false, "Also print the per-race points log")
		c.Flags().IntVar(&flagStandingsTop, "top", 0, "Limit tables to the top N rows (0 = all)")
	}
	rootCmd.AddCommand(standingsCmd)
}

// commandContext is canceled on Ctrl+C so in-flight fetches stop.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runStandings(cmd *cobra.Command, _ []string) error {
	b, err := newCLIBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := commandContext()
	defer cancel()

	q := currentQuery(b.cfg)
	s, err := b.dash.Standings(ctx, q)
	if err != nil {
		return fmt.Errorf("computing standings: %w", err)
	}

	if len(s.Drivers) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderInfo(fmt.Sprintf("No race results available for the %d season yet.", q.Year)))
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("F1 %d  CHAMPIONSHIP", q.Year)))
	fmt.Println()

	leader, _ := s.Leader()
	fmt.Println(cli.RenderMetric("Leader", cli.Swatch(config.TeamColor(leader.Team, ""), leader.Name)+
		"  "+cli.FormatPoints(leader.Points)+" pts"))
	if len(s.Teams) > 0 {
		fmt.Println(cli.RenderMetric("Constructors", s.Teams[0].Name+"  "+cli.FormatPoints(s.Teams[0].Points)+" pts"))
	}
	fmt.Println(cli.RenderMetric("Races counted", fmt.Sprintf("%d of %d", s.SessionsCounted, s.SessionsFound)))
	fmt.Println()

	drivers := cli.DriverStandingsTable(s)
	drivers.Rows = top(drivers.Rows, flagStandingsTop)
	fmt.Print(cli.RenderTable(drivers))

	teams := cli.TeamStandingsTable(s)
	teams.Rows = top(teams.Rows, flagStandingsTop)
	fmt.Print(cli.RenderTable(teams))

	if len(s.Progression) > 0 {
		fmt.Println(cli.RenderTitle("Points Progression"))
		n := min(len(s.Drivers), 5)
		for _, d := range s.Drivers[:n] {
			series := pipeline.DriverSeries(s.Progression, d.Name)
			values := make([]float64, len(series))
			for i, p := range series {
				values[i] = p.Cumulative
			}
			fmt.Printf("  %-22s %s %s\n", d.Name,
				cli.Swatch(config.TeamColor(d.Team, ""), cli.RenderSparkline(values)),
				cli.FormatPoints(d.Points))
		}
		fmt.Println()
	}

	if flagStandingsRaces {
		fmt.Print(cli.RenderTable(cli.RaceLogTable(s.Races)))
	}

	if skipped := s.SessionsFound - s.SessionsCounted; skipped > 0 && !flagQuiet {
		fmt.Fprintln(os.Stderr, cli.RenderInfo(fmt.Sprintf(
			"%d race session(s) had no classification yet and were skipped.", skipped)))
	}
	return nil
}

func top(rows [][]string, n int) [][]string {
	if n > 0 && len(rows) > n {
		return rows[:n]
	}
	return rows
}
