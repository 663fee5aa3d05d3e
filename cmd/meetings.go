package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
)

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "List the race weekends of a season with their meeting keys",
	RunE:  runMeetings,
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions of a meeting (--meeting) or of the whole season",
	RunE:  runSessions,
}

func init() {
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runMeetings(cmd *cobra.Command, _ []string) error {
	b, err := newCLIBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := commandContext()
	defer cancel()

	year := currentQuery(b.cfg).Year
	ms := b.api.Meetings(ctx, year)
	if len(ms) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderInfo(fmt.Sprintf("No meetings found for %d.", year)))
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.MeetingsTable(year, ms)))
	fmt.Println(cli.RenderInfo("Pass --meeting KEY to the other commands to select a race weekend."))
	return nil
}

func runSessions(cmd *cobra.Command, _ []string) error {
	b, err := newCLIBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := commandContext()
	defer cancel()

	q := currentQuery(b.cfg)
	f := openf1.SessionFilter{MeetingKey: q.MeetingKey}
	if q.MeetingKey == 0 {
		f.Year = q.Year
	}
	ss := b.api.Sessions(ctx, f)
	if len(ss) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderInfo("No sessions found."))
		return nil
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.SessionsTable(ss)))
	fmt.Println(cli.RenderInfo("Pass --session KEY to view laps, stints, pit stops, positions or weather."))
	return nil
}
