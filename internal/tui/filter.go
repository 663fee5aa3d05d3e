package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// filterValues backs the filter form. Zero values mean "All".
type filterValues struct {
	Year    int
	Meeting int
	Session int
	Driver  int
	Team    string
}

func filterValuesFrom(q pipeline.Query) *filterValues {
	return &filterValues{
		Year:    q.Year,
		Meeting: q.MeetingKey,
		Session: q.SessionKey,
		Driver:  q.DriverNumber,
		Team:    q.Team,
	}
}

func (v filterValues) query() pipeline.Query {
	return pipeline.Query{
		Year:         v.Year,
		MeetingKey:   v.Meeting,
		SessionKey:   v.Session,
		DriverNumber: v.Driver,
		Team:         v.Team,
	}
}

const optionsTimeout = 30 * time.Second

// seasonOptions lists seasons from the current one back to the first.
func seasonOptions(current int) []huh.Option[int] {
	var opts []huh.Option[int]
	for y := current; y >= config.FirstSeason; y-- {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%d", y), y))
	}
	return opts
}

// selection fetches the choices below the given scope. The dashboard
// memoizes it, so re-running as the user moves between fields is cheap.
func selection(d *pipeline.Dashboard, q pipeline.Query) pipeline.Selection {
	ctx, cancel := context.WithTimeout(context.Background(), optionsTimeout)
	defer cancel()
	return d.Selection(ctx, q)
}

func meetingOptions(d *pipeline.Dashboard, v *filterValues) []huh.Option[int] {
	opts := []huh.Option[int]{huh.NewOption("All (full season)", 0)}
	for _, m := range selection(d, pipeline.Query{Year: v.Year}).Meetings {
		opts = append(opts, huh.NewOption(m.MeetingName, m.MeetingKey))
	}
	return opts
}

func sessionOptions(d *pipeline.Dashboard, v *filterValues) []huh.Option[int] {
	opts := []huh.Option[int]{huh.NewOption("All", 0)}
	if v.Meeting == 0 {
		return opts
	}
	for _, s := range selection(d, pipeline.Query{Year: v.Year, MeetingKey: v.Meeting}).Sessions {
		opts = append(opts, huh.NewOption(s.SessionName, s.SessionKey))
	}
	return opts
}

func driverOptions(d *pipeline.Dashboard, v *filterValues) []huh.Option[int] {
	opts := []huh.Option[int]{huh.NewOption("All", 0)}
	sel := selection(d, pipeline.Query{Year: v.Year, MeetingKey: v.Meeting, SessionKey: v.Session})
	for _, dr := range sel.Drivers {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (#%d)", dr.FullName, dr.DriverNumber), dr.DriverNumber))
	}
	return opts
}

func teamOptions(d *pipeline.Dashboard, v *filterValues) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("All", "")}
	sel := selection(d, pipeline.Query{Year: v.Year, MeetingKey: v.Meeting, SessionKey: v.Session})
	for _, team := range sel.Teams {
		opts = append(opts, huh.NewOption(team, team))
	}
	return opts
}

// newFilterForm builds the cascading filter: each list is recomputed from
// the choices above it.
func newFilterForm(d *pipeline.Dashboard, v *filterValues, currentYear int) *huh.Form {
	scope := []any{&v.Year, &v.Meeting, &v.Session}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Season").
				Options(seasonOptions(currentYear)...).
				Value(&v.Year),
			huh.NewSelect[int]().
				Title("Race").
				OptionsFunc(func() []huh.Option[int] { return meetingOptions(d, v) }, &v.Year).
				Height(8).
				Value(&v.Meeting),
			huh.NewSelect[int]().
				Title("Session").
				OptionsFunc(func() []huh.Option[int] { return sessionOptions(d, v) }, []any{&v.Year, &v.Meeting}).
				Value(&v.Session),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Driver").
				OptionsFunc(func() []huh.Option[int] { return driverOptions(d, v) }, scope).
				Height(8).
				Value(&v.Driver),
			huh.NewSelect[string]().
				Title("Team").
				OptionsFunc(func() []huh.Option[string] { return teamOptions(d, v) }, scope).
				Value(&v.Team),
		),
	).WithShowHelp(true)
}

// sanitize drops choices that no longer belong to the scope above them,
// e.g. a session kept after the race changed.
func (v *filterValues) sanitize(d *pipeline.Dashboard) {
	if v.Meeting == 0 {
		v.Session = 0
	}
	if v.Session != 0 {
		found := false
		for _, s := range selection(d, pipeline.Query{Year: v.Year, MeetingKey: v.Meeting}).Sessions {
			if s.SessionKey == v.Session {
				found = true
			}
		}
		if !found {
			v.Session = 0
		}
	}
}

func formWidth(w int) int {
	return min(max(40, w-8), 72)
}

func (a App) openFilterForm() (tea.Model, tea.Cmd) {
	a.filterVals = filterValuesFrom(a.query)
	a.filterForm = newFilterForm(a.dash, a.filterVals, a.now().Year())
	if a.width > 0 {
		a.filterForm = a.filterForm.WithWidth(formWidth(a.width))
	}
	return a, a.filterForm.Init()
}

func (a App) updateFilterForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.filterForm = nil
		a.filterVals = nil
		return a, nil
	}

	form, cmd := a.filterForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.filterForm = f
	}

	switch a.filterForm.State {
	case huh.StateCompleted:
		a.filterVals.sanitize(a.dash)
		next := a.filterVals.query()
		a.filterForm = nil
		a.filterVals = nil
		if next == a.query && a.loaded {
			return a, nil
		}
		a.query = next
		a.scroll = 0
		return a, tea.Batch(a.startLoad(), a.spinner.Tick)
	case huh.StateAborted:
		a.filterForm = nil
		a.filterVals = nil
		return a, nil
	}
	return a, cmd
}
