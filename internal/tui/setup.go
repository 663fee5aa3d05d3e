package tui

import (
	"fmt"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues backs the first-run setup form.
type setupValues struct {
	DefaultYear int // 0 follows the current season
	Workers     int
	Theme       string
	DiskCache   bool
}

func newSetupValues(cfg config.Config) *setupValues {
	th := cfg.Appearance.Theme
	if !theme.Known(th) {
		th = theme.DefaultName
	}
	return &setupValues{
		DefaultYear: cfg.General.DefaultYear,
		Workers:     cfg.General.Workers,
		Theme:       th,
		DiskCache:   cfg.API.DiskCache,
	}
}

// apply copies the answers onto cfg.
func (v setupValues) apply(cfg config.Config) config.Config {
	cfg.General.DefaultYear = v.DefaultYear
	cfg.General.Workers = v.Workers
	cfg.Appearance.Theme = v.Theme
	cfg.API.DiskCache = v.DiskCache
	return cfg
}

var workerChoices = []int{1, 2, 4, 8}

func newSetupForm(v *setupValues, currentYear int) *huh.Form {
	years := []huh.Option[int]{huh.NewOption("Current season", 0)}
	years = append(years, seasonOptions(currentYear)...)

	workers := make([]huh.Option[int], len(workerChoices))
	for i, n := range workerChoices {
		workers[i] = huh.NewOption(fmt.Sprintf("%d", n), n)
	}

	themes := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themes[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to f1dash").
				Description("Season standings and session data from the OpenF1 API.\nA few settings, all changeable later with `f1dash setup`."),
			huh.NewSelect[int]().
				Title("Default season").
				Options(years...).
				Height(6).
				Value(&v.DefaultYear),
			huh.NewSelect[int]().
				Title("Parallel fetches").
				Description("Race sessions loaded at once while computing standings.").
				Options(workers...).
				Value(&v.Workers),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Keep responses on disk?").
				Description("Reuses fresh responses across runs. Off by default.").
				Affirmative("Yes").
				Negative("No").
				Value(&v.DiskCache),
		),
	).WithShowHelp(true)
}

// RunSetup runs the setup form standalone and saves the result.
func RunSetup(cfg config.Config, currentYear int) (config.Config, error) {
	v := newSetupValues(cfg)
	if err := newSetupForm(v, currentYear).Run(); err != nil {
		return cfg, err
	}
	cfg = v.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, config.Save(cfg)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.cfg = a.setupVals.apply(a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		if a.cfg.Validate() == nil {
			// Best-effort: the dashboard still runs with the answers.
			_ = a.save(a.cfg)
		}
		if a.setupVals.DefaultYear != 0 {
			a.query = pipeline.Query{Year: a.setupVals.DefaultYear}
		}
		return a.finishSetup()
	case huh.StateAborted:
		return a.finishSetup()
	}
	return a, cmd
}

func (a App) finishSetup() (tea.Model, tea.Cmd) {
	a.setupForm = nil
	a.setupVals = nil
	return a, tea.Batch(a.startLoad(), a.spinner.Tick, tickCmd())
}
