// Package tui provides the interactive Bubble Tea dashboard for f1dash.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/openf1"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/pipeline"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// DataLoadedMsg is sent when a load finishes or is abandoned.
type DataLoadedMsg struct {
	Gen      int
	Data     viewData
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports standings progress: race sessions loaded so far.
type ProgressMsg struct {
	Gen     int
	Current int
	Total   int

	sub chan tea.Msg
}

type tickMsg struct{}

// viewData is everything the tabs render for one Query.
type viewData struct {
	selection    pipeline.Selection
	standings    model.Standings
	standingsErr error
	overview     pipeline.Overview
	laps         pipeline.LapsView
	stints       pipeline.StintsView
	pits         pipeline.PitsView
	positions    pipeline.PositionsView
	weather      pipeline.WeatherView
}

// Options configures NewApp.
type Options struct {
	Dashboard *pipeline.Dashboard
	Warnings  *openf1.Warnings // may be nil
	Config    config.Config
	Query     pipeline.Query
	NeedSetup bool
	Now       func() time.Time
	Save      func(config.Config) error // defaults to config.Save
}

// App is the root Bubble Tea model.
type App struct {
	dash     *pipeline.Dashboard
	warnings *openf1.Warnings
	cfg      config.Config
	query    pipeline.Query
	now      func() time.Time
	save     func(config.Config) error

	// Data for query
	data     viewData
	loaded   bool
	loadTime time.Duration
	loadedAt time.Time
	loadErr  error // last failed load, shown until one succeeds

	// Refresh
	autoRefresh bool
	loading     bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int

	// Name search on the standings and results tabs
	searching   bool
	searchInput textinput.Model
	searchQuery string

	// Per-tab state
	settings settingsState

	// Filter form (huh)
	filterForm *huh.Form
	filterVals *filterValues

	// First-run setup (huh)
	setupForm *huh.Form
	setupVals *setupValues

	// Loading: channel-based progress subscription per load
	spinner     spinner.Model
	progress    int
	progressMax int
	gen         int
	cancel      context.CancelFunc
	loadSub     chan tea.Msg
	initLoad    tea.Cmd
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	scrollOverhead   = 6 // header + status bar, for half-page scrolling

	loadTimeout = 2 * time.Minute
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		dash:        opts.Dashboard,
		warnings:    opts.Warnings,
		cfg:         opts.Config,
		query:       opts.Query,
		now:         opts.Now,
		save:        opts.Save,
		autoRefresh: true,
		spinner:     sp,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.save == nil {
		a.save = config.Save
	}
	if opts.NeedSetup {
		a.setupVals = newSetupValues(a.cfg)
		a.setupForm = newSetupForm(a.setupVals, a.now().Year())
	} else {
		// Init cannot update the model, so the first load claims its
		// generation here.
		a.initLoad = a.startLoad()
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return tea.Batch(tea.EnableMouseCellMotion, a.setupForm.Init())
	}
	return tea.Batch(tea.EnableMouseCellMotion, a.spinner.Tick, tickCmd(), a.initLoad)
}

// startLoad cancels any load in flight and starts a new one for a.query.
func (a *App) startLoad() tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	a.cancel = cancel
	a.gen++
	a.loading = true
	a.progress, a.progressMax = 0, 0
	a.loadSub = make(chan tea.Msg, 1)
	return loadDataCmd(ctx, cancel, a.dash, a.query, a.gen, a.loadSub)
}

// loadViews computes standings first, reporting progress, then every
// session view concurrently. A cancelled context discards everything.
func loadViews(ctx context.Context, d *pipeline.Dashboard, q pipeline.Query, progress pipeline.ProgressFunc) (viewData, error) {
	var v viewData
	v.standings, v.standingsErr = d.StandingsProgress(ctx, q, progress)
	if err := ctx.Err(); err != nil {
		return viewData{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { v.selection = d.Selection(gctx, q); return nil })
	g.Go(func() error { v.overview = d.Overview(gctx, q); return nil })
	if q.HasSession() {
		g.Go(func() error { v.laps, _ = d.Laps(gctx, q); return nil })
		g.Go(func() error { v.stints, _ = d.Stints(gctx, q); return nil })
		g.Go(func() error { v.pits, _ = d.Pits(gctx, q); return nil })
		g.Go(func() error { v.positions, _ = d.Positions(gctx, q); return nil })
		g.Go(func() error { v.weather, _ = d.Weather(gctx, q); return nil })
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return viewData{}, err
	}
	return v, nil
}

// loadDataCmd runs loadViews in a background goroutine. It streams
// ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(ctx context.Context, cancel context.CancelFunc, d *pipeline.Dashboard, q pipeline.Query, gen int, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			defer cancel()
			start := time.Now()

			// Non-blocking so workers are never stalled by the UI; the next
			// update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Gen: gen, Current: current, Total: total, sub: sub}:
				default:
				}
			}

			data, err := loadViews(ctx, d, q, progressFn)
			sub <- DataLoadedMsg{Gen: gen, Data: data, LoadTime: time.Since(start), Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.filterForm != nil {
			a.filterForm = a.filterForm.WithWidth(formWidth(msg.Width))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.filterForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-3)
		case tea.MouseButtonWheelDown:
			a.scrollBy(3)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.setTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case ProgressMsg:
		if msg.Gen == a.gen {
			a.progress = msg.Current
			a.progressMax = msg.Total
		}
		return a, waitForLoadMsg(msg.sub)

	case DataLoadedMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.loading = false
		a.cancel = nil
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.loadErr = nil
		a.data = msg.Data
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.loadedAt = a.now()
		a.clampScroll()
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.loading && a.refreshDue() {
			cmds = append(cmds, a.refresh())
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks, async options) to open forms.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.filterForm != nil {
		return a.updateFilterForm(msg)
	}
	if a.settings.editing || a.searching {
		return a.forwardToInput(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	}

	// Forms and inputs intercept all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.filterForm != nil {
		return a.updateFilterForm(msg)
	}
	if a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.searching {
		return a.updateSearch(msg)
	}

	if !a.loaded {
		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			if !a.loading {
				return a, a.refresh()
			}
		}
		return a, nil
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Settings tab navigation
	if a.activeTab == components.TabSettings {
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		if a.cancel != nil {
			a.cancel()
		}
		return a, tea.Quit
	case "esc":
		a.searchQuery = ""
		return a, nil
	case "f":
		return a.openFilterForm()
	case "r":
		return a, a.refresh()
	case "R":
		a.autoRefresh = !a.autoRefresh
		return a, nil
	case "/":
		if a.activeTab == components.TabStandings || a.activeTab == components.TabResults {
			a.searching = true
			a.searchInput = newSearchInput(a.searchQuery)
			return a, a.searchInput.Focus()
		}
		return a, nil
	case "j", "down":
		a.scrollBy(1)
		return a, nil
	case "k", "up":
		a.scrollBy(-1)
		return a, nil
	case "ctrl+d":
		a.scrollBy(a.halfPage())
		return a, nil
	case "ctrl+u":
		a.scrollBy(-a.halfPage())
		return a, nil
	case "g":
		a.scroll = 0
		return a, nil
	case "left", "shift+tab":
		a.setTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
		return a, nil
	case "right", "tab":
		a.setTab((a.activeTab + 1) % len(components.Tabs))
		return a, nil
	}

	if runes := []rune(key); len(runes) == 1 {
		if idx := components.TabIdxByKey(runes[0]); idx >= 0 {
			a.setTab(idx)
		}
	}
	return a, nil
}

// refresh forgets memoized views and reloads the current query. Responses
// still inside the cache window are reused.
func (a *App) refresh() tea.Cmd {
	a.dash.Reset()
	return tea.Batch(a.startLoad(), a.spinner.Tick)
}

func (a App) refreshDue() bool {
	return a.now().Sub(a.loadedAt) >= a.cfg.CacheTTL()
}

func (a *App) setTab(idx int) {
	if idx != a.activeTab {
		a.activeTab = idx
		a.scroll = 0
	}
}

func (a App) halfPage() int {
	return max(1, (a.height-scrollOverhead)/2)
}

func (a *App) scrollBy(n int) {
	a.scroll += n
	a.clampScroll()
}

func (a *App) clampScroll() {
	if a.scroll < 0 {
		a.scroll = 0
	}
	// The upper bound depends on rendered height; viewMain clamps again.
	if a.scroll > 1000 {
		a.scroll = 1000
	}
}

// ─── Search ─────────────────────────────────────────────────────

func newSearchInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "driver or team"
	ti.CharLimit = 40
	ti.Width = 30
	ti.SetValue(value)
	return ti
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.searchQuery = strings.TrimSpace(a.searchInput.Value())
		a.searching = false
		a.scroll = 0
		return a, nil
	case "esc":
		a.searching = false
		return a, nil
	}
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a App) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.settings.editing {
		a.settings.input, cmd = a.settings.input.Update(msg)
	} else {
		a.searchInput, cmd = a.searchInput.Update(msg)
	}
	return a, cmd
}

// matchesSearch reports whether any of fields contains the search query,
// ignoring case.
func (a App) matchesSearch(fields ...string) bool {
	if a.searchQuery == "" {
		return true
	}
	q := strings.ToLower(a.searchQuery)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// ─── Views ──────────────────────────────────────────────────────

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.viewForm(a.setupForm)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.filterForm != nil {
		return a.viewForm(a.filterForm)
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  f1dash needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm(f *huh.Form) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(f.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("▰ f1dash"))
	b.WriteString(subtitleStyle.Render(fmt.Sprintf(" · %d season", a.query.Year)))
	b.WriteString("\n\n")
	if a.loadErr != nil && !a.loading {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		b.WriteString(errStyle.Render("Load failed: " + truncStr(a.loadErr.Error(), 60)))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("[r] retry  [q] quit"))
		return lipgloss.Place(w, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
			lipgloss.WithWhitespaceBackground(t.Background))
	}

	b.WriteString(a.spinner.View())

	if a.progressMax > 0 {
		barW := min(40, max(20, w-30))
		b.WriteString(subtitleStyle.Render(" Loading race results\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progress)))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(fmt.Sprintf("%d", a.progressMax)))
		b.WriteString(subtitleStyle.Render(" races"))
	} else {
		b.WriteString(subtitleStyle.Render(" Fetching the calendar..."))
	}

	return lipgloss.Place(w, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	section := func(b *strings.Builder, title string, bindings [][2]string) {
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, bind := range bindings {
			fmt.Fprintf(b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("▰ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	section(&b, "Navigation", [][2]string{
		{"s e l t", "Standings, Results, Laps, Stints"},
		{"p o w x", "Pits, Positions, Weather, Settings"},
		{"← →", "Previous / Next tab"},
		{"j k g", "Scroll, back to top"},
		{"^d ^u", "Half-page scroll"},
	})
	b.WriteString("\n")
	section(&b, "Actions", [][2]string{
		{"f", "Choose season, race, session, driver, team"},
		{"/", "Search drivers (standings, results)"},
		{"Esc", "Clear search"},
		{"r", "Refresh"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	})
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter pill
	filterRowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w).MaxWidth(w)
	header := components.RenderTabBar(a.activeTab, w) + "\n" + filterRowStyle.Render(a.filterPill())

	// 2. Status bar
	status := components.Status{
		Updated: cli.FormatAge(a.loadedAt, a.now()),
		Loading: a.loading,
	}
	if a.warnings != nil {
		status.Warnings = a.warnings.Total()
		if last, ok := a.warnings.Last(); ok {
			status.LastWarning = last.String()
		}
	}
	statusBar := components.RenderStatusBar(w, status)

	// 3. Content zone height
	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	// 4. Tab content, scrolled
	content := a.renderTab(cw)
	lines := strings.Split(content, "\n")
	scroll := min(a.scroll, max(0, len(lines)-contentH))
	content = strings.Join(lines[scroll:], "\n")

	// 5. Truncate + pad to exactly contentH lines, filled with background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderTab(cw int) string {
	switch a.activeTab {
	case components.TabStandings:
		return a.renderStandingsTab(cw)
	case components.TabResults:
		return a.renderResultsTab(cw)
	case components.TabLaps:
		return a.renderLapsTab(cw)
	case components.TabStints:
		return a.renderStintsTab(cw)
	case components.TabPits:
		return a.renderPitsTab(cw)
	case components.TabPositions:
		return a.renderPositionsTab(cw)
	case components.TabWeather:
		return a.renderWeatherTab(cw)
	case components.TabSettings:
		return a.renderSettingsTab(cw)
	}
	return ""
}

// filterPill renders the active query: season, race, session, driver, team.
func (a App) filterPill() string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	labels := a.queryLabels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = accent.Render(l)
	}
	s := dim.Render(" ") + strings.Join(parts, dim.Render(" │ "))

	if a.searchQuery != "" && !a.searching {
		s += dim.Render("  search: ") + muted.Render(a.searchQuery)
	}
	if a.searching {
		s += dim.Render("  ") + a.searchInput.View()
	}
	if a.loading && a.loaded {
		s += dim.Render("  ") + a.spinner.View()
		if a.progressMax > 0 {
			s += muted.Render(fmt.Sprintf(" %d/%d races", a.progress, a.progressMax))
		}
	}
	if !a.autoRefresh {
		s += dim.Render("  auto-refresh off")
	}
	return s
}

// queryLabels names each part of the query, falling back to keys when the
// selection lists do not carry them.
func (a App) queryLabels() []string {
	q := a.query
	sel := a.data.selection
	labels := []string{fmt.Sprintf("%d", q.Year)}

	meeting := "Full season"
	if q.MeetingKey != 0 {
		meeting = fmt.Sprintf("Meeting %d", q.MeetingKey)
		for _, m := range sel.Meetings {
			if m.MeetingKey == q.MeetingKey {
				meeting = m.MeetingName
			}
		}
	}
	labels = append(labels, meeting)

	if q.SessionKey != 0 {
		session := fmt.Sprintf("Session %d", q.SessionKey)
		for _, s := range sel.Sessions {
			if s.SessionKey == q.SessionKey {
				session = s.SessionName
			}
		}
		labels = append(labels, session)
	}
	if q.DriverNumber != 0 {
		driver := fmt.Sprintf("#%d", q.DriverNumber)
		for _, d := range sel.Drivers {
			if d.DriverNumber == q.DriverNumber {
				driver = d.FullName
			}
		}
		labels = append(labels, driver)
	}
	if q.Team != "" {
		labels = append(labels, q.Team)
	}
	return labels
}

// sessionMessage is shown on session tabs when no session is selected.
func sessionMessage(what string, cw int) string {
	return components.Message("Please select a specific session to view "+what+" (press f).", cw)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color,
// so gaps between cards and empty lines are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
