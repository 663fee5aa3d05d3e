package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/cli"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/config"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/components"
	"github.com/Jorginton/f1-streamlit-dashboard/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldYear = iota
	settingsFieldWorkers
	settingsFieldCacheTTL
	settingsFieldDiskCache
	settingsFieldTheme
	settingsFieldDaemonAddr
	settingsFieldDaemonInterval
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" after a successful write
	saveErr error // last validation or write failure
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// settingsValue is the editable text of one field.
func settingsValue(cfg config.Config, field int) string {
	switch field {
	case settingsFieldYear:
		if cfg.General.DefaultYear == 0 {
			return ""
		}
		return strconv.Itoa(cfg.General.DefaultYear)
	case settingsFieldWorkers:
		return strconv.Itoa(cfg.General.Workers)
	case settingsFieldCacheTTL:
		return strconv.Itoa(cfg.API.CacheTTLSec)
	case settingsFieldDiskCache:
		return strconv.FormatBool(cfg.API.DiskCache)
	case settingsFieldTheme:
		return cfg.Appearance.Theme
	case settingsFieldDaemonAddr:
		return cfg.Daemon.Addr
	case settingsFieldDaemonInterval:
		return strconv.Itoa(cfg.Daemon.IntervalSec)
	}
	return ""
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldYear:
		ti.Placeholder = fmt.Sprintf("%d or later, empty for the current season", config.FirstSeason)
	case settingsFieldWorkers:
		ti.Placeholder = "4"
	case settingsFieldCacheTTL:
		ti.Placeholder = "300 (seconds)"
	case settingsFieldDiskCache:
		ti.Placeholder = "true or false"
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
	case settingsFieldDaemonAddr:
		ti.Placeholder = "127.0.0.1:8787"
	case settingsFieldDaemonInterval:
		ti.Placeholder = "60 (seconds)"
	}
	ti.SetValue(settingsValue(a.cfg, a.settings.cursor))

	cmd := ti.Focus()
	a.settings.input = ti
	return a, cmd
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited value, validates the whole config and
// writes it. Nothing changes when any step fails.
func (a *App) settingsSave() {
	cfg, err := applySetting(a.cfg, a.settings.cursor, strings.TrimSpace(a.settings.input.Value()))
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil {
		err = a.save(cfg)
	}
	if err != nil {
		a.settings.saveErr = err
		return
	}
	a.settings.saveErr = nil
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
}

// applySetting parses val into the given field of a copy of cfg.
func applySetting(cfg config.Config, field int, val string) (config.Config, error) {
	atoi := func(name string) (int, error) {
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number, got %q", name, val)
		}
		return n, nil
	}

	var err error
	switch field {
	case settingsFieldYear:
		if val == "" {
			cfg.General.DefaultYear = 0
		} else {
			cfg.General.DefaultYear, err = atoi("default season")
		}
	case settingsFieldWorkers:
		cfg.General.Workers, err = atoi("workers")
	case settingsFieldCacheTTL:
		cfg.API.CacheTTLSec, err = atoi("cache TTL")
	case settingsFieldDiskCache:
		cfg.API.DiskCache, err = strconv.ParseBool(val)
		if err != nil {
			err = fmt.Errorf("disk cache must be true or false, got %q", val)
		}
	case settingsFieldTheme:
		if !theme.Known(val) {
			err = fmt.Errorf("unknown theme %q (have %s)", val, strings.Join(theme.Names(), ", "))
		}
		cfg.Appearance.Theme = val
	case settingsFieldDaemonAddr:
		if val == "" {
			err = fmt.Errorf("daemon address cannot be empty")
		}
		cfg.Daemon.Addr = val
	case settingsFieldDaemonInterval:
		cfg.Daemon.IntervalSec, err = atoi("daemon interval")
	}
	return cfg, err
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	year := "current season"
	if cfg.General.DefaultYear != 0 {
		year = strconv.Itoa(cfg.General.DefaultYear)
	}
	fields := []struct{ label, value string }{
		{"Default Season", year},
		{"Workers", strconv.Itoa(cfg.General.Workers) + " (next start)"},
		{"Cache TTL", fmt.Sprintf("%ds", cfg.API.CacheTTLSec)},
		{"Disk Cache", strconv.FormatBool(cfg.API.DiskCache) + " (next start)"},
		{"Theme", cfg.Appearance.Theme},
		{"Daemon Address", cfg.Daemon.Addr},
		{"Daemon Interval", fmt.Sprintf("%ds", cfg.Daemon.IntervalSec)},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Not saved: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved."))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	cachePath := "(memory only)"
	if cfg.API.DiskCache {
		cachePath = cfg.CacheDBPath()
	}
	warnings := 0
	if a.warnings != nil {
		warnings = a.warnings.Total()
	}
	autoRefresh := "off"
	if a.autoRefresh {
		autoRefresh = "every " + cfg.CacheTTL().String()
	}

	info := []struct{ label, value string }{
		{"Config file", config.ConfigPath()},
		{"Cache", cachePath},
		{"Season", strconv.Itoa(a.query.Year)},
		{"Races counted", fmt.Sprintf("%d of %d", a.data.standings.SessionsCounted, a.data.standings.SessionsFound)},
		{"Fetch warnings", cli.FormatNumber(int64(warnings))},
		{"Load time", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
		{"Auto refresh", autoRefresh},
	}
	infoLines := make([]string, len(info))
	for i, f := range info {
		infoLines[i] = labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")) + valueStyle.Render(truncStr(f.value, max(8, innerW-17)))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", strings.Join(infoLines, "\n"), cw))
	return b.String()
}
