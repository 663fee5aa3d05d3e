// Package theme defines color themes for the f1dash TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Active tab, selected row
	SurfaceBright lipgloss.Color
	Border        lipgloss.Color
	BorderBright  lipgloss.Color
	BorderAccent  lipgloss.Color // Focused cards and overlays
	TextDim       lipgloss.Color // Hints, axes
	TextMuted     lipgloss.Color // Labels, metadata
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color
	Green         lipgloss.Color // Places gained, fastest
	Orange        lipgloss.Color // Warnings
	Red           lipgloss.Color // Places lost
	Blue          lipgloss.Color
	Yellow        lipgloss.Color
	Purple        lipgloss.Color // Overall fastest, as on timing screens
	Cyan          lipgloss.Color
}

// DefaultName is the theme used when none is configured.
const DefaultName = "pitwall"

// Active is the currently selected theme.
var Active = Pitwall

// Pitwall is the default theme: carbon surfaces with a race-control red accent.
var Pitwall = Theme{
	Name:          "pitwall",
	Background:    lipgloss.Color("#0B0C0E"),
	Surface:       lipgloss.Color("#15171A"),
	SurfaceHover:  lipgloss.Color("#22252A"),
	SurfaceBright: lipgloss.Color("#2D3137"),
	Border:        lipgloss.Color("#33373D"),
	BorderBright:  lipgloss.Color("#4A5058"),
	BorderAccent:  lipgloss.Color("#E10600"),
	TextDim:       lipgloss.Color("#5A6068"),
	TextMuted:     lipgloss.Color("#8E949C"),
	TextPrimary:   lipgloss.Color("#F2F3F5"),
	Accent:        lipgloss.Color("#E10600"),
	AccentBright:  lipgloss.Color("#FF3B30"),
	AccentDim:     lipgloss.Color("#3A0E0C"),
	Green:         lipgloss.Color("#2BD46E"),
	Orange:        lipgloss.Color("#F5A623"),
	Red:           lipgloss.Color("#FF4D4D"),
	Blue:          lipgloss.Color("#3C8DFF"),
	Yellow:        lipgloss.Color("#FFD60A"),
	Purple:        lipgloss.Color("#B266FF"),
	Cyan:          lipgloss.Color("#27F4D2"),
}

// PaddockLight is a light theme for bright rooms.
var PaddockLight = Theme{
	Name:          "paddock-light",
	Background:    lipgloss.Color("#F4F4F1"),
	Surface:       lipgloss.Color("#FFFFFF"),
	SurfaceHover:  lipgloss.Color("#ECECE8"),
	SurfaceBright: lipgloss.Color("#E0E0DB"),
	Border:        lipgloss.Color("#D0D0CA"),
	BorderBright:  lipgloss.Color("#A9A9A2"),
	BorderAccent:  lipgloss.Color("#C10500"),
	TextDim:       lipgloss.Color("#A0A09A"),
	TextMuted:     lipgloss.Color("#67675F"),
	TextPrimary:   lipgloss.Color("#15151A"),
	Accent:        lipgloss.Color("#C10500"),
	AccentBright:  lipgloss.Color("#E10600"),
	AccentDim:     lipgloss.Color("#F8DCDA"),
	Green:         lipgloss.Color("#138A43"),
	Orange:        lipgloss.Color("#C26A00"),
	Red:           lipgloss.Color("#C62828"),
	Blue:          lipgloss.Color("#1F5FBF"),
	Yellow:        lipgloss.Color("#A68A00"),
	Purple:        lipgloss.Color("#7A2FC2"),
	Cyan:          lipgloss.Color("#00897B"),
}

// NightRace is a deep navy theme, floodlit street circuit style.
var NightRace = Theme{
	Name:          "night-race",
	Background:    lipgloss.Color("#0A0F1F"),
	Surface:       lipgloss.Color("#111831"),
	SurfaceHover:  lipgloss.Color("#1B2445"),
	SurfaceBright: lipgloss.Color("#263057"),
	Border:        lipgloss.Color("#2C3760"),
	BorderBright:  lipgloss.Color("#46528A"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#4C5685"),
	TextMuted:     lipgloss.Color("#8F9AC6"),
	TextPrimary:   lipgloss.Color("#DCE3FF"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	AccentDim:     lipgloss.Color("#1C2A50"),
	Green:         lipgloss.Color("#9ECE6A"),
	Orange:        lipgloss.Color("#FF9E64"),
	Red:           lipgloss.Color("#F7768E"),
	Blue:          lipgloss.Color("#7AA2F7"),
	Yellow:        lipgloss.Color("#E0AF68"),
	Purple:        lipgloss.Color("#BB9AF7"),
	Cyan:          lipgloss.Color("#7DCFFF"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("1"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("1"),
	AccentBright:  lipgloss.Color("9"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	Yellow:        lipgloss.Color("11"),
	Purple:        lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Pitwall, PaddockLight, NightRace, Terminal}

// Names lists the names of All, in order.
func Names() []string {
	out := make([]string, len(All))
	for i, t := range All {
		out[i] = t.Name
	}
	return out
}

// Known reports whether name is one of All.
func Known(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ByName returns a theme by its name, defaulting to Pitwall.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Pitwall
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
