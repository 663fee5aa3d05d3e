package config

import "strings"

// FallbackTeamColor is used when a team has no known colour.
const FallbackTeamColor = "#E10600"

// UnknownCompoundColor is used for unrecognised tyre compounds.
const UnknownCompoundColor = "#888888"

// DefaultTeamColors maps current team names to their livery colour.
var DefaultTeamColors = map[string]string{
	"Red Bull Racing": "#3671C6",
	"Ferrari":         "#E8002D",
	"Mercedes":        "#27F4D2",
	"McLaren":         "#FF8000",
	"Aston Martin":    "#229971",
	"Alpine":          "#FF87BC",
	"Williams":        "#64C4FF",
	"RB":              "#6692FF",
	"Kick Sauber":     "#52E252",
	"Haas F1 Team":    "#B6BABD",
}

// teamAliases maps earlier or alternate entry names onto DefaultTeamColors keys.
var teamAliases = map[string]string{
	"AlphaTauri":       "RB",
	"Visa Cash App RB": "RB",
	"Racing Bulls":     "RB",
	"Alfa Romeo":       "Kick Sauber",
	"Sauber":           "Kick Sauber",
	"Stake F1 Team":    "Kick Sauber",
	"Haas":             "Haas F1 Team",
	"Red Bull":         "Red Bull Racing",
}

// CompoundColors maps tyre compounds to their sidewall colour.
var CompoundColors = map[string]string{
	"SOFT":         "#e8002d",
	"MEDIUM":       "#ffd900",
	"HARD":         "#f0f0f0",
	"INTERMEDIATE": "#39b54a",
	"WET":          "#0067ff",
}

// NormalizeTeamName maps alternate entry names onto the colour table's key.
// Unknown names are returned trimmed but otherwise unchanged.
func NormalizeTeamName(raw string) string {
	name := strings.TrimSpace(raw)
	if _, ok := DefaultTeamColors[name]; ok {
		return name
	}
	if canon, ok := teamAliases[name]; ok {
		return canon
	}
	for alias, canon := range teamAliases {
		if strings.EqualFold(alias, name) {
			return canon
		}
	}
	return name
}

// TeamColor picks a display colour: the record's own team_colour first, then
// the built-in table, then FallbackTeamColor. The result always has a '#'.
func TeamColor(team, recordColour string) string {
	if c, ok := NormalizeHex(recordColour); ok {
		return c
	}
	if c, ok := DefaultTeamColors[NormalizeTeamName(team)]; ok {
		return c
	}
	return FallbackTeamColor
}

// CompoundColor returns the colour for a tyre compound, case-insensitively.
func CompoundColor(compound string) string {
	if c, ok := CompoundColors[strings.ToUpper(strings.TrimSpace(compound))]; ok {
		return c
	}
	return UnknownCompoundColor
}

// NormalizeHex accepts "3671C6" or "#3671C6" and returns "#3671C6".
func NormalizeHex(raw string) (string, bool) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) != 6 && len(s) != 3 {
		return "", false
	}
	for _, c := range s {
		if !isHexDigit(c) {
			return "", false
		}
	}
	return "#" + s, true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
