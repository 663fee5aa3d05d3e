// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

// FormatPoints formats a points total. Whole numbers print without a
// fraction; half points (shortened races) keep one decimal.
// e.g., 25 -> "25", 12.5 -> "12.5"
func FormatPoints(p float64) string {
	if p == math.Trunc(p) {
		return strconv.FormatFloat(p, 'f', 0, 64)
	}
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// FormatLapTime formats seconds as a lap time.
// e.g., 92.4567 -> "1:32.457", 31.2 -> "31.200"
func FormatLapTime(secs float64) string {
	if secs < 60 {
		return fmt.Sprintf("%.3f", secs)
	}
	mins := int(secs) / 60
	rest := secs - float64(mins*60)
	return fmt.Sprintf("%d:%06.3f", mins, rest)
}

// FormatSeconds formats an optional duration in seconds with the given
// precision, or "-" when missing.
func FormatSeconds(o model.OptFloat, decimals int) string {
	if !o.Valid {
		return "-"
	}
	return strconv.FormatFloat(o.Value, 'f', decimals, 64) + "s"
}

// FormatOptLap formats an optional lap duration, or "-" when missing.
func FormatOptLap(o model.OptFloat) string {
	if !o.Valid {
		return "-"
	}
	return FormatLapTime(o.Value)
}

// FormatMeasure formats an optional sensor reading with a unit suffix.
// e.g., (23.44, "°C") -> "23.4°C"
func FormatMeasure(o model.OptFloat, unit string) string {
	if !o.Valid {
		return "-"
	}
	return strconv.FormatFloat(o.Value, 'f', 1, 64) + unit
}

// FormatPosition formats a classified position as "P1", or "-".
func FormatPosition(o model.OptInt) string {
	if !o.Valid {
		return "-"
	}
	return "P" + strconv.Itoa(o.Value)
}

// FormatGained formats places gained (positive) or lost (negative).
func FormatGained(n int) string {
	switch {
	case n > 0:
		return "+" + strconv.Itoa(n)
	case n < 0:
		return strconv.Itoa(n)
	default:
		return "="
	}
}

// FormatDelta formats the points difference between two totals with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatPoints(delta)
	}
	return "-" + FormatPoints(-delta)
}

// FormatGap formats the gap to a leader's total, "-" for the leader itself.
func FormatGap(leader, points float64) string {
	if points >= leader {
		return "-"
	}
	return "-" + FormatPoints(leader-points)
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatAge formats how long ago t was relative to now, or "never".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return FormatDuration(int64(now.Sub(t).Seconds())) + " ago"
}

// FormatDate formats a session date, or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatBytes formats a byte count with binary suffixes.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
