package cli

import (
	"testing"
	"time"

	"github.com/Jorginton/f1-streamlit-dashboard/internal/model"
)

func TestFormatPoints(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{25, "25"},
		{12.5, "12.5"},
		{437, "437"},
	}
	for _, tt := range tests {
		if got := FormatPoints(tt.in); got != tt.want {
			t.Errorf("FormatPoints(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{31.2, "31.200"},
		{92.4567, "1:32.457"},
		{60, "1:00.000"},
		{125.05, "2:05.050"},
	}
	for _, tt := range tests {
		if got := FormatLapTime(tt.in); got != tt.want {
			t.Errorf("FormatLapTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatOptionals(t *testing.T) {
	if got := FormatSeconds(model.OptFloat{}, 2); got != "-" {
		t.Errorf("missing seconds = %q", got)
	}
	if got := FormatSeconds(model.SomeFloat(22.456), 2); got != "22.46s" {
		t.Errorf("seconds = %q", got)
	}
	if got := FormatMeasure(model.SomeFloat(23.44), "°C"); got != "23.4°C" {
		t.Errorf("measure = %q", got)
	}
	if got := FormatPosition(model.SomeInt(3)); got != "P3" {
		t.Errorf("position = %q", got)
	}
	if got := FormatPosition(model.NullInt()); got != "-" {
		t.Errorf("null position = %q", got)
	}
}

func TestFormatGainedAndDelta(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatGained(3), "+3"},
		{FormatGained(-2), "-2"},
		{FormatGained(0), "="},
		{FormatDelta(50, 25), "+25"},
		{FormatDelta(10, 22.5), "-12.5"},
		{FormatGap(100, 100), "-"},
		{FormatGap(100, 82), "-18"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{125, "2m"},
		{3725, "1h 2m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAgeAndDate(t *testing.T) {
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Errorf("zero age = %q", got)
	}
	if got := FormatAge(now.Add(-90*time.Second), now); got != "1m ago" {
		t.Errorf("age = %q", got)
	}
	if got := FormatDate(now); got != "2024-03-02" {
		t.Errorf("date = %q", got)
	}
}

func TestFormatNumberAndBytes(t *testing.T) {
	if got := FormatNumber(1234567); got != "1,234,567" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatNumber(-1000); got != "-1,000" {
		t.Errorf("FormatNumber negative = %q", got)
	}
	if got := FormatBytes(512); got != "512 B" {
		t.Errorf("FormatBytes small = %q", got)
	}
	if got := FormatBytes(1536); got != "1.5 KiB" {
		t.Errorf("FormatBytes = %q", got)
	}
}
