package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

var jsonNull = []byte("null")

// OptInt is a nullable integer field. Present records whether the key was in
// the payload at all (null counts as present); Valid whether it parsed.
type OptInt struct {
	Value   int
	Valid   bool
	Present bool
}

// SomeInt returns a valid OptInt.
func SomeInt(v int) OptInt {
	return OptInt{Value: v, Valid: true, Present: true}
}

// NullInt returns an OptInt for a key that was sent as null.
func NullInt() OptInt {
	return OptInt{Present: true}
}

// UnmarshalJSON accepts numbers, integral floats and numeric strings within
// int32 range. Anything else leaves the value invalid instead of failing the
// whole record.
func (o *OptInt) UnmarshalJSON(data []byte) error {
	*o = OptInt{Present: true}
	f, ok := parseNumber(data)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	o.Value = int(f)
	o.Valid = true
	return nil
}

// MarshalJSON writes null for invalid values.
func (o OptInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.Itoa(o.Value)), nil
}

// String renders the value, or "-" when missing.
func (o OptInt) String() string {
	if !o.Valid {
		return "-"
	}
	return strconv.Itoa(o.Value)
}

// OptFloat is a nullable float field with the same semantics as OptInt.
type OptFloat struct {
	Value   float64
	Valid   bool
	Present bool
}

// SomeFloat returns a valid OptFloat.
func SomeFloat(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true, Present: true}
}

// UnmarshalJSON accepts numbers and numeric strings.
func (o *OptFloat) UnmarshalJSON(data []byte) error {
	*o = OptFloat{Present: true}
	f, ok := parseNumber(data)
	if !ok {
		return nil
	}
	o.Value = f
	o.Valid = true
	return nil
}

// MarshalJSON writes null for invalid values.
func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return jsonNull, nil
	}
	return []byte(strconv.FormatFloat(o.Value, 'f', -1, 64)), nil
}

// parseNumber handles the polymorphic numeric fields the API sends:
// 25, 25.0, "25", " 25 ". NaN and Inf are rejected.
func parseNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Flex keeps a field whose type varies between sessions (gap_to_leader is a
// number in races, a string for lapped cars and an array in qualifying).
type Flex json.RawMessage

// UnmarshalJSON stores the raw value.
func (f *Flex) UnmarshalJSON(data []byte) error {
	*f = append((*f)[:0], data...)
	return nil
}

// MarshalJSON returns the raw value, or null.
func (f Flex) MarshalJSON() ([]byte, error) {
	if len(f) == 0 {
		return jsonNull, nil
	}
	return []byte(f), nil
}

// String renders the value for display.
func (f Flex) String() string {
	raw := bytes.TrimSpace(f)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == 0 {
			return "0"
		}
		return "+" + strconv.FormatFloat(n, 'f', 3, 64)
	}

	// Arrays (qualifying gaps per segment): show the last non-null entry.
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for i := len(arr) - 1; i >= 0; i-- {
			if s := Flex(arr[i]).String(); s != "" {
				return s
			}
		}
		return ""
	}

	return string(raw)
}

// Timestamp parses the API's ISO-8601 dates, which may or may not carry
// fractional seconds and an offset.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON leaves the zero time for null or unparseable input.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return jsonNull, nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
