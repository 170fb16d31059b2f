package models

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericPrefixRe matches the leading decimal number of a string, e.g. "12.5kg" -> "12.5".
var numericPrefixRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Measure is a raw numeric input from a logged set or measurement. It decodes
// leniently: numbers pass through, strings are parsed by their leading numeric
// prefix, and anything else (null, booleans, garbage) becomes 0.
type Measure float64

// ParseMeasure converts user-entered text into a number. Unparseable input is 0.
// European decimal commas are accepted ("102,5" -> 102.5).
func ParseMeasure(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	m := numericPrefixRe.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Float returns the measure as a float64.
func (m Measure) Float() float64 {
	return float64(m)
}

// UnmarshalJSON never fails; malformed values decode to 0.
func (m *Measure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*m = 0
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*m = 0
			return nil
		}
		*m = Measure(ParseMeasure(s))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*m = 0
			return nil
		}
		*m = Measure(f)
	default:
		*m = 0
	}
	return nil
}
