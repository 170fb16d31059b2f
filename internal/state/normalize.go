package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
)

// fieldDefault is one row of the profile normalization table: the JSON field
// name and the value it takes when absent or null in stored data.
type fieldDefault struct {
	field string
	value func(now time.Time) any
}

func constant(v any) func(time.Time) any {
	return func(time.Time) any { return v }
}

// profileDefaults enumerates every profile field defaulted on load.
var profileDefaults = []fieldDefault{
	{"fitnessPoints", constant(0)},
	{"fitnessLevel", constant(1)},
	{"prestigeCurrency", constant(0)},
	{"streak", constant(0)},
	{"lastWorkout", constant(nil)},
	{"graceUsed", constant(0)},
	{"lastGraceWeek", func(now time.Time) any { return progression.ISOWeek(now) }},
	{"muscles", constant(map[string]any{})},
	{"prs", constant(map[string]any{})},
	{"systemLogs", constant([]any{})},
	{"profileSlides", constant([]any{})},
	{"schedule", constant(map[string]any{})},
}

// NormalizeProfile decodes a stored profile, filling every field listed in
// profileDefaults that is absent or null. A nil or empty raw yields a fresh
// profile. Fields the table does not know are preserved where UserProfile
// models them and dropped otherwise.
func NormalizeProfile(raw []byte, now time.Time) (*models.UserProfile, error) {
	fields := make(map[string]json.RawMessage)
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("decoding profile: %w", err)
		}
		if fields == nil {
			fields = make(map[string]json.RawMessage)
		}
	}

	for _, d := range profileDefaults {
		if v, ok := fields[d.field]; ok && string(v) != "null" {
			continue
		}
		b, err := json.Marshal(d.value(now))
		if err != nil {
			return nil, fmt.Errorf("encoding default for %s: %w", d.field, err)
		}
		fields[d.field] = b
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("re-encoding profile: %w", err)
	}
	var p models.UserProfile
	if err := json.Unmarshal(normalized, &p); err != nil {
		return nil, fmt.Errorf("decoding normalized profile: %w", err)
	}

	for name, m := range p.Muscles {
		if m == nil {
			delete(p.Muscles, name)
			continue
		}
		m.Level = max(m.Level, 1)
	}
	p.FitnessLevel = max(p.FitnessLevel, 1)
	if len(p.SystemLogs) > models.MaxSystemLogs {
		p.SystemLogs = p.SystemLogs[len(p.SystemLogs)-models.MaxSystemLogs:]
	}

	return &p, nil
}
