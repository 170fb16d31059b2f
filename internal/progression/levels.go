package progression

import "fmt"

// pointsPerExtraLevel is the cost of each level beyond a table's last tier.
const pointsPerExtraLevel = 1000

// Tier is one row of a leveling table.
type Tier struct {
	Level    int   `json:"lvl" yaml:"lvl"`
	Required int   `json:"req" yaml:"req"`
	Gate     *Gate `json:"gate,omitempty" yaml:"gate,omitempty"`
}

// Gate holds a tier back until a muscle group reaches Level.
type Gate struct {
	Muscle string `json:"muscle" yaml:"muscle"`
	Level  int    `json:"lvl" yaml:"lvl"`
}

// Table is an ordered leveling table with strictly increasing requirements.
type Table []Tier

// LevelStatus is the evaluated position of a point total within a Table.
type LevelStatus struct {
	Level         int  `json:"level"`
	Pct           int  `json:"pct"`
	CurrentPoints int  `json:"currentPoints"`
	NextReq       int  `json:"nextReq"`
	IsCapped      bool `json:"isCapped"`
}

// GateLevels reports the current level of a muscle group. A nil GateLevels
// disables gate checks.
type GateLevels func(muscle string) int

// FitnessLevels is the global fitness curve.
var FitnessLevels = mustTable([]Tier{
	{Level: 1, Required: 0},
	{Level: 2, Required: 50},
	{Level: 3, Required: 150},
	{Level: 4, Required: 250},
	{Level: 5, Required: 400},
	{Level: 6, Required: 600},
	{Level: 7, Required: 850},
	{Level: 8, Required: 1150},
	{Level: 9, Required: 1500},
	{Level: 10, Required: 1900},
	{Level: 11, Required: 2350},
	{Level: 12, Required: 2850},
	{Level: 13, Required: 3400},
	{Level: 14, Required: 4000},
	{Level: 15, Required: 4650},
	{Level: 16, Required: 5350},
	{Level: 17, Required: 6100},
	{Level: 18, Required: 6900},
	{Level: 19, Required: 7750},
	{Level: 20, Required: 8650},
	{Level: 21, Required: 10000},
})

// MuscleLevels is the per-muscle-group curve.
var MuscleLevels = mustTable([]Tier{
	{Level: 1, Required: 0},
	{Level: 2, Required: 100},
	{Level: 3, Required: 300},
	{Level: 4, Required: 600},
	{Level: 5, Required: 1000},
	{Level: 6, Required: 1500},
	{Level: 7, Required: 2100},
	{Level: 8, Required: 2800},
	{Level: 9, Required: 3600},
	{Level: 10, Required: 4500},
})

// NewTable validates tiers: at least two, the first requiring 0 points,
// requirements strictly increasing.
func NewTable(tiers []Tier) (Table, error) {
	if len(tiers) < 2 {
		return nil, fmt.Errorf("leveling table needs at least 2 tiers, got %d", len(tiers))
	}
	if tiers[0].Required != 0 {
		return nil, fmt.Errorf("first tier must require 0 points, got %d", tiers[0].Required)
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].Required <= tiers[i-1].Required {
			return nil, fmt.Errorf("tier %d requirement %d not above tier %d requirement %d",
				tiers[i].Level, tiers[i].Required, tiers[i-1].Level, tiers[i-1].Required)
		}
	}
	t := make(Table, len(tiers))
	copy(t, tiers)
	return t, nil
}

func mustTable(tiers []Tier) Table {
	t, err := NewTable(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Status evaluates points against the table. A gated tier whose muscle
// requirement is unmet stops progression at the tier below and reports the
// result as capped at 100%. Past the last tier, levels continue every
// pointsPerExtraLevel points.
func (t Table) Status(points int, gates GateLevels) LevelStatus {
	level := t[0].Level
	prev := t[0].Required
	next := t[1].Required
	reached := 0

	for i := 0; i < len(t)-1; i++ {
		tier := t[i+1]
		if points < tier.Required {
			next = tier.Required
			break
		}
		if tier.Gate != nil && gates != nil && gates(tier.Gate.Muscle) < tier.Gate.Level {
			return LevelStatus{
				Level:         t[i].Level,
				Pct:           100,
				CurrentPoints: points,
				NextReq:       tier.Required,
				IsCapped:      true,
			}
		}
		level = tier.Level
		prev = tier.Required
		reached = i + 1
	}

	if reached == len(t)-1 {
		last := t[len(t)-1]
		extra := (points - last.Required) / pointsPerExtraLevel
		level = last.Level + extra
		prev = last.Required + extra*pointsPerExtraLevel
		next = prev + pointsPerExtraLevel
	}

	pct := (points - prev) * 100 / (next - prev)
	pct = max(min(pct, 100), 0)

	return LevelStatus{
		Level:         level,
		Pct:           pct,
		CurrentPoints: points,
		NextReq:       next,
	}
}
