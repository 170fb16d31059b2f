package progression

import (
	"math"
	"time"
)

// Rules are the tunable constants of the point economy.
type Rules struct {
	ExchangeRate     float64       // MGP per effort FP
	BaseCompleteFP   int           // base FP for a full workout
	BasePartialFP    int           // base FP for a partial workout
	PrestigeRatio    float64       // share of session FP converted to prestige
	LutealMultiplier float64       // session-wide bonus multiplier
	StreakBuffer     time.Duration // max gap between workouts that keeps a streak
	GraceCap         int           // grace uses allowed per ISO week
	MaxSetScore      float64       // upper bound of a single set's score
	ExerciseBaseMGP  float64       // flat MGP granted per exercise
	UnrankedSetScore float64       // set score used before any PR exists
}

// DefaultRules returns the standard economy.
func DefaultRules() Rules {
	return Rules{
		ExchangeRate:     10,
		BaseCompleteFP:   20,
		BasePartialFP:    10,
		PrestigeRatio:    0.8,
		LutealMultiplier: 1.25,
		StreakBuffer:     48 * time.Hour,
		GraceCap:         2,
		MaxSetScore:      15,
		ExerciseBaseMGP:  15,
		UnrankedSetScore: 8.0,
	}
}

// streakMilestones maps an exact streak length to its one-off FP bonus.
var streakMilestones = map[int]int{
	4:  50,
	8:  100,
	12: 200,
	20: 450,
	50: 1500,
}

// StreakBonus returns the milestone bonus for reaching streak exactly, or 0.
func StreakBonus(streak int) int {
	return streakMilestones[streak]
}

// round rounds half up, so 2.5 -> 3. All economy values are non-negative.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
