package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ScoringType selects how a set's two raw values combine into volume.
type ScoringType string

const (
	ScoreWeightReps ScoringType = "Weight & Reps"
	ScoreReps       ScoringType = "Reps"
	ScoreTime       ScoringType = "Time"
	ScoreDistance   ScoringType = "Distance"
)

// WorkoutSession is one logged training session, as submitted by the client.
type WorkoutSession struct {
	Exercises []Exercise `json:"exercises"`
}

// Exercise is one exercise within a session.
type Exercise struct {
	DBID    string          `json:"dbId"`
	Name    string          `json:"name"`
	Type    ScoringType     `json:"type"`
	Sets    []SetInput      `json:"sets"`
	Details ExerciseDetails `json:"details"`
}

// ExerciseDetails carries the muscle groups an exercise trains.
type ExerciseDetails struct {
	Target []string `json:"target"`
}

// SetInput holds the two raw values of one set. Their meaning depends on
// the exercise's ScoringType: weight/reps, reps, seconds/minutes or distance.
type SetInput [2]Measure

// UnmarshalJSON accepts arrays of any length; missing values are 0 and
// extra values are ignored.
func (s *SetInput) UnmarshalJSON(data []byte) error {
	var raw []Measure
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = SetInput{}
		return nil
	}
	*s = SetInput{}
	for i := 0; i < len(raw) && i < 2; i++ {
		s[i] = raw[i]
	}
	return nil
}

// SessionReport is the fully computed outcome of one session, produced
// before any profile mutation.
type SessionReport struct {
	ID              uuid.UUID          `json:"id"`
	EarnedMGP       map[string]int     `json:"earnedMGP"`
	TotalSessionMGP int                `json:"totalSessionMGP"`
	BaseFP          int                `json:"baseFP"`
	EffortFP        int                `json:"effortFP"`
	StreakFP        int                `json:"streakFP"`
	TotalFP         int                `json:"totalFP"`
	EarnedPrestige  int                `json:"earnedPrestige"`
	LevelUps        []LevelUp          `json:"levelUps"`
	NewPRs          []string           `json:"newPRs"`
	PRUpdates       map[string]float64 `json:"prUpdates"`
	GeneratedLogs   []SystemLog        `json:"generatedLogs"`
}

// LevelUp records a progression track crossing into a new level.
// Track is a muscle name, or "fitness" for the global level.
type LevelUp struct {
	Track string `json:"track"`
	Level int    `json:"level"`
}
