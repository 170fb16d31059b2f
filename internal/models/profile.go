package models

import (
	"encoding/json"
	"time"
)

// MaxSystemLogs bounds UserProfile.SystemLogs; the oldest entries are evicted first.
const MaxSystemLogs = 100

// UserProfile is the persisted progression state of the single user.
// JSON field names match profiles written by earlier LifeHub releases.
type UserProfile struct {
	FitnessPoints    int                    `json:"fitnessPoints"`
	FitnessLevel     int                    `json:"fitnessLevel"`
	PrestigeCurrency int                    `json:"prestigeCurrency"`
	Streak           int                    `json:"streak"`
	LastWorkout      *time.Time             `json:"lastWorkout"`
	GraceUsed        int                    `json:"graceUsed"`
	LastGraceWeek    int                    `json:"lastGraceWeek"`
	LastGraceYear    int                    `json:"lastGraceYear,omitempty"`
	Muscles          map[string]*MuscleStat `json:"muscles"`
	PRs              map[string]float64     `json:"prs"`
	SystemLogs       []SystemLog            `json:"systemLogs"`

	// UI-owned data, carried through untouched.
	ProfileSlides []json.RawMessage          `json:"profileSlides"`
	Schedule      map[string]json.RawMessage `json:"schedule"`
}

// MuscleStat is the progression of one muscle group.
type MuscleStat struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// SystemLog is one entry of the profile's activity log.
type SystemLog struct {
	Text      string    `json:"text"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Highlight bool      `json:"highlight"`
}

// System log types.
const (
	LogBonus     = "bonus"
	LogMilestone = "milestone"
	LogWorkout   = "workout"
	LogMGP       = "mgp"
	LogPrestige  = "prestige"
	LogLevelUp   = "levelup"
	LogPR        = "pr"
	LogGrace     = "grace"
)

// NewUserProfile returns a fresh profile for a user who has never trained.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		FitnessLevel:  1,
		Muscles:       make(map[string]*MuscleStat),
		PRs:           make(map[string]float64),
		SystemLogs:    []SystemLog{},
		ProfileSlides: []json.RawMessage{},
		Schedule:      make(map[string]json.RawMessage),
	}
}

// Muscle returns the stat for name, creating it at XP 0 / level 1 if absent.
func (p *UserProfile) Muscle(name string) *MuscleStat {
	if p.Muscles == nil {
		p.Muscles = make(map[string]*MuscleStat)
	}
	m, ok := p.Muscles[name]
	if !ok || m == nil {
		m = &MuscleStat{Level: 1}
		p.Muscles[name] = m
	}
	return m
}

// MuscleLevel returns the level of name without creating an entry. Unknown muscles are level 1.
func (p *UserProfile) MuscleLevel(name string) int {
	if m, ok := p.Muscles[name]; ok && m != nil {
		return m.Level
	}
	return 1
}

// PR returns the recorded volume for exerciseID, or 0 if none exists.
func (p *UserProfile) PR(exerciseID string) float64 {
	return p.PRs[exerciseID]
}

// SetPR raises the record for exerciseID to volume. Lower volumes are ignored.
func (p *UserProfile) SetPR(exerciseID string, volume float64) {
	if p.PRs == nil {
		p.PRs = make(map[string]float64)
	}
	if volume > p.PRs[exerciseID] {
		p.PRs[exerciseID] = volume
	}
}

// AppendLogs appends entries and evicts the oldest beyond MaxSystemLogs.
func (p *UserProfile) AppendLogs(entries ...SystemLog) {
	p.SystemLogs = append(p.SystemLogs, entries...)
	if n := len(p.SystemLogs); n > MaxSystemLogs {
		kept := make([]SystemLog, MaxSystemLogs)
		copy(kept, p.SystemLogs[n-MaxSystemLogs:])
		p.SystemLogs = kept
	}
}

// Clone returns a deep copy of the profile.
func (p *UserProfile) Clone() *UserProfile {
	cp := *p
	if p.LastWorkout != nil {
		t := *p.LastWorkout
		cp.LastWorkout = &t
	}
	cp.Muscles = make(map[string]*MuscleStat, len(p.Muscles))
	for k, v := range p.Muscles {
		if v == nil {
			continue
		}
		m := *v
		cp.Muscles[k] = &m
	}
	cp.PRs = make(map[string]float64, len(p.PRs))
	for k, v := range p.PRs {
		cp.PRs[k] = v
	}
	cp.SystemLogs = make([]SystemLog, len(p.SystemLogs))
	copy(cp.SystemLogs, p.SystemLogs)
	cp.ProfileSlides = make([]json.RawMessage, len(p.ProfileSlides))
	copy(cp.ProfileSlides, p.ProfileSlides)
	cp.Schedule = make(map[string]json.RawMessage, len(p.Schedule))
	for k, v := range p.Schedule {
		cp.Schedule[k] = v
	}
	return &cp
}
