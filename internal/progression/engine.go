// Package progression turns logged workouts into points, levels and streaks.
//
// An Engine owns no locks: it expects exactly one caller at a time and
// persists the profile through its Saver after every mutation.
package progression

import (
	"context"
	"log/slog"
	"time"

	"github.com/lifehub/lifehub/internal/models"
)

// Saver persists the profile (and whatever else belongs to the same unit).
type Saver interface {
	Save(ctx context.Context) error
}

// Engine applies the point economy to a single profile.
type Engine struct {
	profile *models.UserProfile
	saver   Saver
	log     *slog.Logger
	rules   Rules
	fitness Table
	muscle  Table
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces DefaultRules.
func WithRules(r Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFitnessTable replaces FitnessLevels, e.g. with a gated table.
func WithFitnessTable(t Table) Option {
	return func(e *Engine) { e.fitness = t }
}

// New creates an Engine mutating profile in place. saver may be nil.
func New(profile *models.UserProfile, saver Saver, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		profile: profile,
		saver:   saver,
		log:     log,
		rules:   DefaultRules(),
		fitness: FitnessLevels,
		muscle:  MuscleLevels,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profile returns the live profile. Callers must not mutate it.
func (e *Engine) Profile() *models.UserProfile {
	return e.profile
}

// Rules returns the economy in effect.
func (e *Engine) Rules() Rules {
	return e.rules
}

// FitnessStatus evaluates the global fitness level with muscle gates applied.
func (e *Engine) FitnessStatus() LevelStatus {
	return e.fitness.Status(e.profile.FitnessPoints, e.profile.MuscleLevel)
}

// MuscleStatus evaluates one muscle group's level.
func (e *Engine) MuscleStatus(name string) LevelStatus {
	var xp int
	if m, ok := e.profile.Muscles[name]; ok && m != nil {
		xp = m.XP
	}
	return e.muscle.Status(xp, nil)
}

// CalculateSetScore scores one set against the stored record for exerciseID.
// It does not update the record.
func (e *Engine) CalculateSetScore(exerciseID string, typ models.ScoringType, v1, v2 models.Measure) SetScore {
	return e.rules.ScoreSet(typ, v1.Float(), v2.Float(), e.profile.PR(exerciseID))
}

func (e *Engine) save(ctx context.Context) {
	if e.saver == nil {
		return
	}
	if err := e.saver.Save(ctx); err != nil {
		e.log.Warn("saving profile failed", "error", err)
	}
}
