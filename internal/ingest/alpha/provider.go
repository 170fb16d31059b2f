package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/lifehub/lifehub/internal/catalog"
	"github.com/lifehub/lifehub/internal/ingest"
	"github.com/lifehub/lifehub/internal/models"
)

// WorkoutLogger scores and commits one session. *tracker.Tracker satisfies it.
type WorkoutLogger interface {
	LogWorkout(ctx context.Context, session models.WorkoutSession, isLuteal, isComplete bool) *models.SessionReport
}

// Target says where replayed sessions go.
type Target struct {
	// Logger receives each session; nil only counts (dry run).
	Logger WorkoutLogger
	// Pin is called with the session date before the session is logged,
	// so streaks follow the export rather than the wall clock.
	Pin func(time.Time)
	// After skips sessions dated at or before it, so re-importing an
	// export does not credit the same workouts twice.
	After time.Time
}

// Provider replays Alpha Progression CSV exports through the engine.
type Provider struct {
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(c *catalog.Catalog, log *slog.Logger) *Provider {
	return &Provider{catalog: c, log: log}
}

// Ingest parses a CSV export and replays its sessions oldest first as
// complete, non-luteal workouts.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, target Target) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	slices.SortStableFunc(sessions, func(a, b Session) int {
		return a.Date.Compare(b.Date)
	})

	result := &ingest.Result{SessionsReceived: len(sessions)}
	unknown := make(map[string]bool)

	for _, s := range sessions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !target.After.IsZero() && !s.Date.After(target.After) {
			result.SessionsSkipped++
			continue
		}

		workout, missing := ToWorkout(s, p.catalog)
		for _, name := range missing {
			unknown[name] = true
		}
		if len(workout.Exercises) == 0 {
			p.log.Warn("session has no working sets", "session", s.Name, "date", s.Date)
			result.SessionsSkipped++
			continue
		}

		for _, ex := range s.Exercises {
			result.WarmupsSkipped += len(ex.Sets) - len(ex.WorkingSets())
		}
		for _, ex := range workout.Exercises {
			result.SetsImported += len(ex.Sets)
		}
		result.ExercisesScored += len(workout.Exercises)
		result.SessionsImported++

		if target.Logger == nil {
			continue
		}
		if target.Pin != nil {
			target.Pin(s.Date)
		}
		report := target.Logger.LogWorkout(ctx, workout, false, true)
		result.TotalFP += report.TotalFP
		result.NewPRs += len(report.NewPRs)
		result.LevelUps += len(report.LevelUps)

		p.log.Debug("session replayed",
			"session", s.Name,
			"date", s.Date.Format(time.DateTime),
			"total_fp", report.TotalFP,
		)
	}

	for name := range unknown {
		result.UnknownExercises = append(result.UnknownExercises, name)
	}
	slices.Sort(result.UnknownExercises)

	result.Message = fmt.Sprintf("imported %d of %d sessions", result.SessionsImported, result.SessionsReceived)
	return result, nil
}
