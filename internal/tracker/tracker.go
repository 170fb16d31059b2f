// Package tracker is the concurrency boundary between the transports and the
// single-writer progression engine.
package tracker

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/state"
)

// Levels is the evaluated state of every progression track.
type Levels struct {
	Fitness progression.LevelStatus            `json:"fitness"`
	Muscles map[string]progression.LevelStatus `json:"muscles"`
}

// Tracker serializes access to the engine and the vault behind one mutex.
// Every read returns a copy the caller may keep.
type Tracker struct {
	mu      sync.Mutex
	engine  *progression.Engine
	vault   *state.Vault
	log     *slog.Logger
	metrics *metrics.Manager
}

// New wraps engine and vault. The engine must save through vault. m may be nil.
func New(engine *progression.Engine, vault *state.Vault, log *slog.Logger, m *metrics.Manager) *Tracker {
	t := &Tracker{engine: engine, vault: vault, log: log, metrics: m}
	t.observeProfile()
	return t
}

// LogWorkout scores and commits a session.
func (t *Tracker) LogWorkout(ctx context.Context, session models.WorkoutSession, isLuteal, isComplete bool) *models.SessionReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := t.engine.ProcessSession(ctx, session, isLuteal, isComplete)

	if t.metrics != nil {
		completion := "partial"
		if isComplete {
			completion = "complete"
		}
		t.metrics.CounterSessions.WithLabelValues(completion, strconv.FormatBool(isLuteal)).Inc()
		t.metrics.CounterFitnessPts.Add(float64(report.TotalFP))
		t.metrics.CounterPrestige.Add(float64(report.EarnedPrestige))
		t.metrics.CounterPRs.Add(float64(len(report.NewPRs)))
		for _, lu := range report.LevelUps {
			t.metrics.CounterLevelUps.WithLabelValues(lu.Track).Inc()
		}
	}
	t.observeProfile()

	t.log.Info("workout logged",
		"exercises", len(session.Exercises),
		"total_fp", report.TotalFP,
		"new_prs", len(report.NewPRs),
		"level_ups", len(report.LevelUps),
	)
	return report
}

// ActivateGrace spends a weekly grace use; false means the cap is reached.
func (t *Tracker) ActivateGrace(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ok := t.engine.ActivateGrace(ctx)
	if t.metrics != nil {
		outcome := "activated"
		if !ok {
			outcome = "refused"
		}
		t.metrics.CounterGrace.WithLabelValues(outcome).Inc()
	}
	return ok
}

// CheckGraceReset resets the weekly grace counter if the week changed.
func (t *Tracker) CheckGraceReset(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.CheckGraceReset(ctx)
}

// Profile returns a deep copy of the profile.
func (t *Tracker) Profile() *models.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine.Profile().Clone()
}

// Levels evaluates the fitness level and every known muscle group.
func (t *Tracker) Levels() Levels {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := Levels{
		Fitness: t.engine.FitnessStatus(),
		Muscles: make(map[string]progression.LevelStatus),
	}
	for name := range t.engine.Profile().Muscles {
		out.Muscles[name] = t.engine.MuscleStatus(name)
	}
	return out
}

// LevelStatus evaluates one track: progression.FitnessTrack or a muscle
// name. Unknown muscles report false.
func (t *Tracker) LevelStatus(track string) (progression.LevelStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if track == progression.FitnessTrack {
		return t.engine.FitnessStatus(), true
	}
	if _, ok := t.engine.Profile().Muscles[track]; !ok {
		return progression.LevelStatus{}, false
	}
	return t.engine.MuscleStatus(track), true
}

// MuscleNames lists the muscle groups with progress, sorted.
func (t *Tracker) MuscleNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Sorted(maps.Keys(t.engine.Profile().Muscles))
}

// RecentLogs returns up to limit of the newest system logs, oldest first.
// A limit <= 0 returns all of them.
func (t *Tracker) RecentLogs(limit int) []models.SystemLog {
	t.mu.Lock()
	defer t.mu.Unlock()

	logs := t.engine.Profile().SystemLogs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return slices.Clone(logs)
}

// AddMeasurement records a body measurement.
func (t *Tracker) AddMeasurement(ctx context.Context, entry models.MeasurementLog) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vault.AddMeasurement(ctx, entry)
}

// BodyStats returns weight and BMI as of at.
func (t *Tracker) BodyStats(at time.Time) models.BodyStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vault.StatsForDate(at)
}

// Goals returns a copy of the measurement goals.
func (t *Tracker) Goals() models.Goals {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.vault.Goals)
}

// Templates returns a copy of the saved exercise templates.
func (t *Tracker) Templates() []models.Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Template, len(t.vault.Templates))
	for i, tpl := range t.vault.Templates {
		tpl.Target = slices.Clone(tpl.Target)
		out[i] = tpl
	}
	return out
}

// Backup returns a stored replication document.
func (t *Tracker) Backup(ctx context.Context, doc string) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vault.Backup(ctx, doc)
}

// PutBackup stores a replication document received from another instance.
func (t *Tracker) PutBackup(ctx context.Context, doc string, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vault.PutBackup(ctx, doc, data)
}

// observeProfile publishes the profile gauges. Callers hold t.mu.
func (t *Tracker) observeProfile() {
	if t.metrics == nil {
		return
	}
	p := t.engine.Profile()
	t.metrics.GaugeFitnessLevel.Set(float64(p.FitnessLevel))
	t.metrics.GaugeStreak.Set(float64(p.Streak))
}
