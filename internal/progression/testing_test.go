package progression

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lifehub/lifehub/internal/models"
)

// fakeSaver counts Save calls and optionally fails them.
type fakeSaver struct {
	calls int
	err   error
}

func (s *fakeSaver) Save(context.Context) error {
	s.calls++
	return s.err
}

var errDiskFull = errors.New("disk full")

// fakeClock is a settable clock for streak and grace tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, p *models.UserProfile, opts ...Option) (*Engine, *fakeSaver, *fakeClock) {
	t.Helper()
	if p == nil {
		p = models.NewUserProfile()
	}
	saver := &fakeSaver{}
	clock := &fakeClock{t: time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	return New(p, saver, discardLogger(), opts...), saver, clock
}

func benchSession(sets ...models.SetInput) models.WorkoutSession {
	return models.WorkoutSession{Exercises: []models.Exercise{{
		DBID:    "bench",
		Name:    "Bench Press",
		Type:    models.ScoreWeightReps,
		Sets:    sets,
		Details: models.ExerciseDetails{Target: []string{"Chest"}},
	}}}
}

func logTexts(logs []models.SystemLog) []string {
	out := make([]string, len(logs))
	for i, l := range logs {
		out[i] = l.Text
	}
	return out
}
