package alpha

import (
	"strings"
	"testing"

	"github.com/lifehub/lifehub/internal/catalog"
	"github.com/lifehub/lifehub/internal/models"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		models.Template{DBID: "bench", Name: "Bench Press", Type: models.ScoreWeightReps, Target: []string{"Chest", "Triceps"}},
		models.Template{Name: "Hanging Leg Raises", Type: models.ScoreReps, Target: []string{"Abs"}},
	)
}

func parseSample(t *testing.T) []Session {
	t.Helper()
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return sessions
}

// TestToWorkoutKnownExercise verifies catalog exercises carry their id,
// scoring type and targets, and only working sets are kept.
func TestToWorkoutKnownExercise(t *testing.T) {
	push := parseSample(t)[1]

	w, unknown := ToWorkout(push, testCatalog())
	if len(unknown) != 0 {
		t.Errorf("unknown = %v, want none", unknown)
	}
	if len(w.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(w.Exercises))
	}

	ex := w.Exercises[0]
	if ex.DBID != "bench" || ex.Type != models.ScoreWeightReps {
		t.Errorf("exercise = %+v", ex)
	}
	if len(ex.Details.Target) != 2 || ex.Details.Target[0] != "Chest" {
		t.Errorf("targets = %v", ex.Details.Target)
	}
	want := []models.SetInput{{102.5, 6}, {102.5, 6}, {100, 6}}
	if len(ex.Sets) != len(want) {
		t.Fatalf("sets = %v, want %v", ex.Sets, want)
	}
	for i := range want {
		if ex.Sets[i] != want[i] {
			t.Errorf("set %d = %v, want %v", i, ex.Sets[i], want[i])
		}
	}
}

// TestToWorkoutUnknownExercises verifies unknown names get slug ids and no
// targets, and are reported.
func TestToWorkoutUnknownExercises(t *testing.T) {
	legs := parseSample(t)[0]

	w, unknown := ToWorkout(legs, testCatalog())
	if len(w.Exercises) != 6 {
		t.Fatalf("exercises = %d, want 6", len(w.Exercises))
	}
	if len(unknown) != 5 {
		t.Errorf("unknown = %v, want 5 names", unknown)
	}

	hack := w.Exercises[0]
	if hack.DBID != "hack_squats" || hack.Type != models.ScoreWeightReps || len(hack.Details.Target) != 0 {
		t.Errorf("hack squats = %+v", hack)
	}
	if hack.Sets[0] != (models.SetInput{115, 8}) {
		t.Errorf("hack squats first set = %v, want [115 8]", hack.Sets[0])
	}
}

// TestToWorkoutRepsScoring verifies rep-counted exercises put reps first.
func TestToWorkoutRepsScoring(t *testing.T) {
	legs := parseSample(t)[0]

	w, _ := ToWorkout(legs, testCatalog())
	raises := w.Exercises[5]
	if raises.DBID != "hanging_leg_raises" || raises.Type != models.ScoreReps {
		t.Fatalf("raises = %+v", raises)
	}
	if raises.Sets[0] != (models.SetInput{12, 0}) {
		t.Errorf("raises first set = %v, want [12 0]", raises.Sets[0])
	}
}

// TestToWorkoutWarmupOnly verifies an exercise with only warmups is dropped.
func TestToWorkoutWarmupOnly(t *testing.T) {
	s := Session{Exercises: []Exercise{{
		Name: "Bench Press",
		Sets: []Set{{Number: 1, WeightKg: 40, Reps: 10, IsWarmup: true}},
	}}}

	w, _ := ToWorkout(s, testCatalog())
	if len(w.Exercises) != 0 {
		t.Errorf("exercises = %+v, want none", w.Exercises)
	}
}
