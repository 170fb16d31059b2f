package alpha

import (
	"github.com/lifehub/lifehub/internal/catalog"
	"github.com/lifehub/lifehub/internal/models"
)

// ToWorkout converts a parsed session into a scorable WorkoutSession.
// Warmups are dropped. Exercises resolve through c; unknown names get a
// slug dbId and no target muscles. Exercises without working sets are
// left out. The names of unresolved exercises are returned.
func ToWorkout(s Session, c *catalog.Catalog) (models.WorkoutSession, []string) {
	var out models.WorkoutSession
	var unknown []string

	for _, ex := range s.Exercises {
		working := ex.WorkingSets()
		if len(working) == 0 {
			continue
		}

		tpl, ok := c.Lookup(ex.Name)
		if !ok {
			unknown = append(unknown, ex.Name)
		}

		sets := make([]models.SetInput, len(working))
		for i, set := range working {
			sets[i] = setInput(tpl.Type, set)
		}

		out.Exercises = append(out.Exercises, models.Exercise{
			DBID:    tpl.DBID,
			Name:    ex.Name,
			Type:    tpl.Type,
			Sets:    sets,
			Details: models.ExerciseDetails{Target: tpl.Target},
		})
	}
	return out, unknown
}

// setInput maps a logged set to the two raw values its scoring type reads.
// Rep-counted exercises carry the reps first; everything else is
// [weightKg, reps].
func setInput(typ models.ScoringType, s Set) models.SetInput {
	if typ == models.ScoreReps {
		return models.SetInput{models.Measure(s.Reps), 0}
	}
	return models.SetInput{models.Measure(s.WeightKg), models.Measure(s.Reps)}
}
