package progression

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/lifehub/lifehub/internal/models"
)

// ProcessSession scores session, commits the result to the profile and
// returns the report.
func (e *Engine) ProcessSession(ctx context.Context, session models.WorkoutSession, isLuteal, isComplete bool) *models.SessionReport {
	report := e.Compute(session, isLuteal, isComplete)
	e.Commit(ctx, report)
	return report
}

// Compute builds the SessionReport for session without touching the profile.
//
// Rounding happens once, after the luteal multiplier: per-muscle MGP and the
// session total are accumulated unrounded, scaled, then rounded.
func (e *Engine) Compute(session models.WorkoutSession, isLuteal, isComplete bool) *models.SessionReport {
	r := e.rules
	report := &models.SessionReport{
		ID:            uuid.New(),
		EarnedMGP:     make(map[string]int),
		BaseFP:        r.BasePartialFP,
		LevelUps:      []models.LevelUp{},
		NewPRs:        []string{},
		PRUpdates:     make(map[string]float64),
		GeneratedLogs: []models.SystemLog{},
	}
	if isComplete {
		report.BaseFP = r.BaseCompleteFP
	}

	earned := make(map[string]float64)
	var sessionMGP float64

	// Records raised earlier in this session apply to later exercises with
	// the same id, as if they had been committed.
	records := func(id string) float64 {
		if v, ok := report.PRUpdates[id]; ok {
			return v
		}
		return e.profile.PR(id)
	}

	for _, ex := range session.Exercises {
		exerciseMGP := r.ExerciseBaseMGP
		var maxVol float64
		record := records(ex.DBID)

		for _, set := range ex.Sets {
			res := r.ScoreSet(ex.Type, set[0].Float(), set[1].Float(), record)
			exerciseMGP += res.Score
			maxVol = max(maxVol, res.Volume)
		}

		if maxVol > record {
			report.PRUpdates[ex.DBID] = maxVol
			report.NewPRs = append(report.NewPRs, ex.Name)
			report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
				Text:      fmt.Sprintf("[NEW PR] %s: %s", ex.Name, formatVolume(maxVol)),
				Type:      models.LogPR,
				Highlight: true,
			})
		}

		for _, muscle := range ex.Details.Target {
			earned[muscle] += exerciseMGP
			sessionMGP += exerciseMGP
		}
	}

	if isLuteal {
		multi := r.LutealMultiplier
		sessionMGP *= multi
		report.BaseFP = round(float64(report.BaseFP) * multi)
		for m := range earned {
			earned[m] *= multi
		}
		report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
			Text:      fmt.Sprintf("[LUTEAL BONUS] %d%% Multiplier Applied", round((multi-1)*100)),
			Type:      models.LogBonus,
			Highlight: true,
		})
	}

	report.TotalSessionMGP = round(sessionMGP)
	for m, v := range earned {
		report.EarnedMGP[m] = round(v)
	}

	report.EffortFP = round(float64(report.TotalSessionMGP) / r.ExchangeRate)

	projected := e.profile.Streak + 1
	report.StreakFP = StreakBonus(projected)
	if report.StreakFP > 0 {
		report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
			Text:      fmt.Sprintf("[STREAK MILESTONE] %d Days! +%d FP", projected, report.StreakFP),
			Type:      models.LogMilestone,
			Highlight: true,
		})
	}

	report.TotalFP = report.BaseFP + report.EffortFP + report.StreakFP
	report.EarnedPrestige = round(float64(report.TotalFP) * r.PrestigeRatio)

	status := "PARTIAL"
	if isComplete {
		status = "COMPLETE"
	}
	report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
		Text: fmt.Sprintf("[WORKOUT %s] +%d Base FP", status, report.BaseFP),
		Type: models.LogWorkout,
	})

	for _, muscle := range slices.Sorted(maps.Keys(report.EarnedMGP)) {
		if points := report.EarnedMGP[muscle]; points > 0 {
			report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
				Text: fmt.Sprintf("[+%d MGP] %s Growth", points, muscle),
				Type: models.LogMGP,
			})
		}
	}

	if report.EarnedPrestige > 0 {
		report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
			Text:      fmt.Sprintf("[+%d PRESTIGE] Funds Acquired", report.EarnedPrestige),
			Type:      models.LogPrestige,
			Highlight: true,
		})
	}

	return report
}

// formatVolume prints whole volumes without a decimal point.
func formatVolume(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
