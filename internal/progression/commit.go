package progression

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/lifehub/lifehub/internal/models"
)

// FitnessTrack names the global level in LevelUp entries.
const FitnessTrack = "fitness"

// Commit applies report to the profile and saves it. It is not idempotent:
// committing the same report twice credits it twice.
func (e *Engine) Commit(ctx context.Context, report *models.SessionReport) {
	p := e.profile
	now := e.now()

	for _, name := range slices.Sorted(maps.Keys(report.EarnedMGP)) {
		m := p.Muscle(name)
		oldLevel := m.Level
		m.XP += report.EarnedMGP[name]
		m.Level = e.muscle.Status(m.XP, nil).Level

		if m.Level > oldLevel {
			report.LevelUps = append(report.LevelUps, models.LevelUp{Track: name, Level: m.Level})
			report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
				Text:      fmt.Sprintf("[LEVEL UP] %s -> Level %d", name, m.Level),
				Type:      models.LogLevelUp,
				Highlight: true,
			})
		}
	}

	for id, vol := range report.PRUpdates {
		p.SetPR(id, vol)
	}

	oldFitness := p.FitnessLevel
	p.FitnessPoints += report.TotalFP
	p.PrestigeCurrency += report.EarnedPrestige
	p.FitnessLevel = e.FitnessStatus().Level

	if p.FitnessLevel > oldFitness {
		report.LevelUps = append(report.LevelUps, models.LevelUp{Track: FitnessTrack, Level: p.FitnessLevel})
		report.GeneratedLogs = append(report.GeneratedLogs, models.SystemLog{
			Text:      fmt.Sprintf("[RANK UP] FITNESS LEVEL %d", p.FitnessLevel),
			Type:      models.LogLevelUp,
			Highlight: true,
		})
	}

	if p.LastWorkout != nil && now.Sub(*p.LastWorkout) < e.rules.StreakBuffer {
		p.Streak++
	} else {
		p.Streak = 1
	}
	last := now
	p.LastWorkout = &last

	for i := range report.GeneratedLogs {
		report.GeneratedLogs[i].Date = now
	}
	p.AppendLogs(report.GeneratedLogs...)

	e.save(ctx)

	e.log.Info("session committed",
		"report", report.ID,
		"total_fp", report.TotalFP,
		"prestige", report.EarnedPrestige,
		"streak", p.Streak,
		"fitness_level", p.FitnessLevel,
	)
}
