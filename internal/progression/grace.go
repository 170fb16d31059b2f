package progression

import (
	"context"
	"time"

	"github.com/lifehub/lifehub/internal/models"
)

// CheckGraceReset clears the weekly grace counter when the ISO week has
// changed since the last reset. It reports whether a reset happened; calling
// it again within the same week is a no-op.
//
// Profiles stored before the ISO year was tracked compare the week number
// only, and get the current year recorded when the week still matches.
func (e *Engine) CheckGraceReset(ctx context.Context) bool {
	p := e.profile
	year, week := e.now().ISOWeek()
	if week == p.LastGraceWeek && p.LastGraceYear == year {
		return false
	}
	if week == p.LastGraceWeek && p.LastGraceYear == 0 {
		p.LastGraceYear = year
		e.save(ctx)
		return false
	}

	p.GraceUsed = 0
	p.LastGraceWeek = week
	p.LastGraceYear = year
	e.save(ctx)

	e.log.Info("weekly grace cap reset", "year", year, "week", week)
	return true
}

// ActivateGrace spends one weekly grace use to keep the streak alive without
// counting a session. It returns false, changing nothing, once the weekly cap
// is used up.
func (e *Engine) ActivateGrace(ctx context.Context) bool {
	e.CheckGraceReset(ctx)

	p := e.profile
	if p.GraceUsed >= e.rules.GraceCap {
		return false
	}

	now := e.now()
	p.GraceUsed++
	p.LastWorkout = &now
	p.AppendLogs(models.SystemLog{
		Text:      "[GRACE PROTOCOL] Streak Paused",
		Date:      now,
		Type:      models.LogGrace,
		Highlight: true,
	})
	e.save(ctx)

	e.log.Info("grace activated", "used", p.GraceUsed, "cap", e.rules.GraceCap)
	return true
}

// ISOWeek returns the ISO-8601 week number of t (weeks start Monday; week 1
// contains the year's first Thursday).
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
