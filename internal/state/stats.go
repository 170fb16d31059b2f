package state

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/lifehub/lifehub/internal/models"
)

const noValue = "--"

// StatsForDate returns the latest recorded weight at or before t and the BMI
// derived from it. Entries without a weight are skipped; with none found
// both values are "--".
func (v *Vault) StatsForDate(t time.Time) models.BodyStats {
	return StatsForDate(v.Measurements, t, v.heightM)
}

// StatsForDate is the store-independent form of Vault.StatsForDate.
func StatsForDate(logs []models.MeasurementLog, t time.Time, heightM float64) models.BodyStats {
	sorted := slices.Clone(logs)
	slices.SortStableFunc(sorted, func(a, b models.MeasurementLog) int {
		return cmp.Compare(a.Date.UnixNano(), b.Date.UnixNano())
	})

	stats := models.BodyStats{Weight: noValue, BMI: noValue}
	for _, l := range sorted {
		if l.Date.After(t) {
			break
		}
		w := l.Data["Weight"].Float()
		if w == 0 {
			continue
		}
		stats.Weight = strconv.FormatFloat(w, 'f', -1, 64) + "kg"
		stats.BMI = strconv.FormatFloat(w/(heightM*heightM), 'f', 1, 64)
	}
	return stats
}
