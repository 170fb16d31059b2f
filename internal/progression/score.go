package progression

import (
	"math"

	"github.com/lifehub/lifehub/internal/models"
)

// SetScore is the scored result of one set.
type SetScore struct {
	Score  float64 `json:"score"`
	Volume float64 `json:"vol"`
	IsPR   bool    `json:"isPR"`
}

// Volume combines a set's two raw values according to typ. Time sets are
// seconds plus minutes; unknown types have no volume. Negative, overflowing
// and NaN volumes are 0.
func Volume(typ models.ScoringType, v1, v2 float64) float64 {
	var vol float64
	switch typ {
	case models.ScoreWeightReps:
		vol = v1 * v2
	case models.ScoreReps, models.ScoreDistance:
		vol = v1
	case models.ScoreTime:
		vol = v1 + v2*60
	}
	if math.IsNaN(vol) || math.IsInf(vol, 0) || vol < 0 {
		return 0
	}
	return vol
}

// ScoreSet scores a set relative to record, the best volume logged so far.
// Without a record every set scores UnrankedSetScore; otherwise the score is
// ten times the volume/record ratio. Scores are clamped to [0, MaxSetScore].
func (r Rules) ScoreSet(typ models.ScoringType, v1, v2, record float64) SetScore {
	vol := Volume(typ, v1, v2)

	score := r.UnrankedSetScore
	if record != 0 {
		score = vol / record * 10
	}
	if math.IsNaN(score) {
		score = 0
	}
	score = max(0, min(score, r.MaxSetScore))

	return SetScore{Score: score, Volume: vol, IsPR: vol > record}
}
