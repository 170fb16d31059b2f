package progression

import (
	"math"
	"testing"

	"github.com/lifehub/lifehub/internal/models"
)

func TestVolume(t *testing.T) {
	tests := []struct {
		typ    models.ScoringType
		v1, v2 float64
		want   float64
	}{
		{models.ScoreWeightReps, 50, 10, 500},
		{models.ScoreWeightReps, 102.5, 5, 512.5},
		{models.ScoreReps, 12, 99, 12},
		{models.ScoreDistance, 5.5, 3, 5.5},
		{models.ScoreTime, 30, 2, 150},
		{models.ScoringType("Yoga"), 10, 10, 0},
		{models.ScoreWeightReps, -100, 10, 0},
		{models.ScoreReps, -12, 0, 0},
		{models.ScoreWeightReps, 1e200, 1e200, 0},
		{models.ScoreTime, 1e308, 1e308, 0},
		{models.ScoreDistance, math.Inf(1), 0, 0},
		{models.ScoreReps, math.NaN(), 0, 0},
	}
	for _, tc := range tests {
		if got := Volume(tc.typ, tc.v1, tc.v2); got != tc.want {
			t.Errorf("Volume(%q, %v, %v) = %v, want %v", tc.typ, tc.v1, tc.v2, got, tc.want)
		}
	}
}

// TestScoreSet_NoRecord verifies every set scores the unranked constant until
// a record exists, regardless of volume.
func TestScoreSet_NoRecord(t *testing.T) {
	r := DefaultRules()
	for _, reps := range []float64{0, 1, 10, 1000} {
		got := r.ScoreSet(models.ScoreWeightReps, 50, reps, 0)
		if got.Score != 8.0 {
			t.Errorf("Score(50x%v, no PR) = %v, want 8.0", reps, got.Score)
		}
	}
	if got := r.ScoreSet(models.ScoreWeightReps, 50, 10, 0); !got.IsPR {
		t.Error("positive volume with no record should be a PR")
	}
	if got := r.ScoreSet(models.ScoreWeightReps, 0, 0, 0); got.IsPR {
		t.Error("zero volume with no record should not be a PR")
	}
}

func TestScoreSet_RelativeToRecord(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		vol, record float64
		want        float64
		wantPR      bool
	}{
		{250, 500, 5, false},
		{500, 500, 10, false},
		{600, 500, 12, true},
		{750, 500, 15, true},
		{5000, 500, 15, true},
	}
	for _, tc := range tests {
		got := r.ScoreSet(models.ScoreReps, tc.vol, 0, tc.record)
		if got.Score != tc.want {
			t.Errorf("Score(vol=%v, pr=%v) = %v, want %v", tc.vol, tc.record, got.Score, tc.want)
		}
		if got.IsPR != tc.wantPR {
			t.Errorf("IsPR(vol=%v, pr=%v) = %v, want %v", tc.vol, tc.record, got.IsPR, tc.wantPR)
		}
	}
}

// TestScoreSet_Bounds verifies scores stay within [0, MaxSetScore], grow with
// volume and shrink as the record grows.
func TestScoreSet_Bounds(t *testing.T) {
	r := DefaultRules()
	for record := 50.0; record <= 2000; record += 150 {
		prev := -1.0
		for vol := 0.0; vol <= 5000; vol += 37 {
			s := r.ScoreSet(models.ScoreReps, vol, 0, record).Score
			if s < 0 || s > r.MaxSetScore {
				t.Fatalf("Score(vol=%v, pr=%v) = %v out of bounds", vol, record, s)
			}
			if s < prev {
				t.Fatalf("Score decreased with volume at vol=%v, pr=%v", vol, record)
			}
			prev = s
			if higher := r.ScoreSet(models.ScoreReps, vol, 0, record*2).Score; higher > s {
				t.Fatalf("Score increased with record at vol=%v, pr=%v", vol, record)
			}
		}
	}
}

// TestCalculateSetScore_NonNumericInput verifies garbage inputs score as zero
// volume rather than failing.
func TestCalculateSetScore_NonNumericInput(t *testing.T) {
	p := models.NewUserProfile()
	p.PRs["bench"] = 500
	e, _, _ := newTestEngine(t, p)

	var v1, v2 models.Measure
	if err := v1.UnmarshalJSON([]byte(`"heavy"`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if err := v2.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	got := e.CalculateSetScore("bench", models.ScoreWeightReps, v1, v2)
	if got.Volume != 0 || got.Score != 0 || got.IsPR {
		t.Errorf("CalculateSetScore(garbage) = %+v, want zero score", got)
	}

	if p.PRs["bench"] != 500 {
		t.Errorf("CalculateSetScore changed the record to %v", p.PRs["bench"])
	}
}

// TestScoreSet_OutOfRangeInputs verifies negative, overflowing and NaN inputs
// score inside [0, MaxSetScore] with a finite volume and no record.
func TestScoreSet_OutOfRangeInputs(t *testing.T) {
	r := DefaultRules()
	inputs := [][2]float64{
		{-1000, 10},
		{1000, -10},
		{-5, -5},
		{1e200, 1e200},
		{math.MaxFloat64, 2},
		{math.Inf(1), 1},
		{math.Inf(-1), 1},
		{math.NaN(), 3},
	}
	for _, record := range []float64{0, 100, 1e-300, -50} {
		for _, in := range inputs {
			got := r.ScoreSet(models.ScoreWeightReps, in[0], in[1], record)
			if got.Score < 0 || got.Score > r.MaxSetScore || math.IsNaN(got.Score) {
				t.Errorf("Score(%v, pr=%v) = %v, want within [0, %v]", in, record, got.Score, r.MaxSetScore)
			}
			if got.Volume != 0 {
				t.Errorf("Volume(%v) = %v, want 0", in, got.Volume)
			}
			if record >= 0 && got.IsPR {
				t.Errorf("IsPR(%v, pr=%v) = true, want false", in, record)
			}
		}
	}
}
