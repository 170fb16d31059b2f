package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	SessionsImported int      `json:"sessions_imported"`
	SessionsSkipped  int      `json:"sessions_skipped"`
	ExercisesScored  int      `json:"exercises_scored"`
	SetsImported     int      `json:"sets_imported"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	TotalFP          int      `json:"total_fp"`
	NewPRs           int      `json:"new_prs"`
	LevelUps         int      `json:"level_ups"`
	UnknownExercises []string `json:"unknown_exercises,omitempty"`

	Message string `json:"message,omitempty"`
}
