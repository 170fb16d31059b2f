package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
)

// profileSummary is the compact view served as lifehub://profile_summary.
type profileSummary struct {
	FitnessLevel     int                                `json:"fitnessLevel"`
	FitnessPoints    int                                `json:"fitnessPoints"`
	Fitness          progression.LevelStatus            `json:"fitness"`
	PrestigeCurrency int                                `json:"prestigeCurrency"`
	Streak           int                                `json:"streak"`
	LastWorkout      *time.Time                         `json:"lastWorkout"`
	GraceUsed        int                                `json:"graceUsed"`
	Muscles          map[string]progression.LevelStatus `json:"muscles"`
	PRCount          int                                `json:"prCount"`
	BodyStats        models.BodyStats                   `json:"bodyStats"`
}

func (h *handlers) profileSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.ds.Profile(ctx)
	if err != nil {
		return nil, err
	}

	levels, err := h.ds.Levels(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := h.ds.BodyStats(ctx, h.now())
	if err != nil {
		h.log.Warn("profile_summary: body stats failed", "error", err)
		stats = models.BodyStats{Weight: "--", BMI: "--"}
	}

	summary := profileSummary{
		FitnessLevel:     p.FitnessLevel,
		FitnessPoints:    p.FitnessPoints,
		Fitness:          levels.Fitness,
		PrestigeCurrency: p.PrestigeCurrency,
		Streak:           p.Streak,
		LastWorkout:      p.LastWorkout,
		GraceUsed:        p.GraceUsed,
		Muscles:          levels.Muscles,
		PRCount:          len(p.PRs),
		BodyStats:        stats,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
