package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifehub/lifehub/internal/progression"
)

const defaultLogLimit = 10

// parseDay accepts RFC 3339 or YYYY-MM-DD; a bare date means the end of
// that day. Empty means now.
func parseDay(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t.Add(24*time.Hour - time.Nanosecond), nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Return the full progression profile: fitness points and level, prestige currency, streak, grace usage, per-muscle XP, personal records and the activity log."),
)

var toolGetLevelStatus = mcp.NewTool("get_level_status",
	mcp.WithDescription("Evaluate one progression track. Returns level, percent to next level, current points, next requirement and whether the level is capped by a muscle gate."),
	mcp.WithString("track", mcp.Required(), mcp.Description("'fitness' for the global level, or a muscle group name (e.g. Chest, Back, Quads)")),
)

var toolGetRecentLogs = mcp.NewTool("get_recent_logs",
	mcp.WithDescription("Return the most recent activity log entries (workouts, PRs, level-ups, grace), oldest first."),
	mcp.WithNumber("limit", mcp.Description("Number of entries to return. Defaults to 10.")),
)

var toolGetBodyStats = mcp.NewTool("get_body_stats",
	mcp.WithDescription("Return the latest recorded weight and the BMI derived from it, as of a date."),
	mcp.WithString("date", mcp.Description("Date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.Profile(ctx)
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLevelStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	track, err := req.RequireString("track")
	if err != nil {
		return mcp.NewToolResultError("track parameter is required"), nil
	}

	status, ok, err := h.ds.LevelStatus(ctx, track)
	if err != nil {
		h.log.Error("mcp get_level_status", "track", track, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("unknown track " + track + ": use '" + progression.FitnessTrack + "' or a trained muscle group"), nil
	}

	result, err := mcp.NewToolResultJSON(status)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecentLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultLogLimit)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be at least 1"), nil
	}

	logs, err := h.ds.RecentLogs(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_recent_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getBodyStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at, err := parseDay(req.GetString("date", ""), h.now)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	stats, err := h.ds.BodyStats(ctx, at)
	if err != nil {
		h.log.Error("mcp get_body_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
