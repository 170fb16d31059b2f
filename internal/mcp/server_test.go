package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/state"
	"github.com/lifehub/lifehub/internal/storage"
	"github.com/lifehub/lifehub/internal/tracker"
)

var testNow = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandlers builds handlers over a tracker that has logged one chest
// session and one 64kg weigh-in.
func newTestHandlers(t *testing.T) *handlers {
	t.Helper()
	log := discardLogger()
	clock := func() time.Time { return testNow }
	ctx := context.Background()

	kv, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	vault, err := state.Open(ctx, kv, log, state.WithClock(clock))
	if err != nil {
		t.Fatalf("state.Open: %v", err)
	}
	engine := progression.New(vault.Profile, vault, log, progression.WithClock(clock))
	tr := tracker.New(engine, vault, log, nil)

	tr.LogWorkout(ctx, models.WorkoutSession{Exercises: []models.Exercise{{
		DBID:    "bench",
		Name:    "Bench Press",
		Type:    models.ScoreWeightReps,
		Sets:    []models.SetInput{{50, 10}},
		Details: models.ExerciseDetails{Target: []string{"Chest"}},
	}}}, false, true)
	if err := tr.AddMeasurement(ctx, models.MeasurementLog{
		Date: testNow.Add(-time.Hour),
		Data: map[string]models.Measure{"Weight": 64},
	}); err != nil {
		t.Fatalf("AddMeasurement: %v", err)
	}

	h := newHandlers(TrackerSource{T: tr}, log)
	h.now = clock
	return h
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// resultText returns the text of a single-content tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

// TestGetProfile verifies the tool returns the committed profile.
func TestGetProfile(t *testing.T) {
	h := newTestHandlers(t)

	res, err := h.getProfile(context.Background(), toolRequest(nil))
	if err != nil || res.IsError {
		t.Fatalf("getProfile = %v, %v", res, err)
	}
	var p models.UserProfile
	if err := json.Unmarshal([]byte(resultText(t, res)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.FitnessPoints != 22 || p.Muscles["Chest"] == nil || p.Muscles["Chest"].XP != 23 {
		t.Errorf("profile = %+v", p)
	}
}

// TestGetLevelStatus verifies fitness and muscle tracks resolve and unknown
// tracks report a tool error rather than a protocol error.
func TestGetLevelStatus(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	tests := []struct {
		track      string
		wantError  bool
		wantPoints int
	}{
		{"fitness", false, 22},
		{"Chest", false, 23},
		{"Calves", true, 0},
	}
	for _, tt := range tests {
		res, err := h.getLevelStatus(ctx, toolRequest(map[string]any{"track": tt.track}))
		if err != nil {
			t.Fatalf("track %s: unexpected error %v", tt.track, err)
		}
		if res.IsError != tt.wantError {
			t.Errorf("track %s IsError = %v, want %v", tt.track, res.IsError, tt.wantError)
			continue
		}
		if tt.wantError {
			continue
		}
		var st progression.LevelStatus
		if err := json.Unmarshal([]byte(resultText(t, res)), &st); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if st.CurrentPoints != tt.wantPoints {
			t.Errorf("track %s points = %d, want %d", tt.track, st.CurrentPoints, tt.wantPoints)
		}
	}

	if res, _ := h.getLevelStatus(ctx, toolRequest(nil)); !res.IsError {
		t.Error("missing track should be a tool error")
	}
}

// TestGetRecentLogs verifies the limit argument and its default.
func TestGetRecentLogs(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	res, _ := h.getRecentLogs(ctx, toolRequest(map[string]any{"limit": 2}))
	var logs []models.SystemLog
	if err := json.Unmarshal([]byte(resultText(t, res)), &logs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("len(logs) = %d, want 2", len(logs))
	}

	res, _ = h.getRecentLogs(ctx, toolRequest(nil))
	if err := json.Unmarshal([]byte(resultText(t, res)), &logs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logs) != 4 {
		t.Errorf("default len(logs) = %d, want all 4", len(logs))
	}

	if res, _ := h.getRecentLogs(ctx, toolRequest(map[string]any{"limit": 0})); !res.IsError {
		t.Error("limit 0 should be a tool error")
	}
}

// TestGetBodyStats verifies dates before the weigh-in see no stats.
func TestGetBodyStats(t *testing.T) {
	h := newTestHandlers(t)
	ctx := context.Background()

	tests := []struct {
		date   string
		weight string
		bmi    string
	}{
		{"", "64kg", "25.0"},
		{"2026-03-04", "64kg", "25.0"},
		{"2026-03-03", "--", "--"},
	}
	for _, tt := range tests {
		res, _ := h.getBodyStats(ctx, toolRequest(map[string]any{"date": tt.date}))
		var got models.BodyStats
		if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
			t.Fatalf("date %q decode: %v", tt.date, err)
		}
		if got.Weight != tt.weight || got.BMI != tt.bmi {
			t.Errorf("date %q = %+v, want %s / %s", tt.date, got, tt.weight, tt.bmi)
		}
	}

	if res, _ := h.getBodyStats(ctx, toolRequest(map[string]any{"date": "soon"})); !res.IsError {
		t.Error("invalid date should be a tool error")
	}
}

// TestProfileSummaryResource verifies the summary resource combines the
// profile, levels and body stats.
func TestProfileSummaryResource(t *testing.T) {
	h := newTestHandlers(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = "lifehub://profile_summary"
	contents, err := h.profileSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("profileSummary: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("content is %T", contents[0])
	}
	if text.URI != req.Params.URI {
		t.Errorf("URI = %q, want %q", text.URI, req.Params.URI)
	}

	var s profileSummary
	if err := json.Unmarshal([]byte(text.Text), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.FitnessPoints != 22 || s.PRCount != 1 || s.Streak != 1 {
		t.Errorf("summary = %+v", s)
	}
	if _, ok := s.Muscles["Chest"]; !ok {
		t.Errorf("summary muscles = %v, want Chest", s.Muscles)
	}
	if s.BodyStats.Weight != "64kg" {
		t.Errorf("summary body stats = %+v", s.BodyStats)
	}
}

// TestParseDay verifies time parsing for the date argument.
func TestParseDay(t *testing.T) {
	now := func() time.Time { return testNow }

	got, err := parseDay("2024-06-15", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Day() != 15 || got.Hour() != 23 {
		t.Errorf("parseDay(date) = %v, want end of 2024-06-15", got)
	}

	got, err = parseDay("2024-06-15T10:30:00Z", now)
	if err != nil || got.Hour() != 10 || got.Minute() != 30 {
		t.Errorf("parseDay(RFC3339) = %v, %v", got, err)
	}

	if _, err := parseDay("not-a-date", now); err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestNewRegistersTools verifies the server builds without panicking.
func TestNewRegistersTools(t *testing.T) {
	h := newTestHandlers(t)
	if s := New(h.ds, "test", discardLogger()); s == nil {
		t.Fatal("New returned nil")
	}
	if !strings.HasPrefix(resProfileSummary.URI, "lifehub://") {
		t.Errorf("resource URI = %q", resProfileSummary.URI)
	}
}
