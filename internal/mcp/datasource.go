package mcp

import (
	"context"
	"time"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/tracker"
)

// DataSource abstracts where MCP tools read progression state from. Both
// TrackerSource (in-process) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	Profile(ctx context.Context) (*models.UserProfile, error)
	Levels(ctx context.Context) (tracker.Levels, error)
	// LevelStatus reports false for a muscle with no recorded progress.
	LevelStatus(ctx context.Context, track string) (progression.LevelStatus, bool, error)
	RecentLogs(ctx context.Context, limit int) ([]models.SystemLog, error)
	BodyStats(ctx context.Context, at time.Time) (models.BodyStats, error)
}

// TrackerSource serves tools from a tracker in the same process.
type TrackerSource struct {
	T *tracker.Tracker
}

// Compile-time checks.
var (
	_ DataSource = TrackerSource{}
	_ DataSource = (*HTTPClient)(nil)
)

func (s TrackerSource) Profile(context.Context) (*models.UserProfile, error) {
	return s.T.Profile(), nil
}

func (s TrackerSource) Levels(context.Context) (tracker.Levels, error) {
	return s.T.Levels(), nil
}

func (s TrackerSource) LevelStatus(_ context.Context, track string) (progression.LevelStatus, bool, error) {
	st, ok := s.T.LevelStatus(track)
	return st, ok, nil
}

func (s TrackerSource) RecentLogs(_ context.Context, limit int) ([]models.SystemLog, error) {
	return s.T.RecentLogs(limit), nil
}

func (s TrackerSource) BodyStats(_ context.Context, at time.Time) (models.BodyStats, error) {
	return s.T.BodyStats(at), nil
}
