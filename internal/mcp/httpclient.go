package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lifehub/lifehub/internal/models"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/tracker"
)

// errNotFound marks a 404 from the remote API.
var errNotFound = errors.New("httpclient: not found")

// HTTPClient implements DataSource by calling the LifeHub REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the profile lives on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.get(ctx, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Levels(ctx context.Context) (tracker.Levels, error) {
	var lv tracker.Levels
	err := c.get(ctx, "/api/v1/levels", nil, &lv)
	return lv, err
}

func (c *HTTPClient) LevelStatus(ctx context.Context, track string) (progression.LevelStatus, bool, error) {
	var st progression.LevelStatus
	err := c.get(ctx, "/api/v1/levels", url.Values{"track": {track}}, &st)
	if errors.Is(err, errNotFound) {
		return progression.LevelStatus{}, false, nil
	}
	if err != nil {
		return progression.LevelStatus{}, false, err
	}
	return st, true, nil
}

func (c *HTTPClient) RecentLogs(ctx context.Context, limit int) ([]models.SystemLog, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var logs []models.SystemLog
	err := c.get(ctx, "/api/v1/logs", params, &logs)
	return logs, err
}

func (c *HTTPClient) BodyStats(ctx context.Context, at time.Time) (models.BodyStats, error) {
	var stats models.BodyStats
	err := c.get(ctx, "/api/v1/stats", url.Values{"date": {at.Format(time.RFC3339Nano)}}, &stats)
	return stats, err
}
