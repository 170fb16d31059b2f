// Package replication copies saved snapshots to a remote LifeHub instance.
// Replication is best effort: the local store stays the source of truth.
package replication

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lifehub/lifehub/internal/models"
)

// DefaultDocument is the backup document name used when none is configured.
const DefaultDocument = "Sister_Data"

const maxAttempts = 3

// Replicator sends one snapshot to a replication target.
type Replicator interface {
	Replicate(ctx context.Context, snap *models.Snapshot) error
}

// Client PUTs snapshots to <url>/api/v1/backups/<document>.
type Client struct {
	serverURL  string
	apiKey     string
	document   string
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient creates a replication client. An empty document selects
// DefaultDocument.
func NewClient(serverURL, apiKey, document string, timeout time.Duration) *Client {
	if document == "" {
		document = DefaultDocument
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		document:  document,
		backoff:   time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the URL snapshots are sent to.
func (c *Client) Endpoint() string {
	return c.serverURL + "/api/v1/backups/" + url.PathEscape(c.document)
}

// Replicate sends snap, retrying up to 3 times with exponential backoff.
// Client errors other than 408 and 429 are not retried.
func (c *Client) Replicate(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			wait := c.backoff << uint(attempt-1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("replication cancelled: %w", ctx.Err())
			case <-time.After(wait):
			}
		}

		retry, err := c.put(ctx, data)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return lastErr
		}
	}

	return fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}

// put performs one request and reports whether a failure is worth retrying.
func (c *Client) put(ctx context.Context, data []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("replication failed (status %d): %s", resp.StatusCode, body)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return false, fmt.Errorf("replication rejected (status %d): %s", resp.StatusCode, body)
	default:
		return true, fmt.Errorf("replication failed (status %d): %s", resp.StatusCode, body)
	}
}
