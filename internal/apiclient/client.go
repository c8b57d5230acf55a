// Package apiclient is the HTTP client the CLI uses to talk to a
// running vodkeepd instance.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vodkeep/internal/api"
)

// ErrNotFound is returned when the daemon has no record of a job.
var ErrNotFound = errors.New("job not found")

// ErrDaemonUnavailable is returned when the daemon cannot be reached.
var ErrDaemonUnavailable = errors.New("daemon unavailable")

// Client calls the vodkeepd API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the daemon at bind (host:port or a full
// http URL).
func New(bind string) *Client {
	baseURL := bind
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Health checks daemon liveness.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Submit asks the daemon to process a video URL.
func (c *Client) Submit(ctx context.Context, url string) (api.ProcessResponse, error) {
	var out api.ProcessResponse
	err := c.do(ctx, http.MethodPost, "/jobs", api.ProcessRequest{URL: url}, &out)
	return out, err
}

// Job fetches one job snapshot.
func (c *Client) Job(ctx context.Context, id string) (api.JobSnapshot, error) {
	var out api.JobSnapshot
	err := c.do(ctx, http.MethodGet, "/jobs/"+id, nil, &out)
	return out, err
}

// Jobs lists jobs, optionally filtered by status.
func (c *Client) Jobs(ctx context.Context, status string) (api.JobListResponse, error) {
	path := "/jobs"
	if status != "" {
		path += "?status=" + status
	}
	var out api.JobListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Logs fetches a job's retained log window.
func (c *Client) Logs(ctx context.Context, id string) (api.JobLogsResponse, error) {
	var out api.JobLogsResponse
	err := c.do(ctx, http.MethodGet, "/jobs/"+id+"/logs", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon rejected request: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
