package upload

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

	"github.com/claude/musclemap/internal/ingest"
)

// Client sends workout exports to the MuscleMap server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the MuscleMap server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		attempts: 3,
		backoff:  time.Second,
	}
}

// statusError is a non-200 response from the server.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ingest failed (status %d): %s", e.status, e.body)
}

// retryable reports whether another attempt could succeed. Client errors
// other than 429 will not.
func (e *statusError) retryable() bool {
	return e.status >= 500 || e.status == http.StatusTooManyRequests
}

func endpoint(format string) (path, contentType string, err error) {
	switch format {
	case ingest.FormatAlphaCSV:
		return "/api/v1/ingest/alpha", "text/csv", nil
	case ingest.FormatJSON:
		return "/api/v1/ingest/logs", "application/json", nil
	}
	return "", "", fmt.Errorf("unsupported export format %q", format)
}

// Send POSTs one export file body to the matching ingest endpoint.
// Retries with exponential backoff on network errors and 5xx/429 responses.
func (c *Client) Send(ctx context.Context, format string, data []byte) (*ingest.Result, error) {
	path, contentType, err := endpoint(format)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range c.attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		result, err := c.post(ctx, path, contentType, data)
		if err == nil {
			return result, nil
		}
		lastErr = err
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.attempts, lastErr)
}

func (c *Client) post(ctx context.Context, path, contentType string, data []byte) (*ingest.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var result ingest.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding ingest result: %w", err)
	}
	return &result, nil
}
