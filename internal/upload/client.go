// Package upload implements the companion CLI that pushes exported health
// payload files to a wellness server.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest"
)

// Client sends health payloads to the wellness server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// NewClient creates a new HTTP client for the wellness server.
func NewClient(serverURL, apiKey, userID string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		userID:    userID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendPayload POSTs a raw health payload to the server's sync endpoint and
// returns the server's ingest result. Retries up to 3 times with
// exponential backoff on transient failure. Validation rejections
// (HTTP 400) are not retried.
func (c *Client) SendPayload(payload json.RawMessage) (*ingest.Result, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost,
			c.serverURL+"/api/v1/sync/apple", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("building sync request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("X-User-ID", c.userID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding sync response: %w", err)
			}
			return &result, nil
		}
		lastErr = fmt.Errorf("sync failed (status %d): %s", resp.StatusCode, body)
		if resp.StatusCode == http.StatusBadRequest {
			break
		}
	}

	return nil, fmt.Errorf("after retries: %w", lastErr)
}
