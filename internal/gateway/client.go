package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxAttempts bounds how many times a single logical call may hit the wire.
const maxAttempts = 4

// requestTimeout applies to every outbound gateway call.
const requestTimeout = 15 * time.Second

// Response carries an HTTP result back to the caller unmodified. Non-2xx
// statuses are not treated as errors at this layer.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is a thin JSON POST wrapper around the remote gateway endpoints.
// Transport failures (connection refused, timeout) are retried immediately
// up to maxAttempts; the first response of any HTTP status stops the loop.
type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Post sends payload as JSON to url with the given headers and returns the
// response as-is, or the last transport error after the retry budget is
// exhausted.
func (c *Client) Post(ctx context.Context, url string, payload interface{}, headers map[string]string) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return &Response{StatusCode: resp.StatusCode, Body: body}, nil
	}

	return nil, fmt.Errorf("gateway unreachable after %d attempts: %w", maxAttempts, lastErr)
}
