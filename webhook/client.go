// Package webhook delivers JSON payloads to caller-supplied endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hairizuan-noorazman/browser-automation/logger"
)

// ErrInvalidURL is returned when the webhook URL is missing.
var ErrInvalidURL = errors.New("webhook url is required")

// maxResponseBody bounds how much of a webhook response body is captured.
const maxResponseBody = 1 << 20 // 1MB

// Response is the snapshot of a delivered webhook's HTTP response.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Client posts JSON payloads.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a webhook client. The http.Client may be nil, in which
// case a default client is used; per-call timeouts come from the context.
func NewClient(httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{httpClient: httpClient, logger: log}
}

// Post delivers payload as a JSON POST to url, bounded by timeout, and returns
// the response snapshot. Non-2xx statuses are not errors; the caller gets the
// status to inspect.
func (c *Client) Post(ctx context.Context, url string, payload interface{}, timeout time.Duration) (*Response, error) {
	if url == "" {
		return nil, ErrInvalidURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	c.logger.Debug(ctx, "webhook delivered", map[string]interface{}{
		"url":         url,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return &Response{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    string(respBody),
	}, nil
}
