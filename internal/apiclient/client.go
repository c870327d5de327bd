// Package apiclient is the single gateway to the backend REST API. It
// attaches the bearer credential, encodes JSON bodies, and normalizes
// non-2xx responses into *Error values carrying the server message.
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

	"github.com/plantora/storefront/internal/metrics"
	"go.uber.org/zap"
)

// Error is a normalized backend failure. Message is the server-provided
// message when one could be parsed, otherwise a generic status message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// backend error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client is an HTTP client for the backend API. The credential is never
// process-global: every call takes the token explicitly, so concurrent
// sessions with different tokens share one Client.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.AppMetrics
	logger  *zap.Logger
}

// New creates a backend API client. metrics may be nil.
func New(baseURL string, timeout time.Duration, m *metrics.AppMetrics, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		metrics: m,
		logger:  log,
	}
}

// Do issues one request against the backend. token may be empty for
// unauthenticated endpoints. body is JSON-encoded when non-nil; the
// response body is decoded into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordAPICall(ctx, method, endpoint, 0, start, false)
		return fmt.Errorf("request to backend failed: %w", err)
	}
	defer resp.Body.Close()

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	c.metrics.RecordAPICall(ctx, method, endpoint, resp.StatusCode, start, success)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if !success {
		apiErr := &Error{Status: resp.StatusCode, Message: errorMessage(data, resp.StatusCode)}
		c.logger.Debug("backend call failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint, token string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, token, nil, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, endpoint, token string, body, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, token, body, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, endpoint, token string, body, out any) error {
	return c.Do(ctx, http.MethodPut, endpoint, token, body, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, endpoint, token string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, endpoint, token, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint, token string) error {
	return c.Do(ctx, http.MethodDelete, endpoint, token, nil, nil)
}

// errorMessage extracts the server-provided message from an error body.
// The backend is not consistent about the key, so message, error and
// detail are probed in that order before giving up on the body.
func errorMessage(data []byte, status int) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
