// Package client talks to the pose-estimation service over HTTP.
package client

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

	"github.com/verte-zerg/repwatch/internal/model"
)

// DefaultBaseURL is where the service listens by default.
const DefaultBaseURL = "http://127.0.0.1:5000"

const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client is an HTTP client for the service endpoints.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New creates a client for baseURL. Each request is bounded by timeout when
// it is positive.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https: %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url has no host: %q", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// PoseData fetches the latest telemetry frame.
func (c *Client) PoseData(ctx context.Context) (model.TelemetryFrame, error) {
	var frame model.TelemetryFrame
	if err := c.do(ctx, http.MethodGet, "/pose_data", nil, &frame); err != nil {
		return model.TelemetryFrame{}, err
	}
	return frame, nil
}

type sessionsResponse struct {
	Sessions []model.SessionRecord `json:"sessions"`
}

// Sessions fetches every session known to the service, including the open one.
func (c *Client) Sessions(ctx context.Context) ([]model.SessionRecord, error) {
	var resp sessionsResponse
	if err := c.do(ctx, http.MethodGet, "/get_sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// Summary fetches the service-computed summary as raw keys.
func (c *Client) Summary(ctx context.Context) (map[string]json.RawMessage, error) {
	var resp map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/get_summary", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// StartSession asks the service to open a new session.
func (c *Client) StartSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/start_session", nil, nil)
}

// EndSession asks the service to close the open session.
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/end_session", nil, nil)
}

// SetMode switches the service's tracking mode.
func (c *Client) SetMode(ctx context.Context, mode model.Mode) error {
	body := struct {
		Mode model.Mode `json:"mode"`
	}{Mode: mode}
	return c.do(ctx, http.MethodPost, "/set_mode", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
