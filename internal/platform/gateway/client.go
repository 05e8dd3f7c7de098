// Package gateway is the portal's single road to the RheumaCare backend.
// Every request carries the session's bearer token; every non-2xx response
// becomes a typed *APIError so the auth-failure middleware can react to 401
// and 403 uniformly, whichever page triggered the call.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"
)

const fallbackMessage = "request failed"

// APIError carries the backend's HTTP status and its `detail` message when
// one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == code
}

// Download is a binary response (xlsx/pdf) streamed through to the browser.
// Filename is taken from Content-Disposition when the backend set one.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// Client talks to the backend's /api-prefixed REST surface.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New creates a Client for the given base URL (including the /api prefix).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Get performs a GET and decodes the JSON response into out (skipped when
// out is nil).
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, token, path, query, nil, out)
}

// Post sends body as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, token, path, nil, body, out)
}

// Put sends body as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, token, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, token, path, nil, body, out)
}

// Delete performs a DELETE, discarding any response body.
func (c *Client) Delete(ctx context.Context, token, path string) error {
	return c.do(ctx, http.MethodDelete, token, path, nil, nil, nil)
}

// Stream performs a GET for a binary endpoint and hands back the raw body.
// The caller owns closing it.
func (c *Client) Stream(ctx context.Context, token, path string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, token, path, nil, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	return &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
	}, nil
}

func (c *Client) do(ctx context.Context, method, token, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, token, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, token, path string, query url.Values, body interface{}) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeError turns a non-2xx response into an *APIError, preferring the
// backend's {"detail": "..."} message over the fixed fallback.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallbackMessage}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil && payload.Detail != "" {
		apiErr.Message = payload.Detail
	}
	return apiErr
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
