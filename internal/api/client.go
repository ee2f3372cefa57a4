// Package api is the typed client for the portal backend. Every endpoint is
// plain JSON over HTTP, bearer-authenticated except register and login.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current bearer token. session.Store satisfies it.
type TokenSource interface {
	Get() (string, error)
}

// APIError is a business error reported by the backend as an {error} body,
// in a 2xx or non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: server error (%d): %s", e.Status, e.Message)
}

// ErrNoSession is returned when an authenticated call is attempted without
// a stored token.
var ErrNoSession = fmt.Errorf("api: no session token")

// Client issues requests against the portal backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Opts holds parameters for creating a Client.
type Opts struct {
	BaseURL    string
	Tokens     TokenSource  // required for authenticated endpoints
	HTTPClient *http.Client // defaults to a 15s-timeout client
}

// New creates a Client.
func New(opts Opts) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		http:    httpClient,
		tokens:  opts.Tokens,
	}, nil
}

// do issues one request and decodes the response into out (when non-nil).
// An {error} field anywhere in the body wins over the HTTP status.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if authed {
		if c.tokens == nil {
			return ErrNoSession
		}
		token, err := c.tokens.Get()
		if err != nil {
			return fmt.Errorf("api: read session token: %w", err)
		}
		if token == "" {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read %s %s response: %w", method, path, err)
	}

	if msg := errorField(data); msg != "" {
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("api: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// errorField extracts the {error} message from a response body, if any.
func errorField(data []byte) string {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.Error
}
