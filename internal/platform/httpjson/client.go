// Package httpjson is the JSON-over-HTTP transport shared by the provider
// clients. It resolves relative endpoints against a base URL, serializes
// request bodies, translates error statuses into typed errors, and carries
// an explicit session whose headers authenticated calls read.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// StatusError is returned for responses with a 4xx or 5xx status. It
// carries the offending response body so callers can surface it whole.
type StatusError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received unexpected status code %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Retryable reports whether the failure is worth another attempt.
// Server-side errors and rate limiting are; client errors are not.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Session holds the mutable authentication headers of one provider
// session. It is an explicit object owned by a client rather than hidden
// process-wide state; authentication calls install credentials through
// Set, subsequent calls read them. Safe for concurrent reads.
type Session struct {
	mu      sync.RWMutex
	headers http.Header
}

// NewSession returns a session pre-populated with the given headers.
func NewSession(headers map[string]string) *Session {
	s := &Session{headers: http.Header{}}
	for k, v := range headers {
		s.headers.Set(k, v)
	}
	return s
}

// Set installs or replaces one session header.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Set(key, value)
}

// Get returns the current value of a session header.
func (s *Session) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers.Get(key)
}

func (s *Session) apply(req *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, values := range s.headers {
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}
}

// Client is a JSON HTTP client bound to a base URL and a session.
type Client struct {
	base    *url.URL
	session *Session
	http    *http.Client
}

// New returns a client for the given base URL. The session may be shared
// with the caller so authentication flows can install credentials.
func New(baseURL string, session *Session) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if session == nil {
		session = NewSession(nil)
	}
	return &Client{
		base:    base,
		session: session,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

// SetHTTPClient replaces the underlying HTTP client. Tests use it to
// install httptest transports.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Do issues a request against the endpoint resolved relative to the base
// URL. A non-nil body is JSON-encoded; a non-nil out has the response
// body decoded into it. The returned header is the response header, so
// callers can pick up credential headers the provider sets.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) (http.Header, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	target := c.base.ResolveReference(ref).String()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.session.apply(req)
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	if resp.StatusCode >= 400 {
		return resp.Header, &StatusError{StatusCode: resp.StatusCode, URL: target, Body: data}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.Header, fmt.Errorf("failed to decode response from %s: %w", target, err)
		}
	}

	return resp.Header, nil
}
