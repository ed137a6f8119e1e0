// Package client is a Go client for the dealership REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// SessionHeader carries the anonymous session token.
const SessionHeader = "X-Session-Token"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

var (
	// ErrUnauthorized is returned on 401. The stored bearer token is cleared.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned by lookups that expect a missing resource.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer or an envelope with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a plain 404.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// RetryPolicy applies to GET requests only. Network errors and 5xx answers
// are retried with exponential backoff; BaseDelay doubles per attempt and is
// randomized by Jitter (0..1).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      float64
}

// DefaultRetryPolicy is used unless WithRetry overrides it.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, Jitter: 0.5}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.RandomizationFactor = p.Jitter
	exp.Multiplier = 2
	exp.MaxInterval = 30 * time.Second
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// Client talks to the API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
	retry   RetryPolicy

	mu           sync.RWMutex
	token        string
	sessionToken string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRetry(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithToken presets the bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithSessionToken presets the anonymous session token.
func WithSessionToken(token string) Option {
	return func(c *Client) { c.sessionToken = token }
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.New(io.Discard, "", 0),
		retry:   DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token, empty after a 401.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

func (c *Client) SetSessionToken(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// silent maps 404 and 400 to ErrNotFound without logging.
	silent bool
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// retryableError marks failures worth another GET attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", req.method, req.path, err)
		}
		payload = b
	}

	if req.method != http.MethodGet {
		err := c.attempt(ctx, req, payload, out)
		var r *retryableError
		if errors.As(err, &r) {
			err = r.err
		}
		return c.report(req, err)
	}

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := c.attempt(ctx, req, payload, out)
		var r *retryableError
		if errors.As(err, &r) {
			c.logger.Printf("client: GET %s attempt=%d failed: %v", req.path, attempt, r.err)
			return r.err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, c.retry.backOff(ctx))
	return c.report(req, err)
}

func (c *Client) report(req request, err error) error {
	if err == nil || errors.Is(err, context.Canceled) || (req.silent && errors.Is(err, ErrNotFound)) {
		return err
	}
	c.logger.Printf("client: %s %s: %v", req.method, req.path, err)
	return err
}

func (c *Client) attempt(ctx context.Context, req request, payload []byte, out interface{}) error {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if st := c.SessionToken(); st != "" {
		httpReq.Header.Set(SessionHeader, st)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &retryableError{err: fmt.Errorf("%s %s: %w", req.method, req.path, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &retryableError{err: fmt.Errorf("read response: %w", err)}
	}

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized:
		c.SetToken("")
		return fmt.Errorf("%w: %s", ErrUnauthorized, messageOf(raw, status))
	case req.silent && (status == http.StatusNotFound || status == http.StatusBadRequest):
		return ErrNotFound
	case status >= 500:
		return &retryableError{err: &APIError{Status: status, Message: messageOf(raw, status)}}
	case status >= 400:
		return &APIError{Status: status, Message: messageOf(raw, status)}
	}
	return decode(raw, resp.StatusCode, out)
}

// decode accepts either an envelope or a bare payload.
func decode(raw []byte, status int, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	data := trimmed
	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Success != nil {
			if !*env.Success {
				return &APIError{Status: status, Message: env.Message}
			}
			data = env.Data
		}
	}
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func messageOf(raw []byte, status int) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return http.StatusText(status)
}
