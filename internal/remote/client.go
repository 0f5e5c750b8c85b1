// Package remote is the HTTP client for the commerce API. It owns the base
// address, timeouts, retries and bearer credential attachment; the stores own
// everything else.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/leavalz/Natural-Triade-Shop/internal/logger"
	"github.com/leavalz/Natural-Triade-Shop/internal/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxBackoff = 2 * time.Second
)

// CredentialSource yields the current session credential, if any.
type CredentialSource interface {
	Credential() (string, bool)
}

// UnauthorizedFunc is called when the server rejects the session credential.
type UnauthorizedFunc func(ctx context.Context, credential string)

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration

	mu             sync.RWMutex
	credentials    CredentialSource
	onUnauthorized []UnauthorizedFunc
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote: base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = 100 * time.Millisecond
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		maxRetries: cfg.MaxRetries,
		backoff:    backoff,
	}, nil
}

// UseCredentials attaches the source consulted by every session call.
func (c *Client) UseCredentials(src CredentialSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credentials = src
}

// OnUnauthorized registers fn to run when a session call is answered with 401.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

type authMode int

const (
	authNone authMode = iota
	authSession
	authExplicit
)

type request struct {
	op          string
	method      string
	path        string
	body        []byte
	contentType string
	auth        authMode
	token       string
}

func jsonRequest(op, method, path string, payload any, auth authMode) (request, error) {
	req := request{op: op, method: method, path: path, auth: auth}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return request{}, fmt.Errorf("remote: %s: marshal body: %w", op, err)
		}
		req.body = body
		req.contentType = "application/json"
	}
	return req, nil
}

func (c *Client) credential() (string, bool) {
	c.mu.RLock()
	src := c.credentials
	c.mu.RUnlock()

	if src == nil {
		return "", false
	}
	return src.Credential()
}

// bearerClient wraps the base transport so every request carries token.
func (c *Client) bearerClient(token string) *http.Client {
	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}),
			Base: c.httpClient.Transport,
		},
	}
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	httpClient := c.httpClient
	token := r.token

	switch r.auth {
	case authSession:
		cred, ok := c.credential()
		if !ok {
			return fmt.Errorf("remote: %s: %w", r.op, ErrNoCredential)
		}
		token = cred
		httpClient = c.bearerClient(token)
	case authExplicit:
		if token == "" {
			return fmt.Errorf("remote: %s: %w", r.op, ErrNoCredential)
		}
		httpClient = c.bearerClient(token)
	}

	attempts := 1
	if r.method == http.MethodGet {
		attempts += c.maxRetries
	}

	var (
		status int
		body   []byte
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if waitErr := c.wait(ctx, attempt); waitErr != nil {
				return fmt.Errorf("remote: %s: %w", r.op, waitErr)
			}
			logger.Debug("retrying commerce api call", map[string]any{
				"op":      r.op,
				"attempt": attempt,
			})
		}

		status, body, err = c.send(ctx, httpClient, r)
		if !retryable(status, err) {
			break
		}
	}

	if err != nil {
		return fmt.Errorf("remote: %s: %w", r.op, err)
	}

	if status >= 400 {
		apiErr := &APIError{Op: r.op, StatusCode: status, Detail: parseDetail(body)}
		if status == http.StatusUnauthorized && r.auth == authSession {
			c.unauthorized(ctx, token)
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("remote: %s: decode response: %w", r.op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, httpClient *http.Client, r request) (int, []byte, error) {
	var reader io.Reader
	if r.body != nil {
		reader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	started := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		metrics.ObserveRemote(r.op, 0, started)
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	metrics.ObserveRemote(r.op, resp.StatusCode, started)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func retryable(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) wait(ctx context.Context, attempt int) error {
	d := c.backoff << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) unauthorized(ctx context.Context, credential string) {
	c.mu.RLock()
	hooks := append([]UnauthorizedFunc(nil), c.onUnauthorized...)
	c.mu.RUnlock()

	logger.Warn("commerce api rejected session credential", map[string]any{
		"hooks": len(hooks),
	})

	for _, fn := range hooks {
		fn(ctx, credential)
	}
}
