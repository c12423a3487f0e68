// Package api is the HTTP client for the docsmith service: uploads, auth,
// history reads, and exports. All methods are safe for concurrent use.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies and persists the JWT pair attached to requests.
// Implemented by the session store; a nil TokenSource means anonymous.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	// SetTokens stores a renewed pair. An empty refresh keeps the
	// existing refresh token (access-only renewal).
	SetTokens(access, refresh string) error
	Clear() error
}

// Config holds client configuration. Zero values fall back to defaults
// sized for an AI-backed service: generation runs are slow, so the upload
// timeout is far larger than the read timeout.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration // reads, auth, exports
	UploadTimeout  time.Duration // generation uploads
	ProbeTimeout   time.Duration // health probe
	UserAgent      string
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultUploadTimeout  = 30 * time.Minute
	defaultProbeTimeout   = 5 * time.Second
)

// Client talks to the docsmith service.
type Client struct {
	baseURL   string
	userAgent string

	httpClient   *http.Client
	uploadClient *http.Client
	probeClient  *http.Client

	tokens TokenSource

	mu       sync.RWMutex
	online   bool
	lastPing time.Time
}

// NewClient builds a client for the given service. tokens may be nil for
// anonymous use.
func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.UploadTimeout == 0 {
		cfg.UploadTimeout = defaultUploadTimeout
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:    cfg.UserAgent,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		probeClient:  &http.Client{Timeout: cfg.ProbeTimeout},
		tokens:       tokens,
		online:       true,
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// Authenticated reports whether an access token is available.
func (c *Client) Authenticated() bool {
	return c.tokens != nil && c.tokens.AccessToken() != ""
}

// Online reports the reachability observed on the most recent request.
func (c *Client) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

func (c *Client) setOnline(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.online != online {
		slog.Debug("service reachability changed", "online", online)
	}
	c.online = online
	c.lastPing = time.Now()
}

// applyAuth adds the bearer header when a token is available.
func (c *Client) applyAuth(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// do sends the request and, on a 401, attempts one token refresh before
// replaying it. build must return a fresh request each call: a replayed
// body has to be rebuilt. A 401 that survives the refresh clears stored
// credentials.
func (c *Client) do(ctx context.Context, hc *http.Client, build func(context.Context) (*http.Request, error), out any) error {
	err := c.doOnce(ctx, hc, build, out)
	if !isUnauthorized(err) {
		return err
	}
	if c.tokens == nil || c.tokens.RefreshToken() == "" {
		return err
	}

	if rerr := c.refreshAccess(ctx); rerr != nil {
		slog.Debug("token refresh failed", "error", rerr)
		_ = c.tokens.Clear()
		return ErrSessionExpired
	}

	err = c.doOnce(ctx, hc, build, out)
	if isUnauthorized(err) {
		_ = c.tokens.Clear()
		return ErrSessionExpired
	}
	return err
}

// doOnce performs exactly one attempt. Decodes a JSON body into out when
// out is non-nil.
func (c *Client) doOnce(ctx context.Context, hc *http.Client, build func(context.Context) (*http.Request, error), out any) error {
	req, err := build(ctx)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.applyAuth(req)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := hc.Do(req)
	if err != nil {
		c.setOnline(false)
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	c.setOnline(true)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isUnauthorized(err error) bool {
	se, ok := AsStatus(err)
	return ok && se.StatusCode == http.StatusUnauthorized
}

// newStatusError reads the error envelope, tolerating non-JSON bodies.
func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Kind:       classifyStatus(resp.StatusCode),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(body) > 0 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			se.Message = eb.FirstMessage()
		}
	}
	return se
}

// refreshAccess trades the refresh token for a new access token. Runs as
// a single attempt; a failure here means the session is over.
func (c *Client) refreshAccess(ctx context.Context) error {
	payload, err := json.Marshal(refreshRequest{Refresh: c.tokens.RefreshToken()})
	if err != nil {
		return err
	}

	var pair TokenPair
	err = c.doOnce(ctx, c.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathRefresh, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, &pair)
	if err != nil {
		return err
	}
	if pair.Access == "" {
		return fmt.Errorf("refresh response missing access token")
	}
	return c.tokens.SetTokens(pair.Access, pair.Refresh)
}

// getJSON is the common GET-and-decode path, with refresh replay.
func (c *Client) getJSON(ctx context.Context, hc *http.Client, path string, out any) error {
	return c.do(ctx, hc, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	}, out)
}

// postJSON is the common POST-and-decode path, with refresh replay.
func (c *Client) postJSON(ctx context.Context, hc *http.Client, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, hc, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, out)
}

// postJSONOnce is postJSON without the refresh replay, for the auth
// endpoints themselves: a 401 from login or refresh is an answer, not a
// stale-token symptom.
func (c *Client) postJSONOnce(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.doOnce(ctx, c.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, out)
}
