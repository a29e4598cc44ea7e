// Package bitrix is the sole network boundary of the reporting core: a
// client for a Bitrix24-style REST service (webhook access path,
// result/error JSON envelope) plus the typed listing queries the
// reports consume. The client layers caching, rate limiting, and
// quota-retry under a single Call entry point.
package bitrix

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config carries the client's connection settings and throttling knobs.
// Zero values fall back to the documented defaults.
type Config struct {
	// WebhookURL is the REST root including the credential segment,
	// e.g. https://portal.example.com/rest/1/abc123.
	WebhookURL string

	// CacheTTL is how long a cached response stays valid (default 5m).
	CacheTTL time.Duration

	// MinCallInterval is the minimum spacing between outbound network
	// calls (default 1s). Cache hits consume no interval.
	MinCallInterval time.Duration

	// QuotaBackoff is the wait before retrying a quota-exceeded call
	// (default 2s).
	QuotaBackoff time.Duration

	// HTTPClient overrides the default HTTP client (30s timeout).
	HTTPClient *http.Client

	// Logger receives diagnostics; defaults to slog.Default().
	Logger *slog.Logger
}

// Client issues requests to the remote service. It owns two pieces of
// process-wide state scoped to the instance: the response cache and the
// last-dispatch timestamp. Both are mutex-guarded, so a Client is safe
// for concurrent use, with outbound calls serialized to at most one per
// MinCallInterval.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	cacheTTL     time.Duration
	minInterval  time.Duration
	quotaBackoff time.Duration

	cacheMu sync.Mutex
	cache   map[string]cacheEntry

	// callMu serializes network dispatch so the rate limiter sees one
	// caller at a time.
	callMu   sync.Mutex
	lastCall time.Time
}

type cacheEntry struct {
	payload  json.RawMessage
	storedAt time.Time
}

// envelope is the service's response wrapper.
type envelope struct {
	Result           json.RawMessage `json:"result"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// NewClient creates a client for the given webhook root.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.WebhookURL, "/"),
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		cacheTTL:     cfg.CacheTTL,
		minInterval:  cfg.MinCallInterval,
		quotaBackoff: cfg.QuotaBackoff,
		cache:        make(map[string]cacheEntry),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.cacheTTL == 0 {
		c.cacheTTL = 5 * time.Minute
	}
	if c.minInterval == 0 {
		c.minInterval = time.Second
	}
	if c.quotaBackoff == 0 {
		c.quotaBackoff = 2 * time.Second
	}
	return c
}

// Call invokes a REST method and returns the unwrapped result payload.
// A fresh cached response is returned without touching the network or
// the rate limiter. Quota-exceeded remote errors are retried after a
// backoff for as long as the service keeps reporting them; cancel the
// context to bail out of sustained throttling. Every other failure is
// a *TransportError or *RemoteError.
func (c *Client) Call(
	ctx context.Context,
	method string,
	params Params,
) (json.RawMessage, error) {
	key := cacheKey(method, params)

	if payload, ok := c.cached(key); ok {
		c.logger.Debug("cache hit", "method", method)
		return payload, nil
	}

	c.callMu.Lock()
	defer c.callMu.Unlock()

	// A concurrent caller may have populated the cache while this one
	// waited for the dispatch lock.
	if payload, ok := c.cached(key); ok {
		c.logger.Debug("cache hit", "method", method)
		return payload, nil
	}

	for {
		if !c.lastCall.IsZero() {
			if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
				c.logger.Debug("rate limit wait", "method", method, "wait", wait)
				if err := sleepContext(ctx, wait); err != nil {
					return nil, err
				}
			}
		}

		payload, err := c.dispatch(ctx, method, params)
		if err != nil {
			var remote *RemoteError
			if errors.As(err, &remote) && remote.QuotaExceeded() {
				c.logger.Warn("query limit exceeded, backing off",
					"method", method, "backoff", c.quotaBackoff)
				if serr := sleepContext(ctx, c.quotaBackoff); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, err
		}

		c.lastCall = time.Now()
		c.store(key, payload)
		return payload, nil
	}
}

// ClearCache drops every cached response. It is the only cache mutator
// exposed to callers besides normal calls.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// dispatch performs one network round trip and envelope validation.
func (c *Client) dispatch(
	ctx context.Context,
	method string,
	params Params,
) (json.RawMessage, error) {
	u := c.baseURL + "/" + method
	if q := params.Encode(); q != "" {
		u += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Method: method, Body: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Body: err.Error()}
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, &TransportError{Method: method, Body: readErr.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Status: resp.StatusCode,
			Method: method,
			Body:   bodySnippet(body),
		}
	}

	// A body that is not an envelope object (some methods answer with
	// a bare array) is used verbatim as the payload.
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return json.RawMessage(body), nil
	}

	if env.Error != "" {
		return nil, &RemoteError{
			Code:        env.Error,
			Description: env.ErrorDescription,
			Method:      method,
		}
	}

	// Some methods answer without an envelope; use the raw body then.
	if len(env.Result) == 0 {
		return json.RawMessage(body), nil
	}
	return env.Result, nil
}

// cached returns a non-expired cache entry's payload. Expired entries
// are dropped lazily on lookup.
func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	entry, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) >= c.cacheTTL {
		delete(c.cache, key)
		return nil, false
	}
	return entry.payload, true
}

func (c *Client) store(key string, payload json.RawMessage) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{payload: payload, storedAt: time.Now()}
}

// cacheKey combines the method name with the canonical parameter
// encoding, so semantically equal parameter sets share an entry.
func cacheKey(method string, params Params) string {
	if q := params.Encode(); q != "" {
		return method + "?" + q
	}
	return method
}

// sleepContext waits for d or for context cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func bodySnippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
