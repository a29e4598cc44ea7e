package bitrix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// testLogger discards diagnostics during tests.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(srv *httptest.Server, cfg Config) *Client {
	cfg.WebhookURL = srv.URL
	cfg.Logger = testLogger
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.MinCallInterval == 0 {
		cfg.MinCallInterval = time.Millisecond
	}
	if cfg.QuotaBackoff == 0 {
		cfg.QuotaBackoff = 5 * time.Millisecond
	}
	return NewClient(cfg)
}

func TestCallCachesWithinTTL(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `{"result":{"call":%d}}`, calls)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})
	params := Params{Filter: map[string]string{"STATUS": "5"}}

	first, err := c.Call(context.Background(), "tasks.task.list", params)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := c.Call(context.Background(), "tasks.task.list", params)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if calls != 1 {
		t.Errorf("network calls = %d, want 1", calls)
	}
	if string(first) != string(second) {
		t.Errorf("cached payload differs: %s vs %s", first, second)
	}
}

func TestCallCacheKeyDistinguishesParams(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	if _, err := c.Call(context.Background(), "user.get", Params{}); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if _, err := c.Call(context.Background(), "user.get",
		Params{Filter: map[string]string{"ACTIVE": "Y"}}); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if calls != 2 {
		t.Errorf("network calls = %d, want 2", calls)
	}
}

func TestClearCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	c.Call(context.Background(), "user.get", Params{})
	c.ClearCache()
	c.Call(context.Background(), "user.get", Params{})

	if calls != 2 {
		t.Errorf("network calls = %d, want 2 after ClearCache", calls)
	}
}

func TestCallRateLimitsDispatches(t *testing.T) {
	var (
		mu       sync.Mutex
		arrivals []time.Time
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	const interval = 60 * time.Millisecond
	c := newTestClient(srv, Config{MinCallInterval: interval})

	// Distinct methods so the cache cannot short-circuit.
	if _, err := c.Call(context.Background(), "user.get", Params{}); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if _, err := c.Call(context.Background(), "department.get", Params{}); err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if len(arrivals) != 2 {
		t.Fatalf("network calls = %d, want 2", len(arrivals))
	}
	if gap := arrivals[1].Sub(arrivals[0]); gap < interval {
		t.Errorf("dispatch gap = %v, want >= %v", gap, interval)
	}
}

func TestCallRetriesQuotaExceeded(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"error":"QUERY_LIMIT_EXCEEDED","error_description":"Query limit exceeded, please slow down"}`)
			return
		}
		fmt.Fprint(w, `{"result":{"ok":true}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	payload, err := c.Call(context.Background(), "tasks.task.list", Params{})
	if err != nil {
		t.Fatalf("call failed after quota retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("network calls = %d, want 2", calls)
	}
	if string(payload) != `{"ok":true}` {
		t.Errorf("payload = %s, want the retried result", payload)
	}
}

func TestCallQuotaRetryRespectsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"QUERY_LIMIT_EXCEEDED"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{QuotaBackoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.Call(ctx, "tasks.task.list", Params{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context.DeadlineExceeded", err)
	}
}

func TestCallRemoteErrorPropagates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"error":"ACCESS_DENIED","error_description":"insufficient scope"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	_, err := c.Call(context.Background(), "user.get", Params{})
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("err = %v, want *RemoteError", err)
	}
	if remote.Code != "ACCESS_DENIED" || remote.Description != "insufficient scope" {
		t.Errorf("remote = %+v, want service-provided code and description", remote)
	}
	if remote.QuotaExceeded() {
		t.Error("ACCESS_DENIED misclassified as quota error")
	}
	if calls != 1 {
		t.Errorf("network calls = %d, want 1 (no retry)", calls)
	}
}

func TestCallTransportErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	_, err := c.Call(context.Background(), "user.get", Params{})
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if transport.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", transport.Status, http.StatusBadGateway)
	}
}

func TestCallErrorsAreNotCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"error":"ACCESS_DENIED"}`)
			return
		}
		fmt.Fprint(w, `{"result":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	if _, err := c.Call(context.Background(), "user.get", Params{}); err == nil {
		t.Fatal("first call should fail")
	}
	if _, err := c.Call(context.Background(), "user.get", Params{}); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("network calls = %d, want 2 (failure must not be cached)", calls)
	}
}

func TestCallUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":[{"ID":"1"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	payload, err := c.Call(context.Background(), "user.get", Params{})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if string(payload) != `[{"ID":"1"}]` {
		t.Errorf("payload = %s, want the unwrapped result field", payload)
	}
}

func TestCallUsesRawBodyWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"ID":"1"},{"ID":"2"}]`)
	}))
	defer srv.Close()

	c := newTestClient(srv, Config{})

	payload, err := c.Call(context.Background(), "department.get", Params{})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if string(payload) != `[{"ID":"1"},{"ID":"2"}]` {
		t.Errorf("payload = %s, want the raw body", payload)
	}
}
