package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zanvidmar/evidenca/internal/storage"
)

// refreshBackend is a minimal backend for transport tests: /auth/refresh
// mints "new-token" from refresh token "r1", and /data requires the fresh
// token.
type refreshBackend struct {
	mu           sync.Mutex
	validAccess  string
	dataCalls    atomic.Int32
	refreshCalls atomic.Int32
	lastBody     string
}

func (b *refreshBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != "r1" {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid refresh token")
			return
		}
		b.mu.Lock()
		b.validAccess = "new-token"
		b.mu.Unlock()
		writeEnvelope(w, http.StatusOK, true,
			map[string]string{"accessToken": "new-token", "refreshToken": "r2"}, "")
	})

	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		b.dataCalls.Add(1)
		b.mu.Lock()
		valid := "Bearer " + b.validAccess
		b.mu.Unlock()
		if r.Header.Get("Authorization") != valid {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid token")
			return
		}
		if r.Body != nil {
			var body struct {
				Value string `json:"value"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			b.mu.Lock()
			b.lastBody = body.Value
			b.mu.Unlock()
		}
		writeEnvelope(w, http.StatusOK, true, map[string]string{"ok": "yes"}, "")
	})

	return mux
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": success, "data": data, "message": message,
	})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *storage.Memory) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := storage.NewMemory()
	return New(server.URL, store, Options{Timeout: 5 * time.Second}), store
}

func TestRefreshAndRetryTransparent(t *testing.T) {
	backend := &refreshBackend{validAccess: "fresh"}
	client, store := newTestClient(t, backend.handler())
	ctx := context.Background()

	storage.SetAccessToken(ctx, store, "stale")
	storage.SetRefreshToken(ctx, store, "r1")

	// The stale token 401s, refresh succeeds, the retry carries the body
	// again and its result reaches the caller.
	var out map[string]string
	err := client.do(ctx, http.MethodPost, "/data", map[string]string{"value": "hello"}, &out)
	if err != nil {
		t.Fatalf("expected transparent retry to succeed, got %v", err)
	}
	if out["ok"] != "yes" {
		t.Errorf("unexpected payload: %v", out)
	}

	if got := backend.refreshCalls.Load(); got != 1 {
		t.Errorf("expected 1 refresh call, got %d", got)
	}
	if got := backend.dataCalls.Load(); got != 2 {
		t.Errorf("expected original + retry = 2 data calls, got %d", got)
	}
	if backend.lastBody != "hello" {
		t.Errorf("retry lost the request body, got %q", backend.lastBody)
	}

	access, _, _ := storage.AccessToken(ctx, store)
	if access != "new-token" {
		t.Errorf("expected refreshed access token persisted, got %q", access)
	}
	refresh, _, _ := storage.RefreshToken(ctx, store)
	if refresh != "r2" {
		t.Errorf("expected rotated refresh token persisted, got %q", refresh)
	}
}

func TestRetryIsOneShot(t *testing.T) {
	// The backend never accepts any access token, but refresh "succeeds":
	// the retried request must not trigger a second refresh.
	refreshCalls := atomic.Int32{}
	dataCalls := atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "still-bad"}, "")
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		dataCalls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid token")
	})

	client, store := newTestClient(t, mux)
	ctx := context.Background()
	storage.SetAccessToken(ctx, store, "stale")
	storage.SetRefreshToken(ctx, store, "r1")

	err := client.do(ctx, http.MethodGet, "/data", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError after one-shot retry, got %v", err)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 refresh, got %d", got)
	}
	if got := dataCalls.Load(); got != 2 {
		t.Errorf("expected exactly 2 data calls, got %d", got)
	}
}

func TestRefreshFailureClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid refresh token")
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid token")
	})

	client, store := newTestClient(t, mux)
	ctx := context.Background()
	storage.SetAccessToken(ctx, store, "stale")
	storage.SetRefreshToken(ctx, store, "dead")

	expired := atomic.Bool{}
	client.OnSessionExpired(func() { expired.Store(true) })

	err := client.do(ctx, http.MethodGet, "/data", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected original 401 propagated, got %v", err)
	}
	if !expired.Load() {
		t.Error("expected session-expired callback to fire")
	}
	if _, ok, _ := storage.AccessToken(ctx, store); ok {
		t.Error("expected access token cleared")
	}
	if _, ok, _ := storage.RefreshToken(ctx, store); ok {
		t.Error("expected refresh token cleared")
	}
}

func TestNoRefreshTokenMeansNoRefreshCall(t *testing.T) {
	refreshCalls := atomic.Int32{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "x"}, "")
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid token")
	})

	client, store := newTestClient(t, mux)
	ctx := context.Background()
	storage.SetAccessToken(ctx, store, "stale")

	expired := atomic.Bool{}
	client.OnSessionExpired(func() { expired.Store(true) })

	err := client.do(ctx, http.MethodGet, "/data", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if got := refreshCalls.Load(); got != 0 {
		t.Errorf("expected no refresh call without a refresh token, got %d", got)
	}
	if !expired.Load() {
		t.Error("expected session-expired callback to fire")
	}
}

func TestConcurrentRefreshesCoalesce(t *testing.T) {
	const workers = 5

	refreshCalls := atomic.Int32{}
	var arrived sync.WaitGroup
	arrived.Add(workers)
	var released sync.WaitGroup
	released.Add(1)
	var token atomic.Value
	token.Store("stale")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		time.Sleep(50 * time.Millisecond)
		token.Store("fresh")
		writeEnvelope(w, http.StatusOK, true, map[string]string{"accessToken": "fresh"}, "")
	})
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token.Load().(string) {
			if r.Header.Get(retryMarker) == "" {
				// Hold every first attempt until all workers are in flight,
				// so their refresh attempts race each other.
				arrived.Done()
				released.Wait()
			}
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "invalid token")
			return
		}
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})

	client, store := newTestClient(t, mux)
	ctx := context.Background()
	storage.SetAccessToken(ctx, store, "wrong")
	storage.SetRefreshToken(ctx, store, "r1")

	go func() {
		arrived.Wait()
		released.Done()
	}()

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.do(ctx, http.MethodGet, "/data", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d failed: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("expected coalesced single refresh, got %d", got)
	}
}

func TestRequestIDAttached(t *testing.T) {
	mux := http.NewServeMux()
	var gotID string
	mux.HandleFunc("GET /data", func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		writeEnvelope(w, http.StatusOK, true, nil, "")
	})

	client, _ := newTestClient(t, mux)
	if err := client.do(context.Background(), http.MethodGet, "/data", nil, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if gotID == "" {
		t.Error("expected X-Request-ID on outgoing request")
	}
}
