package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zanvidmar/evidenca/internal/api"
	"github.com/zanvidmar/evidenca/internal/storage"
)

// fakeBackend is a minimal auth backend for session tests.
type fakeBackend struct {
	calls       atomic.Int32
	failProfile bool
	failLogout  bool
}

func (b *fakeBackend) handler() http.Handler {
	respond := func(w http.ResponseWriter, status int, success bool, data any, message string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"success": success, "data": data, "message": message,
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		var req struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct" {
			respond(w, http.StatusUnauthorized, false, nil, "invalid credentials")
			return
		}
		respond(w, http.StatusOK, true, map[string]any{
			"user":         map[string]any{"id": "u1", "email": req.Email, "role": "IT_STAFF"},
			"accessToken":  "acc-1",
			"refreshToken": "ref-1",
		}, "")
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.failProfile {
			respond(w, http.StatusUnauthorized, false, nil, "invalid token")
			return
		}
		respond(w, http.StatusOK, true, map[string]any{
			"user": map[string]any{"id": "u1", "email": "a@b.si", "role": "IT_STAFF"},
		}, "")
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		if b.failLogout {
			respond(w, http.StatusInternalServerError, false, nil, "boom")
			return
		}
		respond(w, http.StatusOK, true, nil, "")
	})
	return mux
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *storage.Memory) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	store := storage.NewMemory()
	client := api.New(server.URL, store, api.Options{Timeout: 5 * time.Second})
	return NewManager(client, store, nil), store
}

func TestBootstrapWithoutCredentials(t *testing.T) {
	backend := &fakeBackend{}
	manager, _ := newTestManager(t, backend)

	if manager.State() != StateLoading {
		t.Fatalf("expected initial LOADING state, got %s", manager.State())
	}

	manager.Bootstrap(context.Background())

	if manager.State() != StateAnonymous {
		t.Errorf("expected ANONYMOUS after bootstrap, got %s", manager.State())
	}
	if got := backend.calls.Load(); got != 0 {
		t.Errorf("expected zero network calls without credentials, got %d", got)
	}
}

func TestBootstrapRestoresSession(t *testing.T) {
	backend := &fakeBackend{}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()

	storage.SetAccessToken(ctx, store, "acc-1")
	manager.Bootstrap(ctx)

	if manager.State() != StateAuthenticated {
		t.Fatalf("expected AUTHENTICATED, got %s", manager.State())
	}
	user := manager.User()
	if user == nil || user.ID != "u1" {
		t.Errorf("expected cached user u1, got %+v", user)
	}
}

func TestBootstrapProfileFailureClearsCredentials(t *testing.T) {
	backend := &fakeBackend{failProfile: true}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()

	storage.SetAccessToken(ctx, store, "acc-1")
	storage.SetRefreshToken(ctx, store, "ref-1")
	manager.Bootstrap(ctx)

	if manager.State() != StateAnonymous {
		t.Errorf("expected ANONYMOUS after failed profile check, got %s", manager.State())
	}
	if _, ok, _ := storage.AccessToken(ctx, store); ok {
		t.Error("expected access token cleared")
	}
	if _, ok, _ := storage.RefreshToken(ctx, store); ok {
		t.Error("expected refresh token cleared")
	}
}

func TestLoginSuccess(t *testing.T) {
	backend := &fakeBackend{}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()
	manager.Bootstrap(ctx)

	if !manager.Login(ctx, "a@b.si", "correct") {
		t.Fatal("expected login to succeed")
	}
	if manager.State() != StateAuthenticated {
		t.Errorf("expected AUTHENTICATED, got %s", manager.State())
	}
	if !manager.IsAuthenticated() {
		t.Error("IsAuthenticated should be true")
	}
	if manager.IsLoading() {
		t.Error("loading flag should be cleared after login")
	}

	access, _, _ := storage.AccessToken(ctx, store)
	if access != "acc-1" {
		t.Errorf("expected access token persisted, got %q", access)
	}
}

func TestLoginFailureReturnsFalse(t *testing.T) {
	backend := &fakeBackend{}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()
	manager.Bootstrap(ctx)

	if manager.Login(ctx, "a@b.si", "wrong") {
		t.Fatal("expected login to fail")
	}
	if manager.State() != StateAnonymous {
		t.Errorf("expected state unchanged ANONYMOUS, got %s", manager.State())
	}
	if _, ok, _ := storage.AccessToken(ctx, store); ok {
		t.Error("no token should be persisted on failed login")
	}
}

func TestLoginTransportFailureReturnsFalse(t *testing.T) {
	store := storage.NewMemory()
	// Nothing is listening here.
	client := api.New("http://127.0.0.1:1", store, api.Options{Timeout: time.Second})
	manager := NewManager(client, store, nil)
	manager.Bootstrap(context.Background())

	if manager.Login(context.Background(), "a@b.si", "correct") {
		t.Error("expected login to fail on transport error, not panic or succeed")
	}
}

func TestLogoutSwallowsBackendFailure(t *testing.T) {
	backend := &fakeBackend{failLogout: true}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()
	manager.Bootstrap(ctx)

	if !manager.Login(ctx, "a@b.si", "correct") {
		t.Fatal("login failed")
	}

	manager.Logout(ctx)

	if manager.State() != StateAnonymous {
		t.Errorf("expected ANONYMOUS after logout despite backend failure, got %s", manager.State())
	}
	if manager.User() != nil {
		t.Error("expected user cleared")
	}
	if _, ok, _ := storage.AccessToken(ctx, store); ok {
		t.Error("expected access token cleared")
	}
	if _, ok, _ := storage.RefreshToken(ctx, store); ok {
		t.Error("expected refresh token cleared")
	}
}

func TestSessionExpiryDropsToAnonymous(t *testing.T) {
	// Profile starts working, then the backend rejects everything and the
	// silent refresh fails: the manager must land in ANONYMOUS.
	backend := &fakeBackend{}
	manager, store := newTestManager(t, backend)
	ctx := context.Background()
	manager.Bootstrap(ctx)

	if !manager.Login(ctx, "a@b.si", "correct") {
		t.Fatal("login failed")
	}

	backend.failProfile = true
	// The refresh endpoint is not registered on the fake backend, so the
	// refresh attempt fails and the expiry callback fires.
	manager.Bootstrap(ctx)

	if manager.State() != StateAnonymous {
		t.Errorf("expected ANONYMOUS after expiry, got %s", manager.State())
	}
	if _, ok, _ := storage.AccessToken(ctx, store); ok {
		t.Error("expected access token cleared after expiry")
	}
	if _, ok, _ := storage.RefreshToken(ctx, store); ok {
		t.Error("expected refresh token cleared after expiry")
	}
}
