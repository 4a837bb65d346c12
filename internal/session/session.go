// Package session owns the authenticated-user state machine. Exactly one
// Manager exists per process; the rest of the application sees it only
// through read accessors and the login/logout/bootstrap operations.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/zanvidmar/evidenca/internal/api"
	"github.com/zanvidmar/evidenca/internal/model"
	"github.com/zanvidmar/evidenca/internal/storage"
)

// State is the session lifecycle state.
type State int

const (
	// StateLoading is the transient startup state, entered exactly once
	// and left after Bootstrap.
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateAnonymous:
		return "ANONYMOUS"
	case StateAuthenticated:
		return "AUTHENTICATED"
	}
	return "UNKNOWN"
}

// Manager holds the single session for the running process.
type Manager struct {
	client *api.Client
	store  storage.Store
	log    *slog.Logger

	mu      sync.Mutex
	state   State
	user    *model.User
	loading bool
}

// NewManager creates a Manager in the LOADING state and registers it as the
// client's session-expiry target, so a failed silent refresh drops the
// session to ANONYMOUS.
func NewManager(client *api.Client, store storage.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		client: client,
		store:  store,
		log:    log,
		state:  StateLoading,
	}
	client.OnSessionExpired(m.expire)
	return m
}

// Bootstrap runs the startup check. Without a persisted access token the
// session goes straight to ANONYMOUS with no network call; otherwise the
// profile is fetched, and any failure clears both credentials.
func (m *Manager) Bootstrap(ctx context.Context) {
	if _, ok, err := storage.AccessToken(ctx, m.store); err != nil || !ok {
		if err != nil {
			m.log.Warn("reading persisted credentials", "error", err)
		}
		m.set(StateAnonymous, nil)
		return
	}

	user, err := m.client.Profile(ctx)
	if err != nil {
		m.log.Info("startup profile check failed", "error", err)
		if err := storage.ClearCredentials(ctx, m.store); err != nil {
			m.log.Error("clearing credentials", "error", err)
		}
		m.set(StateAnonymous, nil)
		return
	}

	m.set(StateAuthenticated, user)
	m.log.Info("session restored", "user", user.Email, "role", user.Role)
}

// Login authenticates with the backend. All failures, transport or
// application level, collapse to a false return; the session state is left
// unchanged apart from the transient loading flag.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	user, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.log.Info("login failed", "email", email, "error", err)
		return false
	}

	m.set(StateAuthenticated, user)
	m.log.Info("user logged in", "user", user.Email, "role", user.Role)
	return true
}

// Logout tears the session down. The backend call is best effort: its
// failure is logged and swallowed, because a backend hiccup must never
// strand the client in an authenticated-looking state.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		m.log.Warn("backend logout failed", "error", err)
	}

	if err := storage.ClearCredentials(ctx, m.store); err != nil {
		m.log.Error("clearing credentials", "error", err)
	}
	m.set(StateAnonymous, nil)
	m.log.Info("user logged out")
}

// expire is the transport's session-expiry callback. Credentials are
// already cleared by the time it fires.
func (m *Manager) expire() {
	m.set(StateAnonymous, nil)
	m.log.Info("session expired")
}

func (m *Manager) set(state State, user *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// User returns a copy of the authenticated user, or nil.
func (m *Manager) User() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// IsAuthenticated reports whether a user is logged in.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// IsLoading reports whether a login attempt is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}
