// Package api is the typed client for the inventory backend's REST
// surface. All business rules live on the backend; the client's own logic
// is limited to the credential lifecycle handled by its transport.
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
	"time"

	"github.com/zanvidmar/evidenca/internal/model"
	"github.com/zanvidmar/evidenca/internal/storage"
)

// DefaultTimeout bounds every request round-trip. There is no cancellation
// beyond this; a timeout surfaces as a transport failure.
const DefaultTimeout = 15 * time.Second

// Client calls the backend. Credentials are read from and written to the
// given storage port; callers never handle tokens directly.
type Client struct {
	baseURL   string
	http      *http.Client
	transport *authTransport
	store     storage.Store
	log       *slog.Logger
}

// Options tune a Client. The zero value is usable.
type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, store storage.Store, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	baseURL = strings.TrimRight(baseURL, "/")

	transport := newAuthTransport(nil, store, baseURL+"/auth/refresh", opts.Logger)
	return &Client{
		baseURL:   baseURL,
		http:      &http.Client{Transport: transport, Timeout: opts.Timeout},
		transport: transport,
		store:     store,
		log:       opts.Logger,
	}
}

// OnSessionExpired registers the callback fired when a silent refresh fails
// irrecoverably, after both credentials have been cleared. The UI layer
// uses it to route back to the login entry point.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.onExpired = fn
}

// do performs a JSON request and decodes the envelope. A nil out discards
// the payload.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		// Malformed response shape is treated like a transport failure.
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding %s %s payload: %w", method, path, err)
		}
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty"`
}

// Login authenticates and persists the returned credentials. In a browser
// the refresh token would live in a cookie outside the client's reach; this
// client has no cookie jar, so a refresh token returned in the payload is
// persisted alongside the access token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var result loginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access token")
	}

	if err := storage.SetAccessToken(ctx, c.store, result.AccessToken); err != nil {
		return nil, fmt.Errorf("persisting access token: %w", err)
	}
	if result.RefreshToken != "" {
		if err := storage.SetRefreshToken(ctx, c.store, result.RefreshToken); err != nil {
			return nil, fmt.Errorf("persisting refresh token: %w", err)
		}
	}
	return &result.User, nil
}

// Logout tells the backend to revoke the session. Local credential
// teardown is the session manager's job and happens regardless of the
// result here.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var result struct {
		User model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}
