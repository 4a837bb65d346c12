package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/zanvidmar/evidenca/internal/storage"
)

// retryMarker tags a request that has already been replayed after a token
// refresh, so a second authorization failure is returned to the caller
// instead of looping.
const retryMarker = "X-Auth-Retried"

// ErrNoRefreshToken is returned by the refresh flow when no refresh token
// is persisted.
var ErrNoRefreshToken = errors.New("no refresh token available")

// authTransport attaches the persisted bearer credential to every outgoing
// request and transparently performs a one-shot refresh-and-retry when the
// backend answers 401. Concurrent failures share a single in-flight
// refresh call, so racing requests cannot invalidate each other's freshly
// minted tokens.
type authTransport struct {
	base       http.RoundTripper
	store      storage.Store
	refreshURL string
	group      singleflight.Group
	onExpired  func()
	log        *slog.Logger
}

func newAuthTransport(base http.RoundTripper, store storage.Store, refreshURL string, log *slog.Logger) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		base:       base,
		store:      store,
		refreshURL: refreshURL,
		log:        log,
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}
	if token, ok, _ := storage.AccessToken(ctx, t.store); ok {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if out.Header.Get(retryMarker) != "" {
		// Already retried once; hand the failure to the caller.
		return resp, nil
	}

	token, refreshErr := t.refresh(ctx)
	if refreshErr != nil {
		t.log.Warn("token refresh failed, clearing session", "error", refreshErr)
		if err := storage.ClearCredentials(ctx, t.store); err != nil {
			t.log.Error("clearing credentials", "error", err)
		}
		if t.onExpired != nil {
			t.onExpired()
		}
		// Propagate the original authorization failure.
		return resp, nil
	}
	resp.Body.Close()

	retry := req.Clone(ctx)
	retry.Header.Set(retryMarker, "1")
	retry.Header.Set("X-Request-ID", out.Header.Get("X-Request-ID"))
	retry.Header.Set("Authorization", "Bearer "+token)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replaying request body: %w", err)
		}
		retry.Body = body
	}

	return t.base.RoundTrip(retry)
}

// refreshResult is the payload of a successful POST /auth/refresh.
type refreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refresh exchanges the persisted refresh token for a new access token.
// Concurrent callers coalesce into one backend call and share its result.
func (t *authTransport) refresh(ctx context.Context) (string, error) {
	token, err, _ := t.group.Do("refresh", func() (any, error) {
		refresh, ok, err := storage.RefreshToken(ctx, t.store)
		if err != nil {
			return nil, fmt.Errorf("reading refresh token: %w", err)
		}
		if !ok {
			return nil, ErrNoRefreshToken
		}

		payload, _ := json.Marshal(map[string]string{"refreshToken": refresh})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("building refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("calling refresh endpoint: %w", err)
		}
		defer resp.Body.Close()

		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, fmt.Errorf("decoding refresh response: %w", err)
		}
		if resp.StatusCode != http.StatusOK || !env.Success {
			return nil, &APIError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
		}

		var result refreshResult
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("decoding refresh payload: %w", err)
		}
		if result.AccessToken == "" {
			return nil, fmt.Errorf("refresh response missing access token")
		}

		if err := storage.SetAccessToken(ctx, t.store, result.AccessToken); err != nil {
			return nil, fmt.Errorf("persisting access token: %w", err)
		}
		if result.RefreshToken != "" {
			// Backend rotated the refresh token.
			if err := storage.SetRefreshToken(ctx, t.store, result.RefreshToken); err != nil {
				return nil, fmt.Errorf("persisting refresh token: %w", err)
			}
		}

		t.log.Debug("access token refreshed")
		return result.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}
