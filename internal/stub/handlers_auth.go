package stub

import (
	"database/sql"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, hash, err := getUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := mintAccessToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	refresh, err := issueRefreshToken(r.Context(), h.DB, user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue refresh token")
		return
	}

	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	respond(w, http.StatusOK, map[string]any{
		"user":         user,
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Refresh handles POST /auth/refresh. The presented refresh token is
// consumed and a rotated replacement returned alongside the new access
// token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	userID, next, err := rotateRefreshToken(r.Context(), h.DB, req.RefreshToken)
	if err != nil {
		slog.Warn("refresh rejected", "error", err)
		respondError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := getUser(r.Context(), h.DB, userID)
	if err != nil || user == nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "account unavailable")
		return
	}

	access, err := mintAccessToken(h.JWTSecret, user.ID, user.Email, user.Role)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"accessToken":  access,
		"refreshToken": next,
	})
}

// Logout handles POST /auth/logout, revoking the caller's refresh tokens.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := revokeRefreshTokens(r.Context(), h.DB, claims.UserID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to revoke session")
		return
	}

	slog.Info("user logged out", "user", claims.Email)
	respond(w, http.StatusOK, nil)
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := getUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "account unavailable")
		return
	}

	respond(w, http.StatusOK, map[string]any{"user": user})
}
