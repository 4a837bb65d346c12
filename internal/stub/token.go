package stub

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the access-token JWT claims.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokenExpiry is deliberately short so the client's silent refresh
// path gets exercised during normal use.
const AccessTokenExpiry = 15 * time.Minute

// RefreshTokenExpiry is the refresh-token lifetime.
const RefreshTokenExpiry = 7 * 24 * time.Hour

// mintAccessToken creates a signed access token for a user.
func mintAccessToken(secret, userID, email, role string) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// validateAccessToken parses and validates an access token.
func validateAccessToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// issueRefreshToken stores a new opaque refresh token for a user.
func issueRefreshToken(ctx context.Context, db *sql.DB, userID string) (string, error) {
	token := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Add(RefreshTokenExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("storing refresh token: %w", err)
	}

	// Opportunistically clean up expired tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now(),
	)

	return token, nil
}

// rotateRefreshToken consumes a refresh token and issues a replacement.
// Returns the owning user ID and the new token, or an error when the token
// is unknown or expired.
func rotateRefreshToken(ctx context.Context, db *sql.DB, token string) (string, string, error) {
	var userID string
	var expiresAt time.Time
	err := db.QueryRowContext(ctx,
		`SELECT user_id, expires_at FROM refresh_tokens WHERE token = ?`, token,
	).Scan(&userID, &expiresAt)
	if err == sql.ErrNoRows {
		return "", "", fmt.Errorf("unknown refresh token")
	}
	if err != nil {
		return "", "", fmt.Errorf("looking up refresh token: %w", err)
	}
	if time.Now().After(expiresAt) {
		return "", "", fmt.Errorf("refresh token expired")
	}

	if _, err := db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE token = ?`, token,
	); err != nil {
		return "", "", fmt.Errorf("consuming refresh token: %w", err)
	}

	next, err := issueRefreshToken(ctx, db, userID)
	if err != nil {
		return "", "", err
	}
	return userID, next, nil
}

// revokeRefreshTokens drops all refresh tokens owned by a user.
func revokeRefreshTokens(ctx context.Context, db *sql.DB, userID string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("revoking refresh tokens: %w", err)
	}
	return nil
}
