package stub

import (
	"context"
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := mintAccessToken("secret", "u1", "a@b.si", "IT_STAFF")
	if err != nil {
		t.Fatalf("mintAccessToken: %v", err)
	}

	claims, err := validateAccessToken("secret", token)
	if err != nil {
		t.Fatalf("validateAccessToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@b.si" || claims.Role != "IT_STAFF" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := validateAccessToken("other-secret", token); err == nil {
		t.Error("expected validation failure with wrong secret")
	}
	if _, err := validateAccessToken("secret", "not-a-token"); err == nil {
		t.Error("expected validation failure for garbage token")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	// Tokens reference a real user row.
	user, err := createUser(ctx, db, "Ana", "ana@example.com", "hash", "IT_STAFF", "")
	if err != nil {
		t.Fatalf("createUser: %v", err)
	}

	token, err := issueRefreshToken(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("issueRefreshToken: %v", err)
	}

	userID, next, err := rotateRefreshToken(ctx, db, token)
	if err != nil {
		t.Fatalf("rotateRefreshToken: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected owner %s, got %s", user.ID, userID)
	}
	if next == token {
		t.Error("expected a new token after rotation")
	}

	// The consumed token is gone.
	if _, _, err := rotateRefreshToken(ctx, db, token); err == nil {
		t.Error("expected rotation of a consumed token to fail")
	}

	// Revocation kills the replacement too.
	if err := revokeRefreshTokens(ctx, db, user.ID); err != nil {
		t.Fatalf("revokeRefreshTokens: %v", err)
	}
	if _, _, err := rotateRefreshToken(ctx, db, next); err == nil {
		t.Error("expected rotation after revocation to fail")
	}
}
