package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *User {
	username := "testuser"
	return &User{
		ID:       uuid.New(),
		Username: &username,
		Email:    "test@example.com",
		Verified: true,
	}
}

func TestIssueAuthTokensRoundTrip(t *testing.T) {
	tokens := NewTokenService(newTestConfig())
	user := testUser()

	accessToken, refreshToken, err := tokens.IssueAuthTokens(user)
	require.NoError(t, err)

	accessClaims, err := tokens.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), accessClaims.UserID)
	assert.Equal(t, user.Email, accessClaims.Email)
	assert.Equal(t, "testuser", accessClaims.Username)
	assert.True(t, accessClaims.Verified)

	refreshClaims, err := tokens.VerifyRefresh(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), refreshClaims.UserID)
}

func TestAccessTokenEmbedsRefreshToken(t *testing.T) {
	tokens := NewTokenService(newTestConfig())

	accessToken, refreshToken, err := tokens.IssueAuthTokens(testUser())
	require.NoError(t, err)

	accessClaims, err := tokens.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, refreshToken, accessClaims.RefreshToken)

	// The embedded copy verifies under the refresh secret.
	_, err = tokens.VerifyRefresh(accessClaims.RefreshToken)
	assert.NoError(t, err)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService(newTestConfig())
	sessionID := uuid.New()

	sessionToken, err := tokens.IssueSessionToken(sessionID)
	require.NoError(t, err)

	claims, err := tokens.VerifySession(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), claims.SessionID)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	tokens := NewTokenService(newTestConfig())

	accessToken, refreshToken, err := tokens.IssueAuthTokens(testUser())
	require.NoError(t, err)
	sessionToken, err := tokens.IssueSessionToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		verify func() error
	}{
		{"refresh token as access", func() error { _, err := tokens.VerifyAccess(refreshToken); return err }},
		{"session token as access", func() error { _, err := tokens.VerifyAccess(sessionToken); return err }},
		{"access token as refresh", func() error { _, err := tokens.VerifyRefresh(accessToken); return err }},
		{"access token as session", func() error { _, err := tokens.VerifySession(accessToken); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.verify(), ErrTokenInvalid)
		})
	}
}

func TestVerifyRejectsTamperedAndGarbageTokens(t *testing.T) {
	tokens := NewTokenService(newTestConfig())

	accessToken, _, err := tokens.IssueAuthTokens(testUser())
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(accessToken + "tampered")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tokens.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	otherConfig := newTestConfig()
	otherConfig.AccessSecret = "a-different-secret"
	foreign, _, err := NewTokenService(otherConfig).IssueAuthTokens(testUser())
	require.NoError(t, err)

	_, err = tokens.VerifyAccess(foreign)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	cfg := newTestConfig()
	cfg.AccessDuration = -time.Minute
	cfg.RefreshDuration = -time.Minute
	expired := NewTokenService(cfg)

	accessToken, refreshToken, err := expired.IssueAuthTokens(testUser())
	require.NoError(t, err)

	tokens := NewTokenService(newTestConfig())
	_, err = tokens.VerifyAccess(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tokens.VerifyRefresh(refreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
