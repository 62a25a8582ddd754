package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "alice@example.com", "alice", "pw-alice-1", false)

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{name: "by email", email: "alice@example.com"},
		{name: "by username", username: "alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.service.Login(ctx, tt.email, tt.username, "pw-alice-1", testMeta)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), result.UserID)

			accessClaims, err := env.tokens.VerifyAccess(result.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), accessClaims.UserID)
			assert.Equal(t, result.RefreshToken, accessClaims.RefreshToken)

			sessionClaims, err := env.tokens.VerifySession(result.SessionToken)
			require.NoError(t, err)

			stored := env.repo.sessionByID(sessionClaims.SessionID)
			require.NotNil(t, stored)
			assert.Equal(t, result.RefreshToken, stored.Token)

			_, err = env.cache.Get(ctx, result.SessionToken)
			assert.NoError(t, err)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "bob@example.com", "bob", "pw-bob-1", false)
	createUser(t, env, "gone@example.com", "gone", "pw-gone-1", true)

	tests := []struct {
		name     string
		email    string
		username string
		password string
		wantErr  error
	}{
		{name: "unknown email", email: "nobody@example.com", password: "anything", wantErr: ErrInvalidEmailUsername},
		{name: "unknown username", username: "nobody", password: "anything", wantErr: ErrInvalidEmailUsername},
		{name: "removed account", email: "gone@example.com", password: "pw-gone-1", wantErr: ErrInvalidEmailUsername},
		{name: "wrong password", email: "bob@example.com", password: "pw-bob-2", wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.service.Login(ctx, tt.email, tt.username, tt.password, testMeta)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
		})
	}
}

func TestLoginFailureRecordsAttempt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "carl@example.com", "carl", "pw-carl-1", false)

	_, err := env.service.Login(ctx, "carl@example.com", "", "wrong", testMeta)
	require.ErrorIs(t, err, ErrInvalidPassword)

	value, err := env.redis.Get("carl@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestLoginBlockedAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "a@x.com", "", "pw1", false)

	for i := 0; i < 3; i++ {
		_, err := env.service.Login(ctx, "a@x.com", "", "wrong", testMeta)
		require.ErrorIs(t, err, ErrInvalidPassword)
	}

	// The correct password no longer helps inside the window.
	_, err := env.service.Login(ctx, "a@x.com", "", "pw1", testMeta)
	assert.ErrorIs(t, err, ErrLoginAttemptsLimitReached)

	// The refused attempt counts as a failure too.
	value, err := env.redis.Get("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "5", value)
}

func TestLoginBlockExpiresWithWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "deb@example.com", "", "pw-deb-1", false)

	for i := 0; i < 3; i++ {
		_, err := env.service.Login(ctx, "deb@example.com", "", "wrong", testMeta)
		require.ErrorIs(t, err, ErrInvalidPassword)
	}
	_, err := env.service.Login(ctx, "deb@example.com", "", "pw-deb-1", testMeta)
	require.ErrorIs(t, err, ErrLoginAttemptsLimitReached)

	env.redis.FastForward(30*time.Minute + time.Second)

	_, err = env.service.Login(ctx, "deb@example.com", "", "pw-deb-1", testMeta)
	assert.NoError(t, err)
}

func TestLoginSuccessDoesNotResetCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "eve@example.com", "", "pw-eve-1", false)

	for i := 0; i < 2; i++ {
		_, err := env.service.Login(ctx, "eve@example.com", "", "wrong", testMeta)
		require.ErrorIs(t, err, ErrInvalidPassword)
	}

	// Counter sits at 3, still within the limit.
	_, err := env.service.Login(ctx, "eve@example.com", "", "pw-eve-1", testMeta)
	require.NoError(t, err)

	_, err = env.service.Login(ctx, "eve@example.com", "", "wrong", testMeta)
	require.ErrorIs(t, err, ErrInvalidPassword)

	// One more failure after the success tips the identifier over.
	_, err = env.service.Login(ctx, "eve@example.com", "", "pw-eve-1", testMeta)
	assert.ErrorIs(t, err, ErrLoginAttemptsLimitReached)
}

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.service.Signup(ctx, "new@example.com", "a long password"))

	user, err := env.repo.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.Nil(t, user.Username)

	valid, err := env.hasher.Verify(user.Password, "a long password")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestSignupRejectsExistingEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "taken@example.com", "taken", "pw-taken-1", false)
	createUser(t, env, "removed@example.com", "removed", "pw-removed-1", true)

	// A soft-removed account still owns its email.
	assert.ErrorIs(t, env.service.Signup(ctx, "taken@example.com", "another password"), ErrUserExists)
	assert.ErrorIs(t, env.service.Signup(ctx, "removed@example.com", "another password"), ErrUserExists)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "fred@example.com", "fred", "pw-fred-1", false)

	result, err := env.service.Login(ctx, "fred@example.com", "", "pw-fred-1", testMeta)
	require.NoError(t, err)

	require.NoError(t, env.service.Logout(ctx, result.AccessToken, result.SessionToken))

	sessionClaims, err := env.tokens.VerifySession(result.SessionToken)
	require.NoError(t, err)
	stored := env.repo.sessionByID(sessionClaims.SessionID)
	require.NotNil(t, stored)
	assert.True(t, stored.Removed)

	_, err = env.cache.Get(ctx, result.SessionToken)
	assert.Error(t, err)

	// The session is gone, so a repeat logout has nothing to tear down.
	assert.ErrorIs(t, env.service.Logout(ctx, result.AccessToken, result.SessionToken),
		ErrLogoutSessionInvalid)
}

func TestLogoutRejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "gina@example.com", "gina", "pw-gina-1", false)

	result, err := env.service.Login(ctx, "gina@example.com", "", "pw-gina-1", testMeta)
	require.NoError(t, err)

	assert.ErrorIs(t, env.service.Logout(ctx, "garbage", result.SessionToken), ErrTokenInvalid)
	assert.ErrorIs(t, env.service.Logout(ctx, result.AccessToken, "garbage"), ErrTokenInvalid)
}

func TestLogoutRejectsMismatchedUserIDs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "hank@example.com", "hank", "pw-hank-1", false)
	intruder := createUser(t, env, "ivan@example.com", "ivan", "pw-ivan-1", false)

	victim, err := env.service.Login(ctx, "hank@example.com", "", "pw-hank-1", testMeta)
	require.NoError(t, err)

	// An access token claiming the victim's refresh token but signed
	// for a different user must not tear the session down.
	now := time.Now()
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		UserID:       intruder.ID.String(),
		Email:        intruder.Email,
		RefreshToken: victim.RefreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(env.config.AccessSecret))
	require.NoError(t, err)

	assert.ErrorIs(t, env.service.Logout(ctx, forged, victim.SessionToken), ErrLogoutNotAllowed)

	sessionClaims, err := env.tokens.VerifySession(victim.SessionToken)
	require.NoError(t, err)
	assert.False(t, env.repo.sessionByID(sessionClaims.SessionID).Removed)
}

func TestLogoutRejectsForeignSessionToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "june@example.com", "june", "pw-june-1", false)
	createUser(t, env, "kyle@example.com", "kyle", "pw-kyle-1", false)

	first, err := env.service.Login(ctx, "june@example.com", "", "pw-june-1", testMeta)
	require.NoError(t, err)
	second, err := env.service.Login(ctx, "kyle@example.com", "", "pw-kyle-1", testMeta)
	require.NoError(t, err)

	// The session token must point at the session the access token's
	// refresh token belongs to.
	assert.ErrorIs(t, env.service.Logout(ctx, first.AccessToken, second.SessionToken),
		ErrLogoutSessionInvalid)
}

type recordingMailer struct {
	calls []string
}

func (m *recordingMailer) SendReset(_ context.Context, _ string, email string) error {
	m.calls = append(m.calls, email)
	return nil
}

func TestForgotPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createUser(t, env, "kate@example.com", "kate", "pw-kate-1", false)

	mailer := &recordingMailer{}
	service := NewService(newTestLogger(t), env.repo, env.hasher, env.tokens,
		env.throttle, env.sessions, mailer)

	service.ForgotPassword(ctx, "kate@example.com")
	service.ForgotPassword(ctx, "unknown@example.com")

	// Only the known address triggers a reset; neither call errors out.
	assert.Equal(t, []string{"kate@example.com"}, mailer.calls)
}
