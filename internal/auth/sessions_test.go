package auth

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = ClientMeta{
	IPAddress: "203.0.113.7",
	UserAgent: "integration-test/1.0",
	Location:  "Berlin, DE",
}

func TestSessionCreatePersistsRowAndCacheMirror(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "alice@example.com", "alice", "secret-pw", false)

	_, refreshToken, err := env.tokens.IssueAuthTokens(user)
	require.NoError(t, err)

	session, sessionToken, err := env.sessions.Create(ctx, env.repo, user, refreshToken, testMeta)
	require.NoError(t, err)

	stored := env.repo.sessionByID(session.ID.String())
	require.NotNil(t, stored)
	assert.Equal(t, user.ID, stored.UserID)
	assert.Equal(t, refreshToken, stored.Token)
	assert.Equal(t, testMeta.IPAddress, stored.IPAddress)
	assert.False(t, stored.Removed)
	assert.WithinDuration(t, time.Now().Add(env.config.SessionDuration), stored.ExpiresAt, 5*time.Second)

	claims, err := env.tokens.VerifySession(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID.String(), claims.SessionID)

	raw, err := env.cache.Get(ctx, sessionToken)
	require.NoError(t, err)
	var payload SessionPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.Equal(t, session.ID, payload.ID)
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, testMeta.UserAgent, payload.UserAgent)
	assert.Equal(t, testMeta.Location, payload.Location)
}

func TestSessionCacheMirrorExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "bob@example.com", "", "secret-pw", false)

	_, refreshToken, err := env.tokens.IssueAuthTokens(user)
	require.NoError(t, err)
	session, sessionToken, err := env.sessions.Create(ctx, env.repo, user, refreshToken, testMeta)
	require.NoError(t, err)

	env.redis.FastForward(env.config.SessionDuration + time.Second)

	// The mirror is gone but the database row remains authoritative.
	_, err = env.cache.Get(ctx, sessionToken)
	assert.Error(t, err)
	assert.NotNil(t, env.repo.sessionByID(session.ID.String()))
}

func TestFindByRefreshTokenSkipsRemovedSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "carol@example.com", "carol", "secret-pw", false)

	_, refreshToken, err := env.tokens.IssueAuthTokens(user)
	require.NoError(t, err)
	session, sessionToken, err := env.sessions.Create(ctx, env.repo, user, refreshToken, testMeta)
	require.NoError(t, err)

	found, err := env.sessions.FindByRefreshToken(ctx, env.repo, refreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.ID, found.ID)

	require.NoError(t, env.sessions.Invalidate(ctx, env.repo, found, sessionToken))

	_, err = env.sessions.FindByRefreshToken(ctx, env.repo, refreshToken)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionInvalidateMarksRowAndDropsMirror(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := createUser(t, env, "dave@example.com", "dave", "secret-pw", false)

	_, refreshToken, err := env.tokens.IssueAuthTokens(user)
	require.NoError(t, err)
	session, sessionToken, err := env.sessions.Create(ctx, env.repo, user, refreshToken, testMeta)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Invalidate(ctx, env.repo, session, sessionToken))

	stored := env.repo.sessionByID(session.ID.String())
	require.NotNil(t, stored)
	assert.True(t, stored.Removed)
	require.NotNil(t, stored.RTime)
	assert.WithinDuration(t, time.Now(), stored.ExpiresAt, 5*time.Second)

	_, err = env.cache.Get(ctx, sessionToken)
	assert.Error(t, err)
}
