package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleCheckPassesWithoutCounter(t *testing.T) {
	env := newTestEnv(t)

	assert.NoError(t, env.throttle.Check(context.Background(), "fresh@example.com"))
}

func TestThrottleBlocksAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	identifier := "victim@example.com"

	for i := 0; i < 3; i++ {
		assert.NoError(t, env.throttle.Check(ctx, identifier))
		require.NoError(t, env.throttle.RecordFailure(ctx, identifier))
	}

	// The fourth attempt is refused before credentials are looked at.
	assert.ErrorIs(t, env.throttle.Check(ctx, identifier), ErrLoginAttemptsLimitReached)
}

func TestThrottleFirstFailureStoresTwo(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.throttle.RecordFailure(context.Background(), "a@example.com"))

	value, err := env.redis.Get("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "2", value)
}

func TestThrottleWindowExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	identifier := "blocked@example.com"

	for i := 0; i < 3; i++ {
		require.NoError(t, env.throttle.RecordFailure(ctx, identifier))
	}
	require.ErrorIs(t, env.throttle.Check(ctx, identifier), ErrLoginAttemptsLimitReached)

	env.redis.FastForward(30*time.Minute + time.Second)

	assert.NoError(t, env.throttle.Check(ctx, identifier))
}

func TestThrottleFailureRestartsWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	identifier := "persistent@example.com"

	require.NoError(t, env.throttle.RecordFailure(ctx, identifier))
	env.redis.FastForward(20 * time.Minute)
	require.NoError(t, env.throttle.RecordFailure(ctx, identifier))
	env.redis.FastForward(20 * time.Minute)

	// 40 minutes after the first failure the counter is still alive
	// because the second failure restarted the window.
	value, err := env.redis.Get(identifier)
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestThrottleCheckFailsOnCorruptCounter(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.redis.Set("odd@example.com", "not-a-number"))

	err := env.throttle.Check(context.Background(), "odd@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLoginAttemptsLimitReached)
}
