package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PiyushJZ/streamly-auth-service/internal/cache"
	"github.com/PiyushJZ/streamly-auth-service/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		AccessSecret:    "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		SessionSecret:   "test-session-secret",
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 30 * 24 * time.Hour,
		SessionDuration: 30 * 24 * time.Hour,
		Argon: config.ArgonConfig{
			MemoryKB:    8 * 1024,
			TimeCost:    1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

type testEnv struct {
	config   *config.AuthConfig
	repo     *mockRepository
	redis    *miniredis.Miniredis
	cache    *cache.Cache
	hasher   *PasswordHasher
	tokens   *TokenService
	throttle *LoginThrottle
	sessions *SessionStore
	service  *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := newTestConfig()
	log := newTestLogger(t)
	repo := newMockRepository()
	c := cache.NewWithClient(rdb)
	hasher := NewPasswordHasher(cfg.Argon)
	tokens := NewTokenService(cfg)
	throttle := NewLoginThrottle(c, log)
	sessions := NewSessionStore(tokens, c, log, cfg.SessionDuration)
	service := NewService(log, repo, hasher, tokens, throttle, sessions, NewNoopResetMailer(log))

	return &testEnv{
		config:   cfg,
		repo:     repo,
		redis:    mr,
		cache:    c,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		sessions: sessions,
		service:  service,
	}
}

func newTestHandler(t *testing.T) (*Handler, *testEnv) {
	env := newTestEnv(t)
	return NewHandler(env.service, newTestLogger(t)), env
}

// createUser registers a user directly through the repository with a
// real password hash.
func createUser(t *testing.T, env *testEnv, email, username, password string, removed bool) *User {
	t.Helper()

	hash, err := env.hasher.Hash(password)
	require.NoError(t, err)

	user := &User{
		ID:       uuid.New(),
		Email:    email,
		Password: hash,
		Removed:  removed,
	}
	if username != "" {
		user.Username = &username
	}
	require.NoError(t, env.repo.CreateUser(context.Background(), user))
	return user
}
