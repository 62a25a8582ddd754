package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/PiyushJZ/streamly-auth-service/internal/cache"
)

// Fixed throttle policy.
const (
	maxLoginAttempts = 3
	loginBlockWindow = 30 * time.Minute
)

// LoginThrottle counts failed logins per identifier in the cache. The
// cache is the single source of truth; concurrent check/record pairs
// for one identifier may overshoot the limit transiently, so the bound
// is soft.
type LoginThrottle struct {
	cache *cache.Cache
	log   *zap.Logger
}

func NewLoginThrottle(c *cache.Cache, log *zap.Logger) *LoginThrottle {
	return &LoginThrottle{cache: c, log: log}
}

// Check passes silently while the identifier has no counter or the
// count is within the limit.
func (t *LoginThrottle) Check(ctx context.Context, identifier string) error {
	value, err := t.cache.Get(ctx, identifier)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading login attempts: %w", err)
	}

	attempts, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parsing login attempts: %w", err)
	}

	if attempts > maxLoginAttempts {
		t.log.Warn("login blocked, attempt limit reached",
			zap.String("identifier", identifier),
			zap.Int("attempts", attempts))
		return ErrLoginAttemptsLimitReached
	}
	return nil
}

// RecordFailure bumps the counter and restarts the 30 minute window.
// A missing counter starts at 1 before the bump, so the first failure
// stores 2 and the third stores 4, which trips Check on the fourth
// attempt. Successful logins never clear the counter.
func (t *LoginThrottle) RecordFailure(ctx context.Context, identifier string) error {
	attempts := 1
	value, err := t.cache.Get(ctx, identifier)
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("reading login attempts: %w", err)
	}
	if err == nil {
		if attempts, err = strconv.Atoi(value); err != nil {
			return fmt.Errorf("parsing login attempts: %w", err)
		}
	}

	return t.cache.Set(ctx, identifier, strconv.Itoa(attempts+1), loginBlockWindow)
}
