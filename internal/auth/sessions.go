package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PiyushJZ/streamly-auth-service/internal/cache"
)

// SessionStore persists sessions and mirrors them into the cache. The
// database row is authoritative; the cache entry is a TTL-bounded
// projection that heals itself if the two ever diverge. Durable
// operations go through the Repository handed in by the caller, so
// they join the caller's transaction.
type SessionStore struct {
	tokens *TokenService
	cache  *cache.Cache
	log    *zap.Logger
	ttl    time.Duration
}

func NewSessionStore(tokens *TokenService, c *cache.Cache, log *zap.Logger, ttl time.Duration) *SessionStore {
	return &SessionStore{
		tokens: tokens,
		cache:  c,
		log:    log,
		ttl:    ttl,
	}
}

// Create persists the session row, signs a session token over its id
// and mirrors the payload into the cache. All three steps must succeed
// before the session is usable.
func (s *SessionStore) Create(ctx context.Context, repo Repository, user *User, refreshToken string, meta ClientMeta) (*UserSession, string, error) {
	now := time.Now()
	session := &UserSession{
		ID:         uuid.New(),
		UserID:     user.ID,
		Token:      refreshToken,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Location:   meta.Location,
		ExpiresAt:  now.Add(s.ttl),
		LastUsedAt: now,
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("persisting session: %w", err)
	}

	sessionToken, err := s.tokens.IssueSessionToken(session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("signing session token: %w", err)
	}

	payload, err := json.Marshal(SessionPayload{
		ID:        session.ID,
		UserID:    user.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Location:  meta.Location,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encoding session payload: %w", err)
	}
	if err := s.cache.Set(ctx, sessionToken, string(payload), s.ttl); err != nil {
		return nil, "", fmt.Errorf("caching session: %w", err)
	}

	return session, sessionToken, nil
}

func (s *SessionStore) FindByRefreshToken(ctx context.Context, repo Repository, refreshToken string) (*UserSession, error) {
	return repo.GetSessionByToken(ctx, refreshToken)
}

// Invalidate marks the row removed and expired, then drops the cache
// mirror. The database update is authoritative; a failed cache delete
// is logged and the entry left to its TTL.
func (s *SessionStore) Invalidate(ctx context.Context, repo Repository, session *UserSession, sessionToken string) error {
	now := time.Now()
	session.Removed = true
	session.ExpiresAt = now
	session.RTime = &now
	if err := repo.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("removing session: %w", err)
	}

	if err := s.cache.Delete(ctx, sessionToken); err != nil {
		s.log.Error("failed to delete cached session",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	}
	return nil
}
