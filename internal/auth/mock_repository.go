package auth

import (
	"context"
	"sync"
)

type mockRepository struct {
	users    map[string]*User        // keyed by user id
	sessions map[string]*UserSession // keyed by session id
	mu       sync.RWMutex
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:    make(map[string]*User),
		sessions: make(map[string]*UserSession),
	}
}

func (r *mockRepository) CreateUser(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID.String()] = &clone
	return nil
}

func (r *mockRepository) GetUserByIdentifier(_ context.Context, identifier string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Removed {
			continue
		}
		if u.Email == identifier || (u.Username != nil && *u.Username == identifier) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// No removed filter: a soft-removed account still owns its email.
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *mockRepository) CreateSession(_ context.Context, session *UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *session
	r.sessions[session.ID.String()] = &clone
	return nil
}

func (r *mockRepository) GetSessionByToken(_ context.Context, token string) (*UserSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sessions {
		if s.Token == token && !s.Removed {
			clone := *s
			return &clone, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (r *mockRepository) UpdateSession(_ context.Context, session *UserSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID.String()]; !ok {
		return ErrSessionNotFound
	}
	clone := *session
	r.sessions[session.ID.String()] = &clone
	return nil
}

// Transact runs fn against the same store. The mock has no
// transactional isolation; tests only need the call shape.
func (r *mockRepository) Transact(_ context.Context, fn func(Repository) error) error {
	return fn(r)
}

// sessionByID is a test helper for asserting durable state.
func (r *mockRepository) sessionByID(id string) *UserSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil
	}
	clone := *session
	return &clone
}
