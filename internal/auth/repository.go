package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	// GetUserByIdentifier matches a non-removed user whose email or
	// username equals the identifier.
	GetUserByIdentifier(ctx context.Context, identifier string) (*User, error)
	// GetUserByEmail matches by email only, removed users included.
	// Signup and forgot-password rely on seeing soft-removed accounts.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateSession(ctx context.Context, session *UserSession) error
	// GetSessionByToken matches the live (non-removed) session holding
	// the refresh token. There is at most one.
	GetSessionByToken(ctx context.Context, token string) (*UserSession, error)
	UpdateSession(ctx context.Context, session *UserSession) error
	// Transact runs fn against a repository bound to a single
	// database transaction.
	Transact(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateUser(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).
		Where("removed = ?", false).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) CreateSession(ctx context.Context, session *UserSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) GetSessionByToken(ctx context.Context, token string) (*UserSession, error) {
	var session UserSession
	err := r.db.WithContext(ctx).
		Where("token = ? AND removed = ?", token, false).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *repository) UpdateSession(ctx context.Context, session *UserSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *repository) Transact(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}
