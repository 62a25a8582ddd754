package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginResult is what a successful login hands back to the transport
// layer.
type LoginResult struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	SessionToken string
}

// Service composes the throttle, hasher, token issuer and session
// store into the four user-facing operations. Each operation runs its
// durable writes inside one repository transaction.
type Service struct {
	log        *zap.Logger
	repository Repository
	hasher     *PasswordHasher
	tokens     *TokenService
	throttle   *LoginThrottle
	sessions   *SessionStore
	mailer     PasswordResetMailer
}

func NewService(
	log *zap.Logger,
	repo Repository,
	hasher *PasswordHasher,
	tokens *TokenService,
	throttle *LoginThrottle,
	sessions *SessionStore,
	mailer PasswordResetMailer,
) *Service {
	return &Service{
		log:        log,
		repository: repo,
		hasher:     hasher,
		tokens:     tokens,
		throttle:   throttle,
		sessions:   sessions,
		mailer:     mailer,
	}
}

// Login authenticates by email or username. Every failure, the
// throttle block included, records a failed attempt for the identifier
// before the error goes back out. Unclassified failures leave as
// ErrLogin.
func (s *Service) Login(ctx context.Context, email, username, password string, meta ClientMeta) (*LoginResult, error) {
	identifier := email
	if identifier == "" {
		identifier = username
	}

	result, err := s.login(ctx, identifier, password, meta)
	if err != nil {
		if recordErr := s.throttle.RecordFailure(ctx, identifier); recordErr != nil {
			s.log.Error("failed to record login failure",
				zap.String("identifier", identifier),
				zap.Error(recordErr))
		}
		if IsClassified(err) {
			return nil, err
		}
		s.log.Error("login failed",
			zap.String("identifier", identifier),
			zap.Error(err))
		return nil, ErrLogin
	}
	return result, nil
}

func (s *Service) login(ctx context.Context, identifier, password string, meta ClientMeta) (*LoginResult, error) {
	if err := s.throttle.Check(ctx, identifier); err != nil {
		return nil, err
	}

	var result *LoginResult
	err := s.repository.Transact(ctx, func(repo Repository) error {
		user, err := repo.GetUserByIdentifier(ctx, identifier)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				// Logged distinctly, but the caller only ever sees an
				// undifferentiated unauthenticated failure.
				s.log.Warn("user not found for login",
					zap.String("identifier", identifier))
				return ErrInvalidEmailUsername
			}
			return err
		}

		valid, err := s.hasher.Verify(user.Password, password)
		if err != nil {
			return err
		}
		if !valid {
			s.log.Warn("invalid password",
				zap.String("user_id", user.ID.String()),
				zap.String("email", user.Email))
			return ErrInvalidPassword
		}

		accessToken, refreshToken, err := s.tokens.IssueAuthTokens(user)
		if err != nil {
			return err
		}

		_, sessionToken, err := s.sessions.Create(ctx, repo, user, refreshToken, meta)
		if err != nil {
			return err
		}

		result = &LoginResult{
			UserID:       user.ID.String(),
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			SessionToken: sessionToken,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Signup registers a new unverified account. The existence check does
// not filter removed users: a soft-removed account still owns its
// email.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	err := s.repository.Transact(ctx, func(repo Repository) error {
		existing, err := repo.GetUserByEmail(ctx, email)
		if err == nil {
			s.log.Warn("signup user already exists",
				zap.String("email", existing.Email))
			return ErrUserExists
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		return repo.CreateUser(ctx, &User{
			ID:       uuid.New(),
			Email:    email,
			Password: hash,
		})
	})
	if err != nil {
		if IsClassified(err) {
			return err
		}
		s.log.Error("signup failed", zap.String("email", email), zap.Error(err))
		return ErrSignup
	}
	return nil
}

// Logout tears down one session. The access token must carry the
// refresh token it was minted with; the two user ids cross-check the
// caller's authority over the session. Verification order is access ->
// embedded refresh -> session handle.
func (s *Service) Logout(ctx context.Context, accessToken, sessionToken string) error {
	accessClaims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return err
	}

	refreshClaims, err := s.tokens.VerifyRefresh(accessClaims.RefreshToken)
	if err != nil {
		return err
	}

	if accessClaims.UserID != refreshClaims.UserID {
		s.log.Warn("access and refresh token user ids do not match",
			zap.String("access_user_id", accessClaims.UserID),
			zap.String("refresh_user_id", refreshClaims.UserID))
		return ErrLogoutNotAllowed
	}

	return s.repository.Transact(ctx, func(repo Repository) error {
		session, err := s.sessions.FindByRefreshToken(ctx, repo, accessClaims.RefreshToken)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}

		sessionClaims, verifyErr := s.tokens.VerifySession(sessionToken)
		if verifyErr != nil {
			return verifyErr
		}

		if session == nil || errors.Is(err, ErrSessionNotFound) || sessionClaims.SessionID != session.ID.String() {
			return ErrLogoutSessionInvalid
		}

		return s.sessions.Invalidate(ctx, repo, session, sessionToken)
	})
}

// ForgotPassword never reveals whether the email exists: the caller
// gets the same acknowledgment either way, and internal failures are
// only logged.
func (s *Service) ForgotPassword(ctx context.Context, email string) {
	user, err := s.repository.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Error("forgot password lookup failed",
				zap.String("email", email),
				zap.Error(err))
		}
		return
	}

	if err := s.mailer.SendReset(ctx, user.ID.String(), user.Email); err != nil {
		s.log.Error("failed to trigger password reset",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
