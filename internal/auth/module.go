package auth

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/PiyushJZ/streamly-auth-service/internal/cache"
	"github.com/PiyushJZ/streamly-auth-service/internal/config"
)

// NewModule returns the auth module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			// Provide repository
			fx.Annotate(
				func(db *gorm.DB) Repository {
					return NewRepository(db)
				},
			),
			// Provide token service
			fx.Annotate(
				func(config *config.AppConfig) *TokenService {
					return NewTokenService(&config.Auth)
				},
			),
			// Provide password hasher
			fx.Annotate(
				func(config *config.AppConfig) *PasswordHasher {
					return NewPasswordHasher(config.Auth.Argon)
				},
			),
			// Provide login throttle
			fx.Annotate(
				func(c *cache.Cache, log *zap.Logger) *LoginThrottle {
					return NewLoginThrottle(c, log)
				},
			),
			// Provide session store
			fx.Annotate(
				func(config *config.AppConfig, tokens *TokenService, c *cache.Cache, log *zap.Logger) *SessionStore {
					return NewSessionStore(tokens, c, log, config.Auth.SessionDuration)
				},
			),
			// Provide reset mailer
			fx.Annotate(
				func(log *zap.Logger) PasswordResetMailer {
					return NewNoopResetMailer(log)
				},
			),
			// Provide service
			fx.Annotate(
				func(log *zap.Logger, repo Repository, hasher *PasswordHasher, tokens *TokenService, throttle *LoginThrottle, sessions *SessionStore, mailer PasswordResetMailer) *Service {
					return NewService(log, repo, hasher, tokens, throttle, sessions, mailer)
				},
			),
			// Provide handler
			fx.Annotate(
				func(svc *Service, log *zap.Logger) *Handler {
					return NewHandler(svc, log)
				},
			),
			// Provide middleware
			fx.Annotate(
				func(tokens *TokenService) *AuthMiddleware {
					return NewAuthMiddleware(tokens)
				},
			),
		),
	)
}
