package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/PiyushJZ/streamly-auth-service/internal/config"
)

// RefreshClaims carries only the user id. The refresh token doubles as
// the session's durable key.
type RefreshClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// AccessClaims carries the user profile plus the refresh token it was
// minted with. Logout cross-checks the embedded token against the
// access token's own user id.
type AccessClaims struct {
	UserID       string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Verified     bool   `json:"verified"`
	RefreshToken string `json:"refreshToken"`
	jwt.RegisteredClaims
}

// SessionClaims is an opaque, verifiable handle over a session row id.
type SessionClaims struct {
	SessionID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the three token types, each under
// its own secret.
type TokenService struct {
	config *config.AuthConfig
}

func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{config: cfg}
}

// IssueAuthTokens mints the refresh token first and embeds it into the
// access token's claims.
func (t *TokenService) IssueAuthTokens(user *User) (accessToken, refreshToken string, err error) {
	now := time.Now()

	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, &RefreshClaims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.RefreshDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(t.config.RefreshSecret))
	if err != nil {
		return "", "", err
	}

	var username string
	if user.Username != nil {
		username = *user.Username
	}

	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		UserID:       user.ID.String(),
		Email:        user.Email,
		Username:     username,
		Verified:     user.Verified,
		RefreshToken: refreshToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.AccessDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(t.config.AccessSecret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (t *TokenService) IssueSessionToken(sessionID uuid.UUID) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &SessionClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.SessionDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(t.config.SessionSecret))
}

func (t *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.verify(tokenString, t.config.AccessSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.verify(tokenString, t.config.RefreshSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenService) VerifySession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.verify(tokenString, t.config.SessionSecret, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// verify folds signature, expiry and malformed-claims failures into
// ErrTokenInvalid.
func (t *TokenService) verify(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
