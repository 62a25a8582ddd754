package auth

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	// UserContextKey carries the authenticated user id.
	UserContextKey contextKey = "user"
)

// AuthMiddleware authenticates protected RPCs from the authorization
// metadata by verifying the access token. The four auth RPCs
// themselves are public; this guards everything else the server may
// grow.
type AuthMiddleware struct {
	tokens *TokenService
}

func NewAuthMiddleware(tokens *TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) AuthenticationMiddleware(ctx context.Context) (context.Context, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing metadata")
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	claims, err := m.tokens.VerifyAccess(values[0])
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, ErrTokenInvalid.Error())
	}

	return context.WithValue(ctx, UserContextKey, claims.UserID), nil
}

// GetUserFromContext returns the authenticated user id stored by the
// middleware.
func GetUserFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(UserContextKey).(string)
	if !ok {
		return "", errors.New("user not found in context")
	}
	return userID, nil
}
