package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestAuthenticationMiddleware(t *testing.T) {
	tokens := NewTokenService(newTestConfig())
	middleware := NewAuthMiddleware(tokens)
	user := testUser()

	accessToken, _, err := tokens.IssueAuthTokens(user)
	require.NoError(t, err)

	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", accessToken))

	authedCtx, err := middleware.AuthenticationMiddleware(ctx)
	require.NoError(t, err)

	userID, err := GetUserFromContext(authedCtx)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), userID)
}

func TestAuthenticationMiddlewareRejections(t *testing.T) {
	middleware := NewAuthMiddleware(NewTokenService(newTestConfig()))

	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "no metadata", ctx: context.Background()},
		{name: "no authorization", ctx: metadata.NewIncomingContext(context.Background(), metadata.MD{})},
		{name: "invalid token", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "garbage"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := middleware.AuthenticationMiddleware(tt.ctx)
			assert.Equal(t, codes.Unauthenticated, status.Code(err))
		})
	}
}

func TestGetUserFromContextMissing(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)
}
