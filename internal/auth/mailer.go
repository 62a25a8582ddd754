package auth

import (
	"context"

	"go.uber.org/zap"
)

// PasswordResetMailer delivers password-reset instructions. Delivery
// is an external collaborator; the service only triggers it.
type PasswordResetMailer interface {
	SendReset(ctx context.Context, userID, email string) error
}

// noopResetMailer stands in until a real delivery channel is wired up.
type noopResetMailer struct {
	log *zap.Logger
}

func NewNoopResetMailer(log *zap.Logger) PasswordResetMailer {
	return &noopResetMailer{log: log}
}

// TODO: replace with the notification service client once the mail
// worker lands.
func (m *noopResetMailer) SendReset(_ context.Context, userID, email string) error {
	m.log.Info("password reset requested",
		zap.String("user_id", userID),
		zap.String("email", email))
	return nil
}
