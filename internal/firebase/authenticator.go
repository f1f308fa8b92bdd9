package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// Authenticator adapts the Firebase Auth client to the credential backend
// the auth viewmodel expects.
type Authenticator struct {
	client *auth.Client
	logger *zap.Logger
}

func NewAuthenticator(client *auth.Client, logger *zap.Logger) *Authenticator {
	return &Authenticator{client: client, logger: logger}
}

// CreateUser registers an email/password account and returns its UID.
func (a *Authenticator) CreateUser(ctx context.Context, email, password string) (string, error) {
	record, err := a.client.CreateUser(ctx, (&auth.UserToCreate{}).
		Email(email).
		Password(password))
	if err != nil {
		return "", fmt.Errorf("create auth user: %w", err)
	}
	return record.UID, nil
}

// DeleteUser removes an auth record, used to roll back a failed
// registration.
func (a *Authenticator) DeleteUser(ctx context.Context, uid string) error {
	if err := a.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete auth user %s: %w", uid, err)
	}
	return nil
}

// SendPasswordReset generates the reset link for the account. Delivery is
// handled by the Firebase-managed email templates; the link is logged for
// environments where those are disabled.
func (a *Authenticator) SendPasswordReset(ctx context.Context, email string) error {
	link, err := a.client.PasswordResetLink(ctx, email)
	if err != nil {
		return fmt.Errorf("password reset link: %w", err)
	}
	a.logger.Debug("password reset link generated", zap.String("email", email), zap.String("link", link))
	return nil
}
