package domain

import "context"

// EmailSender delivers a single message. Implementations live in infrastructure/email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PasswordResetSender delivers the reset link for a freshly issued reset token
type PasswordResetSender interface {
	SendPasswordResetEmail(ctx context.Context, user *User, token string) error
}
