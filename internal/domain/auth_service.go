package domain

import (
	"context"
)

// AuthService is the set of operations the HTTP layer consumes
type AuthService interface {
	// Login checks credentials and issues an access/refresh pair
	Login(ctx context.Context, email, password string) (*AuthTokens, error)
	// Refresh exchanges a refresh token for a new pair
	Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error)
	// Register creates a new user
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	// Authenticate resolves the user behind an access token
	Authenticate(ctx context.Context, accessToken string) (*User, error)
	// RequestPasswordReset sends a reset link when the email belongs to a user
	RequestPasswordReset(ctx context.Context, email string) error
	// VerifyPasswordResetToken checks a reset token. In strict mode the failure
	// kind is returned; otherwise failures yield a nil user and a nil error.
	VerifyPasswordResetToken(ctx context.Context, token string, strict bool) (*User, error)
	// ResetPassword overwrites the password of the user behind a reset token
	ResetPassword(ctx context.Context, token, newPassword string) error
}
