package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/config"
	"go.uber.org/zap"
)

const passwordResetSubject = "Password Reset Request"

const passwordResetTemplate = `Hello %s,

We received a request to reset the password for your account.
Use the link below to choose a new password:

%s

This link expires in %s. If you did not request a password reset, you can ignore this email.
`

// PasswordResetMailer turns a reset token into a link and mails it
type PasswordResetMailer struct {
	baseURL string
	ttl     time.Duration
	sender  domain.EmailSender
	logger  *zap.Logger
}

var _ domain.PasswordResetSender = (*PasswordResetMailer)(nil)

func NewPasswordResetMailer(cfg *config.Config, sender domain.EmailSender, logger *zap.Logger) *PasswordResetMailer {
	return &PasswordResetMailer{
		baseURL: strings.TrimRight(cfg.AppBaseURL, "/"),
		ttl:     cfg.JWTPasswordResetTTL,
		sender:  sender,
		logger:  logger,
	}
}

// ResetLink returns <base>/reset-password?token=<token>
func (m *PasswordResetMailer) ResetLink(token string) string {
	return m.baseURL + config.DefaultPasswordResetRoute + "?token=" + url.QueryEscape(token)
}

func (m *PasswordResetMailer) SendPasswordResetEmail(ctx context.Context, user *domain.User, token string) error {
	name := user.Name
	if name == "" {
		name = user.Email
	}
	body := fmt.Sprintf(passwordResetTemplate, name, m.ResetLink(token), m.ttl)

	if err := m.sender.Send(ctx, user.Email, passwordResetSubject, body); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	m.logger.Debug("Password reset email dispatched", zap.Int64("user_id", user.ID))
	return nil
}
