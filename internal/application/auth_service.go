package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/jwt"
	"github.com/manorfm/saas-admin/internal/infrastructure/metrics"
	"github.com/manorfm/saas-admin/internal/infrastructure/password"
	"go.uber.org/zap"
)

// TokenIssuer signs session and password reset tokens
type TokenIssuer interface {
	IssueAccessAndRefresh(user *domain.User) (*domain.TokenPair, error)
	IssuePasswordResetToken(user *domain.User, ttl time.Duration) (string, error)
}

// TokenVerifier checks presented tokens and resolves their user
type TokenVerifier interface {
	Verify(ctx context.Context, token string, required domain.Purpose) jwt.Verification
	VerifyPasswordResetToken(ctx context.Context, token string) jwt.Verification
}

type AuthService struct {
	userRepo    domain.UserRepository
	issuer      TokenIssuer
	verifier    TokenVerifier
	resetSender domain.PasswordResetSender
	metrics     *metrics.Metrics
	accessTTL   time.Duration
	logger      *zap.Logger
}

var _ domain.AuthService = (*AuthService)(nil)

func NewAuthService(
	userRepo domain.UserRepository,
	issuer TokenIssuer,
	verifier TokenVerifier,
	resetSender domain.PasswordResetSender,
	m *metrics.Metrics,
	accessTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		issuer:      issuer,
		verifier:    verifier,
		resetSender: resetSender,
		metrics:     m,
		accessTTL:   accessTTL,
		logger:      logger,
	}
}

// Login checks the credentials and issues a token pair. Unknown emails and
// wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, passwordStr string) (*domain.AuthTokens, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			password.CheckAgainstDummy(passwordStr)
			s.metrics.Login("invalid_credentials")
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error("failed to load user for login", zap.Error(err))
		s.metrics.Login("error")
		return nil, err
	}

	if err := password.CheckPassword(passwordStr, user.Password); err != nil {
		s.metrics.Login("invalid_credentials")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			s.logger.Warn("stored password hash is unusable", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.issue(user)
	if err != nil {
		s.metrics.Login("error")
		return nil, err
	}
	tokens.User = user

	s.metrics.Login("success")
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return tokens, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// not revoked and stays usable until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	user, err := s.authenticate(ctx, refreshToken, domain.PurposeRefresh)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Authenticate resolves the user behind an access token. Token failures are
// collapsed into domain.ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.authenticate(ctx, accessToken, domain.PurposeAccess)
}

func (s *AuthService) authenticate(ctx context.Context, token string, purpose domain.Purpose) (*domain.User, error) {
	res := s.verifier.Verify(ctx, token, purpose)
	if res.Valid() {
		return res.User, nil
	}

	if domain.IsTokenError(res.Err) || errors.Is(res.Err, domain.ErrUserNotFound) {
		s.logger.Info("token rejected",
			zap.String("purpose", string(purpose)),
			zap.String("kind", failureKind(res.Err)),
			zap.String("jti", jtiOf(res)))
		return nil, domain.ErrUnauthorized
	}
	return nil, res.Err
}

// Register creates a user with the default role
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := password.HashPassword(req.Password)
	if errors.Is(err, domain.ErrPasswordTooLong) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	user := domain.NewUser(strings.TrimSpace(req.Name), email, hashedPassword)
	user.Phone = req.Phone
	user.Bio = req.Bio
	user.OrgID = req.OrgID
	user.TenantID = req.TenantID

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, domain.ErrInternal
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// RequestPasswordReset mails a reset link when email belongs to a user. The
// caller sees success either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.metrics.PasswordReset("request", "unknown_email")
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.metrics.PasswordReset("request", "error")
		s.logger.Error("failed to load user for password reset", zap.Error(err))
		return nil
	}

	token, err := s.issuer.IssuePasswordResetToken(user, 0)
	if err != nil {
		s.metrics.PasswordReset("request", "error")
		s.logger.Error("failed to issue password reset token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}

	if err := s.resetSender.SendPasswordResetEmail(ctx, user, token); err != nil {
		s.metrics.PasswordReset("request", "delivery_failed")
		s.logger.Error("failed to send password reset email", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}

	s.metrics.PasswordReset("request", "sent")
	return nil
}

// VerifyPasswordResetToken checks a reset token. Strict mode returns the
// failure kind; silent mode logs it and returns a nil user with a nil error.
func (s *AuthService) VerifyPasswordResetToken(ctx context.Context, token string, strict bool) (*domain.User, error) {
	res := s.verifier.VerifyPasswordResetToken(ctx, token)
	if res.Valid() {
		return res.User, nil
	}
	if strict {
		return nil, res.Err
	}
	s.logger.Info("password reset token rejected",
		zap.String("kind", failureKind(res.Err)))
	return nil, nil
}

// ResetPassword verifies token strictly and overwrites the user's password.
// The token is not consumed.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.VerifyPasswordResetToken(ctx, token, true)
	if err != nil {
		s.metrics.PasswordReset("confirm", failureKind(err))
		return err
	}

	hashedPassword, err := password.HashPassword(newPassword)
	if errors.Is(err, domain.ErrPasswordTooLong) {
		s.metrics.PasswordReset("confirm", "error")
		return err
	}
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		s.metrics.PasswordReset("confirm", "error")
		return fmt.Errorf("%w: %v", domain.ErrCredentialUpdateFailed, err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", zap.Int64("user_id", user.ID), zap.Error(err))
		s.metrics.PasswordReset("confirm", "error")
		return fmt.Errorf("%w: %v", domain.ErrCredentialUpdateFailed, err)
	}

	s.metrics.PasswordReset("confirm", "success")
	s.logger.Info("password reset", zap.Int64("user_id", user.ID))
	return nil
}

func (s *AuthService) issue(user *domain.User) (*domain.AuthTokens, error) {
	pair, err := s.issuer.IssueAccessAndRefresh(user)
	if err != nil {
		s.logger.Error("failed to issue tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, domain.ErrInternal
	}
	return &domain.AuthTokens{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    domain.TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// failureKind is the stable code of err, safe to log and to use as a metric label
func failureKind(err error) string {
	if de, ok := domain.AsError(err); ok {
		return de.GetCode()
	}
	return "error"
}

func jtiOf(res jwt.Verification) string {
	if res.Claims == nil {
		return ""
	}
	return res.Claims.ID
}
