package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Issuer builds and signs the claim sets for every token purpose
type Issuer struct {
	keys     *KeyRegistry
	codec    *Codec
	settings Settings
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewIssuer(keys *KeyRegistry, codec *Codec, settings Settings, m *metrics.Metrics, logger *zap.Logger) *Issuer {
	return &Issuer{
		keys:     keys,
		codec:    codec,
		settings: settings,
		metrics:  m,
		logger:   logger,
	}
}

// IssueAccessAndRefresh signs an access and a refresh token for user with the
// active key. Both share subject, issuer and audience and get their own jti.
func (i *Issuer) IssueAccessAndRefresh(user *domain.User) (*domain.TokenPair, error) {
	key := i.keys.ActiveKey()
	now := i.codec.Now()

	access, err := i.signSession(user, domain.PurposeAccess, i.settings.AccessTTL, key, now)
	if err != nil {
		return nil, err
	}
	refresh, err := i.signSession(user, domain.PurposeRefresh, i.settings.RefreshTTL, key, now)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *Issuer) signSession(user *domain.User, purpose domain.Purpose, ttl time.Duration, key SigningKey, now time.Time) (string, error) {
	jti, err := NewJTI()
	if err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}
	uid := user.ID
	claims := &Claims{
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    i.settings.Issuer,
		Audience:  i.settings.Audience,
		Subject:   user.Subject(),
		UserID:    &uid,
		Purpose:   purpose,
	}

	token, err := i.codec.Encode(claims, key.Secret, key.KID)
	if err != nil {
		i.logger.Error("Failed to sign token",
			zap.String("purpose", string(purpose)),
			zap.String("kid", key.KID),
			zap.Error(err))
		return "", err
	}

	i.metrics.TokenIssued(string(purpose))
	i.logger.Debug("Token issued",
		zap.String("purpose", string(purpose)),
		zap.String("jti", jti),
		zap.String("kid", key.KID),
		zap.Int64("uid", uid))
	return token, nil
}

// IssuePasswordResetToken signs a short lived password reset token. A ttl of
// zero uses the configured reset lifetime. The token is signed with the
// primary secret and carries no kid.
func (i *Issuer) IssuePasswordResetToken(user *domain.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.settings.PasswordResetTTL
	}
	return i.IssueGenericToken(user, ttl, map[string]any{
		"purpose": string(domain.PurposePasswordReset),
	})
}

// IssueGenericToken signs {iat, exp, uid} merged with extra (extra wins) using
// the primary secret. A ttl of zero uses the configured generic lifetime.
func (i *Issuer) IssueGenericToken(user *domain.User, ttl time.Duration, extra map[string]any) (string, error) {
	if ttl <= 0 {
		ttl = i.settings.GenericTTL
	}
	now := i.codec.Now()

	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"uid": user.ID,
	}
	for k, v := range extra {
		claims[k] = v
	}

	token, err := i.codec.Encode(claims, i.keys.PrimaryKey(), "")
	if err != nil {
		i.logger.Error("Failed to sign token", zap.Error(err))
		return "", err
	}

	purpose, _ := claims["purpose"].(string)
	if purpose == "" {
		purpose = "generic"
	}
	i.metrics.TokenIssued(purpose)
	return token, nil
}
