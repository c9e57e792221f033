package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/config"
)

// Settings is the immutable token configuration shared by the codec, issuer and verifier
type Settings struct {
	Algorithm         string
	AllowedAlgorithms []string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	GenericTTL        time.Duration
	PasswordResetTTL  time.Duration
	Leeway            time.Duration
	Issuer            string
	Audience          string
}

// NewSettings copies the JWT options out of cfg and checks that the signing
// algorithm is an allowed HMAC variant.
func NewSettings(cfg *config.Config) (Settings, error) {
	s := Settings{
		Algorithm:         cfg.JWTAlgorithm,
		AllowedAlgorithms: append([]string(nil), cfg.JWTAllowedAlgorithms...),
		AccessTTL:         cfg.JWTAccessTTL,
		RefreshTTL:        cfg.JWTRefreshTTL,
		GenericTTL:        cfg.JWTGenericTTL,
		PasswordResetTTL:  cfg.JWTPasswordResetTTL,
		Leeway:            cfg.JWTLeeway,
		Issuer:            cfg.JWTIssuer,
		Audience:          cfg.JWTAudience,
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports a domain.ErrConfiguration for any setting tokens cannot be signed with
func (s Settings) Validate() error {
	if len(s.AllowedAlgorithms) == 0 {
		return fmt.Errorf("%w: allowed algorithms list is empty", domain.ErrConfiguration)
	}
	for _, alg := range s.AllowedAlgorithms {
		if hmacMethod(alg) == nil {
			return fmt.Errorf("%w: only HMAC algorithms are supported, got %q", domain.ErrConfiguration, alg)
		}
	}
	if !s.allows(s.Algorithm) {
		return fmt.Errorf("%w: algorithm %q is not in the allow-list", domain.ErrConfiguration, s.Algorithm)
	}
	if s.AccessTTL <= 0 || s.RefreshTTL <= 0 || s.GenericTTL <= 0 || s.PasswordResetTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", domain.ErrConfiguration)
	}
	if s.Leeway < 0 {
		return fmt.Errorf("%w: leeway must not be negative", domain.ErrConfiguration)
	}
	return nil
}

func (s Settings) allows(alg string) bool {
	for _, a := range s.AllowedAlgorithms {
		if a == alg {
			return true
		}
	}
	return false
}

func hmacMethod(alg string) *jwt.SigningMethodHMAC {
	switch alg {
	case jwt.SigningMethodHS256.Alg():
		return jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		return jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		return jwt.SigningMethodHS512
	}
	return nil
}
