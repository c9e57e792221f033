package jwt

import (
	"context"
	"errors"
	"fmt"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Verification is the outcome of checking a token: either a resolved user or
// the kind of failure. Callers decide whether the kind is shown or hidden.
type Verification struct {
	User   *domain.User
	Claims *Claims
	KID    string
	Err    error
}

// Valid reports whether the token resolved to a user
func (v Verification) Valid() bool {
	return v.Err == nil && v.User != nil
}

func invalid(err error) Verification {
	return Verification{Err: err}
}

// Verifier decodes presented tokens, checks their claims and resolves the user
type Verifier struct {
	keys     *KeyRegistry
	codec    *Codec
	settings Settings
	users    domain.UserRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewVerifier(keys *KeyRegistry, codec *Codec, settings Settings, users domain.UserRepository, m *metrics.Metrics, logger *zap.Logger) *Verifier {
	return &Verifier{
		keys:     keys,
		codec:    codec,
		settings: settings,
		users:    users,
		metrics:  m,
		logger:   logger,
	}
}

// DecodeWithAnyKey tries every registered key in declaration order.
//
// A signature mismatch moves on to the next key. Any other failure (expired,
// not yet valid, malformed) comes from a key that accepted the token, or from
// the token's structure, and is returned as is without trying further keys.
func (v *Verifier) DecodeWithAnyKey(token string) (*Claims, string, error) {
	if token == "" {
		return nil, "", domain.ErrTokenMissing
	}
	if err := v.codec.CheckAlgorithm(token); err != nil {
		return nil, "", err
	}

	// Deliberate: a bad signature is not final here. Stopping on it would
	// reject every token signed under a key other than the first one.
	var lastErr error
	for _, key := range v.keys.AllKeys() {
		claims := &Claims{}
		err := v.codec.Decode(token, key.Secret, claims)
		if err == nil {
			return claims, key.KID, nil
		}
		if errors.Is(err, domain.ErrSignatureInvalid) {
			lastErr = err
			continue
		}
		return nil, "", err
	}

	if lastErr != nil {
		return nil, "", domain.ErrSignatureInvalid
	}
	return nil, "", domain.ErrTokenUndecodable
}

// Verify checks token against every registered key and requires the given
// purpose. An empty purpose accepts any.
func (v *Verifier) Verify(ctx context.Context, token string, required domain.Purpose) Verification {
	claims, kid, err := v.DecodeWithAnyKey(token)
	if err != nil {
		return v.record(required, invalid(err))
	}

	res := v.resolve(ctx, claims, required)
	res.KID = kid
	return v.record(required, res)
}

// VerifyPasswordResetToken decodes with the primary secret only and requires
// the password_reset purpose.
func (v *Verifier) VerifyPasswordResetToken(ctx context.Context, token string) Verification {
	if token == "" {
		return v.record(domain.PurposePasswordReset, invalid(domain.ErrTokenMissing))
	}
	if err := v.codec.CheckAlgorithm(token); err != nil {
		return v.record(domain.PurposePasswordReset, invalid(err))
	}

	claims := &Claims{}
	if err := v.codec.Decode(token, v.keys.PrimaryKey(), claims); err != nil {
		return v.record(domain.PurposePasswordReset, invalid(err))
	}
	return v.record(domain.PurposePasswordReset, v.resolve(ctx, claims, domain.PurposePasswordReset))
}

// resolve runs the semantic claim checks and loads the user behind uid
func (v *Verifier) resolve(ctx context.Context, claims *Claims, required domain.Purpose) Verification {
	if err := v.checkClaims(claims, required); err != nil {
		return Verification{Claims: claims, Err: err}
	}

	user, err := v.users.FindByID(ctx, *claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			v.logger.Error("Failed to load token user",
				zap.Int64("uid", *claims.UserID),
				zap.Error(err))
			err = fmt.Errorf("load token user: %w", err)
		}
		return Verification{Claims: claims, Err: err}
	}
	if user == nil {
		return Verification{Claims: claims, Err: domain.ErrUserNotFound}
	}
	return Verification{User: user, Claims: claims}
}

// checkClaims enforces iss and aud when the token carries them, a known
// purpose matching the required one if any, and the presence of uid.
func (v *Verifier) checkClaims(claims *Claims, required domain.Purpose) error {
	if claims.Issuer != "" && claims.Issuer != v.settings.Issuer {
		return domain.ErrInvalidIssuer
	}
	if claims.Audience != "" && claims.Audience != v.settings.Audience {
		return domain.ErrInvalidAudience
	}
	if !claims.Purpose.Valid() {
		return domain.ErrInvalidPurpose
	}
	if required != "" && claims.Purpose != required {
		return domain.ErrInvalidPurpose
	}
	if claims.UserID == nil {
		return domain.ErrMissingSubject
	}
	return nil
}

func (v *Verifier) record(purpose domain.Purpose, res Verification) Verification {
	label := string(purpose)
	if label == "" {
		label = "any"
	}
	result := "valid"
	if !res.Valid() {
		result = "error"
		if de, ok := domain.AsError(res.Err); ok {
			result = de.GetCode()
		}
	}
	v.metrics.TokenVerified(label, result)
	return res
}
