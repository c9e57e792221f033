package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manorfm/saas-admin/internal/domain"
)

// Codec signs and parses compact HMAC tokens against a single secret
type Codec struct {
	method  *jwt.SigningMethodHMAC
	allowed []string
	leeway  time.Duration
	now     func() time.Time
}

// NewCodec builds a codec for the configured algorithm. now may be nil, in
// which case the wall clock is used.
func NewCodec(settings Settings, now func() time.Time) (*Codec, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Codec{
		method:  hmacMethod(settings.Algorithm),
		allowed: append([]string(nil), settings.AllowedAlgorithms...),
		leeway:  settings.Leeway,
		now:     now,
	}, nil
}

// Now returns the codec clock's current time
func (c *Codec) Now() time.Time {
	return c.now()
}

// Encode signs claims with secret. A non-empty kid is placed in the header.
func (c *Codec) Encode(claims jwt.Claims, secret []byte, kid string) (string, error) {
	token := jwt.NewWithClaims(c.method, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// CheckAlgorithm inspects the header only and rejects tokens whose alg is not
// on the allow-list. It must run before any key is tried.
func (c *Codec) CheckAlgorithm(tokenString string) error {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMalformedToken, err)
	}
	alg, _ := token.Header["alg"].(string)
	for _, a := range c.allowed {
		if a == alg {
			return nil
		}
	}
	return domain.ErrAlgorithmNotAllowed
}

// HeaderKID returns the kid declared in the token header, if any
func (c *Codec) HeaderKID(tokenString string) string {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	kid, _ := token.Header["kid"].(string)
	return kid
}

// Decode verifies the signature with secret, then checks exp, nbf and iat
// against the codec clock with the configured leeway, filling claims.
// The signature is always checked before any time based claim. Only the
// configured algorithm verifies, even when the allow-list names others.
func (c *Codec) Decode(tokenString string, secret []byte, claims jwt.Claims) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods(c.allowed),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrAlgorithmNotAllowed
		}
		if t.Method.Alg() != c.method.Alg() {
			return nil, domain.ErrAlgorithmNotAllowed
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", classify(err), err)
	}
	return nil
}

// classify maps a parser error onto the domain taxonomy
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrAlgorithmNotAllowed):
		return domain.ErrAlgorithmNotAllowed
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return domain.ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.ErrTokenUndecodable
	default:
		return domain.ErrMalformedToken
	}
}
