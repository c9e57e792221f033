package jwt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/manorfm/saas-admin/internal/domain"
)

// DefaultKID names the single key used when no rotation set is configured
const DefaultKID = "default"

// SigningKey is one HMAC secret and the kid it is advertised under
type SigningKey struct {
	KID    string
	Secret []byte
}

// KeyRegistry holds the signing keys loaded at startup. It is never mutated
// afterwards; rotation happens by redeploying with a new active kid while
// keeping the old keys for verification.
type KeyRegistry struct {
	keys      []SigningKey
	activeKID string
	primary   []byte
}

// NewKeyRegistry builds the registry from the primary secret, an optional JSON
// object of kid -> secret, and an optional active kid override. Without a
// rotation set the primary secret becomes the single "default" key.
func NewKeyRegistry(primarySecret, rotationKeysJSON, currentKID string) (*KeyRegistry, error) {
	if primarySecret == "" {
		return nil, fmt.Errorf("%w: primary secret is not configured", domain.ErrConfiguration)
	}

	keys, err := parseRotationKeys(rotationKeysJSON)
	if err != nil {
		return nil, err
	}

	r := &KeyRegistry{primary: []byte(primarySecret)}
	if len(keys) == 0 {
		r.keys = []SigningKey{{KID: DefaultKID, Secret: []byte(primarySecret)}}
		r.activeKID = DefaultKID
		if currentKID != "" && currentKID != DefaultKID {
			return nil, fmt.Errorf("%w: active kid %q has no key", domain.ErrConfiguration, currentKID)
		}
		return r, nil
	}

	r.keys = keys
	r.activeKID = keys[0].KID
	if currentKID != "" {
		if _, ok := r.lookup(currentKID); !ok {
			return nil, fmt.Errorf("%w: active kid %q has no key", domain.ErrConfiguration, currentKID)
		}
		r.activeKID = currentKID
	}
	return r, nil
}

// ActiveKey returns the key new access and refresh tokens are signed with
func (r *KeyRegistry) ActiveKey() SigningKey {
	k, _ := r.lookup(r.activeKID)
	return k
}

// ActiveKID returns the kid of the active key
func (r *KeyRegistry) ActiveKID() string {
	return r.activeKID
}

// AllKeys returns every key in declaration order
func (r *KeyRegistry) AllKeys() []SigningKey {
	out := make([]SigningKey, len(r.keys))
	copy(out, r.keys)
	return out
}

// PrimaryKey returns the primary secret, used for password reset and generic tokens
func (r *KeyRegistry) PrimaryKey() []byte {
	return r.primary
}

func (r *KeyRegistry) lookup(kid string) (SigningKey, bool) {
	for _, k := range r.keys {
		if k.KID == kid {
			return k, true
		}
	}
	return SigningKey{}, false
}

// parseRotationKeys decodes a JSON object of kid -> secret keeping the order in
// which the keys were declared. A blank value or an empty object yields nil.
func parseRotationKeys(raw string) ([]SigningKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: JWT_KEYS is not valid JSON: %v", domain.ErrConfiguration, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: JWT_KEYS must be a JSON object", domain.ErrConfiguration)
	}

	var keys []SigningKey
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: JWT_KEYS is not valid JSON: %v", domain.ErrConfiguration, err)
		}
		kid, _ := tok.(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: JWT_KEYS contains an empty kid", domain.ErrConfiguration)
		}
		if _, dup := seen[kid]; dup {
			return nil, fmt.Errorf("%w: JWT_KEYS declares kid %q twice", domain.ErrConfiguration, kid)
		}

		var secret string
		if err := dec.Decode(&secret); err != nil {
			return nil, fmt.Errorf("%w: secret for kid %q must be a string", domain.ErrConfiguration, kid)
		}
		if secret == "" {
			return nil, fmt.Errorf("%w: secret for kid %q is empty", domain.ErrConfiguration, kid)
		}

		seen[kid] = struct{}{}
		keys = append(keys, SigningKey{KID: kid, Secret: []byte(secret)})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: JWT_KEYS is not valid JSON: %v", domain.ErrConfiguration, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JWT_KEYS object", domain.ErrConfiguration)
	}
	return keys, nil
}
