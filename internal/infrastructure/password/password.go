package password

import (
	"errors"
	"sync"

	"github.com/manorfm/saas-admin/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// HashPassword hashes a password using bcrypt. Passwords over 72 bytes are
// reported as domain.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.ErrPasswordTooLong
		}
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword checks if a password matches its hash.
// A mismatch is reported as domain.ErrInvalidCredentials.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrInvalidCredentials
		}
		return err
	}
	return nil
}

// CheckAgainstDummy burns the same bcrypt work as CheckPassword for an
// account that does not exist, so both login failures take similar time.
func CheckAgainstDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
