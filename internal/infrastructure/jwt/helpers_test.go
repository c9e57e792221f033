package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testPrimary  = "primary-secret-for-tests-0123456789"
	testIssuer   = "saas-admin"
	testAudience = "saas-admin-clients"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(unix int64) { c.now = time.Unix(unix, 0) }

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

func testSettings() Settings {
	return Settings{
		Algorithm:         "HS256",
		AllowedAlgorithms: []string{"HS256"},
		AccessTTL:         900 * time.Second,
		RefreshTTL:        1209600 * time.Second,
		GenericTTL:        3600 * time.Second,
		PasswordResetTTL:  900 * time.Second,
		Leeway:            45 * time.Second,
		Issuer:            testIssuer,
		Audience:          testAudience,
	}
}

type fixture struct {
	clock    *testClock
	keys     *KeyRegistry
	codec    *Codec
	issuer   *Issuer
	verifier *Verifier
	users    *MockUserRepository
}

// newFixture wires a registry, codec, issuer and verifier around a clock set to t=1000
func newFixture(t *testing.T, keysJSON, currentKID string) *fixture {
	t.Helper()

	clock := &testClock{}
	clock.Set(1000)

	keys, err := NewKeyRegistry(testPrimary, keysJSON, currentKID)
	require.NoError(t, err)

	settings := testSettings()
	codec, err := NewCodec(settings, clock.Now)
	require.NoError(t, err)

	users := new(MockUserRepository)
	logger := zap.NewNop()

	return &fixture{
		clock:    clock,
		keys:     keys,
		codec:    codec,
		issuer:   NewIssuer(keys, codec, settings, nil, logger),
		verifier: NewVerifier(keys, codec, settings, users, nil, logger),
		users:    users,
	}
}

func testUser(id int64) *domain.User {
	return &domain.User{
		ID:    id,
		Email: "user@example.com",
		Name:  "Test User",
		Roles: domain.NewRoleSet(domain.RoleUser),
	}
}
