package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthTokens, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthTokens), args.Error(1)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*domain.AuthTokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthTokens), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) VerifyPasswordResetToken(ctx context.Context, token string, strict bool) (*domain.User, error) {
	args := m.Called(ctx, token, strict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

const unauthorizedBody = `{"code":"U0014","message":"Unauthorized"}`

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := domain.GetUser(r.Context())
		assert.Equal(t, wantUser, ok)
		if ok {
			sub, _ := domain.GetSubject(r.Context())
			assert.Equal(t, user.Subject(), sub)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"success"}`))
	})
}

func TestAuthMiddleware_Authenticator(t *testing.T) {
	admin := &domain.User{ID: 1, Email: "admin@example.com", Roles: domain.NewRoleSet(domain.RoleAdmin)}

	tests := []struct {
		name           string
		method         string
		header         string
		mockSetup      func(*MockAuthService)
		expectedStatus int
		expectedBody   string
		wantUser       bool
	}{
		{
			name:           "missing header",
			method:         http.MethodGet,
			mockSetup:      func(m *MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "not a bearer header",
			method:         http.MethodGet,
			header:         "Basic dXNlcjpwYXNz",
			mockSetup:      func(m *MockAuthService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:   "expired token",
			method: http.MethodGet,
			header: "Bearer expired-token",
			mockSetup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "expired-token").Return(nil, domain.ErrUnauthorized)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:   "user store failure",
			method: http.MethodGet,
			header: "Bearer valid-token",
			mockSetup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "valid-token").
					Return(nil, fmt.Errorf("load token user: %w", domain.ErrDatabaseQuery))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"code":"U0022","message":"Internal server error"}`,
		},
		{
			name:   "valid token",
			method: http.MethodGet,
			header: "Bearer valid-token",
			mockSetup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "valid-token").Return(admin, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
			wantUser:       true,
		},
		{
			name:   "lowercase scheme",
			method: http.MethodGet,
			header: "bearer valid-token",
			mockSetup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "valid-token").Return(admin, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
			wantUser:       true,
		},
		{
			name:           "preflight passes through",
			method:         http.MethodOptions,
			mockSetup:      func(m *MockAuthService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			tt.mockSetup(svc)
			middleware := NewAuthMiddleware(svc, zap.NewNop())

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			middleware.Authenticator(okHandler(t, tt.wantUser)).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name           string
		user           *domain.User
		required       []domain.Role
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "no user in context",
			required:       []domain.Role{domain.RoleAdmin},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "role not held",
			user:           &domain.User{ID: 2, Roles: domain.NewRoleSet(domain.RoleUser)},
			required:       []domain.Role{domain.RoleAdmin},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"code":"U0018","message":"Forbidden"}`,
		},
		{
			name:           "role held",
			user:           &domain.User{ID: 1, Roles: domain.NewRoleSet(domain.RoleAdmin, domain.RoleUser)},
			required:       []domain.Role{domain.RoleAdmin},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
		},
		{
			name:           "any of several roles",
			user:           &domain.User{ID: 3, Roles: domain.NewRoleSet(domain.RoleOrgAdmin)},
			required:       []domain.Role{domain.RoleAdmin, domain.RoleOrgAdmin},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := NewAuthMiddleware(new(MockAuthService), zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(domain.WithUser(req.Context(), tt.user))
			}

			w := httptest.NewRecorder()
			middleware.RequireRole(tt.required...)(okHandler(t, tt.user != nil)).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
