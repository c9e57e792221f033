package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/manorfm/saas-admin/internal/domain"
	httperrors "github.com/manorfm/saas-admin/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	authService domain.AuthService
	logger      *zap.Logger
}

func NewAuthMiddleware(authService domain.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, logger: logger}
}

// Authenticator resolves the user behind the Bearer token and stores it in the
// request context. Every token failure yields the same 401 body.
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := jwtauth.TokenFromHeader(r)
		if token == "" {
			httperrors.RespondWithError(w, domain.ErrUnauthorized)
			return
		}

		user, err := m.authService.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				httperrors.RespondWithError(w, domain.ErrUnauthorized)
				return
			}
			m.logger.Error("authentication failed", zap.Error(err))
			httperrors.RespondWithError(w, domain.ErrInternal)
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithUser(r.Context(), user)))
	})
}

// RequireRole lets the request through when the authenticated user holds any of roles
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			user, ok := domain.GetUser(r.Context())
			if !ok {
				httperrors.RespondWithError(w, domain.ErrUnauthorized)
				return
			}

			for _, role := range roles {
				if user.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.logger.Info("access denied",
				zap.Int64("user_id", user.ID),
				zap.Strings("roles", user.Roles.Strings()))
			httperrors.RespondWithError(w, domain.ErrForbidden)
		})
	}
}
