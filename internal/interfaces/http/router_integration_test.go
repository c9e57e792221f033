//go:build integration

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/database/dbtest"
	"github.com/manorfm/saas-admin/internal/infrastructure/jwt"
	"github.com/manorfm/saas-admin/internal/infrastructure/metrics"
	"github.com/manorfm/saas-admin/internal/infrastructure/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func doJSON(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:5000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) domain.AuthTokens {
	t.Helper()
	var tokens domain.AuthTokens
	require.NoError(t, json.NewDecoder(w.Body).Decode(&tokens))
	return tokens
}

func TestRouter_AuthFlow(t *testing.T) {
	db, cfg := dbtest.StartPostgres(t)
	cfg.JWTSecret = "integration-primary-secret-0123456789"
	cfg.JWTKeys = `{"k2":"integration-rotation-secret-abcdef"}`
	cfg.JWTCurrentKID = "k2"
	cfg.AppBaseURL = "http://localhost:3000"
	cfg.RateLimitRPS = 100
	cfg.RateLimitBurst = 100
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := metrics.New(nil)
	require.NoError(t, err)
	router, err := NewRouter(ctx, db, cfg, m, zap.NewNop())
	require.NoError(t, err)

	// Register, then promote to admin for the protected routes
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"name":"Admin User","email":"Admin@Example.com","password":"first-password"}`, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register",
		`{"name":"Admin User","email":"admin@example.com","password":"first-password"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	_, err = db.Exec(ctx, `UPDATE users SET roles = '{Admin}' WHERE email = 'admin@example.com'`)
	require.NoError(t, err)

	// Login
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"wrong-password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"first-password"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decodeTokens(t, w)
	assert.Equal(t, domain.TokenTypeBearer, login.TokenType)
	assert.Equal(t, int64(cfg.JWTAccessTTL.Seconds()), login.ExpiresIn)
	require.NotNil(t, login.User)
	assert.True(t, login.User.HasRole(domain.RoleAdmin))

	// Me
	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", login.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"admin@example.com"`)

	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Refresh
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh-token",
		`{"refresh_token":"`+login.AccessToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh-token",
		`{"refresh_token":"`+login.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	refreshed := decodeTokens(t, w)
	assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)
	assert.Nil(t, refreshed.User)

	// Forgot password answers the same for known and unknown addresses
	known := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"admin@example.com"}`, "")
	unknown := doJSON(t, router, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ghost@example.com"}`, "")
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// Reset with a token signed the same way the mailer's token is
	keys, err := jwt.NewKeyRegistry(cfg.JWTSecret, cfg.JWTKeys, cfg.JWTCurrentKID)
	require.NoError(t, err)
	settings, err := jwt.NewSettings(cfg)
	require.NoError(t, err)
	codec, err := jwt.NewCodec(settings, nil)
	require.NoError(t, err)
	user, err := repository.NewUserRepository(db, zap.NewNop()).FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	resetToken, err := jwt.NewIssuer(keys, codec, settings, nil, zap.NewNop()).IssuePasswordResetToken(user, 0)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/verify-reset-token", `{"token":"`+resetToken+`"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"`+resetToken+`","password":"second-password","password_confirm":"second-password"}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"first-password"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login",
		`{"email":"admin@example.com","password":"second-password"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Nothing is revoked: the old access token and the reset token still work
	w = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", login.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"`+resetToken+`","password":"third-password","password_confirm":"third-password"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// An access token used as a reset token is rejected by purpose
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/verify-reset-token", `{"token":"`+login.AccessToken+`"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
