package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/manorfm/saas-admin/internal/application"
	"github.com/manorfm/saas-admin/internal/domain"
	"github.com/manorfm/saas-admin/internal/infrastructure/config"
	"github.com/manorfm/saas-admin/internal/infrastructure/database"
	"github.com/manorfm/saas-admin/internal/infrastructure/email"
	"github.com/manorfm/saas-admin/internal/infrastructure/jwt"
	"github.com/manorfm/saas-admin/internal/infrastructure/metrics"
	"github.com/manorfm/saas-admin/internal/infrastructure/repository"
	"github.com/manorfm/saas-admin/internal/interfaces/http/handlers"
	"github.com/manorfm/saas-admin/internal/interfaces/http/middleware/auth"
	"github.com/manorfm/saas-admin/internal/interfaces/http/middleware/ratelimit"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const swaggerFile = "docs/swagger.json"

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	router *chi.Mux
}

// NewRouter wires the JWT stack, the user store and the mailer behind the
// HTTP routes. It fails when the signing configuration is unusable.
func NewRouter(
	ctx context.Context,
	db *database.Postgres,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Router, error) {
	keys, err := jwt.NewKeyRegistry(cfg.JWTSecret, cfg.JWTKeys, cfg.JWTCurrentKID)
	if err != nil {
		return nil, err
	}
	settings, err := jwt.NewSettings(cfg)
	if err != nil {
		return nil, err
	}
	codec, err := jwt.NewCodec(settings, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("JWT signing configured",
		zap.String("algorithm", settings.Algorithm),
		zap.String("active_kid", keys.ActiveKID()),
		zap.Int("keys", len(keys.AllKeys())))

	userRepo := repository.NewUserRepository(db, logger)
	issuer := jwt.NewIssuer(keys, codec, settings, m, logger)
	verifier := jwt.NewVerifier(keys, codec, settings, userRepo, m, logger)
	mailer := email.NewPasswordResetMailer(cfg, email.NewSender(cfg, logger), logger)
	authService := application.NewAuthService(userRepo, issuer, verifier, mailer, m, settings.AccessTTL, logger)

	return newRouter(ctx, authService, db, cfg, m, logger), nil
}

func newRouter(
	ctx context.Context,
	authService domain.AuthService,
	db Pinger,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Router {
	authMiddleware := auth.NewAuthMiddleware(authService, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)
	rateLimiter := ratelimit.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 3*time.Minute, logger)

	router := createRouter(m)

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(r.Context()); err != nil {
				logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("Database connection failed"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Alive"))
		})
	})

	router.Handle("/metrics", m.Handler())

	// Swagger UI configuration
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, swaggerFile)
	})

	router.Route("/api/v1/auth", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/refresh-token", authHandler.HandleRefreshToken)
			r.Post("/forgot-password", authHandler.HandleForgotPassword)
			r.Post("/verify-reset-token", authHandler.HandleVerifyResetToken)
			r.Post("/reset-password", authHandler.HandleResetPassword)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticator, authMiddleware.RequireRole(domain.RoleAdmin))
			r.Get("/me", authHandler.HandleMe)
			r.Get("/logout", authHandler.HandleLogout)
			r.Post("/logout", authHandler.HandleLogout)
		})
	})

	return &Router{router: router}
}

func createRouter(m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Routes lists the registered method and pattern pairs
func (r *Router) Routes() ([]string, error) {
	var routes []string
	err := chi.Walk(r.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, fmt.Sprintf("%s %s", method, route))
		return nil
	})
	return routes, err
}
