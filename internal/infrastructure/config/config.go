package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/manorfm/saas-admin/internal/domain"
)

const (
	DefaultAlgorithm          = "HS256"
	DefaultAccessTTL          = 900 * time.Second
	DefaultRefreshTTL         = 1209600 * time.Second
	DefaultGenericTTL         = 3600 * time.Second
	DefaultPasswordResetTTL   = 900 * time.Second
	DefaultLeeway             = 45 * time.Second
	DefaultIssuer             = "saas-admin"
	DefaultAudience           = "saas-admin-clients"
	DefaultPasswordResetRoute = "/reset-password"
)

// Config holds the application configuration
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// JWT configuration
	JWTSecret            string
	JWTKeys              string // raw JSON object kid -> secret, declaration order matters
	JWTCurrentKID        string
	JWTAlgorithm         string
	JWTAllowedAlgorithms []string
	JWTAccessTTL         time.Duration
	JWTRefreshTTL        time.Duration
	JWTGenericTTL        time.Duration
	JWTPasswordResetTTL  time.Duration
	JWTLeeway            time.Duration
	JWTIssuer            string
	JWTAudience          string

	// SMTP configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPTLSMode  string // "ssl", "starttls" or "none"

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Server configuration
	ServerPort  int
	Environment string
	AppBaseURL  string
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		// Database defaults
		DBHost: "localhost",
		DBPort: 5432,

		// JWT defaults
		JWTAlgorithm:         DefaultAlgorithm,
		JWTAllowedAlgorithms: []string{DefaultAlgorithm},
		JWTAccessTTL:         DefaultAccessTTL,
		JWTRefreshTTL:        DefaultRefreshTTL,
		JWTGenericTTL:        DefaultGenericTTL,
		JWTPasswordResetTTL:  DefaultPasswordResetTTL,
		JWTLeeway:            DefaultLeeway,
		JWTIssuer:            DefaultIssuer,
		JWTAudience:          DefaultAudience,

		// SMTP defaults
		SMTPPort:    587,
		SMTPTLSMode: "starttls",

		RateLimitRPS:   5,
		RateLimitBurst: 10,

		// Server defaults
		ServerPort:  8080,
		Environment: "production",
		AppBaseURL:  "http://localhost:3000",
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	cfg := NewConfig()
	var err error

	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	if cfg.DBPort, err = getEnvInt("DB_PORT", cfg.DBPort); err != nil {
		return nil, err
	}
	cfg.DBUser = getEnv("DB_USER", "owner")
	cfg.DBPassword = getEnv("DB_PASSWORD", "ownerTest")
	cfg.DBName = getEnv("DB_NAME", "saas_admin")

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = getEnv("ENCRYPTION_KEY", "")
	}
	cfg.JWTKeys = strings.TrimSpace(getEnv("JWT_KEYS", ""))
	cfg.JWTCurrentKID = strings.TrimSpace(getEnv("JWT_CURRENT_KID", ""))
	cfg.JWTAlgorithm = getEnv("JWT_ALGORITHM", cfg.JWTAlgorithm)
	cfg.JWTAllowedAlgorithms = splitList(getEnv("JWT_ALLOWED_ALGORITHMS", DefaultAlgorithm))
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = getEnv("JWT_AUDIENCE", cfg.JWTAudience)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_ACCESS_TTL", &cfg.JWTAccessTTL},
		{"JWT_REFRESH_TTL", &cfg.JWTRefreshTTL},
		{"JWT_TTL", &cfg.JWTGenericTTL},
		{"JWT_PASSWORD_RESET_TTL", &cfg.JWTPasswordResetTTL},
		{"JWT_LEEWAY", &cfg.JWTLeeway},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvDuration(d.key, *d.dst); err != nil {
			return nil, err
		}
	}

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", cfg.SMTPPort); err != nil {
		return nil, err
	}
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "no-reply@localhost")
	cfg.SMTPTLSMode = strings.ToLower(getEnv("SMTP_TLS_MODE", cfg.SMTPTLSMode))

	if v, ok := os.LookupEnv("RATE_LIMIT_RPS"); ok {
		if cfg.RateLimitRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
		}
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst); err != nil {
		return nil, err
	}

	if cfg.ServerPort, err = getEnvInt("PORT", cfg.ServerPort); err != nil {
		return nil, err
	}
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.AppBaseURL = getEnv("APP_BASE_URL", cfg.AppBaseURL)

	return cfg, nil
}

// Validate checks the settings the process cannot serve requests without.
// Every failure wraps domain.ErrConfiguration.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && c.JWTKeys == "" {
		return fmt.Errorf("%w: JWT_SECRET (or ENCRYPTION_KEY) is not set", domain.ErrConfiguration)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required for password reset tokens", domain.ErrConfiguration)
	}
	if !contains(c.JWTAllowedAlgorithms, c.JWTAlgorithm) {
		return fmt.Errorf("%w: algorithm %q is not in the allow-list", domain.ErrConfiguration, c.JWTAlgorithm)
	}
	for _, ttl := range []time.Duration{c.JWTAccessTTL, c.JWTRefreshTTL, c.JWTGenericTTL, c.JWTPasswordResetTTL} {
		if ttl <= 0 {
			return fmt.Errorf("%w: token lifetimes must be positive", domain.ErrConfiguration)
		}
	}
	if c.JWTLeeway < 0 {
		return fmt.Errorf("%w: leeway must not be negative", domain.ErrConfiguration)
	}
	switch c.SMTPTLSMode {
	case "ssl", "starttls", "none":
	default:
		return fmt.Errorf("%w: unknown SMTP_TLS_MODE %q", domain.ErrConfiguration, c.SMTPTLSMode)
	}
	return nil
}

// DatabaseURL returns the postgres URL used by both the pool and the migrator
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}

// getEnvDuration accepts either whole seconds ("900") or a Go duration ("15m")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
