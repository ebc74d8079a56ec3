package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	LogLevel        string

	// Database configuration
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	DBStatementTimeout time.Duration
	DBConnectAttempts  int

	// Rate limiting. RedisURL is optional; without it limits are kept in process.
	RedisURL        string
	RateLimit       int
	RateLimitWindow time.Duration
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Environment:        GetEnvironment(),
		ServerHost:         "127.0.0.1",
		ServerPort:         "8080",
		ShutdownTimeout:    10 * time.Second,
		CORSOrigins:        []string{"http://localhost:5173"},
		LogLevel:           "info",
		DBMaxOpenConns:     25,
		DBMaxIdleConns:     25,
		DBConnMaxLifetime:  5 * time.Minute,
		DBStatementTimeout: 10 * time.Second,
		DBConnectAttempts:  5,
		RateLimit:          60,
		RateLimitWindow:    time.Minute,
	}
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	cfg := Default()
	l := loader{env: cfg.Environment}

	cfg.ServerHost = l.str("HOST", cfg.ServerHost)
	cfg.ServerPort = l.str("PORT", cfg.ServerPort)
	cfg.ShutdownTimeout = l.duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CORSOrigins = l.list("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)
	cfg.LogLevel = l.str("LOG_LEVEL", cfg.LogLevel)

	cfg.DatabaseURL = l.secret("DATABASE_URL")
	cfg.DBMaxOpenConns = l.integer("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = l.integer("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = l.duration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.DBStatementTimeout = l.duration("DB_STATEMENT_TIMEOUT", cfg.DBStatementTimeout)
	cfg.DBConnectAttempts = l.integer("DB_CONNECT_ATTEMPTS", cfg.DBConnectAttempts)

	cfg.RedisURL = l.secret("REDIS_URL")
	cfg.RateLimit = l.integer("RATE_LIMIT", cfg.RateLimit)
	cfg.RateLimitWindow = l.duration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow)

	if len(l.errs) > 0 {
		return nil, fmt.Errorf("failed to load configuration: %w", errors.Join(l.errs...))
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// loader reads typed values and collects parse failures instead of stopping at the first.
type loader struct {
	env  Environment
	errs []error
}

func (l *loader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// secret reads key from the environment, falling back to the Docker secret
// named after the lower-cased key. In CI only the environment is consulted.
func (l *loader) secret(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if l.env == CI {
		return ""
	}
	return readSecret(strings.ToLower(key))
}

func (l *loader) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		l.errs = append(l.errs, ValidationError{Field: key, Message: fmt.Sprintf("must be an integer, got %q", raw)})
		return def
	}
	return v
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		l.errs = append(l.errs, ValidationError{Field: key, Message: fmt.Sprintf("must be a duration, got %q", raw)})
		return def
	}
	return v
}

func (l *loader) list(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
