package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for its environment.
// All violations are reported together.
func ValidateConfig(cfg *Config) error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.DatabaseURL == "" {
		if cfg.Environment == CI {
			fail("DATABASE_URL", "environment variable is required in CI environment")
		} else {
			fail("DATABASE_URL", "must be set as an environment variable or the database_url secret")
		}
	} else if u, err := url.Parse(cfg.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		fail("DATABASE_URL", "must be a postgres:// URL")
	} else if cfg.Environment == Production && u.Query().Get("sslmode") == "disable" {
		fail("DATABASE_URL", "sslmode=disable is not allowed in production")
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		fail("PORT", "must be a number between 1 and 65535, got %q", cfg.ServerPort)
	}
	if cfg.ServerHost == "" {
		fail("HOST", "must not be empty")
	}

	if cfg.DBMaxOpenConns < 1 {
		fail("DB_MAX_OPEN_CONNS", "must be at least 1")
	}
	if cfg.DBMaxIdleConns < 0 || cfg.DBMaxIdleConns > cfg.DBMaxOpenConns {
		fail("DB_MAX_IDLE_CONNS", "must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if cfg.DBStatementTimeout <= 0 {
		fail("DB_STATEMENT_TIMEOUT", "must be positive")
	}
	if cfg.DBConnectAttempts < 1 {
		fail("DB_CONNECT_ATTEMPTS", "must be at least 1")
	}
	if cfg.ShutdownTimeout <= 0 {
		fail("SHUTDOWN_TIMEOUT", "must be positive")
	}

	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			fail("CORS_ALLOWED_ORIGINS", "%q is not an http(s) origin", origin)
		}
	}

	if cfg.RedisURL != "" {
		if u, err := url.Parse(cfg.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			fail("REDIS_URL", "must be a redis:// or rediss:// URL")
		}
	}
	if cfg.RateLimit < 0 {
		fail("RATE_LIMIT", "must not be negative")
	}
	if cfg.RateLimit > 0 && cfg.RateLimitWindow <= 0 {
		fail("RATE_LIMIT_WINDOW", "must be positive when RATE_LIMIT is set")
	}

	return errors.Join(errs...)
}
