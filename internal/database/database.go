package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/gecko-recipes/backend/config"
	"github.com/pageza/gecko-recipes/backend/internal/logging"
)

const (
	pingTimeout    = 5 * time.Second
	maxRetryWait   = 10 * time.Second
	slowQueryLimit = 200 * time.Millisecond
)

// New connects to Postgres, retrying with exponential backoff up to
// cfg.DBConnectAttempts times, and applies the pool settings from cfg.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: NewGormLogger(log),
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.DBConnectAttempts; attempt++ {
		db, err := connect(ctx, cfg, gormCfg)
		if err == nil {
			log.Info("connected to database", "attempt", attempt)
			return db, nil
		}
		lastErr = err
		log.Warn("database connection attempt failed", "attempt", attempt, "error", err)

		if attempt == cfg.DBConnectAttempts {
			break
		}
		wait := time.Duration(1<<uint(attempt-1)) * time.Second
		if wait > maxRetryWait {
			wait = maxRetryWait
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connecting to database: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.DBConnectAttempts, lastErr)
}

func connect(ctx context.Context, cfg *config.Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := HealthCheck(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	return db, nil
}

// NewGormLogger routes gorm's warnings and slow queries through log.
func NewGormLogger(log *slog.Logger) logger.Interface {
	return logger.New(logging.NewLogLogger(log, slog.LevelWarn), logger.Config{
		SlowThreshold:             slowQueryLimit,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
