package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/gecko-recipes/backend/config"
	"github.com/pageza/gecko-recipes/backend/internal/database"
	"github.com/pageza/gecko-recipes/backend/internal/logging"
	"github.com/pageza/gecko-recipes/backend/internal/repository"
	"github.com/pageza/gecko-recipes/backend/internal/server"
	"github.com/pageza/gecko-recipes/backend/internal/service"
)

const name = "recipes-api"

// overridden during build with ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.SetDefault(name, version, "info")
		return err
	}
	log := logging.SetDefault(name, version, cfg.LogLevel)
	gin.SetMode(cfg.Environment.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting server",
		"environment", cfg.Environment,
		"addr", cfg.Addr(),
		"rate_limit", cfg.RateLimit,
		"rate_limit_window", cfg.RateLimitWindow,
		"statement_timeout", cfg.DBStatementTimeout,
	)

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(ctx, db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	limiter, closeLimiter := server.NewLimiter(ctx, cfg, log)
	defer closeLimiter()

	recipes := service.NewRecipeService(repository.NewRecipeRepo(db, cfg.DBStatementTimeout), log)
	srv := server.New(cfg, server.Deps{
		Recipes: recipes,
		Health:  func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		Limiter: limiter,
	}, log)

	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("server stopped gracefully")
	return nil
}
