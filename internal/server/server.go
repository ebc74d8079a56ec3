package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/gecko-recipes/backend/config"
	"github.com/pageza/gecko-recipes/backend/internal/api"
	"github.com/pageza/gecko-recipes/backend/internal/database"
	"github.com/pageza/gecko-recipes/backend/internal/middleware"
	"github.com/pageza/gecko-recipes/backend/internal/service"
)

const readHeaderTimeout = 10 * time.Second

// Deps are the collaborators the HTTP server routes to.
type Deps struct {
	Recipes service.IRecipeService
	Health  api.HealthFunc
	// Limiter may be nil, which disables rate limiting.
	Limiter middleware.Limiter
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	cfg    *config.Config
	log    *slog.Logger
}

// New builds the router with the full middleware chain.
func New(cfg *config.Config, deps Deps, log *slog.Logger) *Server {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Metrics(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(cfg.CORSOrigins),
	)
	if deps.Limiter != nil {
		router.Use(middleware.RateLimit(deps.Limiter, log))
	}

	api.RegisterRoutes(router, api.NewRecipeHandler(deps.Recipes, log), deps.Health, log)

	return &Server{router: router, cfg: cfg, log: log}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// NewLimiter picks the rate limiter for cfg: shared through Redis when
// REDIS_URL is set and reachable, in-process otherwise. It returns nil when
// RATE_LIMIT is 0. The returned func releases the Redis connection.
func NewLimiter(ctx context.Context, cfg *config.Config, log *slog.Logger) (middleware.Limiter, func()) {
	if cfg.RateLimit <= 0 {
		return nil, func() {}
	}
	limits := middleware.RateLimitConfig{
		Limit:     cfg.RateLimit,
		Window:    cfg.RateLimitWindow,
		KeyPrefix: "rate_limit:recipes",
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err == nil {
			return middleware.NewRedisLimiter(client, limits), func() { _ = client.Close() }
		}
		log.Warn("redis unavailable, using in-process rate limiting", "error", err)
	}
	return middleware.NewLocalLimiter(limits), func() {}
}
