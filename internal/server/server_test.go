package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/gecko-recipes/backend/config"
	"github.com/pageza/gecko-recipes/backend/internal/middleware"
	"github.com/pageza/gecko-recipes/backend/internal/repository"
	"github.com/pageza/gecko-recipes/backend/internal/service"
	"github.com/pageza/gecko-recipes/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Environment = config.Test
	cfg.ServerPort = "0"
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.RateLimit = 2
	cfg.RateLimitWindow = time.Minute
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	log := testhelpers.Logger()
	limiter, closeLimiter := NewLimiter(context.Background(), cfg, log)
	t.Cleanup(closeLimiter)

	return New(cfg, Deps{
		Recipes: service.NewRecipeService(repository.NewMemoryRecipeRepo(), log),
		Health:  func(context.Context) error { return nil },
		Limiter: limiter,
	}, log)
}

func TestNew(t *testing.T) {
	s := newTestServer(t, testConfig())

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	s := newTestServer(t, testConfig())
	body := `{"name": "Toast", "meal_type": "Breakfast"}`

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/recipes", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	// Reads stay available.
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewLimiter(t *testing.T) {
	cfg := testConfig()
	log := testhelpers.Logger()

	cfg.RateLimit = 0
	limiter, _ := NewLimiter(context.Background(), cfg, log)
	assert.Nil(t, limiter)

	// An unreachable Redis falls back to the in-process limiter.
	cfg.RateLimit = 10
	cfg.RedisURL = "redis://127.0.0.1:1"
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	limiter, closeFn := NewLimiter(ctx, cfg, log)
	defer closeFn()
	assert.IsType(t, &middleware.LocalLimiter{}, limiter)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, testConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
