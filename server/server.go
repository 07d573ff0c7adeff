// Package server exposes a comparison store over HTTP.
//
// Information Hiding:
// - Route layout and request/response shapes
// - JSON encoding of the comparison state
// - Server-sent event fan-out of state changes
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richinex/arbiter/arena"
	"github.com/richinex/arbiter/comparison"
	"github.com/richinex/arbiter/llm"
	"go.uber.org/zap"
)

// ProviderFunc resolves a provider name such as "openai" or "claude".
type ProviderFunc func(name string) (llm.Provider, error)

// Server serves the comparison API.
type Server struct {
	store     *comparison.Store
	arena     *arena.Arena
	providers ProviderFunc
	log       *zap.Logger
	router    *gin.Engine

	concurrency int
	llmTimeout  time.Duration
	origins     []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithProviders enables the model endpoints. Without it they answer 501.
func WithProviders(fn ProviderFunc, concurrency int, timeout time.Duration) Option {
	return func(s *Server) {
		s.providers = fn
		s.concurrency = concurrency
		if timeout > 0 {
			s.llmTimeout = timeout
		}
	}
}

// WithAllowedOrigins enables CORS for the given origin patterns.
func WithAllowedOrigins(patterns []string) Option {
	return func(s *Server) {
		s.origins = patterns
	}
}

// New builds the router for store.
func New(store *comparison.Store, opts ...Option) *Server {
	s := &Server{
		store:      store,
		log:        zap.NewNop(),
		llmTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.providers != nil {
		s.arena = arena.New(store, s.log, s.concurrency)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.log))
	if len(s.origins) > 0 {
		router.Use(corsMiddleware(s.origins))
	}
	s.router = router
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.GET("/state", s.getState)
	api.GET("/responses", s.getResponses)
	api.PUT("/slots", s.putSlots)
	api.PUT("/responses/:key", s.putResponse)

	api.POST("/snippets", s.postSnippet)
	api.DELETE("/snippets/:id", s.deleteSnippet)
	api.DELETE("/snippets", s.deleteSnippets)
	api.PUT("/notes", s.putNotes)
	api.PUT("/selection", s.putSelection)
	api.PUT("/modal", s.putModal)

	api.POST("/history", s.postHistory)
	api.POST("/history/navigate", s.navigateHistory)
	api.POST("/history/:index/load", s.loadHistory)

	api.GET("/template", s.getTemplate)
	api.DELETE("/data", s.deleteData)
	api.GET("/events", s.events)

	api.POST("/compare", s.compare)
	api.POST("/arbitrate", s.arbitrate)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	s.log.Info("server exited")
	return nil
}
