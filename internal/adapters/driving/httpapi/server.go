// Package httpapi serves search, planning and question answering over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Ports aggregates the services the HTTP API exposes.
type Ports struct {
	// Search is required.
	Search driving.SearchService

	// Planner backs POST /api/plan. The route answers 501 when nil.
	Planner driving.PlannerService

	// Assistant backs POST /api/ask. The route answers 501 when nil.
	Assistant driving.AssistantService

	// Metrics is mounted at GET /metrics when set.
	Metrics http.Handler
}

// Config configures the HTTP listener.
type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8000".
	Addr string

	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string
}

// Server is the HTTP query surface.
type Server struct {
	ports  *Ports
	config Config
	router chi.Router
}

// NewServer creates a server and its routes.
func NewServer(ports *Ports, config Config) (*Server, error) {
	if ports == nil || ports.Search == nil {
		return nil, ErrMissingSearchService
	}
	s := &Server{
		ports:  ports,
		config: config,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if s.ports.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.ports.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/plan", s.handlePlan)
		r.Post("/ask", s.handleAsk)
	})

	return r
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on http://%s", ln.Addr())
	err := httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.WithFields(map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}
