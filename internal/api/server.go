package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshaffer321/ledger-recon/internal/api/dto"
	"github.com/eshaffer321/ledger-recon/internal/api/handlers"
	"github.com/eshaffer321/ledger-recon/internal/api/middleware"
	"github.com/eshaffer321/ledger-recon/internal/application/service"
	"github.com/eshaffer321/ledger-recon/internal/domain/ledger"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/identity"
	"github.com/eshaffer321/ledger-recon/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: middleware.DefaultCORSConfig().AllowedOrigins,
	}
}

// Deps are the collaborators the server routes to. Repo may be nil, in
// which case the records endpoints answer 503.
type Deps struct {
	Service *service.ReconcileService
	Repo    storage.Repository
	IDs     ledger.IDSource
	Clock   ledger.Clock
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	deps       Deps
}

// NewServer creates a new API server.
func NewServer(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.IDs == nil {
		deps.IDs = identity.UUIDSource{}
	}
	if deps.Clock == nil {
		deps.Clock = identity.SystemClock{}
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = s.config.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		if s.deps.Service != nil {
			reconcileHandler := handlers.NewReconcileHandler(s.deps.Service, s.logger)
			r.Post("/reconcile", reconcileHandler.Reconcile)
		}

		r.Route("/records", func(r chi.Router) {
			if s.deps.Repo == nil {
				r.HandleFunc("/*", s.unavailable("exception store"))
				r.HandleFunc("/", s.unavailable("exception store"))
				return
			}
			recordsHandler := handlers.NewRecordsHandler(s.deps.Repo, s.deps.IDs, s.deps.Clock, s.logger)
			r.Get("/", recordsHandler.List)
			r.Post("/", recordsHandler.Create)
			r.Delete("/", recordsHandler.Clear)
			r.Patch("/{id}", recordsHandler.Patch)
			r.Delete("/{id}", recordsHandler.Delete)
		})
	})
}

func (s *Server) unavailable(feature string) http.HandlerFunc {
	base := handlers.NewBase(nil)
	return func(w http.ResponseWriter, r *http.Request) {
		base.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError(feature))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
