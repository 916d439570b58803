// Package api provides the HTTP API server for the vault service.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keepsakelabs/giftvault/internal/api/handlers"
	"github.com/keepsakelabs/giftvault/internal/api/health"
	"github.com/keepsakelabs/giftvault/internal/api/middleware"
	"github.com/keepsakelabs/giftvault/internal/auth"
	"github.com/keepsakelabs/giftvault/internal/secrets"
	"github.com/keepsakelabs/giftvault/internal/store"
	"github.com/keepsakelabs/giftvault/pkg/config"
)

// Version is the current version of the API server.
// This should be set at build time using ldflags.
var Version = "dev"

// Server represents the HTTP API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	store         store.Store
	auth          *auth.Service
	sealer        *secrets.Sealer
	config        *config.Config
	logger        *slog.Logger
	healthChecker *health.Checker
}

// NewServer creates a new API server with the given dependencies.
func NewServer(cfg *config.Config, st store.Store, authSvc *auth.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		store:  st,
		auth:   authSvc,
		config: cfg,
		logger: logger,
	}

	s.healthChecker = health.NewChecker(st, Version)

	if cfg.AgePublicKey != "" || cfg.AgePrivateKey != "" {
		sealer, err := secrets.NewSealer(&secrets.Config{
			PublicKey:  cfg.AgePublicKey,
			PrivateKey: cfg.AgePrivateKey,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize media sealer", "error", err)
		} else {
			s.sealer = sealer
			logger.Info("media sealer initialized", "can_seal", sealer.CanSeal(), "can_open", sealer.CanOpen())
		}
	}

	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoint (no auth required)
	r.Get("/health", s.healthChecker.Handler())

	// Auth routes (no auth required)
	authHandler := handlers.NewAuthHandler(s.auth, s.logger)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
	})

	// API v1 routes
	vaultHandler := handlers.NewVaultHandler(s.store, s.sealer, s.logger)
	countdownHandler := handlers.NewCountdownHandler(s.store, s.logger)
	authMiddleware := middleware.NewAuthMiddleware(s.auth, s.logger)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/vault/{keyHash}", func(r chi.Router) {
			// Reads are unauthenticated: possession of the key hash is
			// the recipient's only credential.
			r.Get("/", vaultHandler.Get)
			r.Get("/countdown", countdownHandler.Stream)

			// Writes require an admin token.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Put("/", vaultHandler.Put)
				r.Delete("/", vaultHandler.Delete)
			})
		})
	})

	s.router = r
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() chi.Router {
	return s.router
}
