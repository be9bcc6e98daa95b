// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/cpos/internal/catalog/category"
	"github.com/taibuivan/cpos/internal/catalog/customer"
	"github.com/taibuivan/cpos/internal/catalog/product"
	"github.com/taibuivan/cpos/internal/platform/config"
	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/middleware"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/account"
	"github.com/taibuivan/cpos/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler, 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler, 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics serves the Prometheus registry on /metrics.
	Metrics http.Handler

	// Auth handles login, register, refresh and logout.
	Auth *auth.Handler

	// RBAC manages roles, grants and the dashboard widget feed.
	RBAC *rbac.Handler

	// Users administers operator accounts.
	Users *account.Handler

	// Categories and Products are the permission-gated catalog.
	Categories *category.Handler
	Products   *product.Handler

	// Customers holds buyer records and their purchase history.
	Customers *customer.Handler
}

// Instrumenter wraps every request with metric collection.
type Instrumenter interface {
	Instrument(next http.Handler) http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. instrumenter may be nil.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, instrumenter Instrumenter, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	if instrumenter != nil {
		r.Use(instrumenter.Instrument)
	}
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context, cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	// # Application API
	// Domain route groups mounted under the versioned prefix. Authorization
	// is declared per group by each handler.
	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", h.Auth.RegisterRoutes)
		api.Route("/rbac", h.RBAC.RegisterRoutes)
		api.Route("/dashboard", h.RBAC.RegisterDashboardRoutes)
		api.Route("/users", h.Users.RegisterRoutes)
		api.Route("/categories", h.Categories.RegisterRoutes)
		api.Route("/customers", h.Customers.RegisterRoutes)
		api.Route("/products", h.Products.RegisterRoutes)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the assembled router (used by tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
