// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the CPOS HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured.
//  5. Run database migrations (idempotent).
//  6. Build the token issuer and the session ledger.
//  7. Wire HTTP handlers.
//  8. Start the session sweeper and the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/cpos/internal/api"
	"github.com/taibuivan/cpos/internal/catalog/category"
	"github.com/taibuivan/cpos/internal/catalog/customer"
	"github.com/taibuivan/cpos/internal/catalog/product"
	"github.com/taibuivan/cpos/internal/platform/audit"
	"github.com/taibuivan/cpos/internal/platform/config"
	"github.com/taibuivan/cpos/internal/platform/constants"
	"github.com/taibuivan/cpos/internal/platform/metrics"
	"github.com/taibuivan/cpos/internal/platform/middleware"
	"github.com/taibuivan/cpos/internal/platform/migration"
	pgstore "github.com/taibuivan/cpos/internal/platform/postgres"
	redisstore "github.com/taibuivan/cpos/internal/platform/redis"
	"github.com/taibuivan/cpos/internal/platform/sec"
	"github.com/taibuivan/cpos/internal/rbac"
	"github.com/taibuivan/cpos/internal/users/account"
	"github.com/taibuivan/cpos/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("session_backend", cfg.SessionBackend),
	)

	// Root context for startup. Misconfiguration fails fast instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log, redisstore.WithClientName(constants.AppName))
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Tokens and Sessions ────────────────────────────────────────────
	issuer, err := sec.NewTokenIssuer(sec.TokenConfig{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token issuer")

	var sessions auth.SessionRepository = auth.NewSessionRepository(pool)
	if cfg.SessionBackend == config.SessionBackendRedis {
		sessions = auth.NewRedisSessionRepository(rdb)
	}
	ledger := auth.NewLedger(sessions)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	registry := metrics.New()
	auditor := audit.New(log)
	gate := middleware.NewGate(issuer, registry)

	rbacRepository := rbac.NewPostgresRepository(pool)
	resolver := rbac.NewResolver(rbacRepository)
	rbacService := rbac.NewService(rbacRepository, resolver, auditor, log)

	userRepository := auth.NewUserRepository(pool)
	authService := auth.NewService(
		userRepository,
		ledger,
		resolver,
		rbacRepository,
		issuer,
		sec.NewPasswordHasher(cfg.BcryptCost),
		registry,
		log,
	)

	accountService := account.NewService(
		account.NewDirectory(pool),
		userRepository,
		authService,
		resolver,
		rbacService,
		ledger,
		auditor,
		log,
	)

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Metrics:    registry.Handler(),
		Auth:       auth.NewHandler(authService),
		RBAC:       rbac.NewHandler(rbacService, gate),
		Users:      account.NewHandler(accountService, gate),
		Categories: category.NewHandler(category.NewService(category.NewPostgresRepository(pool), log), gate),
		Products:   product.NewHandler(product.NewService(product.NewPostgresRepository(pool), log), gate),
		Customers:  customer.NewHandler(customer.NewService(customer.NewPostgresRepository(pool), log), gate),
	}

	// ── 9. Background Work and HTTP Server ────────────────────────────────
	// runCtx stops the rate limiter cleanup and the session sweeper.
	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	go ledger.RunSweeper(runCtx, cfg.SessionSweepInterval, constants.SessionSweepTimeout, log)

	server := api.NewServer(runCtx, cfg, log, registry, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	stopBackground()
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
