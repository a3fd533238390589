// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the AnimeTrack HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/animetrack/internal/api"
	"github.com/taibuivan/animetrack/internal/billing"
	"github.com/taibuivan/animetrack/internal/catalog"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/platform/config"
	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/internal/platform/metrics"
	"github.com/taibuivan/animetrack/internal/platform/migration"
	pgstore "github.com/taibuivan/animetrack/internal/platform/postgres"
	redisstore "github.com/taibuivan/animetrack/internal/platform/redis"
	"github.com/taibuivan/animetrack/internal/platform/sec"
	"github.com/taibuivan/animetrack/internal/users/account"
)

const upstreamTimeout = 10 * time.Second

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("billing_enabled", cfg.BillingEnabled()),
	)

	// Use a 30s deadline so misconfiguration is caught quickly rather than
	// hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background work (rate limiter cleanup) stops with this context.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security & Metrics ─────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricSet, err := metrics.New(registry)
	must(log, err, "register metrics")

	// ── 7. Health handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(log,
		api.Check{Name: "postgres", Probe: func(context context.Context) error { return pgstore.Ping(context, pool) }},
		api.Check{Name: "redis", Probe: func(context context.Context) error { return redisstore.Ping(context, rdb) }},
	)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	entryRepository := entry.NewPostgresRepository(pool)
	entryHandler := entry.NewHandler(
		entry.NewService(entryRepository, log),
		entry.NewProgressService(entryRepository, log, metricSet),
	)

	accountService := account.NewService(account.NewPostgresRepository(pool), tokens, log)
	accountHandler := account.NewHandler(accountService)

	upstream := &http.Client{Timeout: upstreamTimeout}
	catalogCache := catalog.NewCache(catalog.NewRedisStore(rdb), metricSet, log)
	catalogHandler := catalog.NewHandler(catalog.NewService(catalog.NewJikanClient(cfg.JikanBaseURL, upstream), catalogCache, log))

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Entries:   entryHandler,
		Accounts:  accountHandler,
		Catalog:   catalogHandler,
	}

	if cfg.BillingEnabled() {
		billingService := billing.NewService(
			billing.NewPostgresRepository(pool),
			billing.NewStripeClient(cfg.StripeAPIURL, cfg.StripeSecretKey, upstream, log),
			billing.NewRedisLedger(rdb),
			accountService,
			billing.Settings{WebhookSecret: cfg.StripeWebhookSecret, FrontendURL: cfg.FrontendURL},
			log,
		)
		handlers.Billing = billing.NewHandler(billingService)
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, tokens, metricSet, handlers)

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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger and installs it as the process default.
func newLogger(level slog.Level) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
