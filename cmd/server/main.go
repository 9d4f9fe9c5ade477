package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aissms/reeval-backend/internal/config"
	"github.com/aissms/reeval-backend/internal/database"
	"github.com/aissms/reeval-backend/internal/handler"
	"github.com/aissms/reeval-backend/internal/logger"
	"github.com/aissms/reeval-backend/internal/middleware"
	"github.com/aissms/reeval-backend/internal/repository"
	"github.com/aissms/reeval-backend/internal/router"
	"github.com/aissms/reeval-backend/internal/service"
	"github.com/aissms/reeval-backend/internal/validator"
	"github.com/aissms/reeval-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting re-evaluation backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Store ──────────────────────────────────────────────
	store := repository.NewPgStore(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	events := service.NewRedisEventPublisher(rdb)
	authService := service.NewAuthService(cfg, service.NewRedisSessionStore(rdb))
	requestService := service.NewRequestService(store, events, cfg.StoreTimeout, log)
	reconcileService := service.NewReconcileService(store, events, cfg.StoreTimeout, log)
	studentService := service.NewStudentService(store, cfg.StoreTimeout, log)
	evaluatorService := service.NewEvaluatorService(store, cfg.StoreTimeout, log)
	instituteService := service.NewInstituteService(store, authService, cfg.StoreTimeout, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, evaluatorService, instituteService),
		StudentPortal: handler.NewStudentPortalHandler(requestService, studentService),
		Evaluator:     handler.NewEvaluatorHandler(evaluatorService, requestService),
		Institute:     handler.NewInstituteHandler(instituteService, requestService, reconcileService),
		WS:            handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.HealthCheck{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	reconcileWorker := worker.NewReconcileWorker(reconcileService, rdb, cfg.ReconcileInterval, log)
	go func() {
		reconcileWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(rdb, "auth", cfg.RateLimitPerMinute, time.Minute, log)
	r := router.SetupRouter(authService, handlers, cfg, authLimiter.Middleware())

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the reconcile worker; an in-flight pass is bounded by STORE_TIMEOUT_MS.
	workerCancel()
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Reconcile worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
