package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	bchttp "github.com/Strob0t/CodeForge/internal/adapter/http"
	_ "github.com/Strob0t/CodeForge/internal/adapter/jsonmetrics" // self-registers into metricsadapter
	cfnats "github.com/Strob0t/CodeForge/internal/adapter/nats"
	"github.com/Strob0t/CodeForge/internal/adapter/otel"
	"github.com/Strob0t/CodeForge/internal/adapter/postgres"
	"github.com/Strob0t/CodeForge/internal/adapter/ristretto"
	"github.com/Strob0t/CodeForge/internal/config"
	"github.com/Strob0t/CodeForge/internal/logger"
	"github.com/Strob0t/CodeForge/internal/port/notifier"
	"github.com/Strob0t/CodeForge/internal/ratelimit"
	"github.com/Strob0t/CodeForge/internal/resilience"
	"github.com/Strob0t/CodeForge/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Temporary bootstrap logger until config is loaded.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"auth_enabled", cfg.Auth.Enabled,
	)

	ctx := context.Background()

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	queue, err := cfnats.Connect(ctx, cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("nats: %w", err)
	}
	queue.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	shutdownTracer, err := otel.InitTracer(otel.OTELConfig{
		Enabled:     cfg.OTEL.Enabled,
		Endpoint:    cfg.OTEL.Endpoint,
		ServiceName: cfg.OTEL.ServiceName,
		Insecure:    cfg.OTEL.Insecure,
		SampleRate:  cfg.OTEL.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}

	l1Cache, err := ristretto.New(cfg.Cache.L1MaxSizeMB * 1024 * 1024)
	if err != nil {
		return fmt.Errorf("ristretto cache: %w", err)
	}

	// --- Services ---
	store := postgres.NewStore(pool)

	orgSvc := service.NewOrganizationService(store)
	projectSvc := service.NewProjectService(store)
	branchSvc := service.NewBranchService(store).WithCache(l1Cache)
	benchmarkSvc := service.NewBenchmarkService(store)
	testbedSvc := service.NewTestbedService(store)
	thresholdSvc := service.NewThresholdService(store)
	detectorSvc := service.NewDetectorService(store, slog.Default())
	tokenSvc := service.NewTokenService(store, &cfg.Auth)

	var notifiers []notifier.Notifier
	notificationSvc := service.NewNotificationService(notifiers, nil)
	notificationSvc.SetQueue(queue)

	otelMetrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}
	ingestSvc := service.NewIngestService(store, branchSvc, detectorSvc, cfg.Ingestion.DetectorConcurrency, notificationSvc, slog.Default()).
		WithMetrics(otelMetrics)

	if err := tokenSvc.BootstrapAdmin(ctx); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	tokenSvc.StartTokenCleanup(ctx, time.Hour)

	rates := ratelimit.NewRegistry(nil)
	cancelRateCleanup := rates.StartCleanup(cfg.Rate.CleanupInterval, cfg.Rate.MaxIdleTime)

	// --- HTTP ---
	handlers := &bchttp.Handlers{
		Organizations: orgSvc,
		Projects:      projectSvc,
		Branches:      branchSvc,
		Benchmarks:    benchmarkSvc,
		Testbeds:      testbedSvc,
		Thresholds:    thresholdSvc,
		Ingest:        ingestSvc,
		Tokens:        tokenSvc,
		Limits:        bchttp.Limits{MaxRequestBodySize: int64(cfg.Ingestion.MaxResultBlobBytes)},
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(otel.HTTPMiddleware(cfg.OTEL.ServiceName))

	bchttp.MountRoutes(r, handlers, tokenSvc, store, cfg.Auth.Enabled, rates, cfg.Server.CORSOrigin)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done

	// --- Ordered Graceful Shutdown ---
	slog.Info("shutdown phase 1: stopping HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}

	slog.Info("shutdown phase 2: stopping rate limiter cleanup")
	cancelRateCleanup()

	slog.Info("shutdown phase 3: draining NATS connection")
	if err := queue.Drain(); err != nil {
		slog.Error("nats drain error", "error", err)
	}

	slog.Info("shutdown phase 4: closing database pool")
	pool.Close()

	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Error("otel shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
