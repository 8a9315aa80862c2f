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

	"github.com/aryan0dhankhar/storefront/internal/app"
	"github.com/aryan0dhankhar/storefront/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/storefront/internal/observability/tracing"
	"github.com/aryan0dhankhar/storefront/internal/worker"
	"github.com/aryan0dhankhar/storefront/pkg/config"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting storefront server",
		slog.String("environment", cfg.Environment),
		slog.String("base_domain", cfg.Site.BaseDomain),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing
	shutdownTracing, err := tracing.Init(ctx, log, "storefront", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Storage
	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(); err != nil {
			log.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	if store.DB == nil {
		if _, err := app.SeedTemplates(ctx, store.Templates, log); err != nil {
			log.Error("failed to seed templates", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 5. Services, security and routes
	srv := app.NewServer(cfg, store, log)
	defer srv.Stop()

	// 6. Background workers
	statsWorker := worker.NewStatsWorker(store.Sites, log, cfg.Site.StatsInterval)
	go statsWorker.Start(ctx)

	// 7. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	log.Info("server starting",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage", cfg.Database.Driver),
		slog.Bool("redis", store.Redis != nil),
		slog.Int("content_rate_limit", cfg.RateLimit.ContentPerMinute),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracing shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	log.Info("server stopped")
}
