// Package main is the entry point for the Bill Tracker API server.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/bill-tracker/backend/config"
	"github.com/bill-tracker/backend/internal/infra/db"
	"github.com/bill-tracker/backend/internal/infra/dependency"
	"github.com/bill-tracker/backend/internal/infra/logging"
	"github.com/bill-tracker/backend/internal/infra/scheduler"
	"github.com/bill-tracker/backend/internal/integration/cache"
	"github.com/bill-tracker/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	logging.Setup(cfg.Server.Environment, cfg.Log.Level)

	slog.Info("Starting Bill Tracker API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"billing_timezone", cfg.Billing.Location().String(),
	)

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := database.AutoMigrate(model.All()...); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed successfully")

	// The forecast cache is optional; the API runs without it.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewClient(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			slog.Warn("Redis connection failed, forecast cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	injector := dependency.NewInjector(cfg, database.DB(), redisClient, nil)

	// Catch up on the time the process was down before serving or scheduling.
	if cfg.Scheduler.RunOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		injector.Reconciler.Run(ctx)
		cancel()
	}

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(cfg.Billing.Location())
		if err := injector.RegisterJobs(jobs); err != nil {
			slog.Error("Failed to register scheduled jobs", "error", err)
			os.Exit(1)
		}
		jobs.Start()
	}

	engine := injector.Router.Setup(cfg.Server.Environment)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if jobs != nil {
		jobs.Stop(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
