package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/config"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/mansoorceksport/workoutlog/internal/server"
	"github.com/mansoorceksport/workoutlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.App.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("starting workout log service", "storage", cfg.App.StorageBackend, "timezone", cfg.App.Timezone)

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, cfg.OTEL, appLog)
	if err != nil {
		appLog.Warn("failed to initialize OpenTelemetry", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	storage, closeStorage, err := repository.OpenStorage(ctx, cfg)
	if err != nil {
		appLog.Fatal("failed to open storage", "error", err)
	}
	defer closeStorage()
	appLog.Info("storage ready", "backend", cfg.App.StorageBackend)

	// Redis is optional: without it plans are read uncached and idempotency is off
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLog.Warn("redis unavailable, continuing without cache", "addr", cfg.Redis.Addr, "error", err)
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("redis connected", "addr", cfg.Redis.Addr)
		}
	}

	var archive domain.FileRepository
	if cfg.S3.Enabled() {
		s3Archive, err := repository.NewS3ArchiveRepository(ctx, cfg.S3)
		if err != nil {
			appLog.Warn("import archive disabled", "endpoint", cfg.S3.Endpoint, "error", err)
		} else {
			archive = s3Archive
			appLog.Info("import archive enabled", "bucket", cfg.S3.Bucket)
		}
	}

	app, err := server.NewApp(server.AppDependencies{
		Config:      cfg,
		Logger:      appLog,
		Storage:     storage,
		RedisClient: redisClient,
		Archive:     archive,
	})
	if err != nil {
		appLog.Fatal("failed to build app", "error", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		appLog.Info("shutting down gracefully")
		_ = app.Shutdown()
	}()

	appLog.Info("server starting", "port", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		appLog.Error("server stopped", "error", err)
	}
}
