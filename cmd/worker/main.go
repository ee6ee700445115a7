package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/jupiterclapton/cenackle/services/wall-service/config"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/primary/worker"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/eventbroker"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/adapters/secondary/repository"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/core/services"
	"github.com/jupiterclapton/cenackle/services/wall-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Env)
	slog.Info("🚀 Starting Pending Worker", "env", cfg.Env, "interval", cfg.WorkerInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.InitTracer(ctx, cfg.OtelEndpoint, cfg.ServiceName+"-worker", cfg.Env)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	rdb, err := repository.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("Unable to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	slog.Info("✅ Connected to Redis")

	nc, err := nats.Connect(cfg.NatsUrl)
	if err != nil {
		slog.Error("Unable to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer nc.Close()
	slog.Info("✅ Connected to NATS")

	pending := services.NewPendingService(repository.NewRedisPostRepo(rdb), eventbroker.NewNatsPublisher(nc))
	loop := worker.NewPendingLoop(pending, cfg.WorkerInterval)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	// Vide ce qui reste en buffer côté client NATS
	if err := nc.Flush(); err != nil {
		slog.Warn("NATS flush failed", "error", err)
	}
	slog.Info("👋 Worker exited")
}
