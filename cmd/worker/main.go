package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/address-data-service/internal/app"
	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/observability"
	"github.com/address-data-service/internal/pkg/logger"
	redisRepo "github.com/address-data-service/internal/repository/redis"
	"github.com/address-data-service/internal/worker"
	"github.com/address-data-service/internal/worker/seeding"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	if !cfg.Redis.Enabled {
		fmt.Println("Worker reads requests from Redis Streams. Set REDIS_ENABLED=true to enable.")
		os.Exit(1)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Address Seeding Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int64("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries))

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// 3. Storage, Overpass client and use cases
	deps, err := app.New(cfg, log, metrics)
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// 4. Initialize workers
	streamRepo := redisRepo.NewStreamRepository(deps.Redis.Client(), cfg.Worker.StreamReadTimeout, log)
	seedingWorker := seeding.NewSeedingWorker(streamRepo, deps.SeedingUC, &cfg.Worker, log)

	workerManager := worker.NewWorkerManager(log, 0)
	workerManager.Register(seedingWorker)

	// 5. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
