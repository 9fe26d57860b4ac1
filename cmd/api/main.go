package main

// @title Address Data Service API
// @version 1.0.0
// @description Сервис собирает наборы реальных адресов городов из OpenStreetMap через Overpass API.
// @description
// @description Основные возможности:
// @description - Добавление города по идентификатору области Overpass
// @description - Сидинг по списку городов с ограничением количества
// @description - Получение сохранённых документов с адресами

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/address-data-service/docs"
	"github.com/address-data-service/internal/app"
	"github.com/address-data-service/internal/config"
	httpDelivery "github.com/address-data-service/internal/delivery/http"
	"github.com/address-data-service/internal/delivery/http/handler"
	"github.com/address-data-service/internal/observability"
	"github.com/address-data-service/internal/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Address Data Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("overpass_url", cfg.Overpass.BaseURL),
	)

	// 3. Metrics
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics()
	}

	// 4. Storage, Overpass client and use cases
	deps, err := app.New(cfg, log, metrics)
	if err != nil {
		log.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// 5. HTTP handlers and server
	documentHandler := handler.NewDocumentHandler(deps.SeedingUC, deps.DocumentUC, log)

	checks := make([]httpDelivery.HealthCheck, 0)
	for name, check := range deps.HealthChecks() {
		checks = append(checks, httpDelivery.HealthCheck{Name: name, Check: check})
	}

	server := httpDelivery.NewServer(cfg, log, documentHandler, checks...)

	// 6. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
