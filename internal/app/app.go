// Package app собирает зависимости сервиса: хранилища, клиент Overpass и use case.
// Используется всеми командами из cmd/.
package app

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/infrastructure/overpass"
	"github.com/address-data-service/internal/observability"
	"github.com/address-data-service/internal/repository/cache"
	"github.com/address-data-service/internal/repository/filestore"
	"github.com/address-data-service/internal/repository/postgres"
	"github.com/address-data-service/internal/usecase"
)

// App - собранные зависимости
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	// Redis и DB равны nil, если выключены в конфигурации
	Redis *cache.Redis
	DB    *postgres.DB

	Overpass  repository.OverpassRepository
	Documents repository.DocumentRepository
	Index     repository.DocumentIndexRepository

	SeedingUC  *usecase.SeedingUseCase
	DocumentUC *usecase.DocumentUseCase
}

// New подключает хранилища и создаёт use case.
// metrics может быть nil.
func New(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
	}

	if cfg.Redis.Enabled {
		r, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = r
	}

	if cfg.Database.Enabled {
		db, err := postgres.New(&cfg.Database, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.DB = db
		a.Index = postgres.NewDocumentIndexRepository(db)
	}

	a.Overpass = overpass.NewClient(&cfg.Overpass, metrics, logger)
	if a.Redis != nil && cfg.Cache.LookupTTL > 0 {
		a.Overpass = overpass.NewCachedClient(
			a.Overpass,
			cache.NewCacheRepository(a.Redis),
			cfg.Cache.LookupTTL,
			metrics,
			logger,
		)
	}

	a.Documents = filestore.NewDocumentRepository(cfg.Storage.OutputDir, logger)

	a.SeedingUC = usecase.NewSeedingUseCase(
		a.Overpass,
		a.Documents,
		a.Index,
		&cfg.Seeding,
		clockwork.NewRealClock(),
		metrics,
		logger,
	)
	a.DocumentUC = usecase.NewDocumentUseCase(a.Overpass, a.Documents, a.Index, logger)

	logger.Info("Dependencies initialized",
		zap.Bool("redis", a.Redis != nil),
		zap.Bool("postgres", a.DB != nil),
		zap.String("output_dir", cfg.Storage.OutputDir))

	return a, nil
}

// HealthChecks возвращает проверки подключённых хранилищ
func (a *App) HealthChecks() map[string]func(ctx context.Context) error {
	checks := make(map[string]func(ctx context.Context) error)
	if a.Redis != nil {
		checks["redis"] = a.Redis.Health
	}
	if a.DB != nil {
		checks["postgres"] = a.DB.Health
	}
	return checks
}

// Close закрывает подключения
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}
}
