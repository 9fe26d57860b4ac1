package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/observability"
)

const (
	outcomeSeeded   = "seeded"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// SeedingUseCase - use case для наполнения хранилища адресами городов
type SeedingUseCase struct {
	overpassRepo repository.OverpassRepository
	documentRepo repository.DocumentRepository
	indexRepo    repository.DocumentIndexRepository
	minAddresses int
	delay        time.Duration
	clock        clockwork.Clock
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewSeedingUseCase - создание нового SeedingUseCase.
// indexRepo и metrics могут быть nil.
func NewSeedingUseCase(
	overpassRepo repository.OverpassRepository,
	documentRepo repository.DocumentRepository,
	indexRepo repository.DocumentIndexRepository,
	cfg *config.SeedingConfig,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SeedingUseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &SeedingUseCase{
		overpassRepo: overpassRepo,
		documentRepo: documentRepo,
		indexRepo:    indexRepo,
		minAddresses: cfg.MinAddresses,
		delay:        cfg.Delay,
		clock:        clock,
		metrics:      metrics,
		logger:       logger,
	}
}

// AddCity проверяет город и сохраняет документ с его адресами.
// Ошибки проверки возвращаются как *domain.ValidationError.
func (uc *SeedingUseCase) AddCity(ctx context.Context, areaID int64) (*domain.SeededDocument, error) {
	if !domain.ValidAreaID(areaID) {
		return nil, uc.reject(domain.NewValidationError(domain.ErrInvalidAreaID, nil,
			"Please provide a valid AreaId. It must be a positive number. AreaId provided: %d.", areaID))
	}

	city, err := uc.overpassRepo.GetCity(ctx, areaID)
	if err == nil && domain.IsBlank(city.City) {
		err = domain.ErrNotFound
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, uc.reject(domain.NewValidationError(domain.ErrCityNotFound, err,
			"City with AreaId %d not found in Overpass Turbo. Please try another city", areaID))
	}

	rows, err := uc.overpassRepo.GetAddresses(ctx, areaID)
	if err == nil && len(rows) < uc.minAddresses {
		err = domain.ErrNotFound
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, uc.reject(domain.NewValidationError(domain.ErrNotEnoughAddresses, err,
			"The number of addresses in %d is small.", areaID))
	}

	location, err := uc.overpassRepo.GetLocation(ctx, areaID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, uc.reject(domain.NewValidationError(domain.ErrInvalidLocation, err,
			"The city description in %d is invalid.", areaID))
	}

	doc, err := uc.documentRepo.Insert(ctx, rows, location)
	if err != nil {
		uc.observe(outcomeFailed)
		uc.logger.Error("Failed to insert document",
			zap.Int64("area_id", areaID),
			zap.String("city", location.City),
			zap.Error(err))
		return nil, fmt.Errorf("insert document for area %d: %w", areaID, err)
	}

	if uc.indexRepo != nil {
		if err := uc.indexRepo.Upsert(ctx, location, doc.Size); err != nil {
			uc.logger.Warn("Failed to index document",
				zap.Int64("area_id", areaID),
				zap.Error(err))
		}
	}

	uc.observe(outcomeSeeded)
	if uc.metrics != nil {
		uc.metrics.DocumentSize.Observe(float64(doc.Size))
	}

	uc.logger.Info("City seeded",
		zap.Int64("area_id", areaID),
		zap.String("city", doc.City),
		zap.String("state", doc.State),
		zap.String("country", doc.Country),
		zap.Int64("size", doc.Size))

	return doc, nil
}

// RunSeeding обходит все города и добавляет их по очереди, пока не наберётся limit документов.
// limit == nil означает без ограничения. Ошибка по отдельному городу не прерывает обход.
// При отмене контекста возвращаются уже засеянные документы и ctx.Err().
func (uc *SeedingUseCase) RunSeeding(ctx context.Context, limit *int64) ([]domain.SeededDocument, error) {
	cities, err := uc.overpassRepo.GetCities(ctx)
	if err != nil {
		uc.logger.Error("Failed to get cities", zap.Error(err))
		return nil, fmt.Errorf("get cities: %w", err)
	}

	uc.logger.Info("Running seeding", zap.Int("cities_count", len(cities)))

	if uc.metrics != nil {
		uc.metrics.SeedingRunning.Set(1)
		defer uc.metrics.SeedingRunning.Set(0)
	}

	result := make([]domain.SeededDocument, 0)

	for _, city := range cities {
		if err := uc.wait(ctx); err != nil {
			uc.logger.Warn("Seeding cancelled", zap.Int("seeded", len(result)))
			return result, err
		}

		if limit != nil && int64(len(result)) >= *limit {
			break
		}

		uc.logger.Info("Trying to add city",
			zap.String("city", city.City),
			zap.Int64("area_id", city.AreaID))

		doc, err := uc.AddCity(ctx, city.AreaID)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			uc.logger.Error("Failed to add city",
				zap.String("city", city.City),
				zap.Int64("area_id", city.AreaID),
				zap.Error(err))
			continue
		}

		result = append(result, *doc)
	}

	uc.logger.Info("Seeding finished", zap.Int("seeded", len(result)))

	return result, nil
}

// wait выдерживает паузу между городами
func (uc *SeedingUseCase) wait(ctx context.Context) error {
	if uc.delay <= 0 {
		return ctx.Err()
	}

	timer := uc.clock.NewTimer(uc.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}

func (uc *SeedingUseCase) reject(err *domain.ValidationError) error {
	outcome := outcomeRejected
	if errors.Is(err, domain.ErrFetchFailed) {
		outcome = outcomeFailed
	}
	uc.observe(outcome)

	uc.logger.Debug("City rejected",
		zap.String("reason", err.Reason.Error()),
		zap.Error(err))

	return err
}

func (uc *SeedingUseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SeedingAttempts.WithLabelValues(outcome).Inc()
	}
}
