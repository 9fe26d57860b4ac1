package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
)

type documentIndexRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentIndexRepository создает индекс засеянных документов
func NewDocumentIndexRepository(db *DB) repository.DocumentIndexRepository {
	return &documentIndexRepository{
		db:     db,
		logger: db.logger,
	}
}

// Upsert сохраняет местоположение и размер документа; повторный сидинг обновляет запись
func (r *documentIndexRepository) Upsert(ctx context.Context, location domain.Location, size int64) error {
	query := `
		INSERT INTO seeded_documents (area_id, city, state, country, size)
		VALUES (:area_id, :city, :state, :country, :size)
		ON CONFLICT (area_id) DO UPDATE SET
			city       = EXCLUDED.city,
			state      = EXCLUDED.state,
			country    = EXCLUDED.country,
			size       = EXCLUDED.size,
			updated_at = NOW()
	`

	args := map[string]interface{}{
		"area_id": location.AreaID,
		"city":    location.City,
		"state":   location.State,
		"country": location.Country,
		"size":    size,
	}

	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		r.logger.Error("Failed to upsert seeded document",
			zap.Int64("area_id", location.AreaID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert seeded document %d: %w", location.AreaID, err)
	}

	return nil
}

// GetLocation возвращает местоположение документа или nil, если области нет в индексе
func (r *documentIndexRepository) GetLocation(ctx context.Context, areaID int64) (*domain.Location, error) {
	query := `
		SELECT area_id, city, state, country
		FROM seeded_documents
		WHERE area_id = $1
	`

	var location domain.Location
	err := r.db.GetContext(ctx, &location, query, areaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get seeded document",
			zap.Int64("area_id", areaID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get seeded document %d: %w", areaID, err)
	}

	return &location, nil
}
