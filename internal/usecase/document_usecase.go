package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
	apperrors "github.com/address-data-service/internal/pkg/errors"
	"github.com/address-data-service/internal/usecase/dto"
)

// DocumentUseCase - use case для чтения засеянных документов
type DocumentUseCase struct {
	overpassRepo repository.OverpassRepository
	documentRepo repository.DocumentRepository
	indexRepo    repository.DocumentIndexRepository
	logger       *zap.Logger
}

// NewDocumentUseCase - создание нового DocumentUseCase. indexRepo может быть nil.
func NewDocumentUseCase(
	overpassRepo repository.OverpassRepository,
	documentRepo repository.DocumentRepository,
	indexRepo repository.DocumentIndexRepository,
	logger *zap.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		overpassRepo: overpassRepo,
		documentRepo: documentRepo,
		indexRepo:    indexRepo,
		logger:       logger,
	}
}

// GetDocument возвращает документ для области.
// Местоположение берётся из индекса, а при его отсутствии запрашивается у Overpass.
func (uc *DocumentUseCase) GetDocument(ctx context.Context, areaID int64) (*dto.AddressDocumentResponse, error) {
	if !domain.ValidAreaID(areaID) {
		return nil, apperrors.ErrInvalidAreaID
	}

	location, err := uc.resolveLocation(ctx, areaID)
	if err != nil {
		return nil, err
	}

	doc, err := uc.documentRepo.Get(ctx, *location)
	if err != nil {
		uc.logger.Error("Failed to read document",
			zap.Int64("area_id", areaID),
			zap.Error(err))
		return nil, apperrors.ErrStorageError
	}
	if doc == nil {
		return nil, apperrors.ErrDocumentNotFound
	}

	return dto.NewAddressDocumentResponse(doc), nil
}

// GetAll возвращает все документы
func (uc *DocumentUseCase) GetAll(ctx context.Context) (*dto.AddressDocumentsResponse, error) {
	docs, err := uc.documentRepo.GetAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to list documents", zap.Error(err))
		return nil, apperrors.ErrStorageError
	}

	return dto.NewAddressDocumentsResponse(docs), nil
}

func (uc *DocumentUseCase) resolveLocation(ctx context.Context, areaID int64) (*domain.Location, error) {
	if uc.indexRepo != nil {
		location, err := uc.indexRepo.GetLocation(ctx, areaID)
		if err != nil {
			uc.logger.Warn("Document index lookup failed",
				zap.Int64("area_id", areaID),
				zap.Error(err))
		} else if location != nil {
			return location, nil
		}
	}

	location, err := uc.overpassRepo.GetLocation(ctx, areaID)
	switch {
	case err == nil:
		return &location, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, apperrors.ErrLocationNotFound
	default:
		uc.logger.Error("Failed to resolve location",
			zap.Int64("area_id", areaID),
			zap.Error(err))
		return nil, apperrors.FromDomain(err)
	}
}
