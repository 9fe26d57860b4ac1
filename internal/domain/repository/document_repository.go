package repository

import (
	"context"

	"github.com/address-data-service/internal/domain"
)

// DocumentRepository хранит готовые наборы адресов по городам
type DocumentRepository interface {
	// Insert сохраняет адреса города и возвращает итоговый документ
	Insert(ctx context.Context, rows []domain.AddressRecord, location domain.Location) (*domain.SeededDocument, error)

	// Get возвращает документ для местоположения или nil, если его нет
	Get(ctx context.Context, location domain.Location) (*domain.SeededDocument, error)

	// GetAll возвращает все сохранённые документы
	GetAll(ctx context.Context) ([]domain.SeededDocument, error)
}

// DocumentIndexRepository - индекс засеянных документов по идентификатору области
type DocumentIndexRepository interface {
	// Upsert сохраняет или обновляет запись о документе
	Upsert(ctx context.Context, location domain.Location, size int64) error

	// GetLocation возвращает местоположение документа или nil, если области нет в индексе
	GetLocation(ctx context.Context, areaID int64) (*domain.Location, error)
}
