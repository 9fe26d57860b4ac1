package repository

import (
	"context"
	"time"

	"github.com/address-data-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу (nil при промахе)
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetCity получает город из кеша
	GetCity(ctx context.Context, areaID int64) (*domain.CityInfo, error)

	// SetCity сохраняет город в кеше
	SetCity(ctx context.Context, city domain.CityInfo, ttl time.Duration) error

	// GetLocation получает местоположение из кеша
	GetLocation(ctx context.Context, areaID int64) (*domain.Location, error)

	// SetLocation сохраняет местоположение в кеше
	SetLocation(ctx context.Context, location domain.Location, ttl time.Duration) error
}
