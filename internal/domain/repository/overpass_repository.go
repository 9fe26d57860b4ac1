package repository

import (
	"context"

	"github.com/address-data-service/internal/domain"
)

// OverpassRepository определяет методы получения данных из Overpass API.
//
// Ошибки: domain.ErrNotFound - запрос выполнен, но пригодных данных нет;
// *domain.FetchError - транспортная ошибка или ошибка разбора ответа.
type OverpassRepository interface {
	// GetCities возвращает все города; невалидные строки отбрасываются
	GetCities(ctx context.Context) ([]domain.CityInfo, error)

	// GetCity возвращает город по идентификатору области
	GetCity(ctx context.Context, areaID int64) (domain.CityInfo, error)

	// GetAddresses возвращает адреса внутри области
	GetAddresses(ctx context.Context, areaID int64) ([]domain.AddressRecord, error)

	// GetLocation определяет город, регион и страну для области
	GetLocation(ctx context.Context, areaID int64) (domain.Location, error)
}
