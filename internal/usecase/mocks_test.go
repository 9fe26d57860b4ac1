package usecase_test

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/address-data-service/internal/domain"
)

// MockOverpassRepository is a mock of OverpassRepository
type MockOverpassRepository struct {
	mock.Mock
}

func (m *MockOverpassRepository) GetCities(ctx context.Context) ([]domain.CityInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CityInfo), args.Error(1)
}

func (m *MockOverpassRepository) GetCity(ctx context.Context, areaID int64) (domain.CityInfo, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).(domain.CityInfo), args.Error(1)
}

func (m *MockOverpassRepository) GetAddresses(ctx context.Context, areaID int64) ([]domain.AddressRecord, error) {
	args := m.Called(ctx, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AddressRecord), args.Error(1)
}

func (m *MockOverpassRepository) GetLocation(ctx context.Context, areaID int64) (domain.Location, error) {
	args := m.Called(ctx, areaID)
	return args.Get(0).(domain.Location), args.Error(1)
}

// MockDocumentRepository is a mock of DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Insert(ctx context.Context, rows []domain.AddressRecord, location domain.Location) (*domain.SeededDocument, error) {
	args := m.Called(ctx, rows, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeededDocument), args.Error(1)
}

func (m *MockDocumentRepository) Get(ctx context.Context, location domain.Location) (*domain.SeededDocument, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeededDocument), args.Error(1)
}

func (m *MockDocumentRepository) GetAll(ctx context.Context) ([]domain.SeededDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeededDocument), args.Error(1)
}

// MockDocumentIndexRepository is a mock of DocumentIndexRepository
type MockDocumentIndexRepository struct {
	mock.Mock
}

func (m *MockDocumentIndexRepository) Upsert(ctx context.Context, location domain.Location, size int64) error {
	args := m.Called(ctx, location, size)
	return args.Error(0)
}

func (m *MockDocumentIndexRepository) GetLocation(ctx context.Context, areaID int64) (*domain.Location, error) {
	args := m.Called(ctx, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func makeAddresses(n int) []domain.AddressRecord {
	rows := make([]domain.AddressRecord, n)
	for i := range rows {
		rows[i] = domain.AddressRecord{
			HouseNumber: fmt.Sprintf("%d", i+1),
			Street:      "Main Street",
			Postcode:    "10115",
			Latitude:    "52.52",
			Longitude:   "13.40",
		}
	}
	return rows
}

func seededDocument(location domain.Location, size int64) *domain.SeededDocument {
	areaID := location.AreaID
	return &domain.SeededDocument{
		City:    location.City,
		State:   location.State,
		Country: location.Country,
		AreaID:  &areaID,
		Size:    size,
	}
}
