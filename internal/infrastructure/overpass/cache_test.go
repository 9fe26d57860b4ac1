package overpass

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/observability"
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

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) GetCity(ctx context.Context, areaID int64) (*domain.CityInfo, error) {
	args := m.Called(ctx, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CityInfo), args.Error(1)
}

func (m *MockCacheRepository) SetCity(ctx context.Context, city domain.CityInfo, ttl time.Duration) error {
	return m.Called(ctx, city, ttl).Error(0)
}

func (m *MockCacheRepository) GetLocation(ctx context.Context, areaID int64) (*domain.Location, error) {
	args := m.Called(ctx, areaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Location), args.Error(1)
}

func (m *MockCacheRepository) SetLocation(ctx context.Context, location domain.Location, ttl time.Duration) error {
	return m.Called(ctx, location, ttl).Error(0)
}

func TestCachedClient_GetCity(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	city := domain.CityInfo{AreaID: 10, City: "TestCity"}

	t.Run("hit skips upstream", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		metrics := observability.NewMetricsForTesting()
		cache.On("GetCity", ctx, int64(10)).Return(&city, nil)

		client := NewCachedClient(inner, cache, ttl, metrics, zap.NewNop())

		got, err := client.GetCity(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, city, got)
		inner.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.LookupCache.WithLabelValues("city", "hit")))
	})

	t.Run("miss stores found value", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		cache.On("GetCity", ctx, int64(10)).Return(nil, nil)
		inner.On("GetCity", ctx, int64(10)).Return(city, nil)
		cache.On("SetCity", ctx, city, ttl).Return(nil)

		client := NewCachedClient(inner, cache, ttl, nil, zap.NewNop())

		got, err := client.GetCity(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, city, got)
		cache.AssertExpectations(t)
		inner.AssertExpectations(t)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		cache.On("GetCity", ctx, int64(11)).Return(nil, nil)
		inner.On("GetCity", ctx, int64(11)).Return(domain.CityInfo{}, fmt.Errorf("city 11: %w", domain.ErrNotFound))

		client := NewCachedClient(inner, cache, ttl, nil, zap.NewNop())

		_, err := client.GetCity(ctx, 11)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		cache.AssertNotCalled(t, "SetCity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		cache.On("GetCity", ctx, int64(10)).Return(nil, errors.New("connection refused"))
		inner.On("GetCity", ctx, int64(10)).Return(city, nil)
		cache.On("SetCity", ctx, city, ttl).Return(errors.New("connection refused"))

		client := NewCachedClient(inner, cache, ttl, nil, zap.NewNop())

		got, err := client.GetCity(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, city, got)
	})
}

func TestCachedClient_GetLocation(t *testing.T) {
	ctx := context.Background()
	ttl := time.Hour
	location := domain.Location{AreaID: 10, City: "TestCity", State: "State", Country: "Country"}

	t.Run("miss then hit", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		cache.On("GetLocation", ctx, int64(10)).Return(nil, nil).Once()
		inner.On("GetLocation", ctx, int64(10)).Return(location, nil).Once()
		cache.On("SetLocation", ctx, location, ttl).Return(nil)
		cache.On("GetLocation", ctx, int64(10)).Return(&location, nil).Once()

		client := NewCachedClient(inner, cache, ttl, nil, zap.NewNop())

		first, err := client.GetLocation(ctx, 10)
		require.NoError(t, err)
		second, err := client.GetLocation(ctx, 10)
		require.NoError(t, err)

		assert.Equal(t, location, first)
		assert.Equal(t, location, second)
		inner.AssertNumberOfCalls(t, "GetLocation", 1)
	})

	t.Run("fetch error passes through", func(t *testing.T) {
		inner := new(MockOverpassRepository)
		cache := new(MockCacheRepository)
		cache.On("GetLocation", ctx, int64(12)).Return(nil, nil)
		inner.On("GetLocation", ctx, int64(12)).Return(domain.Location{}, &domain.FetchError{Query: "q", Err: errors.New("timeout")})

		client := NewCachedClient(inner, cache, ttl, nil, zap.NewNop())

		_, err := client.GetLocation(ctx, 12)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
		cache.AssertNotCalled(t, "SetLocation", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCachedClient_Passthrough(t *testing.T) {
	ctx := context.Background()
	inner := new(MockOverpassRepository)
	cache := new(MockCacheRepository)

	cities := []domain.CityInfo{{AreaID: 1, City: "A"}}
	addresses := []domain.AddressRecord{{HouseNumber: "1", Street: "S", Postcode: "P", Latitude: "1", Longitude: "2"}}
	inner.On("GetCities", ctx).Return(cities, nil)
	inner.On("GetAddresses", ctx, int64(1)).Return(addresses, nil)

	client := NewCachedClient(inner, cache, time.Hour, nil, zap.NewNop())

	gotCities, err := client.GetCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, cities, gotCities)

	gotAddresses, err := client.GetAddresses(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, addresses, gotAddresses)

	cache.AssertExpectations(t)
}
