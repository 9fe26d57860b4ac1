package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/observability"
	"github.com/address-data-service/internal/usecase"
)

var berlin = domain.Location{AreaID: 3600062422, City: "Berlin", State: "Berlin", Country: "Germany"}

func newSeedingUseCase(
	overpass *MockOverpassRepository,
	docs *MockDocumentRepository,
	index *MockDocumentIndexRepository,
	delay time.Duration,
	clock clockwork.Clock,
	metrics *observability.Metrics,
) *usecase.SeedingUseCase {
	cfg := &config.SeedingConfig{MinAddresses: 50, Delay: delay}
	if index == nil {
		return usecase.NewSeedingUseCase(overpass, docs, nil, cfg, clock, metrics, zap.NewNop())
	}
	return usecase.NewSeedingUseCase(overpass, docs, index, cfg, clock, metrics, zap.NewNop())
}

func TestSeedingUseCase_AddCity(t *testing.T) {
	ctx := context.Background()
	cityInfo := domain.CityInfo{AreaID: berlin.AreaID, City: "Berlin"}

	t.Run("success", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		index := &MockDocumentIndexRepository{}
		metrics := observability.NewMetricsForTesting()
		uc := newSeedingUseCase(overpass, docs, index, 0, nil, metrics)

		rows := makeAddresses(50)
		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(rows, nil)
		overpass.On("GetLocation", ctx, berlin.AreaID).Return(berlin, nil)
		docs.On("Insert", ctx, rows, berlin).Return(seededDocument(berlin, 50), nil)
		index.On("Upsert", ctx, berlin, int64(50)).Return(nil)

		doc, err := uc.AddCity(ctx, berlin.AreaID)

		require.NoError(t, err)
		assert.Equal(t, "Berlin", doc.City)
		assert.Equal(t, "Germany", doc.Country)
		assert.Equal(t, int64(50), doc.Size)
		require.NotNil(t, doc.AreaID)
		assert.Equal(t, berlin.AreaID, *doc.AreaID)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SeedingAttempts.WithLabelValues("seeded")))

		overpass.AssertExpectations(t)
		docs.AssertExpectations(t)
		index.AssertExpectations(t)
	})

	t.Run("non-positive area id makes no calls", func(t *testing.T) {
		for _, areaID := range []int64{0, -5} {
			overpass := &MockOverpassRepository{}
			docs := &MockDocumentRepository{}
			uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

			doc, err := uc.AddCity(ctx, areaID)

			assert.Nil(t, doc)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, domain.ErrInvalidAreaID)
			assert.Contains(t, err.Error(), "It must be a positive number")
			overpass.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything)
			docs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("city not found", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		metrics := observability.NewMetricsForTesting()
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, metrics)

		overpass.On("GetCity", ctx, int64(42)).Return(domain.CityInfo{}, domain.ErrNotFound)

		_, err := uc.AddCity(ctx, 42)

		assert.ErrorIs(t, err, domain.ErrCityNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "not found in Overpass Turbo")
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SeedingAttempts.WithLabelValues("rejected")))
		overpass.AssertNotCalled(t, "GetAddresses", mock.Anything, mock.Anything)
	})

	t.Run("blank city name is treated as not found", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, nil)

		overpass.On("GetCity", ctx, int64(42)).Return(domain.CityInfo{AreaID: 42, City: "  "}, nil)

		_, err := uc.AddCity(ctx, 42)

		assert.ErrorIs(t, err, domain.ErrCityNotFound)
	})

	t.Run("fetch failure keeps the cause", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		metrics := observability.NewMetricsForTesting()
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, metrics)

		fetchErr := &domain.FetchError{Query: "city", Err: errors.New("status 504")}
		overpass.On("GetCity", ctx, int64(42)).Return(domain.CityInfo{}, fetchErr)

		_, err := uc.AddCity(ctx, 42)

		var fe *domain.FetchError
		assert.ErrorAs(t, err, &fe)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SeedingAttempts.WithLabelValues("failed")))
	})

	t.Run("49 addresses are not enough", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(makeAddresses(49), nil)

		_, err := uc.AddCity(ctx, berlin.AreaID)

		assert.ErrorIs(t, err, domain.ErrNotEnoughAddresses)
		assert.Equal(t, "The number of addresses in 3600062422 is small.", err.Error())
		overpass.AssertNotCalled(t, "GetLocation", mock.Anything, mock.Anything)
		docs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no addresses", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, nil)

		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(nil, domain.ErrNotFound)

		_, err := uc.AddCity(ctx, berlin.AreaID)

		assert.ErrorIs(t, err, domain.ErrNotEnoughAddresses)
	})

	t.Run("location not resolved", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(makeAddresses(60), nil)
		overpass.On("GetLocation", ctx, berlin.AreaID).Return(domain.Location{}, domain.ErrNotFound)

		_, err := uc.AddCity(ctx, berlin.AreaID)

		assert.ErrorIs(t, err, domain.ErrInvalidLocation)
		assert.Equal(t, "The city description in 3600062422 is invalid.", err.Error())
		docs.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("insert failure is not a validation error", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		rows := makeAddresses(50)
		storageErr := errors.New("disk full")
		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(rows, nil)
		overpass.On("GetLocation", ctx, berlin.AreaID).Return(berlin, nil)
		docs.On("Insert", ctx, rows, berlin).Return(nil, storageErr)

		_, err := uc.AddCity(ctx, berlin.AreaID)

		assert.ErrorIs(t, err, storageErr)
		assert.NotErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("index failure does not fail the city", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		index := &MockDocumentIndexRepository{}
		uc := newSeedingUseCase(overpass, docs, index, 0, nil, nil)

		rows := makeAddresses(50)
		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(rows, nil)
		overpass.On("GetLocation", ctx, berlin.AreaID).Return(berlin, nil)
		docs.On("Insert", ctx, rows, berlin).Return(seededDocument(berlin, 50), nil)
		index.On("Upsert", ctx, berlin, int64(50)).Return(errors.New("connection refused"))

		doc, err := uc.AddCity(ctx, berlin.AreaID)

		require.NoError(t, err)
		assert.Equal(t, int64(50), doc.Size)
	})

	t.Run("adding the same city twice gives the same document", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		rows := makeAddresses(55)
		overpass.On("GetCity", ctx, berlin.AreaID).Return(cityInfo, nil)
		overpass.On("GetAddresses", ctx, berlin.AreaID).Return(rows, nil)
		overpass.On("GetLocation", ctx, berlin.AreaID).Return(berlin, nil)
		docs.On("Insert", ctx, rows, berlin).Return(seededDocument(berlin, 55), nil)

		first, err := uc.AddCity(ctx, berlin.AreaID)
		require.NoError(t, err)
		second, err := uc.AddCity(ctx, berlin.AreaID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		docs.AssertNumberOfCalls(t, "Insert", 2)
	})
}

func TestSeedingUseCase_RunSeeding(t *testing.T) {
	ctx := context.Background()

	cities := []domain.CityInfo{
		{AreaID: 1, City: "Alpha"},
		{AreaID: 2, City: "Beta"},
		{AreaID: 3, City: "Gamma"},
	}

	expectCity := func(overpass *MockOverpassRepository, docs *MockDocumentRepository, city domain.CityInfo) {
		location := domain.Location{AreaID: city.AreaID, City: city.City, State: "State", Country: "Country"}
		rows := makeAddresses(50)
		overpass.On("GetCity", mock.Anything, city.AreaID).Return(city, nil)
		overpass.On("GetAddresses", mock.Anything, city.AreaID).Return(rows, nil)
		overpass.On("GetLocation", mock.Anything, city.AreaID).Return(location, nil)
		docs.On("Insert", mock.Anything, rows, location).Return(seededDocument(location, 50), nil)
	}

	t.Run("stops at limit", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return(cities, nil)
		expectCity(overpass, docs, cities[0])
		expectCity(overpass, docs, cities[1])

		limit := int64(2)
		result, err := uc.RunSeeding(ctx, &limit)

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Alpha", result[0].City)
		assert.Equal(t, "Beta", result[1].City)
		overpass.AssertNotCalled(t, "GetCity", mock.Anything, int64(3))
	})

	t.Run("nil limit seeds every city", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return(cities, nil)
		for _, c := range cities {
			expectCity(overpass, docs, c)
		}

		result, err := uc.RunSeeding(ctx, nil)

		require.NoError(t, err)
		assert.Len(t, result, 3)
	})

	t.Run("zero limit seeds nothing", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return(cities, nil)

		limit := int64(0)
		result, err := uc.RunSeeding(ctx, &limit)

		require.NoError(t, err)
		assert.Empty(t, result)
		overpass.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything)
	})

	t.Run("failed cities are skipped", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		uc := newSeedingUseCase(overpass, docs, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return(cities, nil)
		overpass.On("GetCity", mock.Anything, int64(1)).Return(cities[0], nil)
		overpass.On("GetAddresses", mock.Anything, int64(1)).Return(makeAddresses(10), nil)
		overpass.On("GetCity", mock.Anything, int64(2)).
			Return(domain.CityInfo{}, &domain.FetchError{Query: "city", Err: errors.New("timeout")})
		expectCity(overpass, docs, cities[2])

		limit := int64(5)
		result, err := uc.RunSeeding(ctx, &limit)

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Gamma", result[0].City)
	})

	t.Run("city list failure seeds nothing", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return(nil, &domain.FetchError{Query: "cities", Err: errors.New("status 503")})

		result, err := uc.RunSeeding(ctx, nil)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("empty city list", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		uc := newSeedingUseCase(overpass, &MockDocumentRepository{}, nil, 0, nil, nil)

		overpass.On("GetCities", ctx).Return([]domain.CityInfo{}, nil)

		result, err := uc.RunSeeding(ctx, nil)

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("delay precedes every attempt and cancellation keeps progress", func(t *testing.T) {
		overpass := &MockOverpassRepository{}
		docs := &MockDocumentRepository{}
		clock := clockwork.NewFakeClock()
		metrics := observability.NewMetricsForTesting()
		uc := newSeedingUseCase(overpass, docs, nil, time.Second, clock, metrics)

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		overpass.On("GetCities", runCtx).Return(cities, nil)
		expectCity(overpass, docs, cities[0])

		type outcome struct {
			docs []domain.SeededDocument
			err  error
		}
		done := make(chan outcome, 1)
		go func() {
			result, err := uc.RunSeeding(runCtx, nil)
			done <- outcome{result, err}
		}()

		waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
		defer waitCancel()

		// Первый город ждёт паузу
		require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
		overpass.AssertNotCalled(t, "GetCity", mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SeedingRunning))
		clock.Advance(time.Second)

		// Второй город снова ждёт, отменяем во время паузы
		require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
		cancel()

		select {
		case res := <-done:
			assert.ErrorIs(t, res.err, context.Canceled)
			require.Len(t, res.docs, 1)
			assert.Equal(t, "Alpha", res.docs[0].City)
		case <-time.After(5 * time.Second):
			t.Fatal("RunSeeding did not return after cancellation")
		}

		overpass.AssertNotCalled(t, "GetCity", mock.Anything, int64(2))
		assert.Equal(t, 0.0, testutil.ToFloat64(metrics.SeedingRunning))
	})
}
