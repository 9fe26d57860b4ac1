package overpass

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/observability"
)

// cachedClient кеширует GetCity и GetLocation.
// Кешируются только найденные значения, чтобы временное "не найдено" можно было повторить.
type cachedClient struct {
	inner   repository.OverpassRepository
	cache   repository.CacheRepository
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCachedClient оборачивает клиент Overpass кешем
func NewCachedClient(
	inner repository.OverpassRepository,
	cache repository.CacheRepository,
	ttl time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) repository.OverpassRepository {
	return &cachedClient{
		inner:   inner,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *cachedClient) GetCities(ctx context.Context) ([]domain.CityInfo, error) {
	return c.inner.GetCities(ctx)
}

func (c *cachedClient) GetAddresses(ctx context.Context, areaID int64) ([]domain.AddressRecord, error) {
	return c.inner.GetAddresses(ctx, areaID)
}

func (c *cachedClient) GetCity(ctx context.Context, areaID int64) (domain.CityInfo, error) {
	cached, err := c.cache.GetCity(ctx, areaID)
	if err != nil {
		c.logger.Warn("Failed to read city from cache", zap.Int64("area_id", areaID), zap.Error(err))
	}
	if cached != nil {
		c.observe("city", "hit")
		return *cached, nil
	}
	c.observe("city", "miss")

	city, err := c.inner.GetCity(ctx, areaID)
	if err != nil {
		return city, err
	}

	if err := c.cache.SetCity(ctx, city, c.ttl); err != nil {
		c.logger.Warn("Failed to cache city", zap.Int64("area_id", areaID), zap.Error(err))
	}

	return city, nil
}

func (c *cachedClient) GetLocation(ctx context.Context, areaID int64) (domain.Location, error) {
	cached, err := c.cache.GetLocation(ctx, areaID)
	if err != nil {
		c.logger.Warn("Failed to read location from cache", zap.Int64("area_id", areaID), zap.Error(err))
	}
	if cached != nil {
		c.observe("location", "hit")
		return *cached, nil
	}
	c.observe("location", "miss")

	location, err := c.inner.GetLocation(ctx, areaID)
	if err != nil {
		return location, err
	}

	if err := c.cache.SetLocation(ctx, location, c.ttl); err != nil {
		c.logger.Warn("Failed to cache location", zap.Int64("area_id", areaID), zap.Error(err))
	}

	return location, nil
}

func (c *cachedClient) observe(method, result string) {
	if c.metrics != nil {
		c.metrics.LookupCache.WithLabelValues(method, result).Inc()
	}
}
