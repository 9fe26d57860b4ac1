package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
)

const (
	cityKeyPrefix     = "overpass:city:"
	locationKeyPrefix = "overpass:location:"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// GetCity получает город из кеша
func (r *cacheRepository) GetCity(ctx context.Context, areaID int64) (*domain.CityInfo, error) {
	var city domain.CityInfo
	found, err := r.getJSON(ctx, cityKey(areaID), &city)
	if err != nil || !found {
		return nil, err
	}
	return &city, nil
}

// SetCity сохраняет город в кеше
func (r *cacheRepository) SetCity(ctx context.Context, city domain.CityInfo, ttl time.Duration) error {
	return r.setJSON(ctx, cityKey(city.AreaID), city, ttl)
}

// GetLocation получает местоположение из кеша
func (r *cacheRepository) GetLocation(ctx context.Context, areaID int64) (*domain.Location, error) {
	var location domain.Location
	found, err := r.getJSON(ctx, locationKey(areaID), &location)
	if err != nil || !found {
		return nil, err
	}
	return &location, nil
}

// SetLocation сохраняет местоположение в кеше
func (r *cacheRepository) SetLocation(ctx context.Context, location domain.Location, ttl time.Duration) error {
	return r.setJSON(ctx, locationKey(location.AreaID), location, ttl)
}

func (r *cacheRepository) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.logger.Error("Failed to unmarshal from cache", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}

	return true, nil
}

func (r *cacheRepository) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Error("Failed to marshal for cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	return r.Set(ctx, key, data, ttl)
}

func cityKey(areaID int64) string {
	return fmt.Sprintf("%s%d", cityKeyPrefix, areaID)
}

func locationKey(areaID int64) string {
	return fmt.Sprintf("%s%d", locationKeyPrefix, areaID)
}
