package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-data-service/internal/domain"
)

// getTestRedis подключается к локальному Redis; тест пропускается, если его нет
func getTestRedis(t *testing.T) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return NewRedisForTest(client, zap.NewNop())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "overpass:city:42", cityKey(42))
	assert.Equal(t, "overpass:location:42", locationKey(42))
}

func TestCacheRepository_City(t *testing.T) {
	r := getTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	const areaID int64 = 990001
	defer r.Client().Del(ctx, cityKey(areaID))

	miss, err := repo.GetCity(ctx, areaID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	city := domain.CityInfo{AreaID: areaID, City: "Cached Town"}
	require.NoError(t, repo.SetCity(ctx, city, time.Minute))

	hit, err := repo.GetCity(ctx, areaID)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, city, *hit)
}

func TestCacheRepository_Location(t *testing.T) {
	r := getTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	const areaID int64 = 990002
	defer r.Client().Del(ctx, locationKey(areaID))

	location := domain.Location{AreaID: areaID, City: "Town", State: "State", Country: "Country"}
	require.NoError(t, repo.SetLocation(ctx, location, time.Minute))

	hit, err := repo.GetLocation(ctx, areaID)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, location, *hit)

	require.NoError(t, repo.Delete(ctx, locationKey(areaID)))

	miss, err := repo.GetLocation(ctx, areaID)
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestCacheRepository_CorruptValue(t *testing.T) {
	r := getTestRedis(t)
	repo := NewCacheRepository(r)
	ctx := context.Background()

	const areaID int64 = 990003
	defer r.Client().Del(ctx, cityKey(areaID))

	require.NoError(t, repo.Set(ctx, cityKey(areaID), []byte("{not json"), time.Minute))

	_, err := repo.GetCity(ctx, areaID)
	assert.Error(t, err)
}
