// Package redis provides the Redis-backed cache repository
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/ports/outbound"
	"github.com/mealbuddy/engine/pkg/healthcheck"
)

// keyPrefix namespaces every key this service writes
const keyPrefix = "mealbuddy:"

// CacheRepository implements the cache repository interface on Redis
type CacheRepository struct {
	client  redis.Cmdable
	breaker *healthcheck.CircuitBreaker
	logger  *zap.Logger
}

// NewCacheRepository creates a new cache repository. When breaker is set,
// calls fail fast with healthcheck.ErrCircuitOpen while Redis is down.
func NewCacheRepository(client redis.Cmdable, breaker *healthcheck.CircuitBreaker, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client:  client,
		breaker: breaker,
		logger:  logger.Named("redis-cache"),
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data []byte
		miss bool
	)
	err := r.execute(func() error {
		var err error
		data, err = r.client.Get(ctx, keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if miss {
		return nil, outbound.ErrCacheMiss
	}
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.execute(func() error {
		return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
	})
	if err != nil {
		r.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	err := r.execute(func() error {
		return r.client.Del(ctx, keyPrefix+key).Err()
	})
	if err != nil {
		r.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := r.execute(func() error {
		var err error
		n, err = r.client.Exists(ctx, keyPrefix+key).Result()
		return err
	})
	if err != nil {
		r.logger.Debug("Cache exists failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

func (r *CacheRepository) execute(fn func() error) error {
	if r.breaker == nil {
		return fn()
	}
	return r.breaker.Execute(fn)
}
