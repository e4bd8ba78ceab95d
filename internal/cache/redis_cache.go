package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisCache хранит значения в Redis: несколько процессов с одним сидом
// делят уже сгенерированные чанки.
type RedisCache struct {
	client *redis.Client
	prefix string
	closed int32
	counters
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, cfg CacheConfig) (*RedisCache, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("redis cache: empty address")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisURL,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	return newRedisCache(ctx, rdb, cfg.KeyPrefix)
}

func newRedisCache(ctx context.Context, rdb *redis.Client, prefix string) (*RedisCache, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if prefix == "" {
		prefix = "voxel:"
	}

	logging.Info("Redis chunk cache initialized: %s", rdb.Options().Addr)
	return &RedisCache{client: rdb, prefix: prefix}, nil
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if atomic.LoadInt32(&r.closed) == 1 {
		return nil, ErrClosed
	}
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		r.miss()
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.fail()
		logging.Error("Redis Get error for key %s: %v", key, err)
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	r.hit()
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.fail()
		logging.Error("Redis Set error for key %s: %v", key, err)
		return fmt.Errorf("redis set error: %w", err)
	}
	r.wrote()
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	if !atomic.CompareAndSwapInt32(&r.closed, 0, 1) {
		return nil
	}
	return r.client.Close()
}

func (r *RedisCache) GetMetrics() CacheMetrics {
	return r.snapshot()
}
