package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// CacheRepo определяет интерфейс хранилища байтовых значений для кеша сгенерированных чанков.
// Реализации: память процесса, BadgerDB на диске и Redis, общий для нескольких процессов.
//
// Использование:
//
//	repo, err := NewRepo(ctx, cfg)
//	data, err := repo.Get(ctx, "key")
//	err = repo.Set(ctx, "key", data, time.Hour)
type CacheRepo interface {
	// Get получает значение по ключу.
	// Возвращает ErrCacheMiss если ключ не найден.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с указанным TTL.
	// TTL = 0 означает отсутствие истечения.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ.
	Delete(ctx context.Context, key string) error

	// Close закрывает хранилище.
	Close() error

	// GetMetrics возвращает снимок метрик.
	GetMetrics() CacheMetrics
}

// Виды хранилищ
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// CacheConfig содержит конфигурацию кеша чанков.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`

	// memory
	MaxBytes int64 `yaml:"max_bytes"`

	// badger
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`

	// redis
	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// CacheMetrics содержит метрики кеша.
type CacheMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	Writes        int64   `json:"writes"`
	Errors        int64   `json:"errors"`
	HitRatio      float64 `json:"hit_ratio"`
}

// counters - общие атомарные счётчики реализаций
type counters struct {
	requests int64
	hits     int64
	misses   int64
	writes   int64
	errors   int64
}

func (c *counters) hit()  { atomic.AddInt64(&c.requests, 1); atomic.AddInt64(&c.hits, 1) }
func (c *counters) miss() { atomic.AddInt64(&c.requests, 1); atomic.AddInt64(&c.misses, 1) }
func (c *counters) fail() { atomic.AddInt64(&c.errors, 1) }
func (c *counters) wrote() {
	atomic.AddInt64(&c.writes, 1)
}

func (c *counters) snapshot() CacheMetrics {
	m := CacheMetrics{
		TotalRequests: atomic.LoadInt64(&c.requests),
		CacheHits:     atomic.LoadInt64(&c.hits),
		CacheMisses:   atomic.LoadInt64(&c.misses),
		Writes:        atomic.LoadInt64(&c.writes),
		Errors:        atomic.LoadInt64(&c.errors),
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(m.TotalRequests)
	}
	return m
}

// Ошибки кеша
var (
	ErrCacheMiss      = errors.New("cache miss")
	ErrClosed         = errors.New("cache closed")
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// IsCacheMiss проверяет, является ли ошибка промахом кеша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// NewRepo создаёт хранилище по конфигурации. Для BackendNone возвращает nil.
func NewRepo(ctx context.Context, cfg CacheConfig) (CacheRepo, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewMemoryCache(cfg.MaxBytes)
	case BackendBadger:
		return NewBadgerCache(cfg.Dir, cfg.InMemory)
	case BackendRedis:
		return NewRedisCache(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
