package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultMemoryBytes - объём памяти кеша по умолчанию
const DefaultMemoryBytes = 64 << 20

// MemoryCache хранит значения в памяти процесса (ristretto).
// Стоимость записи равна её длине в байтах.
type MemoryCache struct {
	c      *ristretto.Cache
	closed int32
	counters
}

// NewMemoryCache создаёт кеш в памяти ёмкостью maxBytes (0 - по умолчанию)
func NewMemoryCache(maxBytes int64) (*MemoryCache, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryBytes
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100_000,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &MemoryCache{c: c}, nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if atomic.LoadInt32(&m.closed) == 1 {
		return nil, ErrClosed
	}
	v, ok := m.c.Get(key)
	if !ok {
		m.miss()
		return nil, ErrCacheMiss
	}
	m.hit()
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if atomic.LoadInt32(&m.closed) == 1 {
		return ErrClosed
	}
	data := make([]byte, len(value))
	copy(data, value)
	if !m.c.SetWithTTL(key, data, int64(len(data)), ttl) {
		// Отброшено политикой допуска: для кеша это не ошибка
		return nil
	}
	// Запись становится видимой после обработки буфера
	m.c.Wait()
	m.wrote()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if atomic.LoadInt32(&m.closed) == 1 {
		return ErrClosed
	}
	m.c.Del(key)
	return nil
}

func (m *MemoryCache) Close() error {
	if atomic.CompareAndSwapInt32(&m.closed, 0, 1) {
		m.c.Close()
	}
	return nil
}

func (m *MemoryCache) GetMetrics() CacheMetrics {
	return m.snapshot()
}
