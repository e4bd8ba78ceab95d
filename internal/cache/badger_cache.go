package cache

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/dgraph-io/badger/v3"
)

// BadgerCache хранит значения в BadgerDB на диске
type BadgerCache struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
	counters
}

// NewBadgerCache открывает BadgerDB в каталоге dir/chunks.
// При inMemory данные живут только в памяти процесса (для тестов).
func NewBadgerCache(dir string, inMemory bool) (*BadgerCache, error) {
	var opts badger.Options
	dbPath := ""
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if dir == "" {
			return nil, fmt.Errorf("badger cache: empty directory")
		}
		dbPath = filepath.Join(dir, "chunks")
		opts = badger.DefaultOptions(dbPath)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	logging.Info("Badger chunk cache opened: %s (in-memory: %v)", dbPath, inMemory)
	return &BadgerCache{db: db, dbPath: dbPath, isReady: true}, nil
}

func (b *BadgerCache) Get(ctx context.Context, key string) ([]byte, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if !b.isReady {
		return nil, ErrClosed
	}

	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		b.miss()
		return nil, ErrCacheMiss
	case err != nil:
		b.fail()
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	b.hit()
	return out, nil
}

func (b *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if !b.isReady {
		return ErrClosed
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		b.fail()
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	b.wrote()
	return nil
}

func (b *BadgerCache) Delete(ctx context.Context, key string) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if !b.isReady {
		return ErrClosed
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close закрывает хранилище
func (b *BadgerCache) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if !b.isReady {
		return nil
	}
	b.isReady = false
	return b.db.Close()
}

func (b *BadgerCache) GetMetrics() CacheMetrics {
	return b.snapshot()
}
