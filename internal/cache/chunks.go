package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/klauspost/compress/zstd"
)

// Generator - источник содержимого чанков
type Generator interface {
	GenerateChunk(coords vec.Vec3, size int) ([]block.Type, error)
}

// ChunkCache кеширует результат генерации чанков. Содержимое чанка полностью
// определяется сидом, размером и координатами, поэтому записи никогда не устаревают.
// Правки мира в кеш не попадают: выгруженный чанк возвращается в исходном виде.
// Ошибки хранилища не прерывают генерацию, чанк просто генерируется заново.
type ChunkCache struct {
	inner   Generator
	repo    CacheRepo
	seed    int64
	ttl     time.Duration
	timeout time.Duration
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	logger  *logging.Logger

	generated int64
	corrupted int64
}

// NewChunkCache оборачивает генератор кешем в repo
func NewChunkCache(inner Generator, repo CacheRepo, seed int64, ttl time.Duration, logger *logging.Logger) (*ChunkCache, error) {
	if inner == nil || repo == nil {
		return nil, fmt.Errorf("chunk cache: generator and repo are required")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &ChunkCache{
		inner:   inner,
		repo:    repo,
		seed:    seed,
		ttl:     ttl,
		timeout: 2 * time.Second,
		enc:     enc,
		dec:     dec,
		logger:  logger,
	}, nil
}

// ChunkKey возвращает ключ записи чанка
func ChunkKey(seed int64, size int, coords vec.Vec3) string {
	return fmt.Sprintf("chunk:%d:%d:%d:%d:%d", seed, size, coords.X, coords.Y, coords.Z)
}

// GenerateChunk возвращает содержимое чанка из кеша или генерирует и сохраняет его
func (c *ChunkCache) GenerateChunk(coords vec.Vec3, size int) ([]block.Type, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	key := ChunkKey(c.seed, size, coords)
	data, err := c.repo.Get(ctx, key)
	switch {
	case err == nil:
		voxels, derr := c.decode(data, size)
		if derr == nil {
			return voxels, nil
		}
		c.corrupted++
		c.logger.Warn("Chunk cache entry %s is corrupted, regenerating: %v", key, derr)
	case !IsCacheMiss(err):
		c.logger.Warn("Chunk cache read failed for %s: %v", key, err)
	}

	voxels, err := c.inner.GenerateChunk(coords, size)
	if err != nil {
		return nil, err
	}
	c.generated++

	if err := c.repo.Set(ctx, key, c.encode(voxels), c.ttl); err != nil {
		c.logger.Warn("Chunk cache write failed for %s: %v", key, err)
	}
	return voxels, nil
}

func (c *ChunkCache) encode(voxels []block.Type) []byte {
	raw := make([]byte, len(voxels))
	for i, v := range voxels {
		raw[i] = byte(v)
	}
	return c.enc.EncodeAll(raw, nil)
}

func (c *ChunkCache) decode(data []byte, size int) ([]block.Type, error) {
	n := size * size * size
	raw, err := c.dec.DecodeAll(data, make([]byte, 0, n))
	if err != nil {
		return nil, err
	}
	if len(raw) != n {
		return nil, fmt.Errorf("expected %d voxels, got %d", n, len(raw))
	}
	voxels := make([]block.Type, n)
	for i, b := range raw {
		if int(b) >= block.Count {
			return nil, fmt.Errorf("unknown material %d at %d", b, i)
		}
		voxels[i] = block.Type(b)
	}
	return voxels, nil
}

// Generated возвращает количество чанков, сгенерированных мимо кеша
func (c *ChunkCache) Generated() int64 { return c.generated }

// Corrupted возвращает количество отброшенных повреждённых записей
func (c *ChunkCache) Corrupted() int64 { return c.corrupted }

// Metrics возвращает метрики хранилища
func (c *ChunkCache) Metrics() CacheMetrics { return c.repo.GetMetrics() }

// Close освобождает кодеки и закрывает хранилище
func (c *ChunkCache) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.repo.Close()
}
