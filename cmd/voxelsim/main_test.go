package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/voxel-strike/internal/cache"
	"github.com/annel0/voxel-strike/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShortFlight(t *testing.T) {
	cfg := config.Default()
	seed := int64(99)
	cfg.World.Seed = &seed
	cfg.World.ChunkSize = 16
	cfg.World.RenderDistance = 1
	cfg.Streaming.GenerationsPerTick = 8
	cfg.Streaming.MeshesPerTick = 8
	cfg.Cache = cache.CacheConfig{Backend: cache.BackendBadger, InMemory: true}
	require.NoError(t, cfg.Validate())

	obj := filepath.Join(t.TempDir(), "flight.obj.zst")
	err := run(context.Background(), cfg, runOptions{
		frames:       40,
		dt:           1.0 / 30,
		speed:        5,
		altitude:     10,
		explodeEvery: 10,
		radius:       4,
		objPath:      obj,
	})
	require.NoError(t, err)

	info, err := os.Stat(obj)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.World.ChunkSize = 16
	cfg.World.RenderDistance = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, run(ctx, cfg, runOptions{frames: 1000, dt: 0.016, speed: 1}))
}
