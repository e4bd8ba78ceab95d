package world

import (
	"math"
	"testing"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestEngine создаёт ядро на чанках 8³ с плоским миром и каменной башней в (4, 2..12, 4)
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *recordingListener, *recordingRenderer) {
	t.Helper()

	extra := map[vec.Vec3]block.Type{}
	for y := 2; y <= 12; y++ {
		extra[vec.Vec3{X: 4, Y: y, Z: 4}] = block.Stone
	}

	cfg := DefaultEngineConfig()
	cfg.Seed = 11
	cfg.ChunkSize = 8
	cfg.RenderDistance = 1
	cfg.GenerationsPerTick = 100
	cfg.MeshesPerTick = 100

	listener := &recordingListener{}
	renderer := newRecordingRenderer()
	opts = append([]Option{
		WithChunkGenerator(&flatGenerator{groundY: 2, extra: extra}),
		WithListener(listener),
		WithRenderer(renderer),
	}, opts...)

	e, err := NewEngine(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 4.5, Y: 4.5, Z: 4.5}))
	require.NoError(t, e.Advance(1.0/60))
	require.Equal(t, 27, e.Store().Len())
	return e, listener, renderer
}

func countType(s *Store, t block.Type) int {
	n := 0
	s.Each(func(c *Chunk) {
		n += c.Count(func(v block.Type) bool { return v == t })
	})
	return n
}

func TestEngineConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultEngineConfig().Validate())

	cfg := DefaultEngineConfig()
	cfg.ChunkSize = 12
	assert.ErrorIs(t, cfg.Validate(), ErrChunkSizeMismatch)

	cfg = DefaultEngineConfig()
	cfg.MeshesPerTick = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultEngineConfig()
	cfg.DebrisPerVoxel = math.Inf(1)
	assert.ErrorIs(t, cfg.Validate(), ErrNonFinite)

	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestEngine_VoxelRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t)

	chunk := e.SetVoxel(-3, 6, 7, block.Window)
	require.NotNil(t, chunk)
	assert.Equal(t, vec.Vec3{X: -1, Y: 0, Z: 0}, chunk.Coords)
	assert.Equal(t, block.Window, e.VoxelAt(-3, 6, 7))
	assert.Equal(t, StateQueuedForMesh, e.Streamer().State(chunk.Coords))

	// Чанк вне активного куба не загружен
	assert.Nil(t, e.SetVoxel(100, 6, 7, block.Window))
	assert.Equal(t, block.Empty, e.VoxelAt(100, 6, 7))

	// Следующий кадр пересобирает меш
	require.NoError(t, e.Advance(1.0/60))
	assert.Equal(t, StateMeshed, e.Streamer().State(chunk.Coords))
}

func TestEngine_ExplosionAccounting(t *testing.T) {
	e, listener, _ := newTestEngine(t)

	// Шар радиуса 5 вокруг (4,5,4): камень башни на y 2..10 и грунт на y 0..1
	k, terrainInside := 0, 0
	for x := -5; x <= 5; x++ {
		for y := -5; y <= 5; y++ {
			for z := -5; z <= 5; z++ {
				if x*x+y*y+z*z > 25 {
					continue
				}
				wy := 5 + y
				switch {
				case wy < 2:
					terrainInside++
				case x == 0 && z == 0 && wy <= 12:
					k++
				}
			}
		}
	}
	require.Equal(t, 9, k)
	stonesBefore := countType(e.Store(), block.Stone)

	res, err := e.CreateExplosion(vec.Vec3Float{X: 4.5, Y: 5.5, Z: 4.5}, 5)
	require.NoError(t, err)

	assert.Equal(t, vec.Vec3{X: 4, Y: 5, Z: 4}, res.Center)
	assert.Equal(t, k, res.Destroyed[block.Stone])
	assert.Equal(t, terrainInside, res.Destroyed[block.Terrain])
	assert.Equal(t, k+terrainInside, res.Total)
	assert.Equal(t, stonesBefore-k, countType(e.Store(), block.Stone))
	for y := 0; y <= 10; y++ {
		assert.Equal(t, block.Empty, e.VoxelAt(4, y, 4), "y=%d", y)
	}
	assert.Equal(t, block.Stone, e.VoxelAt(4, 11, 4))

	// Обрушение охватывает окрестность 3×3×3 затронутых чанков
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				assert.True(t, e.Collapse().IsPending(vec.Vec3{X: x, Y: y, Z: z}))
			}
		}
	}

	// Меши затронутых чанков пересобраны сразу
	for _, c := range res.Touched {
		assert.Equal(t, StateMeshed, e.Streamer().State(c))
	}

	// Обломки по материалам с цветом из таблицы
	require.Len(t, listener.debris, 2)
	assert.Equal(t, block.Terrain, listener.debris[0].Material)
	assert.Equal(t, uint32(0x00ff00), listener.debris[0].Color)
	assert.Equal(t, block.Stone, listener.debris[1].Material)
	assert.Equal(t, uint32(0x444444), listener.debris[1].Color)
	assert.Equal(t, k, listener.debris[1].Count)
}

func TestEngine_DebrisCapped(t *testing.T) {
	e, listener, _ := newTestEngine(t)
	e.cfg.MaxDebrisPerMaterial = 3
	e.cfg.DebrisPerVoxel = 2

	_, err := e.CreateExplosion(vec.Vec3Float{X: 4, Y: 12, Z: 4}, 1)
	require.NoError(t, err)
	require.Len(t, listener.debris, 1)
	assert.Equal(t, 2, listener.debris[0].Destroyed)
	assert.Equal(t, 3, listener.debris[0].Count)
}

func TestEngine_CollapseAfterExplosion(t *testing.T) {
	e, listener, _ := newTestEngine(t)
	stones := countType(e.Store(), block.Stone)

	res, err := e.CreateExplosion(vec.Vec3Float{X: 4.5, Y: 5.5, Z: 4.5}, 1.5)
	require.NoError(t, err)
	require.Equal(t, 3, res.Destroyed[block.Stone])

	for i := 0; i < 200 && e.Collapse().PendingLen() > 0; i++ {
		require.NoError(t, e.Advance(0.05))
	}
	require.Equal(t, 0, e.Collapse().PendingLen(), "Обрушение должно завершиться")

	// Верх башни опустился на уцелевшее основание
	for y := 2; y <= 9; y++ {
		assert.Equal(t, block.Stone, e.VoxelAt(4, y, 4), "y=%d", y)
	}
	for y := 10; y <= 12; y++ {
		assert.Equal(t, block.Empty, e.VoxelAt(4, y, 4), "y=%d", y)
	}
	assert.Equal(t, stones-3, countType(e.Store(), block.Stone))
	assert.NotEmpty(t, listener.impacts)

	// Ещё несколько кадров, и все меши актуальны
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Advance(0.05))
	}
	for _, c := range e.Store().Coords() {
		assert.Equal(t, StateMeshed, e.Streamer().State(c))
	}
}

func TestEngine_HaltsOnInvariantViolation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	err := e.SetViewpoint(vec.Vec3Float{X: math.NaN()})
	assert.ErrorIs(t, err, ErrNonFinite)
	assert.ErrorIs(t, e.Err(), ErrNonFinite)

	err = e.Advance(0.016)
	assert.ErrorIs(t, err, ErrHalted)

	_, err = e.CreateExplosion(vec.Vec3Float{}, 3)
	assert.ErrorIs(t, err, ErrHalted)
}

func TestEngine_NegativeDeltaHalts(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.ErrorIs(t, e.Advance(-1), ErrNonFinite)
	assert.ErrorIs(t, e.Advance(0.016), ErrHalted)
}

func TestEngine_ExplosionRejectsBadRadius(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.CreateExplosion(vec.Vec3Float{X: 1}, math.NaN())
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestEngine_GroundAndCollision(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// Загруженный столбец: верх башни
	assert.Equal(t, 13.0, e.GroundHeight(4.2, 4.7))
	// Загруженный столбец без построек: верх грунта
	assert.Equal(t, 2.0, e.GroundHeight(1, 1))
	// Незагруженный столбец: поле высот
	assert.Equal(t, e.HeightAt(500, 500), e.GroundHeight(500, 500))

	assert.True(t, e.IsSolidAt(vec.Vec3Float{X: 4.5, Y: 10.5, Z: 4.5}))
	assert.False(t, e.IsSolidAt(vec.Vec3Float{X: 1.5, Y: 3.5, Z: 1.5}))
	h := e.HeightAt(500, 500)
	assert.True(t, e.IsSolidAt(vec.Vec3Float{X: 500, Y: h - 1, Z: 500}))
	assert.False(t, e.IsSolidAt(vec.Vec3Float{X: 500, Y: h + 1, Z: 500}))

	assert.Panics(t, func() { e.HeightAt(math.NaN(), 0) })
	assert.Panics(t, func() { e.GroundHeight(0, math.Inf(-1)) })
}

func TestEngine_ViewpointMovesActiveCube(t *testing.T) {
	e, _, r := newTestEngine(t)

	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 100, Y: 4, Z: 4}))
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Advance(1.0/60))
	}

	assert.Equal(t, 27, e.Store().Len())
	for _, c := range e.Store().Coords() {
		assert.LessOrEqual(t, c.Chebyshev(vec.Vec3{X: 12, Y: 0, Z: 0}), 1)
	}
	for _, c := range r.live {
		assert.True(t, e.Store().Has(c), "Дескриптор выгруженного чанка %v не освобождён", c)
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e, _, _ := newTestEngine(t, WithMetrics(m))

	assert.Equal(t, 27.0, testutil.ToFloat64(m.chunksGenerated))
	assert.Equal(t, 27.0, testutil.ToFloat64(m.chunksLoaded))

	_, err := e.CreateExplosion(vec.Vec3Float{X: 4.5, Y: 7.5, Z: 4.5}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.explosions))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.voxelsDestroyed.WithLabelValues("stone")))
	assert.Greater(t, testutil.ToFloat64(m.collapsePending), 0.0)

	require.ErrorIs(t, e.Advance(math.NaN()), ErrNonFinite)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.simulationHalted))
}

func TestEngine_TerrainGeneratorByDefault(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Seed = 5
	cfg.RenderDistance = 0
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	h := e.HeightAt(16, 16)
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 16, Y: h, Z: 16}))
	require.NoError(t, e.Advance(0.016))
	require.Equal(t, 1, e.Store().Len())

	// Загруженный чанк совпадает с прямой генерацией
	coords := e.Store().Coords()[0]
	want, err := e.Terrain().GenerateChunk(coords, cfg.ChunkSize)
	require.NoError(t, err)
	chunk := e.Store().Get(coords)
	n := cfg.ChunkSize
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				require.Equal(t, want[x*n*n+y*n+z], chunk.At(x, y, z))
			}
		}
	}
	assert.Equal(t, StateMeshed, e.Streamer().State(coords))
}

func TestEngine_BoundaryCollapseResumesWhenSupportLoads(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.ChunkSize = 8
	cfg.RenderDistance = 1
	cfg.GenerationsPerTick = 100
	cfg.MeshesPerTick = 100

	gen := &flatGenerator{groundY: 2, extra: map[vec.Vec3]block.Type{
		{X: 4, Y: 17, Z: 4}: block.Terrain,
		{X: 4, Y: 18, Z: 4}: block.Stone,
	}}
	e, err := NewEngine(cfg, WithChunkGenerator(gen))
	require.NoError(t, err)

	// Загружены слои чанков Y 2..4: под Y=2 пустота подгрузки
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 4.5, Y: 30.5, Z: 4.5}))
	require.NoError(t, e.Advance(1.0/60))
	require.Equal(t, 27, e.Store().Len())

	res, err := e.CreateExplosion(vec.Vec3Float{X: 4.5, Y: 17.5, Z: 4.5}, 0.5)
	require.NoError(t, err)
	require.Equal(t, 1, res.Destroyed[block.Terrain])

	owner := vec.Vec3{Y: 2}
	assert.True(t, e.Collapse().IsDeferred(owner))
	for x := -1; x <= 1; x++ {
		for y := 2; y <= 3; y++ {
			for z := -1; z <= 1; z++ {
				assert.True(t, e.Collapse().IsQueued(vec.Vec3{X: x, Y: y, Z: z}))
			}
		}
	}

	advance := func(frames int) {
		for i := 0; i < frames; i++ {
			require.NoError(t, e.Advance(1.0/60))
		}
	}
	advance(60)
	assert.Equal(t, block.Stone, e.VoxelAt(4, 18, 4), "Без опоры под чанком обрушение ждёт")
	assert.True(t, e.Collapse().IsDeferred(owner))

	// Спуск на слой: подгружается Y=1, отложенный чанк возвращается в ожидание
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 4.5, Y: 22.5, Z: 4.5}))
	advance(120)
	assert.Equal(t, block.Empty, e.VoxelAt(4, 18, 4))
	assert.Equal(t, block.Stone, e.VoxelAt(4, 15, 4), "Камень доходит до нижней границы подгрузки")
	assert.True(t, e.Collapse().IsDeferred(vec.Vec3{Y: 1}))

	// Ещё ниже: подгружается Y=0, камень ложится на грунт
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 4.5, Y: 4.5, Z: 4.5}))
	advance(600)
	assert.Equal(t, block.Empty, e.VoxelAt(4, 15, 4))
	assert.Equal(t, block.Stone, e.VoxelAt(4, 2, 4))
	assert.Equal(t, 0, e.Collapse().PendingLen())
	require.NoError(t, e.Err())
}
