package world

import (
	"fmt"
	"math"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/building"
	"github.com/annel0/voxel-strike/internal/world/terrain"
)

// EngineConfig - параметры ядра мира
type EngineConfig struct {
	Seed           int64
	ChunkSize      int
	RenderDistance int
	FloorY         int

	GenerationsPerTick int
	MeshesPerTick      int

	CollapseStepInterval     time.Duration
	MaxCollapseStepsPerFrame int
	MaxImpactsPerStep        int

	DebrisPerVoxel       float64
	MaxDebrisPerMaterial int
}

// DefaultEngineConfig возвращает канонические параметры
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ChunkSize:                32,
		RenderDistance:           3,
		FloorY:                   0,
		GenerationsPerTick:       2,
		MeshesPerTick:            2,
		CollapseStepInterval:     50 * time.Millisecond,
		MaxCollapseStepsPerFrame: 4,
		MaxImpactsPerStep:        64,
		DebrisPerVoxel:           1.0,
		MaxDebrisPerMaterial:     500,
	}
}

// Validate проверяет параметры
func (c EngineConfig) Validate() error {
	switch {
	case c.ChunkSize <= 0 || c.ChunkSize%terrain.CellSize != 0:
		return fmt.Errorf("%w: chunk size %d must be a positive multiple of %d", ErrChunkSizeMismatch, c.ChunkSize, terrain.CellSize)
	case c.RenderDistance < 0:
		return fmt.Errorf("render distance %d must not be negative", c.RenderDistance)
	case c.GenerationsPerTick <= 0 || c.MeshesPerTick <= 0:
		return fmt.Errorf("per-tick budgets must be positive (generations=%d, meshes=%d)", c.GenerationsPerTick, c.MeshesPerTick)
	case c.CollapseStepInterval <= 0 || c.MaxCollapseStepsPerFrame <= 0:
		return fmt.Errorf("collapse step interval and steps per frame must be positive")
	case c.MaxImpactsPerStep < 0 || c.MaxDebrisPerMaterial < 0:
		return fmt.Errorf("event limits must not be negative")
	case !vec.IsFinite(c.DebrisPerVoxel) || c.DebrisPerVoxel < 0:
		return fmt.Errorf("%w: debris per voxel %v", ErrNonFinite, c.DebrisPerVoxel)
	}
	return nil
}

// Option настраивает Engine
type Option func(*Engine)

// WithRenderer задаёт получателя геометрии
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithListener задаёт получателя событий приземления и обломков
func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

// WithLogger задаёт логгер ядра
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics задаёт Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTemplateCache задаёт общий кеш шаблонов построек
func WithTemplateCache(c *building.Cache) Option {
	return func(e *Engine) { e.templates = c }
}

// WithChunkGenerator подменяет генератор содержимого чанков.
// Поле высот для HeightAt по-прежнему берётся из генератора рельефа.
func WithChunkGenerator(g ChunkGenerator) Option {
	return func(e *Engine) { e.chunkGen = g }
}

// Engine - фасад ядра мира. Однопоточный: все методы вызываются из игрового цикла.
// Первое нарушение инварианта останавливает симуляцию, дальнейшие Advance
// возвращают ErrHalted.
type Engine struct {
	cfg       EngineConfig
	store     *Store
	terrain   *terrain.Generator
	templates *building.Cache
	chunkGen  ChunkGenerator
	streamer  *Streamer
	collapse  *CollapseSimulator

	renderer Renderer
	listener Listener
	logger   *logging.Logger
	metrics  *Metrics

	frame uint64
	err   error
}

// NewEngine создаёт ядро мира. Сид из cfg - единственное, что определяет генерацию.
func NewEngine(cfg EngineConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		renderer: NopRenderer{},
		listener: NopListener{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.templates == nil {
		e.templates = building.NewCache()
	}
	e.terrain = terrain.NewGenerator(cfg.Seed, e.templates)
	if e.chunkGen == nil {
		e.chunkGen = e.terrain
	}

	e.store = NewStore(cfg.ChunkSize)
	e.streamer = NewStreamer(StreamerConfig{
		ChunkSize:          cfg.ChunkSize,
		RenderDistance:     cfg.RenderDistance,
		GenerationsPerTick: cfg.GenerationsPerTick,
		MeshesPerTick:      cfg.MeshesPerTick,
	}, e.store, e.chunkGen, e.renderer, e.logger, e.metrics)
	e.collapse = NewCollapseSimulator(CollapseConfig{
		FloorY:            cfg.FloorY,
		StepInterval:      cfg.CollapseStepInterval,
		MaxStepsPerFrame:  cfg.MaxCollapseStepsPerFrame,
		MaxImpactsPerStep: cfg.MaxImpactsPerStep,
	}, e.store, e.listener, e.logger, e.metrics)
	e.streamer.onLoad = e.collapse.ChunkLoaded
	e.streamer.onEvict = e.collapse.Forget

	e.logger.Info("Engine created: seed=%d chunk=%d radius=%d", cfg.Seed, cfg.ChunkSize, cfg.RenderDistance)
	return e, nil
}

// Store возвращает хранилище чанков
func (e *Engine) Store() *Store { return e.store }

// Streamer возвращает менеджер подгрузки
func (e *Engine) Streamer() *Streamer { return e.streamer }

// Collapse возвращает симулятор обрушения
func (e *Engine) Collapse() *CollapseSimulator { return e.collapse }

// Terrain возвращает генератор рельефа
func (e *Engine) Terrain() *terrain.Generator { return e.terrain }

// Config возвращает параметры ядра
func (e *Engine) Config() EngineConfig { return e.cfg }

// Frame возвращает номер последнего обработанного кадра
func (e *Engine) Frame() uint64 { return e.frame }

// Err возвращает ошибку, остановившую симуляцию
func (e *Engine) Err() error { return e.err }

func (e *Engine) halt(err error) error {
	if e.err == nil {
		e.err = err
		e.metrics.halted()
		e.logger.Error("Simulation halted: %v", err)
	}
	return err
}

// SetViewpoint задаёт мировую точку обзора; активный куб строится вокруг её чанка
func (e *Engine) SetViewpoint(p vec.Vec3Float) error {
	if e.err != nil {
		return fmt.Errorf("%w: %v", ErrHalted, e.err)
	}
	if !p.IsFinite() {
		return e.halt(fmt.Errorf("%w: viewpoint %+v", ErrNonFinite, p))
	}
	e.streamer.SetCenter(p.Floor().ToChunkCoords(e.cfg.ChunkSize))
	return nil
}

// Advance выполняет один кадр: подгрузка (выгрузка, генерация, меши), затем обрушение.
// dt - время кадра в секундах.
func (e *Engine) Advance(dt float64) error {
	if e.err != nil {
		return fmt.Errorf("%w: %v", ErrHalted, e.err)
	}
	if !vec.IsFinite(dt) || dt < 0 {
		return e.halt(fmt.Errorf("%w: delta time %v", ErrNonFinite, dt))
	}
	e.frame++

	if err := e.streamer.Tick(); err != nil {
		return e.halt(err)
	}

	fr, err := e.collapse.Advance(time.Duration(dt * float64(time.Second)))
	if err != nil {
		return e.halt(err)
	}
	// Пересборка один раз за кадр, а не на каждое перемещение
	for _, c := range fr.Changed {
		e.streamer.QueueMesh(c)
	}

	e.metrics.templates(e.templates.Len())
	return nil
}

// VoxelAt возвращает воксель по мировым координатам; вне загруженных чанков - Empty
func (e *Engine) VoxelAt(x, y, z int) block.Type {
	return e.store.VoxelAt(x, y, z)
}

// VoxelAtPoint возвращает воксель, содержащий точку. Паникует на нечисловых координатах.
func (e *Engine) VoxelAtPoint(p vec.Vec3Float) block.Type {
	return e.store.VoxelAtPoint(p)
}

// SetVoxel записывает воксель и ставит затронутые чанки в очередь пересборки.
// Возвращает nil, если чанк не загружен.
func (e *Engine) SetVoxel(x, y, z int, t block.Type) *Chunk {
	chunk := e.store.SetVoxel(x, y, z, t)
	if chunk == nil {
		return nil
	}
	for _, c := range e.store.AffectedCoords(x, y, z) {
		e.streamer.QueueMesh(c)
	}
	return chunk
}

// HeightAt возвращает высоту поля высот. Паникует на нечисловых координатах.
func (e *Engine) HeightAt(x, z float64) float64 {
	return e.terrain.HeightAt(x, z)
}

// GroundHeight возвращает высоту поверхности для прижатия сущностей к земле:
// верх самого высокого твёрдого вокселя, если столбец загружен, иначе поле высот.
func (e *Engine) GroundHeight(x, z float64) float64 {
	if !vec.IsFinite(x) || !vec.IsFinite(z) {
		panic(fmt.Sprintf("world: GroundHeight called with non-finite coordinates (%v, %v)", x, z))
	}
	ix, iz := int(math.Floor(x)), int(math.Floor(z))
	if y, ok := e.store.TopSolidY(ix, iz); ok {
		return float64(y + 1)
	}
	return e.terrain.HeightAt(x, z)
}

// IsSolidAt - проверка столкновения для снарядов и обломков:
// твёрдый воксель, а вне загруженных чанков - точка ниже поля высот.
func (e *Engine) IsSolidAt(p vec.Vec3Float) bool {
	if e.store.VoxelAtPoint(p).IsSolid() {
		return true
	}
	v := p.Floor()
	if e.store.Has(v.ToChunkCoords(e.cfg.ChunkSize)) {
		return false
	}
	return p.Y < e.terrain.HeightAt(p.X, p.Z)
}
