package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// ChunkState - состояние координаты чанка в конвейере подгрузки
type ChunkState uint8

const (
	StateUnloaded            ChunkState = iota // Чанка нет
	StateQueuedForGeneration                   // Ждёт генерации
	StateLoaded                                // Данные есть, меша нет
	StateQueuedForMesh                         // Ждёт (пере)сборки меша
	StateMeshed                                // Меш актуален
)

// String возвращает имя состояния
func (s ChunkState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateQueuedForGeneration:
		return "queued_for_generation"
	case StateLoaded:
		return "loaded"
	case StateQueuedForMesh:
		return "queued_for_mesh"
	case StateMeshed:
		return "meshed"
	default:
		return "unknown"
	}
}

// ChunkGenerator производит воксели чанка по его координатам
type ChunkGenerator interface {
	GenerateChunk(coords vec.Vec3, size int) ([]block.Type, error)
}

// StreamerConfig - параметры подгрузки
type StreamerConfig struct {
	ChunkSize          int
	RenderDistance     int // Радиус Чебышёва в чанках
	GenerationsPerTick int
	MeshesPerTick      int
}

// StreamerStats - счётчики подгрузки
type StreamerStats struct {
	Active            int // Размер активного куба
	Loaded            int
	PendingGeneration int
	PendingMesh       int
	Generated         uint64
	Evicted           uint64
	MeshesBuilt       uint64
	StaleDropped      uint64
}

// Streamer решает, какие чанки должны существовать вокруг точки обзора,
// и ограничивает генерацию и сборку мешей бюджетом на тик.
type Streamer struct {
	cfg      StreamerConfig
	store    *Store
	gen      ChunkGenerator
	renderer Renderer
	logger   *logging.Logger
	metrics  *Metrics

	center    vec.Vec3
	hasCenter bool
	offsets   []vec.Vec3 // Смещения активного куба, ближние первыми

	genQueue  *CoordQueue
	meshQueue *CoordQueue

	// onLoad вызывается после подгрузки чанка, onEvict - после выгрузки
	onLoad  func(coords vec.Vec3)
	onEvict func(coords vec.Vec3)

	stats StreamerStats
}

// NewStreamer создаёт менеджер подгрузки
func NewStreamer(cfg StreamerConfig, store *Store, gen ChunkGenerator, renderer Renderer, logger *logging.Logger, metrics *Metrics) *Streamer {
	if renderer == nil {
		renderer = NopRenderer{}
	}
	return &Streamer{
		cfg:       cfg,
		store:     store,
		gen:       gen,
		renderer:  renderer,
		logger:    logger,
		metrics:   metrics,
		offsets:   cubeOffsets(cfg.RenderDistance),
		genQueue:  NewCoordQueue(),
		meshQueue: NewCoordQueue(),
	}
}

// cubeOffsets перечисляет смещения куба радиуса r по возрастанию расстояния
func cubeOffsets(r int) []vec.Vec3 {
	out := make([]vec.Vec3, 0, (2*r+1)*(2*r+1)*(2*r+1))
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				out = append(out, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	var zero vec.Vec3
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceSq(zero) < out[j].DistanceSq(zero)
	})
	return out
}

// SetCenter задаёт чанк, вокруг которого строится активный куб
func (s *Streamer) SetCenter(chunk vec.Vec3) {
	s.center = chunk
	s.hasCenter = true
}

// Center возвращает текущий центр активного куба
func (s *Streamer) Center() (vec.Vec3, bool) {
	return s.center, s.hasCenter
}

// IsActive проверяет, входит ли чанк в активный куб
func (s *Streamer) IsActive(coords vec.Vec3) bool {
	return s.hasCenter && coords.Chebyshev(s.center) <= s.cfg.RenderDistance
}

// Tick выполняет один кадр подгрузки: выгрузка, постановка генерации,
// генерация в пределах бюджета, сборка мешей в пределах бюджета.
func (s *Streamer) Tick() error {
	if !s.hasCenter {
		return nil
	}

	// Выгрузка до обработки очередей
	for _, c := range s.store.Coords() {
		if !s.IsActive(c) {
			s.evict(c)
		}
	}

	for _, d := range s.offsets {
		c := s.center.Add(d)
		if !s.store.Has(c) {
			s.genQueue.Push(c)
		}
	}

	if err := s.drainGeneration(); err != nil {
		return err
	}
	s.drainMeshes()

	s.metrics.queues(s.genQueue.Len(), s.meshQueue.Len())
	return nil
}

func (s *Streamer) drainGeneration() error {
	done := 0
	for done < s.cfg.GenerationsPerTick {
		c, ok := s.genQueue.Pop()
		if !ok {
			return nil
		}
		// Координата покинула активный куб или уже загружена
		if !s.IsActive(c) || s.store.Has(c) {
			s.stats.StaleDropped++
			s.metrics.stale("generation")
			continue
		}

		start := time.Now()
		voxels, err := s.gen.GenerateChunk(c, s.cfg.ChunkSize)
		if err != nil {
			return fmt.Errorf("generate chunk %v: %w", c, err)
		}
		chunk, err := NewChunk(c, s.cfg.ChunkSize, voxels)
		if err != nil {
			return fmt.Errorf("generate chunk %v: %w", c, err)
		}
		if err := s.store.Set(c, chunk); err != nil {
			return err
		}
		took := time.Since(start)
		if s.onLoad != nil {
			s.onLoad(c)
		}

		s.stats.Generated++
		s.metrics.chunkGenerated(took, s.store.Len())
		s.logger.LogChunkGenerated(c.X, c.Y, c.Z, chunk.SolidCount(), took)

		// Новый чанк может закрыть или открыть грани соседей
		s.QueueMesh(c)
		for _, n := range s.store.LoadedNeighbors(c) {
			s.QueueMesh(n)
		}
		done++
	}
	return nil
}

func (s *Streamer) drainMeshes() {
	done := 0
	for done < s.cfg.MeshesPerTick {
		c, ok := s.meshQueue.Pop()
		if !ok {
			return
		}
		chunk := s.store.Get(c)
		if chunk == nil || !s.IsActive(c) || chunk.Meshed() {
			s.stats.StaleDropped++
			s.metrics.stale("mesh")
			continue
		}
		s.Rebuild(chunk)
		done++
	}
}

// QueueMesh помечает загруженный чанк устаревшим и ставит его в очередь сборки.
// Для незагруженных координат ничего не делает.
func (s *Streamer) QueueMesh(coords vec.Vec3) {
	chunk := s.store.Get(coords)
	if chunk == nil {
		return
	}
	chunk.MarkDirty()
	s.meshQueue.Push(coords)
}

// Rebuild синхронно пересобирает меш чанка вне бюджета
func (s *Streamer) Rebuild(chunk *Chunk) {
	quads := rebuildMesh(s.store, s.renderer, chunk)
	s.stats.MeshesBuilt++
	s.metrics.meshBuilt(quads)
}

func (s *Streamer) evict(c vec.Vec3) {
	chunk := s.store.Remove(c)
	if chunk == nil {
		return
	}
	released := releaseMeshes(s.renderer, chunk)

	// Выгруженный сплошной чанк мог закрывать грани соседей
	for _, n := range s.store.LoadedNeighbors(c) {
		s.QueueMesh(n)
	}

	s.stats.Evicted++
	s.metrics.chunkEvicted(s.store.Len())
	s.logger.LogChunkEvicted(c.X, c.Y, c.Z, released)

	if s.onEvict != nil {
		s.onEvict(c)
	}
}

// State возвращает состояние координаты в конвейере подгрузки
func (s *Streamer) State(coords vec.Vec3) ChunkState {
	chunk := s.store.Get(coords)
	if chunk == nil {
		if s.IsActive(coords) && s.genQueue.Contains(coords) {
			return StateQueuedForGeneration
		}
		return StateUnloaded
	}
	if chunk.Meshed() {
		return StateMeshed
	}
	if s.meshQueue.Contains(coords) {
		return StateQueuedForMesh
	}
	return StateLoaded
}

// Stats возвращает текущие счётчики
func (s *Streamer) Stats() StreamerStats {
	st := s.stats
	st.Active = len(s.offsets)
	st.Loaded = s.store.Len()
	st.PendingGeneration = s.genQueue.Len()
	st.PendingMesh = s.meshQueue.Len()
	return st
}
