package world

import (
	"fmt"
	"sort"
	"time"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// CollapseConfig - параметры симуляции обрушения
type CollapseConfig struct {
	FloorY            int           // Воксели на этой высоте и ниже считаются опёртыми
	StepInterval      time.Duration // Время симуляции на один шаг
	MaxStepsPerFrame  int
	MaxImpactsPerStep int
}

// StepResult - итог одного шага обрушения
type StepResult struct {
	Moved          bool
	Moves          int
	Impacts        int // Отправлено событий приземления
	DroppedImpacts int // Приземления сверх лимита на шаг
	Changed        []vec.Vec3
}

// FrameResult - итог шагов обрушения за один кадр
type FrameResult struct {
	Steps   int
	Moves   int
	Impacts int
	Settled bool // Система пришла в покой в этом кадре
	Changed []vec.Vec3
}

// move - запланированное падение вокселя на одну клетку
type move struct {
	from     vec.Vec3
	to       vec.Vec3
	material block.Type
}

// CollapseSimulator опускает неподдерживаемые обрушаемые воксели
// на одну клетку за шаг, пока система не придёт в покой.
type CollapseSimulator struct {
	cfg      CollapseConfig
	store    *Store
	listener Listener
	logger   *logging.Logger
	metrics  *Metrics

	pending     map[vec.Vec3]struct{}
	deferred    map[vec.Vec3]struct{} // Ждут подгрузки чанка под собой
	accumulator time.Duration

	// Итоги текущего обрушения для лога
	totalSteps   int
	totalMoves   int
	totalImpacts int
}

// NewCollapseSimulator создаёт симулятор обрушения
func NewCollapseSimulator(cfg CollapseConfig, store *Store, listener Listener, logger *logging.Logger, metrics *Metrics) *CollapseSimulator {
	if listener == nil {
		listener = NopListener{}
	}
	return &CollapseSimulator{
		cfg:      cfg,
		store:    store,
		listener: listener,
		logger:   logger,
		metrics:  metrics,
		pending:  make(map[vec.Vec3]struct{}),
		deferred: make(map[vec.Vec3]struct{}),
	}
}

// PendingLen возвращает количество чанков, ожидающих проверки
func (cs *CollapseSimulator) PendingLen() int {
	return len(cs.pending)
}

// IsPending проверяет, ожидает ли чанк проверки
func (cs *CollapseSimulator) IsPending(coords vec.Vec3) bool {
	_, ok := cs.pending[coords]
	return ok
}

// IsDeferred проверяет, ждёт ли чанк подгрузки опоры под собой
func (cs *CollapseSimulator) IsDeferred(coords vec.Vec3) bool {
	_, ok := cs.deferred[coords]
	return ok
}

// DeferredLen возвращает количество чанков, ждущих подгрузки опоры
func (cs *CollapseSimulator) DeferredLen() int {
	return len(cs.deferred)
}

// IsQueued проверяет, стоит ли чанк в очереди обрушения (ожидание или отложенные)
func (cs *CollapseSimulator) IsQueued(coords vec.Vec3) bool {
	return cs.IsPending(coords) || cs.IsDeferred(coords)
}

// QueueCollapse расширяет каждый затронутый чанк до окрестности 3×3×3
// и проходит загруженные столбцы чанков вверх и вниз до конца:
// удаление материала в любом месте столбца может лишить опоры блоки сколь угодно выше.
// Чанки на нижней границе подгрузки откладываются до подгрузки чанка под ними.
func (cs *CollapseSimulator) QueueCollapse(affected []vec.Vec3) {
	for _, a := range affected {
		for dx := -1; dx <= 1; dx++ {
			for dz := -1; dz <= 1; dz++ {
				for dy := -1; dy <= 1; dy++ {
					start := vec.Vec3{X: a.X + dx, Y: a.Y + dy, Z: a.Z + dz}
					if !cs.store.Has(start) {
						continue
					}
					cs.walkColumn(start)
				}
			}
		}
	}
	cs.metrics.collapseStep(0, 0, len(cs.pending))
}

func (cs *CollapseSimulator) walkColumn(start vec.Vec3) {
	for c := start; cs.store.Has(c); c.Y++ {
		cs.mark(c)
	}
	for c := start; cs.store.Has(c); c.Y-- {
		cs.mark(c)
	}
}

// mark ставит чанк в ожидание, если его можно проверять, иначе откладывает
func (cs *CollapseSimulator) mark(c vec.Vec3) {
	if !cs.store.Has(c) {
		return
	}
	if cs.streamed(c) {
		delete(cs.deferred, c)
		cs.pending[c] = struct{}{}
		return
	}
	cs.deferred[c] = struct{}{}
}

// streamed сообщает, опирается ли нижний слой чанка на пол мира или на загруженный чанк
func (cs *CollapseSimulator) streamed(c vec.Vec3) bool {
	if !cs.store.Has(c) {
		return false
	}
	if c.Y*cs.store.ChunkSize() <= cs.cfg.FloorY {
		return true
	}
	return cs.store.Has(c.Add(vec.Vec3{Y: -1}))
}

// Forget убирает выгруженный чанк из очереди. Чанк над ним теряет опору
// и откладывается до повторной подгрузки: обрушение не продолжается в незагруженное пространство.
func (cs *CollapseSimulator) Forget(coords vec.Vec3) {
	delete(cs.pending, coords)
	delete(cs.deferred, coords)

	above := coords.Add(vec.Vec3{Y: 1})
	if _, ok := cs.pending[above]; ok {
		delete(cs.pending, above)
		if cs.store.Has(above) {
			cs.deferred[above] = struct{}{}
		}
	}
}

// ChunkLoaded вызывается после подгрузки чанка: отложенный чанк над ним
// получает опору и возвращается в ожидание.
func (cs *CollapseSimulator) ChunkLoaded(coords vec.Vec3) {
	above := coords.Add(vec.Vec3{Y: 1})
	if _, ok := cs.deferred[above]; !ok {
		return
	}
	if !cs.streamed(above) {
		return
	}
	delete(cs.deferred, above)
	cs.pending[above] = struct{}{}
	cs.metrics.collapseStep(0, 0, len(cs.pending))
}

// Step выполняет один шаг обрушения: планирует все падения по снимку,
// затем применяет их одним пакетом.
func (cs *CollapseSimulator) Step() (StepResult, error) {
	var res StepResult
	if len(cs.pending) == 0 {
		return res, nil
	}

	coords := make([]vec.Vec3, 0, len(cs.pending))
	for c := range cs.pending {
		coords = append(coords, c)
	}
	// Сначала верхние чанки; остальное для детерминизма
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})

	moves, err := cs.plan(coords)
	if err != nil {
		return res, err
	}

	if len(moves) == 0 {
		// Система устойчива
		cs.settle()
		return res, nil
	}

	changed, err := cs.apply(moves)
	if err != nil {
		return res, err
	}

	res.Moved = true
	res.Moves = len(moves)
	res.Changed = changed
	res.Impacts, res.DroppedImpacts = cs.emitImpacts(moves)

	cs.totalSteps++
	cs.totalMoves += res.Moves
	cs.totalImpacts += res.Impacts
	cs.metrics.collapseStep(res.Moves, res.Impacts, len(cs.pending))
	return res, nil
}

// plan сканирует ожидающие чанки сверху вниз и собирает падения
func (cs *CollapseSimulator) plan(coords []vec.Vec3) ([]move, error) {
	var moves []move
	size := cs.store.ChunkSize()

	for _, cc := range coords {
		chunk := cs.store.Get(cc)
		if chunk == nil {
			delete(cs.pending, cc)
			continue
		}
		origin := chunk.Origin()
		var below *Chunk

		for y := size - 1; y >= 0; y-- {
			wy := origin.Y + y
			if wy <= cs.cfg.FloorY {
				// Пол мира держит всё, что ниже
				break
			}
			for x := 0; x < size; x++ {
				for z := 0; z < size; z++ {
					t := chunk.At(x, y, z)
					if !t.IsCollapsible() {
						continue
					}

					var under block.Type
					if y > 0 {
						under = chunk.At(x, y-1, z)
					} else {
						if below == nil {
							below = cs.store.Get(cc.Add(vec.Vec3{Y: -1}))
							if below == nil {
								return nil, fmt.Errorf("%w: below voxel (%d,%d,%d) in chunk %v",
									ErrUnloadedNeighbor, origin.X+x, wy, origin.Z+z, cc)
							}
						}
						under = below.At(x, size-1, z)
					}

					if under == block.Empty {
						from := vec.Vec3{X: origin.X + x, Y: wy, Z: origin.Z + z}
						moves = append(moves, move{from: from, to: from.Add(vec.Vec3{Y: -1}), material: t})
					}
				}
			}
		}
	}
	return moves, nil
}

// apply очищает все исходные клетки, затем заполняет все клетки назначения.
// Возвращает чанки, чьи меши нужно пересобрать.
func (cs *CollapseSimulator) apply(moves []move) ([]vec.Vec3, error) {
	changed := make(map[vec.Vec3]struct{})
	mark := func(p vec.Vec3) {
		for _, c := range cs.store.AffectedCoords(p.X, p.Y, p.Z) {
			changed[c] = struct{}{}
		}
	}

	for _, m := range moves {
		if cs.store.SetVoxel(m.from.X, m.from.Y, m.from.Z, block.Empty) == nil {
			return nil, fmt.Errorf("%w: source %v", ErrUnloadedNeighbor, m.from)
		}
		mark(m.from)
	}

	size := cs.store.ChunkSize()
	for _, m := range moves {
		if cur := cs.store.VoxelAt(m.to.X, m.to.Y, m.to.Z); cur != block.Empty {
			return nil, fmt.Errorf("%w: %v holds %s", ErrDestinationOccupied, m.to, cur)
		}
		if cs.store.SetVoxel(m.to.X, m.to.Y, m.to.Z, m.material) == nil {
			return nil, fmt.Errorf("%w: destination %v", ErrUnloadedNeighbor, m.to)
		}
		mark(m.to)
		// Чанк назначения тоже нужно проверить на следующем шаге
		cs.mark(m.to.ToChunkCoords(size))
	}

	out := make([]vec.Vec3, 0, len(changed))
	for c := range changed {
		out = append(out, c)
	}
	sortCoords(out)
	return out, nil
}

// emitImpacts отправляет события для приземлившихся вокселей в пределах лимита
func (cs *CollapseSimulator) emitImpacts(moves []move) (sent, dropped int) {
	destinations := make(map[vec.Vec3]struct{}, len(moves))
	for _, m := range moves {
		destinations[m.to] = struct{}{}
	}

	for _, m := range moves {
		landed := m.to.Y <= cs.cfg.FloorY
		if !landed {
			under := m.to.Add(vec.Vec3{Y: -1})
			_, falling := destinations[under]
			landed = cs.store.VoxelAt(under.X, under.Y, under.Z) != block.Empty && !falling
		}
		if !landed {
			continue
		}
		if sent >= cs.cfg.MaxImpactsPerStep {
			dropped++
			continue
		}
		cs.listener.OnImpact(ImpactEvent{Position: m.to, Material: m.material})
		sent++
	}
	return sent, dropped
}

func (cs *CollapseSimulator) settle() {
	cs.pending = make(map[vec.Vec3]struct{})
	cs.accumulator = 0
	if cs.totalSteps > 0 {
		cs.logger.LogCollapseSettled(cs.totalSteps, cs.totalMoves, cs.totalImpacts)
	}
	cs.totalSteps, cs.totalMoves, cs.totalImpacts = 0, 0, 0
	cs.metrics.collapseStep(0, 0, 0)
}

// Advance накапливает время кадра и выполняет шаги с фиксированным интервалом,
// не больше MaxStepsPerFrame за кадр.
func (cs *CollapseSimulator) Advance(dt time.Duration) (FrameResult, error) {
	var fr FrameResult
	if len(cs.pending) == 0 {
		cs.accumulator = 0
		return fr, nil
	}

	cs.accumulator += dt
	// Не копим долг больше, чем можно отработать за кадр
	if limit := cs.cfg.StepInterval * time.Duration(cs.cfg.MaxStepsPerFrame); cs.accumulator > limit {
		cs.accumulator = limit
	}

	changed := make(map[vec.Vec3]struct{})
	for fr.Steps < cs.cfg.MaxStepsPerFrame && cs.accumulator >= cs.cfg.StepInterval {
		cs.accumulator -= cs.cfg.StepInterval

		res, err := cs.Step()
		if err != nil {
			return fr, err
		}
		fr.Steps++
		fr.Moves += res.Moves
		fr.Impacts += res.Impacts
		for _, c := range res.Changed {
			changed[c] = struct{}{}
		}
		if !res.Moved {
			fr.Settled = true
			break
		}
	}

	fr.Changed = make([]vec.Vec3, 0, len(changed))
	for c := range changed {
		fr.Changed = append(fr.Changed, c)
	}
	sortCoords(fr.Changed)
	return fr, nil
}
