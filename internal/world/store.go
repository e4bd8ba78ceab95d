package world

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/mesh"
)

// Соседи по граням
var faceNeighbors = [6]vec.Vec3{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// Store - единственный владелец чанков: отображение координат чанка в данные.
// Незагруженное пространство ведёт себя как пустое.
type Store struct {
	size   int
	chunks map[vec.Vec3]*Chunk
}

// NewStore создаёт пустое хранилище чанков со стороной size
func NewStore(size int) *Store {
	return &Store{
		size:   size,
		chunks: make(map[vec.Vec3]*Chunk),
	}
}

// ChunkSize возвращает длину ребра чанка
func (s *Store) ChunkSize() int {
	return s.size
}

// Get возвращает чанк по координатам или nil
func (s *Store) Get(coords vec.Vec3) *Chunk {
	return s.chunks[coords]
}

// Set кладёт чанк в хранилище, заменяя прежний
func (s *Store) Set(coords vec.Vec3, c *Chunk) error {
	if c == nil {
		return fmt.Errorf("%w: nil chunk stored at %v", ErrCoordsMismatch, coords)
	}
	if c.Size() != s.size {
		return fmt.Errorf("%w: chunk %v has size %d, store uses %d", ErrChunkSizeMismatch, coords, c.Size(), s.size)
	}
	if c.Coords != coords {
		return fmt.Errorf("%w: chunk %v stored at %v", ErrCoordsMismatch, c.Coords, coords)
	}
	s.chunks[coords] = c
	return nil
}

// Remove удаляет чанк и возвращает его (или nil, если его не было)
func (s *Store) Remove(coords vec.Vec3) *Chunk {
	c, ok := s.chunks[coords]
	if !ok {
		return nil
	}
	delete(s.chunks, coords)
	return c
}

// Has проверяет, загружен ли чанк
func (s *Store) Has(coords vec.Vec3) bool {
	_, ok := s.chunks[coords]
	return ok
}

// Len возвращает количество загруженных чанков
func (s *Store) Len() int {
	return len(s.chunks)
}

// Each вызывает fn для каждого загруженного чанка; порядок не определён
func (s *Store) Each(fn func(*Chunk)) {
	for _, c := range s.chunks {
		fn(c)
	}
}

// Coords возвращает координаты загруженных чанков в детерминированном порядке
func (s *Store) Coords() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(s.chunks))
	for c := range s.chunks {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// VoxelAt возвращает воксель по мировым координатам.
// Для незагруженного чанка возвращает Empty.
func (s *Store) VoxelAt(x, y, z int) block.Type {
	p := vec.Vec3{X: x, Y: y, Z: z}
	c := s.chunks[p.ToChunkCoords(s.size)]
	if c == nil {
		return block.Empty
	}
	l := p.LocalInChunk(s.size)
	return c.At(l.X, l.Y, l.Z)
}

// VoxelAtPoint возвращает воксель, содержащий точку с плавающими координатами.
// Нечисловые координаты - ошибка вызывающего кода, функция паникует.
func (s *Store) VoxelAtPoint(p vec.Vec3Float) block.Type {
	if !p.IsFinite() {
		panic(fmt.Sprintf("world: VoxelAtPoint called with non-finite point %+v", p))
	}
	v := p.Floor()
	return s.VoxelAt(v.X, v.Y, v.Z)
}

// SetVoxel записывает воксель по мировым координатам и возвращает изменённый чанк.
// Если чанк не загружен, возвращает nil: правка пустоты - штатная ситуация.
func (s *Store) SetVoxel(x, y, z int, t block.Type) *Chunk {
	p := vec.Vec3{X: x, Y: y, Z: z}
	c := s.chunks[p.ToChunkCoords(s.size)]
	if c == nil {
		return nil
	}
	l := p.LocalInChunk(s.size)
	c.Set(l.X, l.Y, l.Z, t)
	return c
}

// AffectedCoords возвращает чанк-владельца вокселя и загруженных соседей по граням,
// чей меш зависит от этого вокселя (воксель лежит на их общей границе).
func (s *Store) AffectedCoords(x, y, z int) []vec.Vec3 {
	p := vec.Vec3{X: x, Y: y, Z: z}
	owner := p.ToChunkCoords(s.size)
	l := p.LocalInChunk(s.size)

	out := []vec.Vec3{owner}
	add := func(d vec.Vec3) {
		n := owner.Add(d)
		if s.Has(n) {
			out = append(out, n)
		}
	}

	if l.X == 0 {
		add(vec.Vec3{X: -1})
	}
	if l.X == s.size-1 {
		add(vec.Vec3{X: 1})
	}
	if l.Y == 0 {
		add(vec.Vec3{Y: -1})
	}
	if l.Y == s.size-1 {
		add(vec.Vec3{Y: 1})
	}
	if l.Z == 0 {
		add(vec.Vec3{Z: -1})
	}
	if l.Z == s.size-1 {
		add(vec.Vec3{Z: 1})
	}
	return out
}

// LoadedNeighbors возвращает загруженных соседей чанка по граням
func (s *Store) LoadedNeighbors(coords vec.Vec3) []vec.Vec3 {
	var out []vec.Vec3
	for _, d := range faceNeighbors {
		n := coords.Add(d)
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Sampler возвращает функцию чтения соседних вокселей для мешера
func (s *Store) Sampler() mesh.Sampler {
	return s.VoxelAt
}

// TopSolidY возвращает мировую Y самого верхнего непустого вокселя
// в загруженной части столбца (x, z).
func (s *Store) TopSolidY(x, z int) (int, bool) {
	col := vec.Vec3{X: x, Z: z}.ToChunkCoords(s.size)
	l := vec.Vec3{X: x, Z: z}.LocalInChunk(s.size)

	found := false
	best := 0
	for coords, c := range s.chunks {
		if coords.X != col.X || coords.Z != col.Z {
			continue
		}
		for y := s.size - 1; y >= 0; y-- {
			if c.At(l.X, y, l.Z).IsSolid() {
				wy := coords.Y*s.size + y
				if !found || wy > best {
					best = wy
					found = true
				}
				break
			}
		}
	}
	return best, found
}

// sortCoords упорядочивает координаты по X, затем Y, затем Z
func sortCoords(cs []vec.Vec3) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
}
