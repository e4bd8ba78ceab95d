package world

import (
	"fmt"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// Chunk представляет куб мира со стороной Size вокселей.
// Чанк не хранит ссылок на соседей, только свои координаты:
// соседи ищутся через Store.
type Chunk struct {
	Coords vec.Vec3 // Координаты чанка

	size   int
	voxels []block.Type // Индекс x*size² + y*size + z

	// Меши по материалам; владелец - Renderer
	meshes map[block.Type]MeshHandle
	meshed bool // Меш построен хотя бы раз
	dirty  bool // Содержимое изменилось после последней сборки меша

	ChangeCounter int // Счетчик изменений
}

// NewChunk создаёт чанк из готового массива вокселей.
// Длина массива должна быть ровно size³.
func NewChunk(coords vec.Vec3, size int, voxels []block.Type) (*Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrChunkSizeMismatch, size)
	}
	if voxels == nil {
		voxels = make([]block.Type, size*size*size)
	}
	if len(voxels) != size*size*size {
		return nil, fmt.Errorf("%w: %d voxels for size %d", ErrChunkSizeMismatch, len(voxels), size)
	}
	return &Chunk{
		Coords: coords,
		size:   size,
		voxels: voxels,
		meshes: make(map[block.Type]MeshHandle),
	}, nil
}

// Size возвращает длину ребра чанка
func (c *Chunk) Size() int {
	return c.size
}

// Origin возвращает мировые координаты вокселя (0,0,0) чанка
func (c *Chunk) Origin() vec.Vec3 {
	return c.Coords.Scale(c.size)
}

func (c *Chunk) index(x, y, z int) int {
	return x*c.size*c.size + y*c.size + z
}

// InBounds проверяет, что локальные координаты внутри чанка
func (c *Chunk) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < c.size && y < c.size && z < c.size
}

// At возвращает воксель по локальным координатам
func (c *Chunk) At(x, y, z int) block.Type {
	return c.voxels[c.index(x, y, z)]
}

// Set устанавливает воксель по локальным координатам и возвращает прежнее значение
func (c *Chunk) Set(x, y, z int, t block.Type) block.Type {
	i := c.index(x, y, z)
	prev := c.voxels[i]
	if prev != t {
		c.voxels[i] = t
		c.ChangeCounter++
	}
	return prev
}

// Count возвращает количество вокселей, для которых match возвращает true
func (c *Chunk) Count(match func(block.Type) bool) int {
	n := 0
	for _, v := range c.voxels {
		if match(v) {
			n++
		}
	}
	return n
}

// SolidCount возвращает количество непустых вокселей
func (c *Chunk) SolidCount() int {
	return c.Count(block.Type.IsSolid)
}

// Materials возвращает материалы, присутствующие в чанке, в порядке кодов
func (c *Chunk) Materials() []block.Type {
	var present [block.Count]bool
	for _, v := range c.voxels {
		if int(v) < block.Count {
			present[v] = true
		}
	}
	var out []block.Type
	for _, t := range block.Solids() {
		if present[t] {
			out = append(out, t)
		}
	}
	return out
}

// Meshes возвращает копию текущих дескрипторов мешей
func (c *Chunk) Meshes() map[block.Type]MeshHandle {
	out := make(map[block.Type]MeshHandle, len(c.meshes))
	for k, v := range c.meshes {
		out[k] = v
	}
	return out
}

// Meshed сообщает, что меш чанка построен и актуален
func (c *Chunk) Meshed() bool {
	return c.meshed && !c.dirty
}

// MarkDirty помечает меш чанка устаревшим
func (c *Chunk) MarkDirty() {
	c.dirty = true
}
