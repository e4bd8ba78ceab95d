package render

import (
	"sort"
	"sync"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/mesh"
)

// Handle - дескриптор меша в MemoryRenderer
type Handle uint64

// Mesh - геометрия одного материала одного чанка
type Mesh struct {
	Handle   Handle
	Coords   vec.Vec3
	Material block.Type
	Geometry *mesh.Geometry
}

// Stats - счётчики рендерера
type Stats struct {
	Live       int
	Built      uint64
	Disposed   uint64
	Unknown    uint64 // Освобождения неизвестных дескрипторов
	Triangles  int
	Vertices   int
	ChunkCount int
}

// MemoryRenderer хранит геометрию чанков в памяти и выгружает её в OBJ.
// Безопасен для чтения из других горутин, пока ядро строит меши.
type MemoryRenderer struct {
	mu        sync.RWMutex
	chunkSize int
	next      Handle
	live      map[Handle]*Mesh
	built     uint64
	disposed  uint64
	unknown   uint64
	logger    *logging.Logger
}

var _ world.Renderer = (*MemoryRenderer)(nil)

// NewMemoryRenderer создаёт рендерер для чанков размера chunkSize
func NewMemoryRenderer(chunkSize int, logger *logging.Logger) *MemoryRenderer {
	return &MemoryRenderer{
		chunkSize: chunkSize,
		live:      make(map[Handle]*Mesh),
		logger:    logger,
	}
}

// BuildMesh сохраняет геометрию и выдаёт новый дескриптор
func (r *MemoryRenderer) BuildMesh(coords vec.Vec3, material block.Type, geo *mesh.Geometry) world.MeshHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	h := r.next
	r.live[h] = &Mesh{Handle: h, Coords: coords, Material: material, Geometry: geo}
	r.built++
	return h
}

// DisposeMesh освобождает дескриптор
func (r *MemoryRenderer) DisposeMesh(mh world.MeshHandle) {
	h, ok := mh.(Handle)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !ok {
		r.unknown++
		r.logger.Warn("DisposeMesh: foreign handle %v", mh)
		return
	}
	if _, exists := r.live[h]; !exists {
		r.unknown++
		r.logger.Warn("DisposeMesh: handle %d is not live", h)
		return
	}
	delete(r.live, h)
	r.disposed++
}

// Live возвращает количество живых дескрипторов
func (r *MemoryRenderer) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

// Meshes возвращает живые меши, упорядоченные по чанку и материалу
func (r *MemoryRenderer) Meshes() []*Mesh {
	r.mu.RLock()
	out := make([]*Mesh, 0, len(r.live))
	for _, m := range r.live {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Coords != b.Coords {
			if a.Coords.X != b.Coords.X {
				return a.Coords.X < b.Coords.X
			}
			if a.Coords.Y != b.Coords.Y {
				return a.Coords.Y < b.Coords.Y
			}
			return a.Coords.Z < b.Coords.Z
		}
		return a.Material < b.Material
	})
	return out
}

// Stats возвращает счётчики
func (r *MemoryRenderer) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Stats{
		Live:     len(r.live),
		Built:    r.built,
		Disposed: r.disposed,
		Unknown:  r.unknown,
	}
	chunks := make(map[vec.Vec3]struct{})
	for _, m := range r.live {
		st.Triangles += m.Geometry.TriangleCount()
		st.Vertices += m.Geometry.VertexCount()
		chunks[m.Coords] = struct{}{}
	}
	st.ChunkCount = len(chunks)
	return st
}
