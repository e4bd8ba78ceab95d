package world

import (
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/mesh"
)

// flatGenerator заполняет грунтом всё ниже groundY и добавляет заданные воксели
type flatGenerator struct {
	groundY int
	extra   map[vec.Vec3]block.Type
	calls   int
}

func (g *flatGenerator) GenerateChunk(coords vec.Vec3, size int) ([]block.Type, error) {
	g.calls++
	voxels := make([]block.Type, size*size*size)
	origin := coords.Scale(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			for z := 0; z < size; z++ {
				p := origin.Add(vec.Vec3{X: x, Y: y, Z: z})
				t := block.Empty
				if p.Y < g.groundY {
					t = block.Terrain
				}
				if e, ok := g.extra[p]; ok {
					t = e
				}
				voxels[x*size*size+y*size+z] = t
			}
		}
	}
	return voxels, nil
}

// recordingRenderer считает живые дескрипторы мешей
type recordingRenderer struct {
	next     int
	live     map[int]vec.Vec3
	built    int
	disposed int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{live: make(map[int]vec.Vec3)}
}

func (r *recordingRenderer) BuildMesh(coords vec.Vec3, material block.Type, geo *mesh.Geometry) MeshHandle {
	r.next++
	r.built++
	r.live[r.next] = coords
	return r.next
}

func (r *recordingRenderer) DisposeMesh(h MeshHandle) {
	id := h.(int)
	if _, ok := r.live[id]; !ok {
		panic("double dispose")
	}
	delete(r.live, id)
	r.disposed++
}

func (r *recordingRenderer) liveFor(coords vec.Vec3) int {
	n := 0
	for _, c := range r.live {
		if c == coords {
			n++
		}
	}
	return n
}

// recordingListener запоминает события
type recordingListener struct {
	impacts []ImpactEvent
	debris  []DebrisEvent
}

func (l *recordingListener) OnImpact(ev ImpactEvent) { l.impacts = append(l.impacts, ev) }
func (l *recordingListener) OnDebris(ev DebrisEvent) { l.debris = append(l.debris, ev) }

// newEmptyStore создаёт хранилище с пустыми чанками по заданным координатам
func newEmptyStore(size int, coords ...vec.Vec3) *Store {
	s := NewStore(size)
	for _, c := range coords {
		chunk, err := NewChunk(c, size, nil)
		if err != nil {
			panic(err)
		}
		if err := s.Set(c, chunk); err != nil {
			panic(err)
		}
	}
	return s
}

// countCollapsible считает обрушаемые воксели во всех загруженных чанках
func countCollapsible(s *Store) int {
	n := 0
	s.Each(func(c *Chunk) {
		n += c.Count(block.Type.IsCollapsible)
	})
	return n
}
