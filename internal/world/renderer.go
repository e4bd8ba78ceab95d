package world

import (
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/mesh"
)

// MeshHandle - непрозрачный дескриптор геометрии, которым владеет Renderer
type MeshHandle interface{}

// Renderer принимает геометрию чанков. Один вызов BuildMesh на материал чанка;
// перед пересборкой и при выгрузке чанка прежние дескрипторы освобождаются через DisposeMesh.
type Renderer interface {
	BuildMesh(coords vec.Vec3, material block.Type, geo *mesh.Geometry) MeshHandle
	DisposeMesh(h MeshHandle)
}

// NopRenderer отбрасывает геометрию. Используется без графики.
type NopRenderer struct{}

func (NopRenderer) BuildMesh(vec.Vec3, block.Type, *mesh.Geometry) MeshHandle { return nil }
func (NopRenderer) DisposeMesh(MeshHandle)                                  {}

// releaseMeshes освобождает все меши чанка и возвращает их количество
func releaseMeshes(r Renderer, c *Chunk) int {
	n := 0
	for m, h := range c.meshes {
		r.DisposeMesh(h)
		delete(c.meshes, m)
		n++
	}
	return n
}

// rebuildMesh пересобирает меши всех материалов чанка.
// Соседние воксели читаются через store, поэтому швы между чанками корректны.
// Возвращает суммарное количество граней.
func rebuildMesh(store *Store, r Renderer, c *Chunk) int {
	releaseMeshes(r, c)

	quads := 0
	sample := store.Sampler()
	for _, m := range c.Materials() {
		geo := mesh.Build(c, m, sample)
		if geo == nil {
			continue
		}
		c.meshes[m] = r.BuildMesh(c.Coords, m, geo)
		quads += len(geo.Quads)
	}

	c.meshed = true
	c.dirty = false
	return quads
}
