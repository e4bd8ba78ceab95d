package render

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/mesh"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleVoxel возвращает меш одного камня в начале чанка coords
func singleVoxel(t *testing.T, coords vec.Vec3) *mesh.Geometry {
	t.Helper()
	c, err := world.NewChunk(coords, 8, nil)
	require.NoError(t, err)
	c.Set(0, 0, 0, block.Stone)
	geo := mesh.Build(c, block.Stone, nil)
	require.NotNil(t, geo)
	return geo
}

func countPrefix(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestMemoryRenderer_Handles(t *testing.T) {
	r := NewMemoryRenderer(8, nil)
	geo := singleVoxel(t, vec.Vec3{})

	h1 := r.BuildMesh(vec.Vec3{}, block.Stone, geo)
	h2 := r.BuildMesh(vec.Vec3{X: 1}, block.Stone, geo)
	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, r.Live())

	r.DisposeMesh(h1)
	assert.Equal(t, 1, r.Live())

	// Повторное и чужое освобождение учитываются, но не ломают состояние
	r.DisposeMesh(h1)
	r.DisposeMesh("foreign")

	st := r.Stats()
	assert.Equal(t, 1, st.Live)
	assert.Equal(t, uint64(2), st.Built)
	assert.Equal(t, uint64(1), st.Disposed)
	assert.Equal(t, uint64(2), st.Unknown)
	assert.Equal(t, 12, st.Triangles)
	assert.Equal(t, 24, st.Vertices)
	assert.Equal(t, 1, st.ChunkCount)
}

func TestMemoryRenderer_MeshesOrdered(t *testing.T) {
	r := NewMemoryRenderer(8, nil)
	geo := singleVoxel(t, vec.Vec3{})
	r.BuildMesh(vec.Vec3{X: 1}, block.Roof, geo)
	r.BuildMesh(vec.Vec3{X: 1}, block.Stone, geo)
	r.BuildMesh(vec.Vec3{X: -1, Y: 5}, block.Stone, geo)

	ms := r.Meshes()
	require.Len(t, ms, 3)
	assert.Equal(t, vec.Vec3{X: -1, Y: 5}, ms[0].Coords)
	assert.Equal(t, block.Stone, ms[1].Material)
	assert.Equal(t, block.Roof, ms[2].Material)
}

func TestWriteOBJTo(t *testing.T) {
	r := NewMemoryRenderer(8, nil)
	coords := vec.Vec3{X: 1, Y: -1}
	r.BuildMesh(coords, block.Stone, singleVoxel(t, coords))

	var buf bytes.Buffer
	require.NoError(t, r.WriteOBJTo(&buf))
	out := buf.String()

	assert.Contains(t, out, "o chunk_1_-1_0_stone\n")
	assert.Contains(t, out, "usemtl stone\n")
	assert.Equal(t, 24, countPrefix(out, "v "))
	assert.Equal(t, 24, countPrefix(out, "vn "))
	assert.Equal(t, 12, countPrefix(out, "f "))

	// Вершины в мировых координатах: воксель (8,-8,0)..(9,-7,1)
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "v ") {
			continue
		}
		f := strings.Fields(line)
		assert.Contains(t, []string{"8", "9"}, f[1])
		assert.Contains(t, []string{"-8", "-7"}, f[2])
		assert.Contains(t, []string{"0", "1"}, f[3])
	}
}

func TestWriteOBJ_Zstd(t *testing.T) {
	r := NewMemoryRenderer(8, nil)
	r.BuildMesh(vec.Vec3{}, block.Stone, singleVoxel(t, vec.Vec3{}))

	var plain bytes.Buffer
	require.NoError(t, r.WriteOBJTo(&plain))

	dir := t.TempDir()
	objPath := filepath.Join(dir, "world.obj")
	require.NoError(t, r.WriteOBJ(objPath))
	raw, err := os.ReadFile(objPath)
	require.NoError(t, err)
	assert.Equal(t, plain.Bytes(), raw)

	zstPath := filepath.Join(dir, "world.obj.zst")
	require.NoError(t, r.WriteOBJ(zstPath))
	f, err := os.Open(zstPath)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, plain.Bytes(), decoded)
}

func TestMemoryRenderer_WithEngine(t *testing.T) {
	cfg := world.DefaultEngineConfig()
	cfg.Seed = 3
	cfg.RenderDistance = 0
	r := NewMemoryRenderer(cfg.ChunkSize, nil)
	e, err := world.NewEngine(cfg, world.WithRenderer(r))
	require.NoError(t, err)

	h := e.HeightAt(10, 10)
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 10, Y: h - 1, Z: 10}))
	require.NoError(t, e.Advance(0.016))

	chunk := e.Store().Get(e.Store().Coords()[0])
	require.NotNil(t, chunk)
	assert.Equal(t, len(chunk.Meshes()), r.Live())

	// Выгрузка освобождает все дескрипторы
	require.NoError(t, e.SetViewpoint(vec.Vec3Float{X: 10000, Y: h - 1, Z: 10}))
	require.NoError(t, e.Advance(0.016))
	for _, m := range r.Meshes() {
		assert.True(t, e.Store().Has(m.Coords))
	}
}
