package world

import (
	"math"
	"testing"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_VoxelRoundTrip(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{}, vec.Vec3{X: -1, Y: -1, Z: -1}, vec.Vec3{X: 2, Y: 0, Z: -3})

	points := []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 7, Y: 7, Z: 7},
		{X: -1, Y: -1, Z: -1},
		{X: -8, Y: -5, Z: -2},
		{X: 17, Y: 3, Z: -24},
	}
	for i, p := range points {
		v := block.Type(1 + i%(block.Count-1))
		chunk := s.SetVoxel(p.X, p.Y, p.Z, v)
		require.NotNil(t, chunk, "Чанк для %v должен быть загружен", p)
		assert.Equal(t, p.ToChunkCoords(8), chunk.Coords)
		assert.Equal(t, v, s.VoxelAt(p.X, p.Y, p.Z))
	}
}

func TestStore_UnloadedSpace(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{})

	assert.Equal(t, block.Empty, s.VoxelAt(100, 0, 0))
	assert.Nil(t, s.SetVoxel(100, 0, 0, block.Stone), "Правка пустоты возвращает nil")
	assert.Equal(t, block.Empty, s.VoxelAt(100, 0, 0))
	assert.Equal(t, block.Empty, s.VoxelAt(-1, 0, 0))
}

func TestStore_SetValidates(t *testing.T) {
	s := NewStore(8)

	small, err := NewChunk(vec.Vec3{}, 16, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Set(vec.Vec3{}, small), ErrChunkSizeMismatch)

	c, err := NewChunk(vec.Vec3{X: 1}, 8, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Set(vec.Vec3{X: 2}, c), ErrCoordsMismatch)
	assert.ErrorIs(t, s.Set(vec.Vec3{X: 1}, nil), ErrCoordsMismatch)
	assert.False(t, s.Has(vec.Vec3{X: 1}))
	require.NoError(t, s.Set(vec.Vec3{X: 1}, c))

	assert.Equal(t, 1, s.Len())
	assert.Same(t, c, s.Remove(vec.Vec3{X: 1}))
	assert.Nil(t, s.Remove(vec.Vec3{X: 1}))
	assert.Equal(t, 0, s.Len())
}

func TestStore_AffectedCoords(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{}, vec.Vec3{X: -1}, vec.Vec3{Y: 1})

	// Внутренний воксель затрагивает только свой чанк
	assert.Equal(t, []vec.Vec3{{}}, s.AffectedCoords(3, 3, 3))

	// Угол: соседи -X и +Y загружены, -Z нет
	got := s.AffectedCoords(0, 7, 0)
	assert.ElementsMatch(t, []vec.Vec3{{}, {X: -1}, {Y: 1}}, got)
}

func TestStore_CoordsSorted(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{X: 1}, vec.Vec3{X: -1, Y: 2}, vec.Vec3{X: -1, Y: 0})
	assert.Equal(t, []vec.Vec3{{X: -1, Y: 0}, {X: -1, Y: 2}, {X: 1}}, s.Coords())

	n := 0
	s.Each(func(*Chunk) { n++ })
	assert.Equal(t, 3, n)
}

func TestStore_TopSolidY(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{}, vec.Vec3{Y: 1})

	_, ok := s.TopSolidY(2, 2)
	assert.False(t, ok)

	s.SetVoxel(2, 3, 2, block.Terrain)
	s.SetVoxel(2, 12, 2, block.Roof)
	y, ok := s.TopSolidY(2, 2)
	require.True(t, ok)
	assert.Equal(t, 12, y)
}

func TestStore_VoxelAtPoint(t *testing.T) {
	s := newEmptyStore(8, vec.Vec3{X: -1})
	s.SetVoxel(-1, 2, 3, block.Stone)

	assert.Equal(t, block.Stone, s.VoxelAtPoint(vec.Vec3Float{X: -0.5, Y: 2.9, Z: 3.1}))
	assert.Panics(t, func() { s.VoxelAtPoint(vec.Vec3Float{X: math.NaN()}) })
}
