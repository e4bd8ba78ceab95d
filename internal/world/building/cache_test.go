package building

import (
	"testing"

	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Memoizes(t *testing.T) {
	c := NewCache()

	first, err := c.Get(6, 10, 7, 123, StyleHouse)
	require.NoError(t, err)
	second, err := c.Get(6, 10, 7, 123, StyleHouse)
	require.NoError(t, err)

	assert.Same(t, first, second, "Повторный запрос должен вернуть тот же шаблон")
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, CacheStats{Hits: 1, Misses: 1, Entries: 1}, c.Stats())

	// Другой стиль с теми же размерами - отдельная запись
	tower, err := c.Get(6, 10, 7, 123, StyleTower)
	require.NoError(t, err)
	assert.NotSame(t, first, tower)
	assert.Equal(t, 2, c.Len())
}

func TestCache_FreshInstancesAreIndependent(t *testing.T) {
	a := NewCache()
	b := NewCache()

	ta, err := a.Get(5, 8, 5, 7, StyleHouse)
	require.NoError(t, err)
	tb, err := b.Get(5, 8, 5, 7, StyleHouse)
	require.NoError(t, err)

	assert.NotSame(t, ta, tb)
	assert.Equal(t, ta.voxels, tb.voxels, "Генерация детерминирована")
}

func TestCache_InvalidDimensions(t *testing.T) {
	c := NewCache()

	_, err := c.Get(0, 10, 5, 1, StyleHouse)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = c.Get(5, 10, 5, -1, StyleHouse)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	assert.Equal(t, 0, c.Len(), "Ошибочные шаблоны не кешируются")
}

func TestTemplate_MatchesRule(t *testing.T) {
	tpl, err := Generate(Key{Style: StyleHouse, Width: 7, Height: 12, Depth: 6, Seed: 321})
	require.NoError(t, err)

	for x := 0; x < 7; x++ {
		for y := 0; y < 12; y++ {
			for z := 0; z < 6; z++ {
				assert.Equal(t, HouseVoxelAt(x, y, z, 7, 12, 6, 321), tpl.At(x, y, z))
			}
		}
	}
	assert.Equal(t, block.Empty, tpl.At(-1, 0, 0))
	assert.Equal(t, block.Empty, tpl.At(0, 12, 0))
	assert.Greater(t, tpl.SolidCount(), 0)
}

func TestHouseVoxelAt_Features(t *testing.T) {
	const w, h, d = 7, 12, 7

	// Нечётный сид: фундамент в два ряда
	assert.Equal(t, block.Stone, HouseVoxelAt(3, 0, 3, w, h, d, 1))
	assert.Equal(t, block.Stone, HouseVoxelAt(3, 1, 3, w, h, d, 1))
	// Чётный сид: фундамент в один ряд, дальше пустой интерьер
	assert.Equal(t, block.Stone, HouseVoxelAt(3, 0, 3, w, h, d, 2))
	assert.Equal(t, block.Empty, HouseVoxelAt(3, 1, 3, w, h, d, 2))

	// Горизонтальная балка сразу над фундаментом
	assert.Equal(t, block.WoodDark, HouseVoxelAt(0, 1, 3, w, h, d, 2))

	// Крыша: первый ряд над стенами покрыт кровлей нужного цвета
	wallHeight := h - h*45/100
	assert.Equal(t, block.Roof, HouseVoxelAt(3, wallHeight, 3, w, h, d, 0))
	assert.Equal(t, block.RoofRed, HouseVoxelAt(3, wallHeight, 3, w, h, d, 256))
	assert.Equal(t, block.RoofGreen, HouseVoxelAt(3, wallHeight, 3, w, h, d, 512))

	// Конёк сужается: на третьем ряду крыши края пусты
	assert.Equal(t, block.Empty, HouseVoxelAt(0, wallHeight+2, 3, w, h, d, 0))
}

func TestHouseVoxelAt_HasWindows(t *testing.T) {
	tpl, err := Generate(Key{Style: StyleHouse, Width: 8, Height: 14, Depth: 8, Seed: 1})
	require.NoError(t, err)

	windows := 0
	for _, v := range tpl.voxels {
		if v == block.Window {
			windows++
		}
	}
	assert.Greater(t, windows, 0, "В доме должны быть окна")
}

func TestTowerVoxelAt_Features(t *testing.T) {
	const w, h, d = 6, 16, 6
	seed := 4

	// Зубцы по чётности суммы координат
	assert.Equal(t, block.Stone, TowerVoxelAt(0, h-1, 0, w, h, d, seed))
	assert.Equal(t, block.Empty, TowerVoxelAt(0, h-1, 1, w, h, d, seed))
	assert.Equal(t, block.Empty, TowerVoxelAt(2, h-1, 2, w, h, d, seed), "Внутри верхнего ряда пусто")

	// Плоская крыша сплошная
	assert.Equal(t, block.Roof, TowerVoxelAt(2, h-2, 3, w, h, d, seed))

	// Угловые столбы и пустой интерьер
	assert.Equal(t, block.WoodDark, TowerVoxelAt(0, 5, 0, w, h, d, seed))
	assert.Equal(t, block.Empty, TowerVoxelAt(2, 5, 2, w, h, d, seed))

	// Стены башни из камня и поэтому обрушиваются
	assert.True(t, TowerVoxelAt(0, 3, 2, w, h, d, seed).IsSolid())
}

func TestStyle_String(t *testing.T) {
	assert.Equal(t, "house", StyleHouse.String())
	assert.Equal(t, "tower", StyleTower.String())
	assert.Equal(t, "unknown", Style(9).String())
}
