package terrain

import (
	"fmt"

	"github.com/annel0/voxel-strike/internal/util"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/building"
)

// Соли хешей для независимых решений генератора
const (
	saltBuilding uint64 = 0x1b
	saltCastle   uint64 = 0xca57
)

// Редкость построек
const (
	spotSeedRange = 1000 // Сид ячейки лежит в [0, 1000)
	towerDivisor  = 29   // Сид, кратный 29, даёт башню
	houseDivisor  = 7    // Иначе сид, кратный 7, даёт дом
	castleRarity  = 20   // Примерно один замок на 20 чанков
)

// Размеры замка
const (
	castleWallHeight  = 8
	castleTowerHeight = 12
	castleKeepHeight  = castleTowerHeight + 4
)

// BuildingSpot описывает размещение постройки в чанке.
// Живёт только в рамках одного вызова генерации.
type BuildingSpot struct {
	OriginX    int // Локальный угол основания
	OriginZ    int
	Width      int
	Depth      int
	Height     int
	Style      building.Style
	Seed       int     // Сид ячейки в [0, 1000)
	BaseHeight float64 // Высота рельефа в якорной точке основания
}

// Contains проверяет, что локальный столбец (i, k) лежит под постройкой
func (s BuildingSpot) Contains(i, k int) bool {
	return i >= s.OriginX && i < s.OriginX+s.Width && k >= s.OriginZ && k < s.OriginZ+s.Depth
}

type columnInfo struct {
	height float64
	spot   int // Индекс постройки или -1
}

// Layout - план столбцов чанка: высоты с учётом выравнивания и размещение построек
type Layout struct {
	Size    int
	Castle  bool
	Spots   []BuildingSpot
	columns []columnInfo
}

func (l *Layout) column(i, k int) columnInfo {
	return l.columns[i*l.Size+k]
}

// Height возвращает высоту столбца (i, k) с учётом выравнивания под постройками
func (l *Layout) Height(i, k int) float64 {
	return l.column(i, k).height
}

// SpotAt возвращает постройку над столбцом (i, k), если она есть
func (l *Layout) SpotAt(i, k int) (BuildingSpot, bool) {
	c := l.column(i, k)
	if c.spot < 0 {
		return BuildingSpot{}, false
	}
	return l.Spots[c.spot], true
}

// HasCastle определяет наличие замка в колонне чанков (cx, cz)
func (g *Generator) HasCastle(cx, cz int) bool {
	return util.Hash2Mod(g.seed, cx, cz, saltCastle, castleRarity) == 0
}

// CellSeed возвращает сид ячейки по её глобальным координатам
func (g *Generator) CellSeed(cellX, cellZ int) int {
	return util.Hash2Mod(g.seed, cellX, cellZ, saltBuilding, spotSeedRange)
}

// PlanSpots размещает постройки в ячейках 8×8 чанка.
// Не зависит от Y: постройка, выходящая за верх чанка, продолжается в чанке выше.
func (g *Generator) PlanSpots(cx, cz, size int) ([]BuildingSpot, error) {
	if size <= 0 || size%CellSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}

	cells := size / CellSize
	var spots []BuildingSpot
	for ci := 0; ci < cells; ci++ {
		for ck := 0; ck < cells; ck++ {
			seed := g.CellSeed(cx*cells+ci, cz*cells+ck)

			spot, ok := spotForSeed(seed)
			if !ok {
				continue
			}
			spot.OriginX += ci * CellSize
			spot.OriginZ += ck * CellSize

			if spot.OriginX < 0 || spot.OriginZ < 0 || spot.OriginX+spot.Width > size || spot.OriginZ+spot.Depth > size {
				return nil, fmt.Errorf("%w: chunk (%d,%d) spot %+v", ErrSpotOutOfBounds, cx, cz, spot)
			}

			spot.BaseHeight = g.HeightAt(float64(cx*size+spot.OriginX), float64(cz*size+spot.OriginZ))
			spots = append(spots, spot)
		}
	}
	return spots, nil
}

// spotForSeed выводит стиль и размеры постройки из сида ячейки.
// Смещение основания центрирует постройку внутри ячейки.
func spotForSeed(seed int) (BuildingSpot, bool) {
	var spot BuildingSpot
	switch {
	case seed%towerDivisor == 0:
		side := 5 + seed%2
		spot = BuildingSpot{
			Width:  side,
			Depth:  side,
			Height: 14 + (seed/towerDivisor)%10,
			Style:  building.StyleTower,
		}
	case seed%houseDivisor == 0:
		spot = BuildingSpot{
			Width:  5 + seed%3,
			Depth:  5 + (seed/3)%3,
			Height: 8 + (seed/9)%7,
			Style:  building.StyleHouse,
		}
	default:
		return BuildingSpot{}, false
	}
	spot.Seed = seed
	spot.OriginX = (CellSize - spot.Width) / 2
	spot.OriginZ = (CellSize - spot.Depth) / 2
	return spot, true
}

// Layout вычисляет план столбцов для колонны чанков (cx, cz).
// Под замком и постройками высота берётся один раз в якорной точке,
// поэтому всё основание лежит в одной плоскости.
func (g *Generator) Layout(cx, cz, size int) (*Layout, error) {
	if size <= 0 || size%CellSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}

	layout := &Layout{
		Size:    size,
		Castle:  g.HasCastle(cx, cz),
		columns: make([]columnInfo, size*size),
	}

	// Замок и постройки взаимоисключающие
	if !layout.Castle {
		spots, err := g.PlanSpots(cx, cz, size)
		if err != nil {
			return nil, err
		}
		layout.Spots = spots
	}

	castleBase := 0.0
	if layout.Castle {
		castleBase = g.HeightAt(float64(cx*size+size/2), float64(cz*size+size/2))
	}

	for i := 0; i < size; i++ {
		for k := 0; k < size; k++ {
			col := columnInfo{spot: -1}

			switch {
			case layout.Castle && inCastleFootprint(i, k, size):
				col.height = castleBase
			default:
				for idx, s := range layout.Spots {
					if s.Contains(i, k) {
						col.spot = idx
						col.height = s.BaseHeight
						break
					}
				}
				if col.spot < 0 {
					col.height = g.HeightAt(float64(cx*size+i), float64(cz*size+k))
				}
			}

			layout.columns[i*size+k] = col
		}
	}

	return layout, nil
}

// castleRadius - полуразмер основания замка (для чанка 32 это 12)
func castleRadius(size int) int {
	return size * 3 / 8
}

func inCastleFootprint(i, k, size int) bool {
	r := castleRadius(size)
	return iabs(i-size/2) <= r && iabs(k-size/2) <= r
}

// castleVoxelAt вырезает геометрию замка: центральная башня-донжон,
// четыре угловые башни и соединяющие их стены.
// cy - высота над основанием замка, i и k - локальные координаты столбца.
func castleVoxelAt(i, k, cy, size int) block.Type {
	if cy < 0 || !inCastleFootprint(i, k, size) {
		return block.Empty
	}

	r := castleRadius(size)
	inner := r - r/3
	keep := r / 3

	rx := iabs(i - size/2)
	rz := iabs(k - size/2)
	outerX := rx > inner
	outerZ := rz > inner

	var h int
	switch {
	case outerX && outerZ:
		h = castleTowerHeight
	case outerX || outerZ:
		h = castleWallHeight
	case rx <= keep && rz <= keep:
		// Донжон без зубцов
		if cy < castleKeepHeight {
			return block.Stone
		}
		return block.Empty
	default:
		return block.Empty
	}

	if cy >= h {
		return block.Empty
	}
	// Зубцы в верхнем ряду
	if cy == h-1 && (i+k)%2 != 0 {
		return block.Empty
	}
	return block.Stone
}

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
