package building

import "github.com/annel0/voxel-strike/internal/world/block"

// Style определяет архитектурный стиль постройки
type Style uint8

const (
	StyleHouse Style = iota // Фахверковый дом с двускатной крышей
	StyleTower              // Каменная башня с плоской крышей и зубцами
)

// String возвращает имя стиля
func (s Style) String() string {
	switch s {
	case StyleHouse:
		return "house"
	case StyleTower:
		return "tower"
	default:
		return "unknown"
	}
}

// roofVoxel выбирает цвет кровли по сиду
func roofVoxel(seed int) block.Type {
	switch (seed >> 8) % 3 {
	case 1:
		return block.RoofRed
	case 2:
		return block.RoofGreen
	default:
		return block.Roof
	}
}

// HouseVoxelAt возвращает материал дома в локальной ячейке (lx, ly, lz).
// Функция чистая: результат зависит только от аргументов.
func HouseVoxelAt(lx, ly, lz, width, height, depth, seed int) block.Type {
	roofAlongX := seed%2 == 0
	roof := roofVoxel(seed)
	timberSpacing := 2 + seed%2

	// Фундамент
	foundationHeight := 1 + seed%2
	if ly < foundationHeight {
		return block.Stone
	}

	roofHeight := height * 45 / 100
	wallHeight := height - roofHeight

	// Двускатная крыша: каждый следующий ряд сужается на одну ячейку с каждой стороны
	if ly >= wallHeight {
		offset := ly - wallHeight
		if roofAlongX {
			if lx >= offset && lx < width-offset {
				if lx == offset || lx == width-offset-1 || lz == 0 || lz == depth-1 {
					return block.WoodDark
				}
				return roof
			}
		} else {
			if lz >= offset && lz < depth-offset {
				if lz == offset || lz == depth-offset-1 || lx == 0 || lx == width-1 {
					return block.WoodDark
				}
				return roof
			}
		}
		return block.Empty
	}

	edgeX := lx == 0 || lx == width-1
	edgeZ := lz == 0 || lz == depth-1
	if !edgeX && !edgeZ {
		// Внутри пусто
		return block.Empty
	}

	// Горизонтальные балки: над фундаментом, под крышей и посередине
	if ly == foundationHeight || ly == wallHeight-1 || ly == (foundationHeight+wallHeight)/2 {
		return block.WoodDark
	}

	// Вертикальные балки
	if lx%timberSpacing == 0 || lz%timberSpacing == 0 {
		return block.WoodDark
	}

	// Окна
	if ly > foundationHeight+1 && ly < wallHeight-1 && ly%3 != 0 {
		if edgeX && lz > 1 && lz < depth-2 && lz%3 == 1 {
			return block.Window
		}
		if edgeZ && lx > 1 && lx < width-2 && lx%3 == 1 {
			return block.Window
		}
	}

	return block.Plaster
}

// TowerVoxelAt возвращает материал башни в локальной ячейке (lx, ly, lz).
// Стены каменные, поэтому разрушенная башня обрушивается.
func TowerVoxelAt(lx, ly, lz, width, height, depth, seed int) block.Type {
	foundationHeight := 1 + seed%2
	if ly < foundationHeight {
		return block.Stone
	}

	edgeX := lx == 0 || lx == width-1
	edgeZ := lz == 0 || lz == depth-1
	perimeter := edgeX || edgeZ

	// Верхний ряд - зубцы по периметру через одну ячейку
	if ly == height-1 {
		if perimeter && (lx+lz)%2 == 0 {
			return block.Stone
		}
		return block.Empty
	}

	// Плоская крыша сплошным слоем
	if ly == height-2 {
		return roofVoxel(seed)
	}

	if !perimeter {
		return block.Empty
	}

	// Угловые столбы
	if edgeX && edgeZ {
		return block.WoodDark
	}

	// Каменные пояса через интервал, зависящий от сида
	bandSpacing := 3 + seed%3
	if (ly-foundationHeight)%bandSpacing == 0 {
		return block.Stone
	}

	// Бойницы на стенах между поясами
	pos := lz
	if edgeZ {
		pos = lx
	}
	if (ly-foundationHeight)%bandSpacing == bandSpacing/2+1 && pos%3 == 1 && ly < height-3 {
		return block.Window
	}

	return block.Stone
}

// VoxelAt выбирает правило по стилю
func VoxelAt(style Style, lx, ly, lz, width, height, depth, seed int) block.Type {
	switch style {
	case StyleTower:
		return TowerVoxelAt(lx, ly, lz, width, height, depth, seed)
	default:
		return HouseVoxelAt(lx, ly, lz, width, height, depth, seed)
	}
}
