package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-strike/internal/util"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/annel0/voxel-strike/internal/world/building"
)

// Параметры поля высот
const (
	NoiseScale      = 0.005 // Масштаб шума по горизонтали
	HeightAmplitude = 40.0  // Амплитуда рельефа
	HeightOffset    = 40.0  // Вертикальное смещение рельефа
)

// CellSize - сторона ячейки, в которой может стоять одна постройка
const CellSize = 8

var (
	// ErrInvalidChunkSize возвращается, если размер чанка не кратен размеру ячейки
	ErrInvalidChunkSize = errors.New("terrain: chunk size must be a positive multiple of 8")
	// ErrSpotOutOfBounds возвращается, если постройка не помещается в чанк
	ErrSpotOutOfBounds = errors.New("terrain: building spot outside chunk footprint")
)

// Generator строит содержимое чанков. Результат - чистая функция
// координат чанка и сида мира.
type Generator struct {
	seed      int64
	noise     *util.Noise2D
	templates *building.Cache
}

// NewGenerator создаёт генератор. Если templates == nil, создаётся собственный кеш.
func NewGenerator(seed int64, templates *building.Cache) *Generator {
	if templates == nil {
		templates = building.NewCache()
	}
	return &Generator{
		seed:      seed,
		noise:     util.NewNoise2D(seed),
		templates: templates,
	}
}

// Seed возвращает сид мира
func (g *Generator) Seed() int64 {
	return g.seed
}

// Templates возвращает кеш шаблонов построек
func (g *Generator) Templates() *building.Cache {
	return g.templates
}

// HeightAt возвращает высоту рельефа в мировой точке.
// Нечисловые координаты - ошибка вызывающего кода, функция паникует.
func (g *Generator) HeightAt(worldX, worldZ float64) float64 {
	if !vec.IsFinite(worldX) || !vec.IsFinite(worldZ) {
		panic(fmt.Sprintf("terrain: HeightAt called with non-finite coordinates (%v, %v)", worldX, worldZ))
	}
	return g.noise.At(worldX*NoiseScale, worldZ*NoiseScale)*HeightAmplitude + HeightOffset
}

// GenerateChunk генерирует воксели чанка размером size³.
// Индексация построчная: x*size² + y*size + z.
func (g *Generator) GenerateChunk(coords vec.Vec3, size int) ([]block.Type, error) {
	layout, err := g.Layout(coords.X, coords.Z, size)
	if err != nil {
		return nil, err
	}

	// Шаблоны запрашиваются один раз на постройку, а не на каждый столбец
	templates := make([]*building.Template, len(layout.Spots))
	for i, spot := range layout.Spots {
		t, err := g.templates.Get(spot.Width, spot.Height, spot.Depth, spot.Seed, spot.Style)
		if err != nil {
			return nil, fmt.Errorf("template for spot %d of chunk %v: %w", i, coords, err)
		}
		templates[i] = t
	}

	voxels := make([]block.Type, size*size*size)
	baseY := coords.Y * size

	for i := 0; i < size; i++ {
		for k := 0; k < size; k++ {
			col := layout.column(i, k)
			base := int(math.Ceil(col.height))

			for j := 0; j < size; j++ {
				voxelY := baseY + j
				v := block.Empty
				if float64(voxelY) < col.height {
					v = block.Terrain
				}

				switch {
				case layout.Castle:
					if c := castleVoxelAt(i, k, voxelY-base, size); c != block.Empty {
						v = c
					}
				case col.spot >= 0:
					spot := layout.Spots[col.spot]
					if voxelY >= base && voxelY < base+spot.Height {
						if t := templates[col.spot].At(i-spot.OriginX, voxelY-base, k-spot.OriginZ); t != block.Empty {
							v = t
						}
					}
				}

				voxels[i*size*size+j*size+k] = v
			}
		}
	}

	return voxels, nil
}
