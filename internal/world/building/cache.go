package building

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel-strike/internal/world/block"
)

// ErrInvalidDimensions возвращается при неположительных размерах шаблона
var ErrInvalidDimensions = errors.New("building: invalid template dimensions")

// Key однозначно определяет шаблон постройки
type Key struct {
	Style  Style
	Width  int
	Height int
	Depth  int
	Seed   int
}

// Template - неизменяемый трёхмерный штамп постройки.
// Воксели хранятся построчно: индекс x*Height*Depth + y*Depth + z.
type Template struct {
	Key    Key
	voxels []block.Type
}

// At возвращает материал в локальной ячейке шаблона; за пределами - Empty
func (t *Template) At(x, y, z int) block.Type {
	k := t.Key
	if x < 0 || y < 0 || z < 0 || x >= k.Width || y >= k.Height || z >= k.Depth {
		return block.Empty
	}
	return t.voxels[x*k.Height*k.Depth+y*k.Depth+z]
}

// SolidCount возвращает количество непустых вокселей в шаблоне
func (t *Template) SolidCount() int {
	n := 0
	for _, v := range t.voxels {
		if v != block.Empty {
			n++
		}
	}
	return n
}

// Generate синтезирует шаблон, вычисляя правило стиля для каждой ячейки
func Generate(key Key) (*Template, error) {
	if key.Width <= 0 || key.Height <= 0 || key.Depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidDimensions, key.Width, key.Height, key.Depth)
	}
	if key.Seed < 0 {
		return nil, fmt.Errorf("%w: negative seed %d", ErrInvalidDimensions, key.Seed)
	}

	voxels := make([]block.Type, key.Width*key.Height*key.Depth)
	i := 0
	for x := 0; x < key.Width; x++ {
		for y := 0; y < key.Height; y++ {
			for z := 0; z < key.Depth; z++ {
				voxels[i] = VoxelAt(key.Style, x, y, z, key.Width, key.Height, key.Depth, key.Seed)
				i++
			}
		}
	}

	return &Template{Key: key, voxels: voxels}, nil
}

// CacheStats - счётчики обращений к кешу
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Cache мемоизирует шаблоны построек по ключу (стиль, размеры, сид).
// Кеш не инвалидируется: содержимое шаблона детерминировано.
// Не потокобезопасен - используется из одного игрового цикла.
type Cache struct {
	templates map[Key]*Template
	hits      uint64
	misses    uint64
}

// NewCache создаёт пустой кеш
func NewCache() *Cache {
	return &Cache{templates: make(map[Key]*Template)}
}

// Get возвращает шаблон из кеша, генерируя его при промахе
func (c *Cache) Get(width, height, depth, seed int, style Style) (*Template, error) {
	key := Key{Style: style, Width: width, Height: height, Depth: depth, Seed: seed}
	if t, ok := c.templates[key]; ok {
		c.hits++
		return t, nil
	}

	t, err := Generate(key)
	if err != nil {
		return nil, err
	}
	c.misses++
	c.templates[key] = t
	return t, nil
}

// Len возвращает количество закешированных шаблонов
func (c *Cache) Len() int {
	return len(c.templates)
}

// Stats возвращает статистику кеша
func (c *Cache) Stats() CacheStats {
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.templates)}
}
