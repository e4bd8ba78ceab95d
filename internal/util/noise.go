package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина, общие для всех генераторов
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// Noise2D - детерминированный двумерный шум Перлина с фиксированным сидом.
// Таблица перестановок строится один раз в конструкторе, дальше значения только читаются,
// поэтому одинаковый сид всегда даёт одинаковое поле.
type Noise2D struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewNoise2D создаёт генератор шума с указанным сидом
func NewNoise2D(seed int64) *Noise2D {
	return &Noise2D{
		seed:   seed,
		perlin: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// Seed возвращает сид генератора
func (n *Noise2D) Seed() int64 {
	return n.seed
}

// At возвращает значение шума примерно в диапазоне [-1, 1]
func (n *Noise2D) At(x, y float64) float64 {
	return n.perlin.Noise2D(x, y)
}

// At01 возвращает значение шума, приведённое к диапазону [0, 1].
// Сумма октав может слегка выходить за [-1, 1], поэтому результат обрезается.
func (n *Noise2D) At01(x, y float64) float64 {
	v := (n.At(x, y) + 1.0) / 2.0
	return min(max(v, 0), 1)
}
