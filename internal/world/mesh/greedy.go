// Package mesh строит геометрию поверхности чанка жадным слиянием граней.
package mesh

import (
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// Volume - воксели одного чанка в локальных координатах
type Volume interface {
	Size() int
	// Origin возвращает мировые координаты вокселя (0,0,0) чанка
	Origin() vec.Vec3
	At(x, y, z int) block.Type
}

// Sampler читает воксель по мировым координатам.
// Используется для соседей за границей чанка; для незагруженных чанков возвращает Empty.
type Sampler func(x, y, z int) block.Type

// Quad - прямоугольная грань после слияния.
// Corner, DU и DV заданы в локальных координатах чанка.
type Quad struct {
	Axis   int // 0 - X, 1 - Y, 2 - Z
	Sign   int // +1 или -1: направление нормали вдоль оси
	Corner [3]int
	DU     [3]int
	DV     [3]int
}

// Area возвращает площадь грани в единичных гранях вокселя
func (q Quad) Area() int {
	return (absInt(q.DU[0]) + absInt(q.DU[1]) + absInt(q.DU[2])) *
		(absInt(q.DV[0]) + absInt(q.DV[1]) + absInt(q.DV[2]))
}

// Geometry - индексированные треугольники одного материала чанка.
// Позиции локальны: чанк размещается в мире по своему началу.
type Geometry struct {
	Material  block.Type
	Quads     []Quad
	Positions []float32 // x, y, z на вершину
	Normals   []float32
	Indices   []uint32
}

// VertexCount возвращает количество вершин
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount возвращает количество треугольников
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// Build строит геометрию видимых граней вокселей материала material.
// Граница между чанками принадлежит чанку, в котором лежит твёрдый воксель,
// поэтому на стыке соседних чанков грани не дублируются.
// Возвращает nil, если у материала нет видимых граней.
func Build(v Volume, material block.Type, sample Sampler) *Geometry {
	n := v.Size()
	origin := v.Origin()

	voxelAt := func(p [3]int) block.Type {
		if p[0] >= 0 && p[0] < n && p[1] >= 0 && p[1] < n && p[2] >= 0 && p[2] < n {
			return v.At(p[0], p[1], p[2])
		}
		if sample == nil {
			return block.Empty
		}
		return sample(origin.X+p[0], origin.Y+p[1], origin.Z+p[2])
	}

	geo := &Geometry{Material: material}
	mask := make([]int8, n*n)

	for d := 0; d < 3; d++ {
		u := (d + 1) % 3
		w := (d + 2) % 3

		var x, q [3]int
		q[d] = 1

		// Плоскость между слоями x[d] и x[d]+1
		for x[d] = -1; x[d] < n; x[d]++ {
			idx := 0
			for x[w] = 0; x[w] < n; x[w]++ {
				for x[u] = 0; x[u] < n; x[u]++ {
					a := voxelAt(x)
					b := voxelAt([3]int{x[0] + q[0], x[1] + q[1], x[2] + q[2]})

					var m int8
					switch {
					// Грань +d принадлежит чанку, если воксель a внутри него
					case x[d] >= 0 && a == material && !b.IsSolid():
						m = 1
					// Грань -d принадлежит чанку, если воксель b внутри него
					case x[d] < n-1 && b == material && !a.IsSolid():
						m = -1
					}
					mask[idx] = m
					idx++
				}
			}

			emitPlane(geo, mask, n, d, u, w, x[d]+1)
		}
	}

	if len(geo.Quads) == 0 {
		return nil
	}
	return geo
}

// emitPlane жадно сливает маску плоскости в прямоугольники
func emitPlane(geo *Geometry, mask []int8, n, d, u, w, plane int) {
	for j := 0; j < n; j++ {
		for i := 0; i < n; {
			m := mask[j*n+i]
			if m == 0 {
				i++
				continue
			}

			// Ширина вдоль u
			width := 1
			for i+width < n && mask[j*n+i+width] == m {
				width++
			}

			// Высота вдоль w
			height := 1
		grow:
			for j+height < n {
				for k := 0; k < width; k++ {
					if mask[(j+height)*n+i+k] != m {
						break grow
					}
				}
				height++
			}

			var corner, du, dv [3]int
			corner[d] = plane
			corner[u] = i
			corner[w] = j
			du[u] = width
			dv[w] = height
			geo.addQuad(Quad{Axis: d, Sign: int(m), Corner: corner, DU: du, DV: dv})

			for l := 0; l < height; l++ {
				for k := 0; k < width; k++ {
					mask[(j+l)*n+i+k] = 0
				}
			}
			i += width
		}
	}
}

// addQuad добавляет два треугольника. Для u × w = +d обход
// против часовой стрелки со стороны нормали требует порядка 0-1-2,
// для отрицательной нормали порядок обратный.
func (g *Geometry) addQuad(q Quad) {
	base := uint32(g.VertexCount())
	c := q.Corner
	corners := [4][3]int{
		c,
		{c[0] + q.DU[0], c[1] + q.DU[1], c[2] + q.DU[2]},
		{c[0] + q.DU[0] + q.DV[0], c[1] + q.DU[1] + q.DV[1], c[2] + q.DU[2] + q.DV[2]},
		{c[0] + q.DV[0], c[1] + q.DV[1], c[2] + q.DV[2]},
	}

	var normal [3]float32
	normal[q.Axis] = float32(q.Sign)

	for _, p := range corners {
		g.Positions = append(g.Positions, float32(p[0]), float32(p[1]), float32(p[2]))
		g.Normals = append(g.Normals, normal[0], normal[1], normal[2])
	}

	if q.Sign > 0 {
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	} else {
		g.Indices = append(g.Indices, base, base+2, base+1, base, base+3, base+2)
	}
	g.Quads = append(g.Quads, q)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
