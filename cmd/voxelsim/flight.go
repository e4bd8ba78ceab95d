package main

import (
	"math"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world"
)

// flight - скриптовый пролёт камеры над миром: прямо по X с покачиванием по Z,
// на постоянной высоте над полем высот.
type flight struct {
	engine   *world.Engine
	speed    float64
	altitude float64
	t        float64
	pos      vec.Vec3Float
}

func newFlight(engine *world.Engine, speed, altitude float64) *flight {
	f := &flight{engine: engine, speed: speed, altitude: altitude}
	f.pos = f.at(0)
	return f
}

func (f *flight) at(t float64) vec.Vec3Float {
	x := t * f.speed
	z := 64 * math.Sin(t*0.2)
	return vec.Vec3Float{X: x, Y: f.engine.HeightAt(x, z) + f.altitude, Z: z}
}

// advance сдвигает камеру на dt секунд и возвращает новую точку обзора
func (f *flight) advance(dt float64) vec.Vec3Float {
	f.t += dt
	f.pos = f.at(f.t)
	return f.pos
}

// target возвращает точку удара по земле впереди камеры
func (f *flight) target() vec.Vec3Float {
	ahead := f.pos.X + 2*f.speed
	ground := f.engine.GroundHeight(ahead, f.pos.Z)
	return vec.Vec3Float{X: ahead, Y: ground - 1, Z: f.pos.Z}
}
