package world

import (
	"fmt"
	"math"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// ExplosionResult - итог взрыва
type ExplosionResult struct {
	Center    vec.Vec3 // Воксель, содержащий центр взрыва
	Destroyed map[block.Type]int
	Total     int
	Touched   []vec.Vec3 // Чанки, чьи меши пересобраны
	Debris    []DebrisEvent
}

// CreateExplosion удаляет все твёрдые воксели в шаре радиуса radius
// (включительно, по квадрату евклидова расстояния), порождает обломки,
// ставит обрушение и сразу пересобирает меши затронутых чанков.
func (e *Engine) CreateExplosion(center vec.Vec3Float, radius float64) (ExplosionResult, error) {
	var res ExplosionResult
	if e.err != nil {
		return res, fmt.Errorf("%w: %v", ErrHalted, e.err)
	}
	if !center.IsFinite() || !vec.IsFinite(radius) || radius < 0 {
		return res, e.halt(fmt.Errorf("%w: explosion at %+v radius %v", ErrNonFinite, center, radius))
	}

	c := center.Floor()
	r := int(math.Ceil(radius))
	r2 := radius * radius

	res.Center = c
	res.Destroyed = make(map[block.Type]int)
	owners := make(map[vec.Vec3]struct{})
	touched := make(map[vec.Vec3]struct{})

	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				if float64(x*x+y*y+z*z) > r2 {
					continue
				}
				wx, wy, wz := c.X+x, c.Y+y, c.Z+z
				t := e.store.VoxelAt(wx, wy, wz)
				if !t.IsSolid() {
					continue
				}
				chunk := e.store.SetVoxel(wx, wy, wz, block.Empty)
				if chunk == nil {
					continue
				}
				res.Destroyed[t]++
				res.Total++
				owners[chunk.Coords] = struct{}{}
				for _, a := range e.store.AffectedCoords(wx, wy, wz) {
					touched[a] = struct{}{}
				}
			}
		}
	}

	res.Debris = e.spawnDebris(center, res.Destroyed)

	affected := make([]vec.Vec3, 0, len(owners))
	for o := range owners {
		affected = append(affected, o)
	}
	sortCoords(affected)
	e.collapse.QueueCollapse(affected)

	// Синхронная пересборка: каскад обрушения догонит в следующих кадрах
	res.Touched = make([]vec.Vec3, 0, len(touched))
	for t := range touched {
		res.Touched = append(res.Touched, t)
	}
	sortCoords(res.Touched)
	for _, t := range res.Touched {
		if chunk := e.store.Get(t); chunk != nil {
			e.streamer.Rebuild(chunk)
		}
	}

	e.metrics.explosion(res.Destroyed)
	if res.Total > 0 {
		named := make(map[string]int, len(res.Destroyed))
		for t, n := range res.Destroyed {
			named[t.String()] = n
		}
		e.logger.LogExplosion(center.X, center.Y, center.Z, radius, named, len(res.Touched))
	}
	return res, nil
}

// spawnDebris отправляет по событию обломков на каждый разрушенный материал.
// Количество частиц пропорционально числу вокселей и ограничено сверху.
func (e *Engine) spawnDebris(center vec.Vec3Float, destroyed map[block.Type]int) []DebrisEvent {
	var out []DebrisEvent
	for _, t := range block.Solids() {
		n := destroyed[t]
		if n == 0 {
			continue
		}
		count := int(math.Ceil(float64(n) * e.cfg.DebrisPerVoxel))
		if e.cfg.MaxDebrisPerMaterial > 0 && count > e.cfg.MaxDebrisPerMaterial {
			count = e.cfg.MaxDebrisPerMaterial
		}
		props, _ := block.Get(t)
		ev := DebrisEvent{
			Center:    center,
			Material:  t,
			Destroyed: n,
			Count:     count,
			Color:     props.DebrisColor,
		}
		e.listener.OnDebris(ev)
		out = append(out, ev)
	}
	return out
}
