package world

import (
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
)

// ImpactEvent - обрушившийся воксель приземлился на опору или на пол мира
type ImpactEvent struct {
	Position vec.Vec3   // Мировые координаты вокселя после падения
	Material block.Type // Материал вокселя
}

// DebrisEvent - взрыв разрушил воксели одного материала; потребитель порождает частицы
type DebrisEvent struct {
	Center    vec.Vec3Float // Центр взрыва
	Material  block.Type
	Destroyed int    // Разрушено вокселей материала
	Count     int    // Количество частиц
	Color     uint32 // Цвет частиц (0xRRGGBB)
}

// Listener получает события ядра мира. Вызывается синхронно внутри тика.
type Listener interface {
	OnImpact(ev ImpactEvent)
	OnDebris(ev DebrisEvent)
}

// NopListener игнорирует все события
type NopListener struct{}

func (NopListener) OnImpact(ImpactEvent) {}
func (NopListener) OnDebris(DebrisEvent) {}

// MultiListener рассылает события нескольким слушателям по порядку
type MultiListener []Listener

func (m MultiListener) OnImpact(ev ImpactEvent) {
	for _, l := range m {
		l.OnImpact(ev)
	}
}

func (m MultiListener) OnDebris(ev DebrisEvent) {
	for _, l := range m {
		l.OnDebris(ev)
	}
}
