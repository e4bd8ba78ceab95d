package world

import (
	"context"
	"encoding/json"

	"github.com/annel0/voxel-strike/internal/eventbus"
	"github.com/annel0/voxel-strike/internal/logging"
)

// ImpactPayload - JSON-представление ImpactEvent в шине
type ImpactPayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Material string `json:"material"`
}

// DebrisPayload - JSON-представление DebrisEvent в шине
type DebrisPayload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Material  string  `json:"material"`
	Destroyed int     `json:"destroyed"`
	Count     int     `json:"count"`
	Color     uint32  `json:"color"`
}

// BusListener публикует события мира в шину для внешних потребителей.
// Публикация не блокирует тик: при переполнении буфера события отбрасываются.
type BusListener struct {
	bus    eventbus.EventBus
	source string
	logger *logging.Logger
}

// NewBusListener создаёт мост из Listener в шину событий
func NewBusListener(bus eventbus.EventBus, logger *logging.Logger) *BusListener {
	return &BusListener{bus: bus, source: "world", logger: logger}
}

// OnImpact публикует событие приземления с низким приоритетом
func (b *BusListener) OnImpact(ev ImpactEvent) {
	b.publish(eventbus.EventTypeImpact, eventbus.PriorityLow, ImpactPayload{
		X:        ev.Position.X,
		Y:        ev.Position.Y,
		Z:        ev.Position.Z,
		Material: ev.Material.String(),
	})
}

// OnDebris публикует событие обломков
func (b *BusListener) OnDebris(ev DebrisEvent) {
	b.publish(eventbus.EventTypeDebris, eventbus.PriorityNormal, DebrisPayload{
		X:         ev.Center.X,
		Y:         ev.Center.Y,
		Z:         ev.Center.Z,
		Material:  ev.Material.String(),
		Destroyed: ev.Destroyed,
		Count:     ev.Count,
		Color:     ev.Color,
	})
}

func (b *BusListener) publish(eventType string, priority int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Warn("BusListener marshal error: %v", err)
		return
	}
	if err := b.bus.Publish(context.Background(), eventbus.NewEnvelope(b.source, eventType, priority, data)); err != nil {
		b.logger.Warn("BusListener publish error: %v", err)
	}
}
