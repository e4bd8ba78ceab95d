package world

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/annel0/voxel-strike/internal/eventbus"
	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusListener_PublishesPayloads(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	got := make(chan *eventbus.Envelope, 4)
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		got <- ev
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	l := NewBusListener(bus, nil)
	l.OnImpact(ImpactEvent{Position: vec.Vec3{X: 1, Y: 2, Z: 3}, Material: block.Stone})

	var ev *eventbus.Envelope
	select {
	case ev = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("impact event not delivered")
	}
	assert.Equal(t, "world", ev.Source)
	assert.Equal(t, eventbus.EventTypeImpact, ev.EventType)
	assert.NotEmpty(t, ev.ID)

	var impact ImpactPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &impact))
	assert.Equal(t, ImpactPayload{X: 1, Y: 2, Z: 3, Material: block.Stone.String()}, impact)

	l.OnDebris(DebrisEvent{
		Center:    vec.Vec3Float{X: 0.5, Y: 1.5, Z: 2.5},
		Material:  block.Terrain,
		Destroyed: 7,
		Count:     7,
		Color:     0x00ff00,
	})
	select {
	case ev = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("debris event not delivered")
	}
	assert.Equal(t, eventbus.EventTypeDebris, ev.EventType)

	var debris DebrisPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &debris))
	assert.Equal(t, 1.5, debris.Y)
	assert.Equal(t, block.Terrain.String(), debris.Material)
	assert.Equal(t, 7, debris.Count)
	assert.Equal(t, uint32(0x00ff00), debris.Color)
}

func TestBusListener_FilterByType(t *testing.T) {
	bus := eventbus.NewMemoryBus(16)
	got := make(chan string, 4)
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.EventTypeDebris}},
		func(_ context.Context, ev *eventbus.Envelope) { got <- ev.EventType })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	l := NewBusListener(bus, nil)
	l.OnImpact(ImpactEvent{Material: block.Stone})
	l.OnDebris(DebrisEvent{Material: block.Stone, Count: 1})

	select {
	case typ := <-got:
		assert.Equal(t, eventbus.EventTypeDebris, typ)
	case <-time.After(2 * time.Second):
		t.Fatal("debris event not delivered")
	}
	select {
	case typ := <-got:
		t.Fatalf("unexpected event %s", typ)
	case <-time.After(50 * time.Millisecond):
	}
}
