package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapsibleMaterials(t *testing.T) {
	// Обрушиваются ровно два материала
	var collapsible []Type
	for _, m := range Solids() {
		if m.IsCollapsible() {
			collapsible = append(collapsible, m)
		}
	}
	assert.Equal(t, []Type{BuildingGeneric, Stone}, collapsible)

	for _, m := range []Type{Wood, Plaster, Roof, Window, WoodDark, RoofRed, RoofGreen} {
		p, ok := Get(m)
		assert.True(t, ok)
		assert.True(t, p.Decorative, "%s должен быть декоративным", m)
		assert.False(t, m.IsCollapsible(), "%s не должен обрушиваться", m)
	}
}

func TestSolidity(t *testing.T) {
	assert.False(t, Empty.IsSolid())
	for _, m := range Solids() {
		assert.True(t, m.IsSolid(), "%s должен быть твёрдым", m)
	}
	assert.Len(t, Solids(), Count-1)
}

func TestUnknownType(t *testing.T) {
	unknown := Type(200)
	_, ok := Get(unknown)
	assert.False(t, ok)
	assert.False(t, IsValid(unknown))
	assert.False(t, unknown.IsCollapsible())
	assert.Equal(t, "unknown(200)", unknown.String())
	assert.Equal(t, "stone", Stone.String())
}
