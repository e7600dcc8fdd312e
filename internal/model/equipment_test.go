package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

func newEquipTestEngine(t *testing.T) *stat.Engine {
	t.Helper()
	r, err := stat.NewRegistry([]stat.Definition{
		stat.NewDefinition("pAtk", "Physical Attack", 10, stat.AggAdditive),
		stat.NewDefinition("pDef", "Physical Defense", 5, stat.AggAdditive),
	})
	require.NoError(t, err)
	return stat.NewEngine(r)
}

func equipTestSword(t *testing.T, gen *IDGenerator, id int32, pAtk float64) *ItemInstance {
	t.Helper()
	tmpl := testWeapon(id)
	tmpl.Modifiers = []stat.Modifier{
		{Target: "pAtk", Kind: stat.ModAdd, Magnitude: pAtk},
	}
	inst, err := NewItemInstance(gen.NextID(), tmpl, 1)
	require.NoError(t, err)
	return inst
}

func TestEquipment_EquipAppliesModifiers(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()
	gen := NewIDGenerator()

	sword := equipTestSword(t, gen, 1, 25)
	displaced, err := eq.Equip(sword, engine)
	require.NoError(t, err)
	assert.Nil(t, displaced)

	v, err := engine.Compute("pAtk")
	require.NoError(t, err)
	assert.Equal(t, 35.0, v)
	assert.Equal(t, sword, eq.Equipped(SlotRightHand))
}

func TestEquipment_EquipDisplacesOldItem(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()
	gen := NewIDGenerator()

	old := equipTestSword(t, gen, 1, 25)
	_, err := eq.Equip(old, engine)
	require.NoError(t, err)

	better := equipTestSword(t, gen, 2, 40)
	displaced, err := eq.Equip(better, engine)
	require.NoError(t, err)
	assert.Equal(t, old, displaced)

	// Модификаторы старого предмета сняты, нового — активны.
	v, err := engine.Compute("pAtk")
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)
	assert.False(t, engine.HasSource(old.SourceRef()))
	assert.Equal(t, 1, eq.Count())
}

func TestEquipment_UnequipRoundTrip(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()
	gen := NewIDGenerator()

	before, err := engine.Compute("pAtk")
	require.NoError(t, err)

	sword := equipTestSword(t, gen, 1, 25)
	_, err = eq.Equip(sword, engine)
	require.NoError(t, err)

	got := eq.Unequip(SlotRightHand, engine)
	assert.Equal(t, sword, got)
	assert.Nil(t, eq.Equipped(SlotRightHand))

	after, err := engine.Compute("pAtk")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEquipment_UnequipEmptySlot(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()

	assert.Nil(t, eq.Unequip(SlotChest, engine))
}

func TestEquipment_EquipNotEquippable(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()
	gen := NewIDGenerator()

	potion, err := NewItemInstance(gen.NextID(), testTemplate(1, 10), 5)
	require.NoError(t, err)

	_, err = eq.Equip(potion, engine)
	assert.ErrorIs(t, err, ErrNotEquippable)
}

func TestEquipment_EquipUnknownStatKeepsSlot(t *testing.T) {
	engine := newEquipTestEngine(t)
	eq := NewEquipment()
	gen := NewIDGenerator()

	old := equipTestSword(t, gen, 1, 25)
	_, err := eq.Equip(old, engine)
	require.NoError(t, err)

	// Шаблон ссылается на незарегистрированную характеристику.
	bad := equipTestSword(t, gen, 2, 1)
	bad.Template().Modifiers = []stat.Modifier{
		{Target: "mana", Kind: stat.ModAdd, Magnitude: 5},
	}
	_, err = eq.Equip(bad, engine)
	require.ErrorIs(t, err, stat.ErrUnknownStat)

	// Старый предмет остался надет, его модификаторы активны.
	assert.Equal(t, old, eq.Equipped(SlotRightHand))
	v, err := engine.Compute("pAtk")
	require.NoError(t, err)
	assert.Equal(t, 35.0, v)
}
