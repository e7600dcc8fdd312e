package session_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/config"
	"github.com/udisondev/rpgkit/internal/game/loot"
	"github.com/udisondev/rpgkit/internal/game/session"
	"github.com/udisondev/rpgkit/internal/game/skill"
	"github.com/udisondev/rpgkit/internal/game/unlock"
	"github.com/udisondev/rpgkit/internal/model"
	"github.com/udisondev/rpgkit/internal/testutil"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New(session.Config{
		Stats:     testutil.Stats(t),
		Templates: testutil.Templates(t),
		Skills:    testutil.Skills(t),
		Unlocks:   testutil.Unlocks(t),
		Levels:    testutil.Levels(t),
		Recipes:   testutil.Recipes(t),
		Inventory: model.UnboundedCapacity(),
	})
	require.NoError(t, err)
	return s
}

func TestSession_GiveItem(t *testing.T) {
	s := newTestSession(t)

	residual, err := s.GiveItem(testutil.TemplatePotion, 5)
	require.NoError(t, err)
	assert.Zero(t, residual)
	assert.Equal(t, int64(5), s.Inventory().CountOf(testutil.TemplatePotion))

	_, err = s.GiveItem(999, 1)
	assert.ErrorIs(t, err, session.ErrUnknownTemplate)
}

func TestSession_EquipUnequip(t *testing.T) {
	s := newTestSession(t)

	base, err := s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, base, 1e-9)

	_, err = s.GiveItem(testutil.TemplateSword, 1)
	require.NoError(t, err)
	sword := s.Inventory().Items()[0]

	require.NoError(t, s.Equip(sword.InstanceID()))
	v, err := s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 35.0, v, 1e-9)
	assert.Zero(t, s.Inventory().OccupiedSlots())

	ok, err := s.Unequip(model.SlotRightHand)
	require.NoError(t, err)
	assert.True(t, ok)
	v, err = s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9)
	assert.Equal(t, 1, s.Inventory().OccupiedSlots())

	ok, err = s.Unequip(model.SlotRightHand)
	require.NoError(t, err)
	assert.False(t, ok, "empty slot")
}

func TestSession_Equip_DisplacedReturnsToInventory(t *testing.T) {
	s := newTestSession(t)

	_, err := s.GiveItem(testutil.TemplateSword, 1)
	require.NoError(t, err)
	_, err = s.GiveItem(testutil.TemplateSword, 1)
	require.NoError(t, err)
	first := s.Inventory().Get(0)
	second := s.Inventory().Get(1)

	require.NoError(t, s.Equip(first.InstanceID()))
	require.NoError(t, s.Equip(second.InstanceID()))

	// Первый меч вытеснен обратно в инвентарь.
	assert.Equal(t, 1, s.Inventory().OccupiedSlots())
	_, _, found := s.Inventory().Find(first.InstanceID())
	assert.True(t, found)
	assert.Equal(t, second, s.Equipment().Equipped(model.SlotRightHand))
}

func TestSession_Equip_NotEquippable(t *testing.T) {
	s := newTestSession(t)

	_, err := s.GiveItem(testutil.TemplatePotion, 1)
	require.NoError(t, err)
	potion := s.Inventory().Items()[0]

	err = s.Equip(potion.InstanceID())
	assert.ErrorIs(t, err, model.ErrNotEquippable)
	// Предмет вернулся в инвентарь.
	_, _, found := s.Inventory().Find(potion.InstanceID())
	assert.True(t, found)
}

func TestSession_Skills(t *testing.T) {
	s := newTestSession(t)
	s.SetResource("mana", 50)

	require.NoError(t, s.LearnSkill(testutil.SkillBattleCry))
	require.NoError(t, s.ActivateSkill(testutil.SkillBattleCry))

	v, err := s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, v, 1e-9)
	assert.InDelta(t, 30.0, s.Current("mana"), 1e-9)

	s.Tick(3000)
	v, err = s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, v, 1e-9, "expired buff must drop")

	err = s.LearnSkill(999)
	assert.ErrorIs(t, err, session.ErrUnknownSkill)
}

func TestSession_UnlockNode_AppliesGrants(t *testing.T) {
	s := newTestSession(t)

	_, err := s.UnlockNode(testutil.UnlockVeteran)
	assert.ErrorIs(t, err, unlock.ErrPrerequisiteNotMet)

	_, err = s.UnlockNode(testutil.UnlockWarrior)
	require.NoError(t, err)
	v, err := s.Stat("maxHP")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, v, 1e-9)

	residual, err := s.UnlockNode(testutil.UnlockVeteran)
	require.NoError(t, err)
	assert.Zero(t, residual)

	// Узел выдал пассивку и меч.
	assert.True(t, s.Skills().IsLearned(testutil.SkillIronBody))
	assert.True(t, s.Inventory().Has(testutil.TemplateSword))
	v, err = s.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, v, 1e-9, "passive from unlock must apply")
}

func TestSession_RollLoot(t *testing.T) {
	s := newTestSession(t)

	tree, err := loot.NewTree(loot.Branch(1,
		loot.Leaf(testutil.TemplatePotion, 3),
		loot.Leaf(testutil.TemplateOre, 1),
	))
	require.NoError(t, err)
	gen, err := loot.NewGenerator(tree, testutil.Templates(t), 1.0, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(7, 7))
	items, residual, err := s.RollLoot(rng, gen, 20)
	require.NoError(t, err)
	assert.Len(t, items, 20)
	assert.Zero(t, residual)

	total := s.Inventory().CountOf(testutil.TemplatePotion) + s.Inventory().CountOf(testutil.TemplateOre)
	assert.Equal(t, int64(20), total)
}

func TestSession_GainExp(t *testing.T) {
	s := newTestSession(t)

	gained, err := s.GainExp(150)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gained)
	assert.Equal(t, int32(2), s.Progress().Level())
}

func TestSession_CraftItem(t *testing.T) {
	s := newTestSession(t)

	_, err := s.GiveItem(testutil.TemplateOre, 2)
	require.NoError(t, err)
	_, err = s.GiveItem(testutil.TemplateCoal, 1)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 1))
	result, err := s.CraftItem(rng, testutil.RecipeIronBar)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, int64(1), s.Inventory().CountOf(testutil.TemplateIronBar))
	assert.Zero(t, s.Inventory().CountOf(testutil.TemplateOre))
}

func TestSession_InventoryVersion(t *testing.T) {
	s := newTestSession(t)

	before := s.InventoryVersion()
	_, err := s.GiveItem(testutil.TemplatePotion, 1)
	require.NoError(t, err)
	assert.Equal(t, before+1, s.InventoryVersion())
}

func TestSession_RatesApply(t *testing.T) {
	s, err := session.New(session.Config{
		Stats:     testutil.Stats(t),
		Templates: testutil.Templates(t),
		Skills:    testutil.Skills(t),
		Unlocks:   testutil.Unlocks(t),
		Levels:    testutil.Levels(t),
		Recipes:   testutil.Recipes(t),
		Inventory: model.UnboundedCapacity(),
		Rates:     &config.Rates{ExperienceMultiplier: 2.0, LootChanceMultiplier: 1.0, LootAmountMultiplier: 1.0, CraftChanceMultiplier: 1.0},
	})
	require.NoError(t, err)

	gained, err := s.GainExp(50)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gained, "2x rate turns 50 exp into 100")
}

func TestSession_IndependentSessions(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)

	require.NoError(t, a.LearnSkill(testutil.SkillIronBody))

	va, err := a.Stat("pAtk")
	require.NoError(t, err)
	vb, err := b.Stat("pAtk")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, va, 1e-9)
	assert.InDelta(t, 10.0, vb, 1e-9, "sessions must not share modifier state")
}

var _ skill.ResourcePool = (*session.Session)(nil)
var _ loot.ItemFactory = (*session.Session)(nil)
