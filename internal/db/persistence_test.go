package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/game/session"
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
		Inventory: model.FixedCapacity(20),
	})
	require.NoError(t, err)
	return s
}

func TestSnapshotItems(t *testing.T) {
	s := newTestSession(t)

	_, err := s.GiveItem(testutil.TemplatePotion, 5)
	require.NoError(t, err)
	_, err = s.GiveItem(testutil.TemplateSword, 1)
	require.NoError(t, err)
	sword := s.Inventory().Get(1)
	require.NoError(t, s.Equip(sword.InstanceID()))

	rows := snapshotItems(s)
	require.Len(t, rows, 2)

	assert.Equal(t, testutil.TemplatePotion, rows[0].TemplateID)
	assert.Equal(t, int32(5), rows[0].Count)
	assert.Equal(t, int32(0), rows[0].SlotIndex)
	assert.Equal(t, int32(0), rows[0].EquipSlot)
	assert.Nil(t, rows[0].Durability)

	assert.Equal(t, testutil.TemplateSword, rows[1].TemplateID)
	assert.Equal(t, int32(-1), rows[1].SlotIndex)
	assert.Equal(t, int32(model.SlotRightHand), rows[1].EquipSlot)
}

func TestRestoreItems_EquipsByRow(t *testing.T) {
	rows := []ItemRow{
		{TemplateID: testutil.TemplateSword, Count: 1, SlotIndex: -1, EquipSlot: int32(model.SlotRightHand)},
		{TemplateID: testutil.TemplatePotion, Count: 5, SlotIndex: 0},
	}

	// Каждая строка восстанавливается по своим данным: экипированный меч
	// попадает в слот при любом порядке строк.
	for name, ordered := range map[string][]ItemRow{
		"equipped first": rows,
		"equipped last":  {rows[1], rows[0]},
	} {
		t.Run(name, func(t *testing.T) {
			s := newTestSession(t)
			require.NoError(t, restoreItems(s, ordered))

			equipped := s.Equipment().Equipped(model.SlotRightHand)
			require.NotNil(t, equipped)
			assert.Equal(t, testutil.TemplateSword, equipped.TemplateID())
			assert.Equal(t, int64(5), s.Inventory().CountOf(testutil.TemplatePotion))
			assert.Equal(t, int64(0), s.Inventory().CountOf(testutil.TemplateSword))
		})
	}
}

func TestRestoreItems_OccupiedSlotFails(t *testing.T) {
	s := newTestSession(t)
	row := ItemRow{TemplateID: testutil.TemplateSword, Count: 1, SlotIndex: -1, EquipSlot: int32(model.SlotRightHand)}

	require.NoError(t, restoreItems(s, []ItemRow{row}))
	assert.Error(t, restoreItems(s, []ItemRow{row}))
}

func TestLearnedSkillIDs_Sorted(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.LearnSkill(testutil.SkillBattleCry))
	require.NoError(t, s.LearnSkill(testutil.SkillIronBody))

	assert.Equal(t, []int32{testutil.SkillIronBody, testutil.SkillBattleCry}, learnedSkillIDs(s))
}

// Интеграционные тесты репозиториев требуют живой PostgreSQL.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, dsn))
	d, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestPersistence_SaveRestore(t *testing.T) {
	d := testDB(t)
	ctx := context.Background()
	p := NewPersistence(d)

	id, err := p.Characters().Create(ctx, "roundtrip-"+t.Name())
	require.NoError(t, err)

	s := newTestSession(t)
	_, err = s.UnlockNode(testutil.UnlockWarrior)
	require.NoError(t, err)
	_, err = s.GiveItem(testutil.TemplatePotion, 3)
	require.NoError(t, err)
	_, err = s.GainExp(150)
	require.NoError(t, err)

	require.NoError(t, p.SaveSession(ctx, id, s))

	restored := newTestSession(t)
	require.NoError(t, p.RestoreSession(ctx, id, "roundtrip-"+t.Name(), restored))

	assert.Equal(t, s.Progress().Exp(), restored.Progress().Exp())
	assert.Equal(t, s.Unlocks().Unlocked(), restored.Unlocks().Unlocked())
	assert.Equal(t, int64(3), restored.Inventory().CountOf(testutil.TemplatePotion))
}
