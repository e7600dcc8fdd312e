// Package testutil содержит общие тестовые данные для пакетов игры,
// чтобы не дублировать реестры в каждом тесте.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/game/craft"
	"github.com/udisondev/rpgkit/internal/game/level"
	"github.com/udisondev/rpgkit/internal/game/skill"
	"github.com/udisondev/rpgkit/internal/game/stat"
	"github.com/udisondev/rpgkit/internal/game/unlock"
	"github.com/udisondev/rpgkit/internal/model"
)

// Шаблоны фикстур.
const (
	TemplatePotion   int32 = 1  // стакуемое зелье
	TemplateSword    int32 = 2  // оружие, +25 pAtk
	TemplateOre      int32 = 10 // материал
	TemplateCoal     int32 = 11 // материал
	TemplateIronBar  int32 = 20 // продукт крафта
	SkillIronBody    int32 = 1  // пассивка, +5 pAtk
	SkillBattleCry   int32 = 2  // актив, +15 pAtk на 3с
	UnlockWarrior    int32 = 1  // корень дерева
	UnlockVeteran    int32 = 2  // даёт навык и предмет
	RecipeIronBar    int32 = 1
)

// Stats возвращает реестр статов фикстуры.
func Stats(t *testing.T) *stat.Registry {
	t.Helper()
	reg, err := stat.NewRegistry([]stat.Definition{
		stat.NewDefinition("maxHP", "Max HP", 100, stat.AggAdditive),
		stat.NewDefinition("mana", "Mana", 50, stat.AggAdditive),
		stat.NewDefinition("pAtk", "Physical Attack", 10, stat.AggAdditive),
		stat.NewDefinition("speed", "Speed", 120, stat.AggMultiplicative),
	})
	require.NoError(t, err)
	return reg
}

// Templates возвращает реестр шаблонов предметов фикстуры.
func Templates(t *testing.T) *model.TemplateRegistry {
	t.Helper()
	reg, err := model.NewTemplateRegistry([]*model.ItemTemplate{
		{
			ID:       TemplatePotion,
			Name:     "Healing Potion",
			Category: model.CategoryConsumable,
			MaxStack: 20,
			Weight:   1,
		},
		{
			ID:       TemplateSword,
			Name:     "Iron Sword",
			Category: model.CategoryWeapon,
			Slot:     model.SlotRightHand,
			MaxStack: 1,
			Weight:   50,
			Modifiers: []stat.Modifier{
				{Target: "pAtk", Kind: stat.ModAdd, Magnitude: 25},
			},
		},
		{ID: TemplateOre, Name: "Iron Ore", Category: model.CategoryEtcItem, MaxStack: 100, Weight: 2},
		{ID: TemplateCoal, Name: "Coal", Category: model.CategoryEtcItem, MaxStack: 100, Weight: 1},
		{ID: TemplateIronBar, Name: "Iron Bar", Category: model.CategoryEtcItem, MaxStack: 50, Weight: 5},
	})
	require.NoError(t, err)
	return reg
}

// Skills возвращает реестр навыков фикстуры.
func Skills(t *testing.T) map[int32]*skill.Template {
	t.Helper()
	return map[int32]*skill.Template{
		SkillIronBody: {
			ID:   SkillIronBody,
			Name: "Iron Body",
			Kind: skill.KindPassive,
			Modifiers: []stat.Modifier{
				{Target: "pAtk", Kind: stat.ModAdd, Magnitude: 5},
			},
		},
		SkillBattleCry: {
			ID:         SkillBattleCry,
			Name:       "Battle Cry",
			Kind:       skill.KindActive,
			CostStat:   "mana",
			CostAmount: 20,
			CooldownMs: 5000,
			DurationMs: 3000,
			Modifiers: []stat.Modifier{
				{Target: "pAtk", Kind: stat.ModAdd, Magnitude: 15},
			},
		},
	}
}

// Unlocks возвращает дерево развития фикстуры.
func Unlocks(t *testing.T) *unlock.Graph {
	t.Helper()
	graph, err := unlock.NewGraph([]*unlock.Node{
		{
			ID:   UnlockWarrior,
			Name: "Warrior",
			Modifiers: []stat.Modifier{
				{Target: "maxHP", Kind: stat.ModAdd, Magnitude: 20},
			},
		},
		{
			ID:            UnlockVeteran,
			Name:          "Veteran",
			Prerequisites: []int32{UnlockWarrior},
			GrantSkills:   []int32{SkillIronBody},
			GrantItems:    []int32{TemplateSword},
		},
	})
	require.NoError(t, err)
	return graph
}

// Levels возвращает таблицу уровней фикстуры (1..5).
func Levels(t *testing.T) *level.Table {
	t.Helper()
	table, err := level.NewTable([]int64{0, 100, 300, 700, 1500})
	require.NoError(t, err)
	return table
}

// Recipes возвращает книгу рецептов фикстуры.
func Recipes(t *testing.T) *craft.Book {
	t.Helper()
	book, err := craft.NewBook([]*craft.Recipe{
		{
			ID:          RecipeIronBar,
			Name:        "Iron Bar",
			SuccessRate: 1.0,
			Materials: []craft.Ingredient{
				{TemplateID: TemplateOre, Count: 2},
				{TemplateID: TemplateCoal, Count: 1},
			},
			Products: []craft.Ingredient{
				{TemplateID: TemplateIronBar, Count: 1},
			},
		},
	})
	require.NoError(t, err)
	return book
}
