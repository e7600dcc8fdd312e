package loot

import (
	"fmt"
	"math/rand/v2"

	"github.com/udisondev/rpgkit/internal/config"
	"github.com/udisondev/rpgkit/internal/model"
)

// ItemFactory creates new item instances (injected dependency).
type ItemFactory interface {
	CreateItem(templateID int32, count int32) (*model.ItemInstance, error)
}

// CountRange — диапазон количества для выпавшего шаблона.
type CountRange struct {
	Min int32
	Max int32
}

// Generator превращает розыгрыши дерева в конкретные экземпляры предметов:
// шанс дропа и количество с учётом глобальных rate-множителей.
type Generator struct {
	tree      *Tree
	templates *model.TemplateRegistry
	// dropChance — базовая вероятность того, что один розыгрыш вообще
	// что-то даст, 0..1. 1.0 означает гарантированный дроп.
	dropChance float64
	counts     map[int32]CountRange // default {1,1}
}

// NewGenerator создаёт генератор поверх дерева. Каждый лист дерева обязан
// ссылаться на шаблон из реестра; диапазоны количеств не могут превышать
// max stack шаблона.
// counts может быть nil: тогда каждый дроп по одной единице.
func NewGenerator(tree *Tree, templates *model.TemplateRegistry, dropChance float64, counts map[int32]CountRange) (*Generator, error) {
	if tree == nil {
		return nil, fmt.Errorf("loot tree cannot be nil")
	}
	if templates == nil {
		return nil, fmt.Errorf("template registry cannot be nil")
	}
	if dropChance < 0 || dropChance > 1 {
		return nil, fmt.Errorf("drop chance must be in [0, 1], got %v", dropChance)
	}
	for _, id := range tree.Leaves() {
		if !templates.Has(id) {
			return nil, fmt.Errorf("loot leaf references unknown template %d", id)
		}
	}
	for id, cr := range counts {
		if cr.Min <= 0 || cr.Max < cr.Min {
			return nil, fmt.Errorf("count range for template %d: invalid [%d, %d]", id, cr.Min, cr.Max)
		}
		tpl := templates.Get(id)
		if tpl == nil {
			return nil, fmt.Errorf("count range for unknown template %d", id)
		}
		if cr.Max > tpl.MaxStack {
			return nil, fmt.Errorf("count range for template %d: max %d above max stack %d",
				id, cr.Max, tpl.MaxStack)
		}
	}
	return &Generator{tree: tree, templates: templates, dropChance: dropChance, counts: counts}, nil
}

// Tree возвращает дерево генератора.
func (g *Generator) Tree() *Tree {
	return g.tree
}

// Roll выполняет picks розыгрышей и создаёт экземпляры через factory.
//
// Алгоритм одного розыгрыша:
//  1. Шанс дропа: dropChance × rates.LootChanceMultiplier; провал — пусто.
//  2. Sample дерева → template ID.
//  3. Количество: random(min..max) × rates.LootAmountMultiplier, зажатое
//     в [1, max stack шаблона].
//
// Returns:
//   - []*model.ItemInstance: от 0 до picks экземпляров
//   - error: ErrEmptyLootPool от дерева; ошибки factory
func (g *Generator) Roll(rng *rand.Rand, picks int, rates *config.Rates, factory ItemFactory) ([]*model.ItemInstance, error) {
	if factory == nil {
		return nil, fmt.Errorf("item factory cannot be nil")
	}

	chanceMult := 1.0
	amountMult := 1.0
	if rates != nil {
		chanceMult = rates.LootChanceMultiplier
		amountMult = rates.LootAmountMultiplier
	}

	var results []*model.ItemInstance
	for range picks {
		chance := g.dropChance * chanceMult
		if chance <= 0 {
			continue
		}
		if chance < 1 && rng.Float64() >= chance {
			continue
		}

		templateID, err := g.tree.Sample(rng)
		if err != nil {
			return nil, err
		}

		count := int32(1)
		if cr, ok := g.counts[templateID]; ok {
			count = cr.Min
			if cr.Max > cr.Min {
				count = cr.Min + rng.Int32N(cr.Max-cr.Min+1)
			}
		}
		count = scaleCount(count, amountMult, g.templates.Get(templateID).MaxStack)

		inst, err := factory.CreateItem(templateID, count)
		if err != nil {
			return nil, fmt.Errorf("creating loot item %d: %w", templateID, err)
		}
		results = append(results, inst)
	}
	return results, nil
}

// scaleCount применяет rate-множитель к количеству. Результат зажимается
// в [1, maxStack]: усиленный дроп не превышает вместимость стака, а расчёт
// в float64 не переполняет int32 при больших множителях.
func scaleCount(count int32, mult float64, maxStack int32) int32 {
	scaled := float64(count) * mult
	if scaled < 1 {
		return 1
	}
	if scaled >= float64(maxStack) {
		return maxStack
	}
	return int32(scaled)
}
