// Package model contains the item model and the inventory container:
// immutable item templates, mutable item instances and slot-based storage
// with capacity policies.
package model

import (
	"fmt"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

// ItemCategory определяет категорию предмета.
type ItemCategory int32

const (
	CategoryWeapon ItemCategory = iota
	CategoryArmor
	CategoryConsumable
	CategoryMaterial
	CategoryCurrency
	CategoryQuestItem
	CategoryEtcItem
)

// String returns human-readable item category name.
func (c ItemCategory) String() string {
	switch c {
	case CategoryWeapon:
		return "WEAPON"
	case CategoryArmor:
		return "ARMOR"
	case CategoryConsumable:
		return "CONSUMABLE"
	case CategoryMaterial:
		return "MATERIAL"
	case CategoryCurrency:
		return "CURRENCY"
	case CategoryQuestItem:
		return "QUEST_ITEM"
	case CategoryEtcItem:
		return "ETC_ITEM"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(c))
	}
}

// EquipSlot определяет слот экипировки, который занимает предмет.
type EquipSlot int32

const (
	SlotNone EquipSlot = iota // не экипируется
	SlotRightHand
	SlotLeftHand
	SlotHead
	SlotChest
	SlotLegs
	SlotFeet
	SlotGloves
	SlotNeck
	SlotFinger
	SlotBack
)

// String returns human-readable equip slot name.
func (s EquipSlot) String() string {
	switch s {
	case SlotNone:
		return "NONE"
	case SlotRightHand:
		return "RHAND"
	case SlotLeftHand:
		return "LHAND"
	case SlotHead:
		return "HEAD"
	case SlotChest:
		return "CHEST"
	case SlotLegs:
		return "LEGS"
	case SlotFeet:
		return "FEET"
	case SlotGloves:
		return "GLOVES"
	case SlotNeck:
		return "NECK"
	case SlotFinger:
		return "FINGER"
	case SlotBack:
		return "BACK"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(s))
	}
}

// ItemTemplate — неизменяемый шаблон предмета. Один шаблон разделяется по
// ссылке всеми экземплярами и после регистрации не мутируется.
//
// Расширение под конкретную игру — через Tags и Extra (открытый key/value
// bag), а не через наследование.
type ItemTemplate struct {
	ID          int32
	Name        string
	Description string
	Category    ItemCategory
	Slot        EquipSlot // SlotNone для неэкипируемых

	MaxStack int32 // максимальный размер стака, >= 1
	Weight   int32 // вес единицы (для WeightBounded инвентарей)

	// MaxDurability — запас прочности нового экземпляра.
	// nil означает неразрушимый предмет.
	MaxDurability *int32

	// Modifiers — базовые модификаторы шаблона. Хранятся без источника,
	// источник подставляется при equip конкретного экземпляра.
	Modifiers []stat.Modifier

	Tags  []string
	Extra map[string]string
}

// Validate проверяет инварианты шаблона.
func (t *ItemTemplate) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("item template %q: id must be > 0, got %d", t.Name, t.ID)
	}
	if t.MaxStack < 1 {
		return fmt.Errorf("item template %d: max stack must be >= 1, got %d", t.ID, t.MaxStack)
	}
	if t.Weight < 0 {
		return fmt.Errorf("item template %d: weight cannot be negative, got %d", t.ID, t.Weight)
	}
	if t.Slot != SlotNone && t.MaxStack != 1 {
		return fmt.Errorf("item template %d: equippable items cannot stack (max stack %d)", t.ID, t.MaxStack)
	}
	if t.MaxDurability != nil && *t.MaxDurability < 0 {
		return fmt.Errorf("item template %d: max durability cannot be negative", t.ID)
	}
	return nil
}

// IsStackable возвращает true если предмет стакается.
func (t *ItemTemplate) IsStackable() bool {
	return t.MaxStack > 1
}

// IsEquippable возвращает true если предмет занимает слот экипировки.
func (t *ItemTemplate) IsEquippable() bool {
	return t.Slot != SlotNone
}

// HasTag проверяет наличие тега у шаблона.
func (t *ItemTemplate) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// TemplateRegistry — реестр всех шаблонов предметов одной сессии.
// Строится один раз, append-mostly, не мутируется во время игры.
type TemplateRegistry struct {
	templates map[int32]*ItemTemplate
}

// NewTemplateRegistry строит реестр из списка шаблонов с валидацией.
func NewTemplateRegistry(templates []*ItemTemplate) (*TemplateRegistry, error) {
	r := &TemplateRegistry{templates: make(map[int32]*ItemTemplate, len(templates))}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := r.templates[t.ID]; exists {
			return nil, fmt.Errorf("duplicate item template id %d", t.ID)
		}
		r.templates[t.ID] = t
	}
	return r, nil
}

// Get возвращает шаблон по ID (nil если не найден).
func (r *TemplateRegistry) Get(id int32) *ItemTemplate {
	return r.templates[id]
}

// Has проверяет что шаблон зарегистрирован.
func (r *TemplateRegistry) Has(id int32) bool {
	_, ok := r.templates[id]
	return ok
}

// Len возвращает количество зарегистрированных шаблонов.
func (r *TemplateRegistry) Len() int {
	return len(r.templates)
}
