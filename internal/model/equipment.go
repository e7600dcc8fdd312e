package model

import (
	"errors"
	"fmt"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

var ErrNotEquippable = errors.New("item is not equippable")

// Equipment — надетые предметы персонажа (paperdoll). Каждый занятый слот —
// активный источник модификаторов в stat.Engine: Equip привязывает
// модификаторы экземпляра под его SourceRef, Unequip снимает их тем же
// механизмом, что и любой другой источник.
type Equipment struct {
	slots map[EquipSlot]*ItemInstance
}

// NewEquipment создаёт пустую экипировку.
func NewEquipment() *Equipment {
	return &Equipment{slots: make(map[EquipSlot]*ItemInstance, 8)}
}

// Equip надевает предмет в слот его шаблона и привязывает модификаторы.
// Занятый слот автоматически освобождается: вытесненный предмет
// возвращается вызывающему (положить обратно в инвентарь — забота host'а).
//
// Returns:
//   - *ItemInstance: вытесненный предмет или nil
//   - error: ErrNotEquippable; ошибки движка при неизвестном stat target
func (eq *Equipment) Equip(inst *ItemInstance, engine *stat.Engine) (*ItemInstance, error) {
	if inst == nil {
		return nil, fmt.Errorf("item instance cannot be nil")
	}
	slot := inst.template.Slot
	if slot == SlotNone {
		return nil, fmt.Errorf("%w: template %d (%s)", ErrNotEquippable, inst.template.ID, inst.template.Name)
	}

	// Валидация модификаторов до вытеснения старого предмета: ошибка
	// не должна оставить слот пустым.
	if err := engine.AttachSource(inst.SourceRef(), inst.Modifiers()...); err != nil {
		return nil, fmt.Errorf("equipping template %d: %w", inst.template.ID, err)
	}

	displaced := eq.slots[slot]
	if displaced != nil {
		engine.DetachSource(displaced.SourceRef())
	}
	eq.slots[slot] = inst
	return displaced, nil
}

// Unequip снимает предмет из слота и отвязывает его модификаторы.
//
// Returns:
//   - *ItemInstance: снятый предмет или nil если слот был пуст
func (eq *Equipment) Unequip(slot EquipSlot, engine *stat.Engine) *ItemInstance {
	inst := eq.slots[slot]
	if inst == nil {
		return nil
	}
	engine.DetachSource(inst.SourceRef())
	delete(eq.slots, slot)
	return inst
}

// Equipped возвращает предмет в слоте (nil если пусто).
func (eq *Equipment) Equipped(slot EquipSlot) *ItemInstance {
	return eq.slots[slot]
}

// Items возвращает все надетые предметы.
func (eq *Equipment) Items() []*ItemInstance {
	items := make([]*ItemInstance, 0, len(eq.slots))
	for _, inst := range eq.slots {
		if inst != nil {
			items = append(items, inst)
		}
	}
	return items
}

// Count возвращает число занятых слотов.
func (eq *Equipment) Count() int {
	return len(eq.slots)
}
