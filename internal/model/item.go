package model

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

var (
	ErrItemDestroyed = errors.New("item durability exhausted")
	ErrStackConsumed = errors.New("item stack consumed")
)

// IDGenerator выдаёт уникальные в пределах сессии instance ID.
// Счётчик атомарный: генератор можно разделять между сессиями одного
// процесса, сами контейнеры при этом остаются однопоточными.
type IDGenerator struct {
	next atomic.Uint32
}

// NewIDGenerator создаёт генератор, начинающий с 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NextID возвращает следующий уникальный instance ID.
func (g *IDGenerator) NextID() uint32 {
	return g.next.Add(1)
}

// ItemInstance — конкретный экземпляр предмета: стак в инвентаре, надетая
// броня, результат loot-ролла. Создаётся при loot/craft, уничтожается при
// полном расходе.
type ItemInstance struct {
	instanceID uint32
	template   *ItemTemplate
	count      int32
	durability *int32 // nil для неразрушимых

	// instanceModifiers — дополнительные модификаторы конкретного
	// экземпляра (enchant, augment и т.п.), поверх шаблонных.
	instanceModifiers []stat.Modifier
}

// NewItemInstance создаёт экземпляр предмета с валидацией.
//
// Parameters:
//   - instanceID: уникальный ID (из IDGenerator)
//   - template: шаблон предмета
//   - count: размер стака, 1..template.MaxStack
func NewItemInstance(instanceID uint32, template *ItemTemplate, count int32) (*ItemInstance, error) {
	if template == nil {
		return nil, fmt.Errorf("template cannot be nil")
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be > 0, got %d", count)
	}
	if count > template.MaxStack {
		return nil, fmt.Errorf("count %d exceeds max stack %d of template %d",
			count, template.MaxStack, template.ID)
	}

	inst := &ItemInstance{
		instanceID: instanceID,
		template:   template,
		count:      count,
	}
	if template.MaxDurability != nil {
		d := *template.MaxDurability
		inst.durability = &d
	}
	return inst, nil
}

// InstanceID возвращает уникальный ID экземпляра.
func (i *ItemInstance) InstanceID() uint32 {
	return i.instanceID
}

// TemplateID возвращает ID шаблона.
func (i *ItemInstance) TemplateID() int32 {
	return i.template.ID
}

// Template возвращает шаблон предмета (immutable).
func (i *ItemInstance) Template() *ItemTemplate {
	return i.template
}

// Count возвращает размер стака.
func (i *ItemInstance) Count() int32 {
	return i.count
}

// Durability возвращает текущую прочность и признак её наличия.
func (i *ItemInstance) Durability() (int32, bool) {
	if i.durability == nil {
		return 0, false
	}
	return *i.durability, true
}

// Name возвращает название предмета из шаблона.
func (i *ItemInstance) Name() string {
	return i.template.Name
}

// Weight возвращает полный вес стака.
func (i *ItemInstance) Weight() int64 {
	return int64(i.template.Weight) * int64(i.count)
}

// SourceRef возвращает ссылку-источник для привязки модификаторов этого
// экземпляра к stat.Engine.
func (i *ItemInstance) SourceRef() stat.SourceRef {
	return stat.SourceRef{Kind: stat.SourceItem, ID: int64(i.instanceID)}
}

// Modifiers возвращает полный набор модификаторов экземпляра:
// шаблонные плюс instance-specific, без источника.
func (i *ItemInstance) Modifiers() []stat.Modifier {
	mods := make([]stat.Modifier, 0, len(i.template.Modifiers)+len(i.instanceModifiers))
	mods = append(mods, i.template.Modifiers...)
	mods = append(mods, i.instanceModifiers...)
	return mods
}

// AddInstanceModifier навешивает instance-specific модификатор.
// Эффект виден при следующем equip: уже привязанные к движку модификаторы
// не трогаются.
func (i *ItemInstance) AddInstanceModifier(m stat.Modifier) {
	i.instanceModifiers = append(i.instanceModifiers, m)
}

// InstanceModifiers возвращает копию instance-specific модификаторов.
func (i *ItemInstance) InstanceModifiers() []stat.Modifier {
	mods := make([]stat.Modifier, len(i.instanceModifiers))
	copy(mods, i.instanceModifiers)
	return mods
}

// use уменьшает прочность на единицу.
//
// Returns:
//   - int32: оставшаяся прочность (-1 если предмет неразрушимый)
//   - error: ErrItemDestroyed если прочность уже была исчерпана;
//     удаление экземпляра — забота вызывающего (Inventory.UseItem)
func (i *ItemInstance) use() (int32, error) {
	if i.durability == nil {
		return -1, nil
	}
	if *i.durability == 0 {
		return 0, ErrItemDestroyed
	}
	*i.durability--
	return *i.durability, nil
}

// clone создаёт новый экземпляр с тем же шаблоном и прочностью, но другим
// instance ID и указанным count. Используется Split/Remove.
func (i *ItemInstance) clone(newID uint32, count int32) *ItemInstance {
	out := &ItemInstance{
		instanceID: newID,
		template:   i.template,
		count:      count,
	}
	if i.durability != nil {
		d := *i.durability
		out.durability = &d
	}
	if len(i.instanceModifiers) > 0 {
		out.instanceModifiers = make([]stat.Modifier, len(i.instanceModifiers))
		copy(out.instanceModifiers, i.instanceModifiers)
	}
	return out
}
