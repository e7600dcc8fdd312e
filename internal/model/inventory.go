package model

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientQuantity = errors.New("not enough items in stack")
	ErrInvalidSplit         = errors.New("split count out of range")
	ErrTemplateMismatch     = errors.New("item templates do not match")
	ErrStackOverflow        = errors.New("combined stack exceeds max stack size")
	ErrSlotOccupied         = errors.New("slot already occupied")
	ErrSlotEmpty            = errors.New("slot is empty")
	ErrInvalidSlot          = errors.New("slot index out of range")
	ErrInstanceNotFound     = errors.New("item instance not found in inventory")
	ErrDuplicateInstance    = errors.New("item instance already in inventory")
	ErrInventoryFull        = errors.New("inventory has no free slot")
)

// CapacityMode определяет политику вместимости инвентаря.
type CapacityMode int8

const (
	CapacityFixed         CapacityMode = iota // фиксированное число слотов
	CapacityUnbounded                         // растущий список слотов
	CapacityWeightBounded                     // ограничение по суммарному весу
)

// String returns human-readable capacity mode name.
func (m CapacityMode) String() string {
	switch m {
	case CapacityFixed:
		return "FIXED"
	case CapacityUnbounded:
		return "UNBOUNDED"
	case CapacityWeightBounded:
		return "WEIGHT_BOUNDED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int8(m))
	}
}

// CapacityPolicy — параметры вместимости.
type CapacityPolicy struct {
	Mode      CapacityMode
	Slots     int   // для CapacityFixed
	MaxWeight int64 // для CapacityWeightBounded
}

// FixedCapacity — политика с фиксированным числом слотов.
func FixedCapacity(slots int) CapacityPolicy {
	return CapacityPolicy{Mode: CapacityFixed, Slots: slots}
}

// UnboundedCapacity — политика без ограничений.
func UnboundedCapacity() CapacityPolicy {
	return CapacityPolicy{Mode: CapacityUnbounded}
}

// WeightCapacity — политика с ограничением по весу.
func WeightCapacity(maxWeight int64) CapacityPolicy {
	return CapacityPolicy{Mode: CapacityWeightBounded, MaxWeight: maxWeight}
}

// Inventory — контейнер экземпляров предметов под политикой вместимости.
// Слоты упорядочены; nil означает пустой существующий слот.
//
// Инварианты:
//   - два экземпляра с одним instanceID не могут находиться в инвентаре
//   - занятые слоты/вес никогда не превышают политику
//   - каждая успешная мутирующая операция увеличивает Version ровно на 1
//   - проваленная операция не меняет состояние
//
// Не потокобезопасен: сериализацию доступа обеспечивает host.
type Inventory struct {
	policy CapacityPolicy
	idgen  *IDGenerator

	slots       []*ItemInstance
	index       map[uint32]int // instanceID → slot
	totalWeight int64
	version     uint64
}

// NewInventory создаёт инвентарь под указанной политикой.
// IDGenerator нужен операциям, порождающим новые экземпляры (Split, Remove
// части стака).
func NewInventory(policy CapacityPolicy, idgen *IDGenerator) (*Inventory, error) {
	if idgen == nil {
		return nil, fmt.Errorf("id generator cannot be nil")
	}
	inv := &Inventory{
		policy: policy,
		idgen:  idgen,
		index:  make(map[uint32]int, 16),
	}
	switch policy.Mode {
	case CapacityFixed:
		if policy.Slots <= 0 {
			return nil, fmt.Errorf("fixed capacity must be > 0, got %d", policy.Slots)
		}
		inv.slots = make([]*ItemInstance, policy.Slots)
	case CapacityUnbounded:
		inv.slots = make([]*ItemInstance, 0, 16)
	case CapacityWeightBounded:
		if policy.MaxWeight <= 0 {
			return nil, fmt.Errorf("weight capacity must be > 0, got %d", policy.MaxWeight)
		}
		inv.slots = make([]*ItemInstance, 0, 16)
	default:
		return nil, fmt.Errorf("unknown capacity mode %d", policy.Mode)
	}
	return inv, nil
}

// Policy возвращает политику вместимости.
func (inv *Inventory) Policy() CapacityPolicy {
	return inv.policy
}

// Version возвращает счётчик изменений. Любая успешная мутация увеличивает
// его ровно на единицу — дешёвый dirty-check без по-полевого сравнения.
func (inv *Inventory) Version() uint64 {
	return inv.version
}

// TotalWeight возвращает суммарный вес содержимого.
func (inv *Inventory) TotalWeight() int64 {
	return inv.totalWeight
}

// SlotCount возвращает текущее число слотов (включая пустые).
func (inv *Inventory) SlotCount() int {
	return len(inv.slots)
}

// OccupiedSlots возвращает число занятых слотов.
func (inv *Inventory) OccupiedSlots() int {
	return len(inv.index)
}

// Add пытается вставить экземпляр: сначала домерживает в существующие стаки
// того же шаблона (стабильный порядок слотов), затем занимает свободный слот
// или добавляет новый, если политика позволяет.
//
// Returns:
//   - int32: residual — количество, которое не поместилось. residual > 0 —
//     не ошибка, а видимый вызывающему результат частичной вставки; сам
//     экземпляр при этом хранит принятое количество.
//   - error: ErrDuplicateInstance если instanceID уже в инвентаре
//
// Переполнение Fixed-инвентаря без mergeable/свободных слотов оставляет
// инвентарь неизменным и возвращает полный residual.
func (inv *Inventory) Add(inst *ItemInstance) (int32, error) {
	if inst == nil {
		return 0, fmt.Errorf("item instance cannot be nil")
	}
	if _, exists := inv.index[inst.instanceID]; exists {
		return 0, fmt.Errorf("%w: id %d", ErrDuplicateInstance, inst.instanceID)
	}

	tmpl := inst.template
	remaining := inst.count

	// Лимит по весу: сколько единиц вообще можем принять.
	acceptable := remaining
	if inv.policy.Mode == CapacityWeightBounded && tmpl.Weight > 0 {
		free := inv.policy.MaxWeight - inv.totalWeight
		maxUnits := free / int64(tmpl.Weight)
		if maxUnits < int64(acceptable) {
			acceptable = int32(maxUnits)
		}
	}
	if acceptable <= 0 {
		return remaining, nil
	}

	changed := false

	// Merge pass: стабильный порядок слотов.
	if tmpl.IsStackable() {
		for _, existing := range inv.slots {
			if acceptable == 0 {
				break
			}
			if existing == nil || existing.template.ID != tmpl.ID {
				continue
			}
			spare := tmpl.MaxStack - existing.count
			if spare <= 0 {
				continue
			}
			take := spare
			if take > acceptable {
				take = acceptable
			}
			existing.count += take
			inv.totalWeight += int64(tmpl.Weight) * int64(take)
			acceptable -= take
			remaining -= take
			changed = true
		}
	}

	// Остаток кладём в свободный слот.
	if acceptable > 0 {
		if idx, ok := inv.freeSlot(); ok {
			inst.count = acceptable
			inv.place(idx, inst)
			inv.totalWeight += int64(tmpl.Weight) * int64(acceptable)
			remaining -= acceptable
			changed = true
		}
	}

	if !changed {
		return remaining, nil
	}
	inv.version++
	if _, stored := inv.index[inst.instanceID]; !stored {
		// Экземпляр полностью разошёлся по чужим стакам.
		inst.count = remaining
	}
	return remaining, nil
}

// Remove снимает count единиц со стака.
// Полный стак освобождает слот и возвращается как есть; часть стака
// возвращается новым экземпляром с новым instanceID.
//
// Returns:
//   - error: ErrInstanceNotFound, ErrInsufficientQuantity если count
//     превышает размер стака
func (inv *Inventory) Remove(instanceID uint32, count int32) (*ItemInstance, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be > 0, got %d", count)
	}
	idx, ok := inv.index[instanceID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrInstanceNotFound, instanceID)
	}
	inst := inv.slots[idx]
	if count > inst.count {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrInsufficientQuantity, inst.count, count)
	}

	if count == inst.count {
		inv.clear(idx)
		inv.totalWeight -= inst.Weight()
		inv.version++
		return inst, nil
	}

	inst.count -= count
	inv.totalWeight -= int64(inst.template.Weight) * int64(count)
	inv.version++
	return inst.clone(inv.idgen.NextID(), count), nil
}

// Move перемещает стак из слота from в пустой слот to.
func (inv *Inventory) Move(instanceID uint32, from, to int) error {
	if from < 0 || from >= len(inv.slots) || to < 0 || to >= len(inv.slots) {
		return fmt.Errorf("%w: from %d, to %d (slots %d)", ErrInvalidSlot, from, to, len(inv.slots))
	}
	inst := inv.slots[from]
	if inst == nil {
		return fmt.Errorf("%w: slot %d", ErrSlotEmpty, from)
	}
	if inst.instanceID != instanceID {
		return fmt.Errorf("%w: id %d is not in slot %d", ErrInstanceNotFound, instanceID, from)
	}
	if from == to {
		return nil
	}
	if inv.slots[to] != nil {
		return fmt.Errorf("%w: slot %d", ErrSlotOccupied, to)
	}

	inv.slots[to] = inst
	inv.slots[from] = nil
	inv.index[instanceID] = to
	inv.version++
	return nil
}

// Split откалывает count единиц в новый стак в свободном слоте.
//
// Returns:
//   - uint32: instanceID нового стака
//   - error: ErrInvalidSplit если count вне (0, stackCount);
//     ErrInventoryFull если некуда положить новый стак
func (inv *Inventory) Split(instanceID uint32, count int32) (uint32, error) {
	idx, ok := inv.index[instanceID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrInstanceNotFound, instanceID)
	}
	inst := inv.slots[idx]
	if count <= 0 || count >= inst.count {
		return 0, fmt.Errorf("%w: count %d, stack %d", ErrInvalidSplit, count, inst.count)
	}

	target, ok := inv.freeSlot()
	if !ok {
		return 0, ErrInventoryFull
	}

	newInst := inst.clone(inv.idgen.NextID(), count)
	inst.count -= count
	inv.place(target, newInst)
	inv.version++
	return newInst.instanceID, nil
}

// Merge сливает стак src в стак dst целиком.
// Policy: reject-entirely — при переполнении max stack операция отклоняется
// полностью, частичный перенос не выполняется (детерминированный выбор,
// задокументированный контрактом).
//
// Returns:
//   - error: ErrTemplateMismatch, ErrStackOverflow
func (inv *Inventory) Merge(dstID, srcID uint32) error {
	if dstID == srcID {
		return fmt.Errorf("cannot merge stack %d into itself", dstID)
	}
	dstIdx, ok := inv.index[dstID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrInstanceNotFound, dstID)
	}
	srcIdx, ok := inv.index[srcID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrInstanceNotFound, srcID)
	}
	dst, src := inv.slots[dstIdx], inv.slots[srcIdx]
	if dst.template.ID != src.template.ID {
		return fmt.Errorf("%w: %d vs %d", ErrTemplateMismatch, dst.template.ID, src.template.ID)
	}
	if dst.count+src.count > dst.template.MaxStack {
		return fmt.Errorf("%w: %d + %d > %d", ErrStackOverflow, dst.count, src.count, dst.template.MaxStack)
	}

	dst.count += src.count
	inv.clear(srcIdx)
	inv.version++
	return nil
}

// UseItem тратит единицу прочности предмета.
//
// Returns:
//   - int32: оставшаяся прочность (-1 если предмет неразрушимый)
//   - error: ErrItemDestroyed если прочность была исчерпана — предмет
//     при этом удаляется из инвентаря
func (inv *Inventory) UseItem(instanceID uint32) (int32, error) {
	idx, ok := inv.index[instanceID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrInstanceNotFound, instanceID)
	}
	inst := inv.slots[idx]

	remaining, err := inst.use()
	if err != nil {
		// Прочность исчерпана: предмет ломается и исчезает.
		inv.clear(idx)
		inv.totalWeight -= inst.Weight()
		inv.version++
		return 0, err
	}
	if remaining >= 0 {
		inv.version++
	}
	return remaining, nil
}

// Consume тратит одну единицу стака (зелье, стрела).
//
// Returns:
//   - int32: оставшееся количество
//   - error: ErrStackConsumed когда стак закончился и слот освобождён
func (inv *Inventory) Consume(instanceID uint32) (int32, error) {
	idx, ok := inv.index[instanceID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrInstanceNotFound, instanceID)
	}
	inst := inv.slots[idx]

	inst.count--
	inv.totalWeight -= int64(inst.template.Weight)
	inv.version++
	if inst.count == 0 {
		inv.clear(idx)
		return 0, ErrStackConsumed
	}
	return inst.count, nil
}

// RemoveByTemplate снимает count единиц шаблона, обходя стаки в порядке
// слотов. All-or-nothing: при нехватке общего количества состояние не
// меняется.
func (inv *Inventory) RemoveByTemplate(templateID int32, count int32) error {
	if count <= 0 {
		return fmt.Errorf("count must be > 0, got %d", count)
	}
	if inv.CountOf(templateID) < int64(count) {
		return fmt.Errorf("%w: template %d, want %d", ErrInsufficientQuantity, templateID, count)
	}

	remaining := count
	for idx, inst := range inv.slots {
		if remaining == 0 {
			break
		}
		if inst == nil || inst.template.ID != templateID {
			continue
		}
		take := inst.count
		if take > remaining {
			take = remaining
		}
		inst.count -= take
		inv.totalWeight -= int64(inst.template.Weight) * int64(take)
		remaining -= take
		if inst.count == 0 {
			inv.clear(idx)
		}
	}
	inv.version++
	return nil
}

// Transfer перемещает count единиц стака в другой инвентарь.
// Не поместившийся остаток возвращается обратно в источник (гарантированно
// влезает: место только что освободилось).
//
// Returns:
//   - int32: количество, вернувшееся в источник
func (inv *Inventory) Transfer(target *Inventory, instanceID uint32, count int32) (int32, error) {
	if target == nil {
		return 0, fmt.Errorf("target inventory cannot be nil")
	}
	if target == inv {
		return 0, fmt.Errorf("cannot transfer into the same inventory")
	}

	moved, err := inv.Remove(instanceID, count)
	if err != nil {
		return 0, err
	}
	residual, err := target.Add(moved)
	if err != nil {
		// Add может отказать только на дубликате ID — возвращаем всё назад.
		back := moved.clone(inv.idgen.NextID(), count)
		_, _ = inv.Add(back)
		return count, err
	}
	if residual > 0 {
		back := moved.clone(inv.idgen.NextID(), residual)
		_, _ = inv.Add(back)
	}
	return residual, nil
}

// Get возвращает экземпляр в слоте (nil если слот пуст или вне диапазона).
func (inv *Inventory) Get(slot int) *ItemInstance {
	if slot < 0 || slot >= len(inv.slots) {
		return nil
	}
	return inv.slots[slot]
}

// Find возвращает экземпляр и его слот по instanceID.
func (inv *Inventory) Find(instanceID uint32) (*ItemInstance, int, bool) {
	idx, ok := inv.index[instanceID]
	if !ok {
		return nil, -1, false
	}
	return inv.slots[idx], idx, true
}

// Has проверяет наличие хотя бы одного экземпляра шаблона.
func (inv *Inventory) Has(templateID int32) bool {
	for _, inst := range inv.slots {
		if inst != nil && inst.template.ID == templateID {
			return true
		}
	}
	return false
}

// HasQuantity проверяет что суммарное количество шаблона не меньше count.
func (inv *Inventory) HasQuantity(templateID int32, count int32) bool {
	return inv.CountOf(templateID) >= int64(count)
}

// CountOf возвращает суммарное количество единиц шаблона по всем стакам.
func (inv *Inventory) CountOf(templateID int32) int64 {
	var sum int64
	for _, inst := range inv.slots {
		if inst != nil && inst.template.ID == templateID {
			sum += int64(inst.count)
		}
	}
	return sum
}

// Items возвращает все экземпляры в порядке слотов (копия среза).
func (inv *Inventory) Items() []*ItemInstance {
	items := make([]*ItemInstance, 0, len(inv.index))
	for _, inst := range inv.slots {
		if inst != nil {
			items = append(items, inst)
		}
	}
	return items
}

// FreeSlots возвращает число свободных слотов Fixed-инвентаря,
// -1 для остальных политик (ограничений по слотам нет).
func (inv *Inventory) FreeSlots() int {
	if inv.policy.Mode != CapacityFixed {
		return -1
	}
	return inv.policy.Slots - len(inv.index)
}

// freeSlot возвращает индекс слота для нового стака.
// Fixed: первый nil; иначе — nil-дыра или новый слот в конце.
func (inv *Inventory) freeSlot() (int, bool) {
	for idx, inst := range inv.slots {
		if inst == nil {
			return idx, true
		}
	}
	if inv.policy.Mode == CapacityFixed {
		return 0, false
	}
	inv.slots = append(inv.slots, nil)
	return len(inv.slots) - 1, true
}

// place кладёт экземпляр в слот и обновляет индекс.
func (inv *Inventory) place(idx int, inst *ItemInstance) {
	inv.slots[idx] = inst
	inv.index[inst.instanceID] = idx
}

// clear освобождает слот и чистит индекс.
func (inv *Inventory) clear(idx int) {
	inst := inv.slots[idx]
	if inst != nil {
		delete(inv.index, inst.instanceID)
	}
	inv.slots[idx] = nil
}
