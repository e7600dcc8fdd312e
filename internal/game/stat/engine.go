package stat

import (
	"fmt"
	"log/slog"
)

// Engine комбинирует активные модификаторы в итоговые значения характеристик.
//
// Порядок композиции фиксированный и является контрактом, на который может
// полагаться host:
//  1. additive: base + сумма всех ModAdd
//  2. multiplicative: результат (1) × произведение всех ModMul
//  3. override: если есть ModOverride — итог целиком заменяется magnitude
//     модификатора с наибольшим Priority (при равенстве выигрывает
//     добавленный последним, порядок вставки стабилен)
//
// Вычисление pull-based: значения считаются по запросу. Тонкий memo-слой
// кэширует результат per-stat и инвалидируется версионным счётчиком,
// который растёт при каждом attach/detach, затрагивающем характеристику.
//
// Engine не потокобезопасен: ядро синхронное, сериализацию доступа
// обеспечивает host.
type Engine struct {
	registry  *Registry
	modifiers []Modifier // insertion order, стабильный

	versions map[Key]uint64
	cache    map[Key]cacheEntry
}

type cacheEntry struct {
	version uint64
	value   float64
}

// NewEngine создаёт Engine поверх зарегистрированных характеристик.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry:  registry,
		modifiers: make([]Modifier, 0, 32),
		versions:  make(map[Key]uint64, registry.Len()),
		cache:     make(map[Key]cacheEntry, registry.Len()),
	}
}

// Registry возвращает реестр характеристик движка.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// AttachSource навешивает модификаторы источника. Операция атомарна:
// сначала валидируются все target'ы, и только потом модификаторы
// добавляются. Ошибка не оставляет частичного состояния.
//
// Returns:
//   - error: ErrUnknownStat если хотя бы один target не зарегистрирован
func (e *Engine) AttachSource(src SourceRef, mods ...Modifier) error {
	for _, m := range mods {
		if !e.registry.Has(m.Target) {
			return fmt.Errorf("%w: %q (source %s)", ErrUnknownStat, m.Target, src)
		}
	}
	for _, m := range mods {
		m.Source = src
		e.modifiers = append(e.modifiers, m)
		e.versions[m.Target]++
	}
	return nil
}

// DetachSource снимает все модификаторы с указанным источником.
// All-or-nothing по построению: за один проход удаляются все вхождения,
// промежуточное состояние не наблюдаемо.
//
// Returns:
//   - int: количество снятых модификаторов
func (e *Engine) DetachSource(src SourceRef) int {
	n := 0
	removed := 0
	for _, m := range e.modifiers {
		if m.Source == src {
			e.versions[m.Target]++
			removed++
		} else {
			e.modifiers[n] = m
			n++
		}
	}
	e.modifiers = e.modifiers[:n]
	if removed > 0 {
		slog.Debug("detached modifier source", "source", src.String(), "count", removed)
	}
	return removed
}

// HasSource проверяет что у источника есть хотя бы один активный модификатор.
func (e *Engine) HasSource(src SourceRef) bool {
	for _, m := range e.modifiers {
		if m.Source == src {
			return true
		}
	}
	return false
}

// ModifierCount возвращает общее количество активных модификаторов.
func (e *Engine) ModifierCount() int {
	return len(e.modifiers)
}

// Version возвращает версию характеристики. Растёт при каждом изменении
// набора модификаторов, затрагивающих её — дешёвый dirty-check для host.
func (e *Engine) Version(key Key) uint64 {
	return e.versions[key]
}

// Compute вычисляет итоговое значение характеристики.
//
// Returns:
//   - float64: итоговое значение после композиции и clamp по Min/Max
//   - error: ErrUnknownStat если ключ не зарегистрирован
func (e *Engine) Compute(key Key) (float64, error) {
	def, ok := e.registry.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStat, key)
	}

	version := e.versions[key]
	if entry, ok := e.cache[key]; ok && entry.version == version {
		return entry.value, nil
	}

	additive := 0.0
	multiplier := 1.0
	hasOverride := false
	overrideValue := 0.0
	var overridePriority int32

	for _, m := range e.modifiers {
		if m.Target != key {
			continue
		}
		switch m.Kind {
		case ModAdd:
			additive += m.Magnitude
		case ModMul:
			multiplier *= m.Magnitude
		case ModOverride:
			// >= : при равном приоритете выигрывает добавленный последним
			if !hasOverride || m.Priority >= overridePriority {
				hasOverride = true
				overrideValue = m.Magnitude
				overridePriority = m.Priority
			}
		}
	}

	value := (def.Base + additive) * multiplier
	if hasOverride {
		value = overrideValue
	}
	value = def.clamp(value)

	e.cache[key] = cacheEntry{version: version, value: value}
	return value, nil
}

// ComputeAll вычисляет все характеристики в порядке регистрации.
// Snapshot для host'а: plain map, безопасно сериализуется.
func (e *Engine) ComputeAll() map[Key]float64 {
	out := make(map[Key]float64, e.registry.Len())
	for _, key := range e.registry.Keys() {
		v, err := e.Compute(key)
		if err != nil {
			continue // unreachable: key пришёл из registry
		}
		out[key] = v
	}
	return out
}
