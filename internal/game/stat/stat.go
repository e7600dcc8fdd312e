// Package stat implements the stat registry and the modifier composition
// engine. Все производные характеристики (maxHP, speed, critRate, ...)
// вычисляются из базового значения и набора активных модификаторов.
package stat

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownStat  = errors.New("unknown stat")
	ErrDuplicateKey = errors.New("duplicate stat key")
)

// Key — идентификатор характеристики ("maxHP", "speed", "pAtk", ...).
// Уникален в пределах одного Registry.
type Key string

// AggregationKind определяет правило агрегации, объявленное для
// характеристики. У одной характеристики ровно одно правило по умолчанию;
// загрузчик данных подставляет его модификаторам, у которых kind не задан
// явно.
type AggregationKind int8

const (
	AggAdditive AggregationKind = iota
	AggMultiplicative
	AggOverride
)

// String returns human-readable aggregation kind name.
func (k AggregationKind) String() string {
	switch k {
	case AggAdditive:
		return "ADDITIVE"
	case AggMultiplicative:
		return "MULTIPLICATIVE"
	case AggOverride:
		return "OVERRIDE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int8(k))
	}
}

// Definition — определение одной характеристики в игровой конфигурации.
// Plain serializable record: никакого runtime-only state внутри.
type Definition struct {
	Key         Key
	Name        string
	Base        float64
	Aggregation AggregationKind
	// Min/Max ограничивают итоговое значение после композиции.
	// NaN означает "без ограничения".
	Min float64
	Max float64
}

// NewDefinition создаёт Definition без ограничений Min/Max.
func NewDefinition(key Key, name string, base float64, agg AggregationKind) Definition {
	return Definition{
		Key:         key,
		Name:        name,
		Base:        base,
		Aggregation: agg,
		Min:         math.NaN(),
		Max:         math.NaN(),
	}
}

// clamp применяет ограничения Min/Max к значению.
func (d Definition) clamp(v float64) float64 {
	if !math.IsNaN(d.Min) && v < d.Min {
		v = d.Min
	}
	if !math.IsNaN(d.Max) && v > d.Max {
		v = d.Max
	}
	return v
}

// Registry — фиксированный набор характеристик одной игровой сессии.
// Строится один раз при старте и далее не мутируется. Не глобальный:
// несколько независимых сессий могут жить в одном процессе.
type Registry struct {
	defs map[Key]Definition
	keys []Key // insertion order, для детерминированного обхода
}

// NewRegistry строит Registry из списка определений.
//
// Returns:
//   - error: ErrDuplicateKey если два определения используют один Key
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs: make(map[Key]Definition, len(defs)),
		keys: make([]Key, 0, len(defs)),
	}
	for _, d := range defs {
		if d.Key == "" {
			return nil, fmt.Errorf("stat definition %q: empty key", d.Name)
		}
		if _, exists := r.defs[d.Key]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, d.Key)
		}
		r.defs[d.Key] = d
		r.keys = append(r.keys, d.Key)
	}
	return r, nil
}

// Get возвращает определение характеристики.
func (r *Registry) Get(key Key) (Definition, bool) {
	d, ok := r.defs[key]
	return d, ok
}

// Has проверяет что характеристика зарегистрирована.
func (r *Registry) Has(key Key) bool {
	_, ok := r.defs[key]
	return ok
}

// Base возвращает базовое значение характеристики.
// Returns ErrUnknownStat если ключ не зарегистрирован.
func (r *Registry) Base(key Key) (float64, error) {
	d, ok := r.defs[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStat, key)
	}
	return d.Base, nil
}

// Keys возвращает ключи в порядке регистрации (копия).
func (r *Registry) Keys() []Key {
	keys := make([]Key, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len возвращает количество зарегистрированных характеристик.
func (r *Registry) Len() int {
	return len(r.defs)
}
