package stat

import "fmt"

// ModifierKind defines how a modifier is applied to a stat.
type ModifierKind int8

const (
	ModAdd      ModifierKind = iota // Additive bonus (e.g. +100 pAtk)
	ModMul                          // Multiplicative bonus (e.g. ×1.2 speed)
	ModOverride                     // Replaces the computed value entirely
)

// String returns human-readable modifier kind name.
func (k ModifierKind) String() string {
	switch k {
	case ModAdd:
		return "ADD"
	case ModMul:
		return "MUL"
	case ModOverride:
		return "OVERRIDE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int8(k))
	}
}

// SourceKind — тип сущности-владельца модификатора.
type SourceKind int8

const (
	SourceItem SourceKind = iota
	SourceSkill
	SourceUnlock
	SourceExternal // host-provided (temporary status, zone effect, ...)
)

// String returns human-readable source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceItem:
		return "ITEM"
	case SourceSkill:
		return "SKILL"
	case SourceUnlock:
		return "UNLOCK"
	case SourceExternal:
		return "EXTERNAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int8(k))
	}
}

// SourceRef идентифицирует владельца модификаторов: экземпляр предмета,
// активный скилл, узел unlock-дерева. Используется для атомарного снятия
// всех модификаторов источника при unequip/deactivate.
type SourceRef struct {
	Kind SourceKind
	ID   int64
}

// String returns "KIND:id" form, convenient for logging.
func (s SourceRef) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// Modifier — одна поправка к одной характеристике. Владеет модификатором
// сущность, которая его навесила; Engine хранит только копии значений и
// никогда не управляет временем жизни источника.
//
// Дубликаты (одинаковые Source, Target и Kind) допустимы: эффекты стакаются.
// Если дубликаты нужно запретить, это делает источник, а не движок.
type Modifier struct {
	Target    Key
	Kind      ModifierKind
	Magnitude float64
	Source    SourceRef
	// Priority упорядочивает Override-модификаторы: выигрывает наибольший
	// приоритет, при равенстве — последний добавленный.
	Priority int32
}

// WithSource возвращает копию модификатора с подставленным источником.
// Шаблонные модификаторы (ItemTemplate, SkillTemplate) хранятся без
// источника и привязываются в момент equip/activate.
func (m Modifier) WithSource(src SourceRef) Modifier {
	m.Source = src
	return m
}
