package skill

import (
	"fmt"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

// Kind — тип навыка.
type Kind int32

const (
	// KindActive — активируется явно, тратит ресурс, имеет кулдаун.
	KindActive Kind = iota
	// KindPassive — действует постоянно после изучения.
	KindPassive
)

func (k Kind) String() string {
	switch k {
	case KindActive:
		return "ACTIVE"
	case KindPassive:
		return "PASSIVE"
	}
	return fmt.Sprintf("KIND(%d)", int32(k))
}

// Template — неизменяемое описание навыка.
//
// Активный навык при активации навешивает свои модификаторы на DurationMs
// миллисекунд (0 — до явной деактивации). Пассивный — на всё время после
// изучения.
type Template struct {
	ID   int32
	Name string
	Kind Kind

	// CostStat/CostAmount — ресурс активации (например mana). Пустой
	// CostStat означает бесплатную активацию.
	CostStat   stat.Key
	CostAmount float64

	CooldownMs int32
	DurationMs int32

	Modifiers []stat.Modifier
}

// Validate проверяет согласованность шаблона.
func (t *Template) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("skill id must be > 0, got %d", t.ID)
	}
	if t.Name == "" {
		return fmt.Errorf("skill %d: name cannot be empty", t.ID)
	}
	if t.CostAmount < 0 {
		return fmt.Errorf("skill %d: cost must be >= 0, got %v", t.ID, t.CostAmount)
	}
	if t.CooldownMs < 0 || t.DurationMs < 0 {
		return fmt.Errorf("skill %d: cooldown/duration must be >= 0", t.ID)
	}
	if t.CostAmount > 0 && t.CostStat == "" {
		return fmt.Errorf("skill %d: cost stat required when cost > 0", t.ID)
	}
	if t.Kind == KindPassive && (t.CooldownMs > 0 || t.DurationMs > 0 || t.CostAmount > 0) {
		return fmt.Errorf("skill %d: passive skill cannot have cost/cooldown/duration", t.ID)
	}
	return nil
}

// SourceRef возвращает идентификатор навыка как источника модификаторов.
func (t *Template) SourceRef() stat.SourceRef {
	return stat.SourceRef{Kind: stat.SourceSkill, ID: int64(t.ID)}
}
