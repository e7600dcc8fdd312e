package skill

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

var (
	// ErrSkillNotLearned — навык не изучен персонажем.
	ErrSkillNotLearned = errors.New("skill not learned")
	// ErrSkillAlreadyLearned — навык уже изучен.
	ErrSkillAlreadyLearned = errors.New("skill already learned")
	// ErrOnCooldown — навык на перезарядке.
	ErrOnCooldown = errors.New("skill on cooldown")
	// ErrInsufficientResource — не хватает ресурса для активации.
	ErrInsufficientResource = errors.New("insufficient resource")
	// ErrNotActivatable — пассивный навык нельзя активировать.
	ErrNotActivatable = errors.New("passive skill cannot be activated")
	// ErrAlreadyActive — навык уже активен.
	ErrAlreadyActive = errors.New("skill already active")
	// ErrNotActive — навык не активен.
	ErrNotActive = errors.New("skill not active")
)

// ResourcePool — источник ресурса для оплаты активации (mana и т.п.).
// Поставляется хостом; менеджер сам не хранит текущих значений ресурсов.
type ResourcePool interface {
	// Current возвращает текущий запас ресурса.
	Current(key stat.Key) float64
	// Spend списывает amount. Вызывается только после проверки Current.
	Spend(key stat.Key, amount float64)
}

// activeSkill — работающий активный навык с оставшимся временем действия.
type activeSkill struct {
	tpl         *Template
	remainingMs int32 // для DurationMs == 0 не используется
}

// Manager отслеживает изученные и активные навыки одного персонажа.
//
// Модификаторы навыков навешиваются на движок под SourceRef навыка:
// пассивные — при изучении, активные — на время действия. Время идёт
// только через Tick, менеджер не обращается к системным часам.
//
// Не потокобезопасен: доступ сериализует хост.
type Manager struct {
	engine    *stat.Engine
	pool      ResourcePool
	learned   map[int32]*Template
	active    []*activeSkill
	cooldowns map[int32]int32 // skill ID → оставшиеся мс
}

// NewManager создаёт менеджер навыков.
//
// Parameters:
//   - engine: движок модификаторов персонажа
//   - pool: источник ресурса; nil допустим, если все навыки бесплатные
func NewManager(engine *stat.Engine, pool ResourcePool) (*Manager, error) {
	if engine == nil {
		return nil, fmt.Errorf("stat engine cannot be nil")
	}
	return &Manager{
		engine:    engine,
		pool:      pool,
		learned:   make(map[int32]*Template),
		cooldowns: make(map[int32]int32),
	}, nil
}

// Learn изучает навык. Пассивный навык сразу навешивает свои модификаторы.
//
// Returns:
//   - ErrSkillAlreadyLearned: навык уже изучен
//   - stat.ErrUnknownStat: модификатор пассивки ссылается на неизвестный стат
func (m *Manager) Learn(tpl *Template) error {
	if tpl == nil {
		return fmt.Errorf("skill template cannot be nil")
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	if _, ok := m.learned[tpl.ID]; ok {
		return fmt.Errorf("skill %d: %w", tpl.ID, ErrSkillAlreadyLearned)
	}

	if tpl.Kind == KindPassive && len(tpl.Modifiers) > 0 {
		if err := m.engine.AttachSource(tpl.SourceRef(), tpl.Modifiers...); err != nil {
			return fmt.Errorf("attaching passive skill %d: %w", tpl.ID, err)
		}
	}

	m.learned[tpl.ID] = tpl
	slog.Debug("skill learned", "skill", tpl.ID, "kind", tpl.Kind)
	return nil
}

// Forget забывает навык: снимает пассивные модификаторы, прерывает
// действие активного, сбрасывает перезарядку.
func (m *Manager) Forget(id int32) error {
	tpl, ok := m.learned[id]
	if !ok {
		return fmt.Errorf("skill %d: %w", id, ErrSkillNotLearned)
	}

	if tpl.Kind == KindPassive {
		m.engine.DetachSource(tpl.SourceRef())
	} else if m.isActive(id) {
		if err := m.Deactivate(id); err != nil {
			return err
		}
	}

	delete(m.learned, id)
	delete(m.cooldowns, id)
	return nil
}

// Activate включает активный навык: проверяет перезарядку и ресурс,
// списывает стоимость и навешивает модификаторы под SourceRef навыка.
//
// Returns:
//   - ErrSkillNotLearned, ErrNotActivatable, ErrAlreadyActive
//   - ErrOnCooldown: перезарядка ещё не прошла
//   - ErrInsufficientResource: не хватает ресурса
func (m *Manager) Activate(id int32) error {
	tpl, ok := m.learned[id]
	if !ok {
		return fmt.Errorf("skill %d: %w", id, ErrSkillNotLearned)
	}
	if tpl.Kind != KindActive {
		return fmt.Errorf("skill %d: %w", id, ErrNotActivatable)
	}
	if m.isActive(id) {
		return fmt.Errorf("skill %d: %w", id, ErrAlreadyActive)
	}
	if remaining, ok := m.cooldowns[id]; ok && remaining > 0 {
		return fmt.Errorf("skill %d (%dms left): %w", id, remaining, ErrOnCooldown)
	}

	if tpl.CostAmount > 0 {
		if m.pool == nil {
			return fmt.Errorf("skill %d: %w", id, ErrInsufficientResource)
		}
		if m.pool.Current(tpl.CostStat) < tpl.CostAmount {
			return fmt.Errorf("skill %d: need %v %s: %w",
				id, tpl.CostAmount, tpl.CostStat, ErrInsufficientResource)
		}
	}

	if len(tpl.Modifiers) > 0 {
		if err := m.engine.AttachSource(tpl.SourceRef(), tpl.Modifiers...); err != nil {
			return fmt.Errorf("attaching skill %d: %w", id, err)
		}
	}

	// Ресурс списывается после успешного attach: неудачная активация
	// не должна ничего стоить.
	if tpl.CostAmount > 0 {
		m.pool.Spend(tpl.CostStat, tpl.CostAmount)
	}
	if tpl.CooldownMs > 0 {
		m.cooldowns[id] = tpl.CooldownMs
	}
	m.active = append(m.active, &activeSkill{tpl: tpl, remainingMs: tpl.DurationMs})

	slog.Debug("skill activated", "skill", id, "durationMs", tpl.DurationMs)
	return nil
}

// Deactivate снимает действующий навык до истечения времени.
func (m *Manager) Deactivate(id int32) error {
	n := 0
	found := false
	for _, as := range m.active {
		if as.tpl.ID == id {
			m.engine.DetachSource(as.tpl.SourceRef())
			found = true
		} else {
			m.active[n] = as
			n++
		}
	}
	m.active = m.active[:n]

	if !found {
		return fmt.Errorf("skill %d: %w", id, ErrNotActive)
	}
	return nil
}

// Tick продвигает время на deltaMs: уменьшает перезарядки и снимает
// истёкшие активные навыки.
func (m *Manager) Tick(deltaMs int32) {
	if deltaMs <= 0 {
		return
	}

	for id, remaining := range m.cooldowns {
		if remaining <= deltaMs {
			delete(m.cooldowns, id)
		} else {
			m.cooldowns[id] = remaining - deltaMs
		}
	}

	n := 0
	for _, as := range m.active {
		if as.tpl.DurationMs > 0 {
			as.remainingMs -= deltaMs
			if as.remainingMs <= 0 {
				m.engine.DetachSource(as.tpl.SourceRef())
				slog.Debug("skill expired", "skill", as.tpl.ID)
				continue
			}
		}
		m.active[n] = as
		n++
	}
	m.active = m.active[:n]
}

// IsLearned сообщает, изучен ли навык.
func (m *Manager) IsLearned(id int32) bool {
	_, ok := m.learned[id]
	return ok
}

// IsActive сообщает, действует ли активный навык сейчас.
func (m *Manager) IsActive(id int32) bool {
	return m.isActive(id)
}

// CooldownRemaining возвращает оставшуюся перезарядку в мс (0 — готов).
func (m *Manager) CooldownRemaining(id int32) int32 {
	return m.cooldowns[id]
}

// Learned возвращает шаблоны всех изученных навыков.
func (m *Manager) Learned() []*Template {
	result := make([]*Template, 0, len(m.learned))
	for _, tpl := range m.learned {
		result = append(result, tpl)
	}
	return result
}

// ActiveCount возвращает число действующих активных навыков.
func (m *Manager) ActiveCount() int {
	return len(m.active)
}

func (m *Manager) isActive(id int32) bool {
	for _, as := range m.active {
		if as.tpl.ID == id {
			return true
		}
	}
	return false
}
