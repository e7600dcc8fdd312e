// Package session собирает механики одного персонажа в единый агрегат:
// статы, инвентарь, экипировку, навыки, открытия, уровень и крафт.
//
// Session — граница ядра: хост общается только с ней, передавая и
// получая простые значения. Несколько независимых сессий спокойно
// живут в одном процессе: общих изменяемых реестров нет.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/rpgkit/internal/config"
	"github.com/udisondev/rpgkit/internal/game/craft"
	"github.com/udisondev/rpgkit/internal/game/level"
	"github.com/udisondev/rpgkit/internal/game/loot"
	"github.com/udisondev/rpgkit/internal/game/skill"
	"github.com/udisondev/rpgkit/internal/game/stat"
	"github.com/udisondev/rpgkit/internal/game/unlock"
	"github.com/udisondev/rpgkit/internal/model"
)

// ErrUnknownTemplate — шаблон предмета не зарегистрирован.
var ErrUnknownTemplate = errors.New("unknown item template")

// ErrUnknownSkill — шаблон навыка не зарегистрирован.
var ErrUnknownSkill = errors.New("unknown skill template")

// Config — реестры игровых данных для новой сессии. Все поля read-only:
// реестры строятся загрузчиком один раз и разделяются между сессиями.
type Config struct {
	Stats     *stat.Registry
	Templates *model.TemplateRegistry
	Skills    map[int32]*skill.Template
	Unlocks   *unlock.Graph
	Levels    *level.Table
	Recipes   *craft.Book

	// Inventory — политика вместимости инвентаря персонажа.
	Inventory model.CapacityPolicy
	// Rates — серверные множители; nil означает рейты 1x.
	Rates *config.Rates
}

// Session — состояние одного персонажа.
//
// Не потокобезопасна: хост сериализует доступ сам. Единственный ресурс
// извне — RNG, передаваемый в операции с бросками.
type Session struct {
	cfg       Config
	idgen     *model.IDGenerator
	engine    *stat.Engine
	inventory *model.Inventory
	equipment *model.Equipment
	skills    *skill.Manager
	unlocks   *unlock.State
	progress  *level.Progress
	crafting  *craft.Controller

	resources map[stat.Key]float64
}

// New создаёт сессию персонажа первого уровня с пустым инвентарём.
func New(cfg Config) (*Session, error) {
	if cfg.Stats == nil {
		return nil, fmt.Errorf("stat registry cannot be nil")
	}
	if cfg.Templates == nil {
		return nil, fmt.Errorf("template registry cannot be nil")
	}
	if cfg.Unlocks == nil {
		return nil, fmt.Errorf("unlock graph cannot be nil")
	}
	if cfg.Levels == nil {
		return nil, fmt.Errorf("level table cannot be nil")
	}

	s := &Session{
		cfg:       cfg,
		idgen:     model.NewIDGenerator(),
		engine:    stat.NewEngine(cfg.Stats),
		equipment: model.NewEquipment(),
		resources: make(map[stat.Key]float64),
	}

	var err error
	s.inventory, err = model.NewInventory(cfg.Inventory, s.idgen)
	if err != nil {
		return nil, fmt.Errorf("creating inventory: %w", err)
	}
	s.skills, err = skill.NewManager(s.engine, s)
	if err != nil {
		return nil, fmt.Errorf("creating skill manager: %w", err)
	}
	s.unlocks, err = unlock.NewState(cfg.Unlocks, s.engine)
	if err != nil {
		return nil, fmt.Errorf("creating unlock state: %w", err)
	}
	s.progress, err = level.NewProgress(cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("creating level progress: %w", err)
	}
	if cfg.Recipes != nil {
		s.crafting, err = craft.NewController(cfg.Recipes, s)
		if err != nil {
			return nil, fmt.Errorf("creating craft controller: %w", err)
		}
	}
	return s, nil
}

// CreateItem создаёт экземпляр предмета по шаблону. Реализует фабрику
// для loot.Generator и craft.Controller.
func (s *Session) CreateItem(templateID int32, count int32) (*model.ItemInstance, error) {
	tpl := s.cfg.Templates.Get(templateID)
	if tpl == nil {
		return nil, fmt.Errorf("template %d: %w", templateID, ErrUnknownTemplate)
	}
	return model.NewItemInstance(s.idgen.NextID(), tpl, count)
}

// GiveItem создаёт предмет и кладёт его в инвентарь.
//
// Returns:
//   - int32: остаток, не поместившийся в инвентарь
func (s *Session) GiveItem(templateID int32, count int32) (int32, error) {
	inst, err := s.CreateItem(templateID, count)
	if err != nil {
		return 0, err
	}
	residual, err := s.inventory.Add(inst)
	if err != nil {
		return 0, fmt.Errorf("adding template %d: %w", templateID, err)
	}
	return residual, nil
}

// Equip надевает предмет из инвентаря. Вытесненный предмет возвращается
// в инвентарь; если он не помещается, операция откатывается.
func (s *Session) Equip(instanceID uint32) error {
	inst, _, ok := s.inventory.Find(instanceID)
	if !ok {
		return fmt.Errorf("%w: id %d", model.ErrInstanceNotFound, instanceID)
	}
	if _, err := s.inventory.Remove(instanceID, inst.Count()); err != nil {
		return err
	}

	displaced, err := s.equipment.Equip(inst, s.engine)
	if err != nil {
		// Предмет возвращается на место: инвентарь только что его отдал,
		// значит место есть.
		if _, addErr := s.inventory.Add(inst); addErr != nil {
			return errors.Join(err, addErr)
		}
		return err
	}
	if displaced != nil {
		if _, err := s.inventory.Add(displaced); err != nil {
			return fmt.Errorf("returning displaced item %d: %w", displaced.InstanceID(), err)
		}
	}
	return nil
}

// Unequip снимает предмет и возвращает его в инвентарь.
//
// Returns:
//   - bool: false если слот был пуст
func (s *Session) Unequip(slot model.EquipSlot) (bool, error) {
	inst := s.equipment.Unequip(slot, s.engine)
	if inst == nil {
		return false, nil
	}
	if _, err := s.inventory.Add(inst); err != nil {
		return false, fmt.Errorf("returning unequipped item %d: %w", inst.InstanceID(), err)
	}
	return true, nil
}

// UseItem тратит одно применение предмета (прочность).
func (s *Session) UseItem(instanceID uint32) (int32, error) {
	return s.inventory.UseItem(instanceID)
}

// ConsumeItem расходует одну единицу стека.
func (s *Session) ConsumeItem(instanceID uint32) (int32, error) {
	return s.inventory.Consume(instanceID)
}

// RollLoot разыгрывает добычу и складывает её в инвентарь.
//
// Returns:
//   - []*model.ItemInstance: созданные предметы
//   - int32: суммарный остаток, не поместившийся в инвентарь
func (s *Session) RollLoot(rng *rand.Rand, gen *loot.Generator, picks int) ([]*model.ItemInstance, int32, error) {
	if gen == nil {
		return nil, 0, fmt.Errorf("loot generator cannot be nil")
	}
	items, err := gen.Roll(rng, picks, s.cfg.Rates, s)
	if err != nil {
		return nil, 0, err
	}

	var residual int32
	for _, inst := range items {
		r, err := s.inventory.Add(inst)
		if err != nil {
			return nil, 0, fmt.Errorf("adding loot %d: %w", inst.TemplateID(), err)
		}
		residual += r
	}
	return items, residual, nil
}

// LearnSkill изучает навык по ID из реестра.
func (s *Session) LearnSkill(id int32) error {
	tpl, ok := s.cfg.Skills[id]
	if !ok {
		return fmt.Errorf("skill %d: %w", id, ErrUnknownSkill)
	}
	return s.skills.Learn(tpl)
}

// ActivateSkill включает активный навык.
func (s *Session) ActivateSkill(id int32) error {
	return s.skills.Activate(id)
}

// DeactivateSkill выключает действующий навык.
func (s *Session) DeactivateSkill(id int32) error {
	return s.skills.Deactivate(id)
}

// UnlockNode открывает узел дерева развития и применяет его гранты:
// изучает выданные навыки и кладёт выданные предметы в инвентарь.
//
// Returns:
//   - int32: остаток выданных предметов, не поместившийся в инвентарь
func (s *Session) UnlockNode(id int32) (int32, error) {
	grants, err := s.unlocks.Unlock(id)
	if err != nil {
		return 0, err
	}

	for _, skillID := range grants.Skills {
		if err := s.LearnSkill(skillID); err != nil {
			// Узел уже открыт, откат невозможен: гранты применяются
			// по принципу лучших усилий.
			if !errors.Is(err, skill.ErrSkillAlreadyLearned) {
				return 0, fmt.Errorf("granting skill %d: %w", skillID, err)
			}
		}
	}

	var residual int32
	for _, itemID := range grants.Items {
		r, err := s.GiveItem(itemID, 1)
		if err != nil {
			return residual, fmt.Errorf("granting item %d: %w", itemID, err)
		}
		residual += r
	}

	slog.Debug("unlock applied", "node", id, "skills", len(grants.Skills), "items", len(grants.Items))
	return residual, nil
}

// GainExp начисляет опыт и возвращает число полученных уровней.
func (s *Session) GainExp(amount int64) (int32, error) {
	return s.progress.AddExp(amount, s.cfg.Rates)
}

// RestoreExp восстанавливает сохранённый опыт как есть, без рейтов.
func (s *Session) RestoreExp(exp int64) error {
	p, err := level.RestoreProgress(s.cfg.Levels, exp)
	if err != nil {
		return err
	}
	s.progress = p
	return nil
}

// CraftItem выполняет попытку крафта по рецепту.
func (s *Session) CraftItem(rng *rand.Rand, recipeID int32) (*craft.Result, error) {
	if s.crafting == nil {
		return nil, fmt.Errorf("recipe %d: %w", recipeID, craft.ErrUnknownRecipe)
	}
	return s.crafting.Craft(rng, s.inventory, recipeID, s.cfg.Rates)
}

// Tick продвигает время сессии: перезарядки и истечение навыков.
func (s *Session) Tick(deltaMs int32) {
	s.skills.Tick(deltaMs)
}

// Stat возвращает итоговое значение стата со всеми модификаторами.
func (s *Session) Stat(key stat.Key) (float64, error) {
	return s.engine.Compute(key)
}

// Stats возвращает все итоговые значения статов.
func (s *Session) Stats() map[stat.Key]float64 {
	return s.engine.ComputeAll()
}

// SetResource выставляет текущий запас ресурса (mana и т.п.).
func (s *Session) SetResource(key stat.Key, value float64) {
	s.resources[key] = value
}

// Current возвращает текущий запас ресурса. Реализует skill.ResourcePool.
func (s *Session) Current(key stat.Key) float64 {
	return s.resources[key]
}

// Spend списывает ресурс. Реализует skill.ResourcePool.
func (s *Session) Spend(key stat.Key, amount float64) {
	s.resources[key] -= amount
}

// Inventory возвращает инвентарь персонажа.
func (s *Session) Inventory() *model.Inventory {
	return s.inventory
}

// Equipment возвращает экипировку персонажа.
func (s *Session) Equipment() *model.Equipment {
	return s.equipment
}

// Skills возвращает менеджер навыков.
func (s *Session) Skills() *skill.Manager {
	return s.skills
}

// Unlocks возвращает состояние дерева развития.
func (s *Session) Unlocks() *unlock.State {
	return s.unlocks
}

// Progress возвращает прогресс уровня.
func (s *Session) Progress() *level.Progress {
	return s.progress
}

// Engine возвращает движок модификаторов.
func (s *Session) Engine() *stat.Engine {
	return s.engine
}

// InventoryVersion возвращает счётчик изменений инвентаря для
// dirty-check'а на стороне хоста.
func (s *Session) InventoryVersion() uint64 {
	return s.inventory.Version()
}
