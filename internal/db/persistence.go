package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/udisondev/rpgkit/internal/game/session"
	"github.com/udisondev/rpgkit/internal/model"
)

// allEquipSlots — слоты экипировки, обходимые при снимке.
var allEquipSlots = []model.EquipSlot{
	model.SlotRightHand, model.SlotLeftHand, model.SlotHead,
	model.SlotChest, model.SlotLegs, model.SlotFeet,
	model.SlotGloves, model.SlotNeck, model.SlotFinger, model.SlotBack,
}

// Persistence сохраняет и восстанавливает сессии персонажей.
type Persistence struct {
	chars *CharacterRepository
	items *ItemRepository
}

// NewPersistence создаёт слой персистентности поверх открытой БД.
func NewPersistence(d *DB) *Persistence {
	return &Persistence{
		chars: NewCharacterRepository(d.Pool()),
		items: NewItemRepository(d.Pool()),
	}
}

// Characters возвращает репозиторий персонажей.
func (p *Persistence) Characters() *CharacterRepository {
	return p.chars
}

// Items возвращает репозиторий предметов.
func (p *Persistence) Items() *ItemRepository {
	return p.items
}

// SaveSession делает плоский снимок сессии и сохраняет его.
func (p *Persistence) SaveSession(ctx context.Context, characterID int64, s *session.Session) error {
	row := &CharacterRow{
		ID:         characterID,
		Experience: s.Progress().Exp(),
		Unlocked:   s.Unlocks().Unlocked(),
		Skills:     learnedSkillIDs(s),
	}
	if err := p.chars.Save(ctx, row); err != nil {
		return err
	}
	if err := p.items.SaveItems(ctx, characterID, snapshotItems(s)); err != nil {
		return err
	}
	return nil
}

// RestoreSession загружает снимок в свежесозданную сессию.
// Сессия должна быть пустой: предметы и открытия применяются поверх.
func (p *Persistence) RestoreSession(ctx context.Context, characterID int64, name string, s *session.Session) error {
	row, err := p.chars.LoadByName(ctx, name)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("character %q not found", name)
	}

	if err := s.Unlocks().Restore(row.Unlocked); err != nil {
		return fmt.Errorf("restoring unlocks: %w", err)
	}
	for _, skillID := range row.Skills {
		if err := s.LearnSkill(skillID); err != nil {
			return fmt.Errorf("restoring skill %d: %w", skillID, err)
		}
	}
	if err := s.RestoreExp(row.Experience); err != nil {
		return fmt.Errorf("restoring experience: %w", err)
	}

	items, err := p.items.LoadItems(ctx, characterID)
	if err != nil {
		return err
	}
	return restoreItems(s, items)
}

// restoreItems применяет строки снимка к сессии. Экипированные строки
// надеваются напрямую, минуя инвентарь, поэтому результат не зависит
// от порядка строк.
func restoreItems(s *session.Session, rows []ItemRow) error {
	for _, ir := range rows {
		if ir.EquipSlot != 0 {
			inst, err := s.CreateItem(ir.TemplateID, ir.Count)
			if err != nil {
				return fmt.Errorf("restoring item %d: %w", ir.TemplateID, err)
			}
			displaced, err := s.Equipment().Equip(inst, s.Engine())
			if err != nil {
				return fmt.Errorf("re-equipping item %d: %w", ir.TemplateID, err)
			}
			if displaced != nil {
				return fmt.Errorf("re-equipping item %d: slot %d already occupied by %d",
					ir.TemplateID, ir.EquipSlot, displaced.TemplateID())
			}
			continue
		}

		residual, err := s.GiveItem(ir.TemplateID, ir.Count)
		if err != nil {
			return fmt.Errorf("restoring item %d: %w", ir.TemplateID, err)
		}
		if residual > 0 {
			return fmt.Errorf("restoring item %d: %d units do not fit", ir.TemplateID, residual)
		}
	}
	return nil
}

func learnedSkillIDs(s *session.Session) []int32 {
	tpls := s.Skills().Learned()
	ids := make([]int32, 0, len(tpls))
	for _, tpl := range tpls {
		ids = append(ids, tpl.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func snapshotItems(s *session.Session) []ItemRow {
	var rows []ItemRow
	inv := s.Inventory()
	for slot := 0; slot < inv.SlotCount(); slot++ {
		inst := inv.Get(slot)
		if inst == nil {
			continue
		}
		rows = append(rows, itemRow(inst, int32(slot), 0))
	}
	for _, es := range allEquipSlots {
		if inst := s.Equipment().Equipped(es); inst != nil {
			rows = append(rows, itemRow(inst, -1, int32(es)))
		}
	}
	return rows
}

func itemRow(inst *model.ItemInstance, slotIndex, equipSlot int32) ItemRow {
	row := ItemRow{
		TemplateID: inst.TemplateID(),
		Count:      inst.Count(),
		SlotIndex:  slotIndex,
		EquipSlot:  equipSlot,
	}
	if d, ok := inst.Durability(); ok {
		row.Durability = &d
	}
	return row
}
