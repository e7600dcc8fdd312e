package data

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/rpgkit/internal/game/stat"
	"github.com/udisondev/rpgkit/internal/model"
)

type itemsDoc struct {
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	ID          int32             `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Slot        string            `yaml:"slot"`
	MaxStack    int32             `yaml:"max_stack"`
	Weight      int32             `yaml:"weight"`
	Durability  *int32            `yaml:"durability"`
	Modifiers   []modifierDoc     `yaml:"modifiers"`
	Tags        []string          `yaml:"tags"`
	Extra       map[string]string `yaml:"extra"`
}

func parseCategory(s string) (model.ItemCategory, error) {
	switch strings.ToLower(s) {
	case "weapon":
		return model.CategoryWeapon, nil
	case "armor":
		return model.CategoryArmor, nil
	case "consumable":
		return model.CategoryConsumable, nil
	case "material":
		return model.CategoryMaterial, nil
	case "currency":
		return model.CategoryCurrency, nil
	case "quest":
		return model.CategoryQuestItem, nil
	case "", "etc":
		return model.CategoryEtcItem, nil
	}
	return 0, fmt.Errorf("unknown item category %q", s)
}

func parseSlot(s string) (model.EquipSlot, error) {
	switch strings.ToLower(s) {
	case "":
		return model.SlotNone, nil
	case "rhand":
		return model.SlotRightHand, nil
	case "lhand":
		return model.SlotLeftHand, nil
	case "head":
		return model.SlotHead, nil
	case "chest":
		return model.SlotChest, nil
	case "legs":
		return model.SlotLegs, nil
	case "feet":
		return model.SlotFeet, nil
	case "gloves":
		return model.SlotGloves, nil
	case "neck":
		return model.SlotNeck, nil
	case "finger":
		return model.SlotFinger, nil
	case "back":
		return model.SlotBack, nil
	}
	return 0, fmt.Errorf("unknown equip slot %q", s)
}

func loadItems(path string, stats *stat.Registry) (*model.TemplateRegistry, error) {
	var doc itemsDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	templates := make([]*model.ItemTemplate, 0, len(doc.Items))
	for _, id := range doc.Items {
		category, err := parseCategory(id.Category)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", id.ID, err)
		}
		slot, err := parseSlot(id.Slot)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", id.ID, err)
		}
		mods, err := parseModifiers(id.Modifiers, stats)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", id.ID, err)
		}

		maxStack := id.MaxStack
		if maxStack == 0 {
			maxStack = 1
		}
		templates = append(templates, &model.ItemTemplate{
			ID:            id.ID,
			Name:          id.Name,
			Description:   id.Description,
			Category:      category,
			Slot:          slot,
			MaxStack:      maxStack,
			Weight:        id.Weight,
			MaxDurability: id.Durability,
			Modifiers:     mods,
			Tags:          id.Tags,
			Extra:         id.Extra,
		})
	}

	reg, err := model.NewTemplateRegistry(templates)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded item templates", "count", reg.Len())
	return reg, nil
}
