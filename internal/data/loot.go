package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/loot"
	"github.com/udisondev/rpgkit/internal/model"
)

type lootDoc struct {
	Tables []lootTableDoc `yaml:"tables"`
}

type lootTableDoc struct {
	Name       string      `yaml:"name"`
	DropChance float64     `yaml:"drop_chance"`
	Counts     []countDoc  `yaml:"counts"`
	Tree       lootNodeDoc `yaml:"tree"`
}

type countDoc struct {
	Item int32 `yaml:"item"`
	Min  int32 `yaml:"min"`
	Max  int32 `yaml:"max"`
}

// lootNodeDoc — рекурсивный узел дерева: либо item (лист), либо children.
type lootNodeDoc struct {
	Weight   int32         `yaml:"weight"`
	Item     int32         `yaml:"item"`
	Children []lootNodeDoc `yaml:"children"`
}

func buildLootNode(doc lootNodeDoc, templates *model.TemplateRegistry) (*loot.Node, error) {
	if doc.Item != 0 && len(doc.Children) > 0 {
		return nil, fmt.Errorf("loot node cannot have both item %d and children", doc.Item)
	}
	if doc.Item != 0 {
		if !templates.Has(doc.Item) {
			return nil, fmt.Errorf("loot leaf references unknown item %d", doc.Item)
		}
		return loot.Leaf(doc.Item, doc.Weight), nil
	}

	children := make([]*loot.Node, 0, len(doc.Children))
	for _, cd := range doc.Children {
		child, err := buildLootNode(cd, templates)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return loot.Branch(doc.Weight, children...), nil
}

func loadLoot(path string, templates *model.TemplateRegistry) (map[string]*loot.Generator, error) {
	var doc lootDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	tables := make(map[string]*loot.Generator, len(doc.Tables))
	for _, td := range doc.Tables {
		if td.Name == "" {
			return nil, fmt.Errorf("loot table name cannot be empty")
		}
		if _, dup := tables[td.Name]; dup {
			return nil, fmt.Errorf("loot table %q: duplicate name", td.Name)
		}

		root, err := buildLootNode(td.Tree, templates)
		if err != nil {
			return nil, fmt.Errorf("loot table %q: %w", td.Name, err)
		}
		tree, err := loot.NewTree(root)
		if err != nil {
			return nil, fmt.Errorf("loot table %q: %w", td.Name, err)
		}

		counts := make(map[int32]loot.CountRange, len(td.Counts))
		for _, cd := range td.Counts {
			counts[cd.Item] = loot.CountRange{Min: cd.Min, Max: cd.Max}
		}

		gen, err := loot.NewGenerator(tree, templates, td.DropChance, counts)
		if err != nil {
			return nil, fmt.Errorf("loot table %q: %w", td.Name, err)
		}
		tables[td.Name] = gen
	}

	slog.Info("loaded loot tables", "count", len(tables))
	return tables, nil
}
