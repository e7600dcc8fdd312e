// Package data загружает игровые данные из YAML-файлов и строит из них
// неизменяемые реестры для сессий.
//
// Ожидаемая раскладка каталога данных:
//
//	stats.yaml    — характеристики и правила агрегации
//	items.yaml    — шаблоны предметов
//	loot.yaml     — деревья добычи
//	skills.yaml   — навыки
//	unlocks.yaml  — дерево развития
//	levels.yaml   — таблица опыта
//	recipes.yaml  — рецепты крафта
package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/rpgkit/internal/game/craft"
	"github.com/udisondev/rpgkit/internal/game/level"
	"github.com/udisondev/rpgkit/internal/game/loot"
	"github.com/udisondev/rpgkit/internal/game/skill"
	"github.com/udisondev/rpgkit/internal/game/stat"
	"github.com/udisondev/rpgkit/internal/game/unlock"
	"github.com/udisondev/rpgkit/internal/model"
)

// GameData — полный комплект загруженных реестров. Все поля read-only
// после Load: реестры разделяются между сессиями без копирования.
type GameData struct {
	Stats     *stat.Registry
	Templates *model.TemplateRegistry
	Loot      map[string]*loot.Generator
	Skills    map[int32]*skill.Template
	Unlocks   *unlock.Graph
	Levels    *level.Table
	Recipes   *craft.Book
}

// Load читает все таблицы из каталога данных.
//
// Характеристики загружаются первыми: остальные таблицы валидируют свои
// ссылки на статы против реестра. Независимые таблицы читаются
// параллельно через errgroup.
func Load(ctx context.Context, dir string) (*GameData, error) {
	start := time.Now()

	stats, err := loadStats(filepath.Join(dir, "stats.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}

	gd := &GameData{Stats: stats}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		templates, err := loadItems(filepath.Join(dir, "items.yaml"), stats)
		if err != nil {
			return fmt.Errorf("loading items: %w", err)
		}
		gd.Templates = templates
		return nil
	})
	g.Go(func() error {
		skills, err := loadSkills(filepath.Join(dir, "skills.yaml"), stats)
		if err != nil {
			return fmt.Errorf("loading skills: %w", err)
		}
		gd.Skills = skills
		return nil
	})
	g.Go(func() error {
		unlocks, err := loadUnlocks(filepath.Join(dir, "unlocks.yaml"), stats)
		if err != nil {
			return fmt.Errorf("loading unlocks: %w", err)
		}
		gd.Unlocks = unlocks
		return nil
	})
	g.Go(func() error {
		levels, err := loadLevels(filepath.Join(dir, "levels.yaml"))
		if err != nil {
			return fmt.Errorf("loading levels: %w", err)
		}
		gd.Levels = levels
		return nil
	})
	g.Go(func() error {
		recipes, err := loadRecipes(filepath.Join(dir, "recipes.yaml"))
		if err != nil {
			return fmt.Errorf("loading recipes: %w", err)
		}
		gd.Recipes = recipes
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Деревья добычи валидируются против реестра шаблонов, поэтому
	// грузятся после items.yaml.
	gd.Loot, err = loadLoot(filepath.Join(dir, "loot.yaml"), gd.Templates)
	if err != nil {
		return nil, fmt.Errorf("loading loot: %w", err)
	}

	// Кросс-таблильные ссылки: гранты узлов и продукты рецептов должны
	// существовать в своих реестрах.
	if err := gd.validateCrossRefs(); err != nil {
		return nil, err
	}

	slog.Info("game data loaded",
		"dir", dir,
		"stats", gd.Stats.Len(),
		"templates", gd.Templates.Len(),
		"skills", len(gd.Skills),
		"unlocks", gd.Unlocks.Len(),
		"recipes", gd.Recipes.Len(),
		"took", time.Since(start))
	return gd, nil
}

func (gd *GameData) validateCrossRefs() error {
	for _, id := range gd.Unlocks.IDs() {
		n, _ := gd.Unlocks.Node(id)
		for _, skillID := range n.GrantSkills {
			if _, ok := gd.Skills[skillID]; !ok {
				return fmt.Errorf("unlock %d grants unknown skill %d", id, skillID)
			}
		}
		for _, itemID := range n.GrantItems {
			if !gd.Templates.Has(itemID) {
				return fmt.Errorf("unlock %d grants unknown item %d", id, itemID)
			}
		}
	}
	for _, r := range gd.Recipes.All() {
		for _, ing := range r.Materials {
			if !gd.Templates.Has(ing.TemplateID) {
				return fmt.Errorf("recipe %d uses unknown material %d", r.ID, ing.TemplateID)
			}
		}
		for _, ing := range r.Products {
			if !gd.Templates.Has(ing.TemplateID) {
				return fmt.Errorf("recipe %d produces unknown item %d", r.ID, ing.TemplateID)
			}
		}
	}
	return nil
}

// readDoc читает YAML-файл в out.
func readDoc(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
