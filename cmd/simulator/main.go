// Simulator — демонстрационный хост: загружает игровые данные, прогоняет
// детерминированный сценарий одной сессии и печатает итоговые статы.
// При настроенной базе снимок сессии сохраняется в PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/rpgkit/internal/config"
	"github.com/udisondev/rpgkit/internal/data"
	"github.com/udisondev/rpgkit/internal/db"
	"github.com/udisondev/rpgkit/internal/game/craft"
	"github.com/udisondev/rpgkit/internal/game/session"
	"github.com/udisondev/rpgkit/internal/model"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "config/simulator.yaml", "path to simulator config")
	name := flag.String("name", "Adventurer", "character name for persistence")
	flag.Parse()

	cfg, err := config.LoadSimulator(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("simulator starting", "log_level", cfg.LogLevel, "seed", cfg.Seed)

	gd, err := data.Load(ctx, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("loading game data: %w", err)
	}

	s, err := session.New(session.Config{
		Stats:     gd.Stats,
		Templates: gd.Templates,
		Skills:    gd.Skills,
		Unlocks:   gd.Unlocks,
		Levels:    gd.Levels,
		Recipes:   gd.Recipes,
		Inventory: model.FixedCapacity(40),
		Rates:     &cfg.Rates,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	if err := runScenario(rng, s, gd); err != nil {
		return fmt.Errorf("running scenario: %w", err)
	}

	for key, value := range s.Stats() {
		slog.Info("final stat", "key", key, "value", value)
	}
	slog.Info("session finished",
		"level", s.Progress().Level(),
		"exp", s.Progress().Exp(),
		"items", s.Inventory().OccupiedSlots(),
		"inventoryVersion", s.InventoryVersion())

	if cfg.Database.Host != "" {
		if err := persist(ctx, cfg, *name, s); err != nil {
			return fmt.Errorf("persisting session: %w", err)
		}
	}
	return nil
}

// runScenario — фиксированный сценарий: добыча, экипировка, развитие,
// навыки и крафт. Детерминирован при фиксированном seed.
func runScenario(rng *rand.Rand, s *session.Session, gd *data.GameData) error {
	goblin, ok := gd.Loot["goblin"]
	if !ok {
		return fmt.Errorf("loot table %q not defined", "goblin")
	}

	// Десять стычек: добыча и опыт.
	for range 10 {
		items, residual, err := s.RollLoot(rng, goblin, 3)
		if err != nil {
			return fmt.Errorf("rolling loot: %w", err)
		}
		if residual > 0 {
			slog.Warn("loot did not fit", "residual", residual)
		}
		for _, inst := range items {
			slog.Debug("loot drop", "item", inst.Name(), "count", inst.Count())
		}
		if _, err := s.GainExp(120); err != nil {
			return fmt.Errorf("gaining exp: %w", err)
		}
	}

	// Надеваем первое попавшееся снаряжение.
	for _, inst := range s.Inventory().Items() {
		if inst.Template().IsEquippable() {
			if err := s.Equip(inst.InstanceID()); err != nil {
				return fmt.Errorf("equipping %s: %w", inst.Name(), err)
			}
			slog.Info("equipped", "item", inst.Name())
			break
		}
	}

	// Открываем всё, что доступно.
	for {
		available := s.Unlocks().Available()
		if len(available) == 0 {
			break
		}
		for _, id := range available {
			if _, err := s.UnlockNode(id); err != nil {
				return fmt.Errorf("unlocking node %d: %w", id, err)
			}
			slog.Info("unlocked", "node", id)
		}
	}

	// Активируем боевой клич, если он изучен.
	if mana, err := s.Stat("mana"); err == nil {
		s.SetResource("mana", mana)
	}
	if s.Skills().IsLearned(2) {
		if err := s.ActivateSkill(2); err != nil {
			slog.Warn("skill activation failed", "err", err)
		} else {
			s.Tick(1000)
		}
	}

	// Крафтим всё, на что хватает материалов.
	for _, recipe := range gd.Recipes.All() {
		for {
			result, err := s.CraftItem(rng, recipe.ID)
			if errors.Is(err, craft.ErrMissingMaterials) {
				break
			}
			if err != nil {
				return fmt.Errorf("crafting %s: %w", recipe.Name, err)
			}
			slog.Info("craft attempt", "recipe", recipe.Name, "success", result.Success)
		}
	}
	return nil
}

func persist(ctx context.Context, cfg config.Simulator, name string, s *session.Session) error {
	dsn := cfg.Database.DSN()
	if err := db.RunMigrations(ctx, dsn); err != nil {
		return err
	}
	database, err := db.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	p := db.NewPersistence(database)
	row, err := p.Characters().LoadByName(ctx, name)
	if err != nil {
		return err
	}
	characterID := int64(0)
	if row != nil {
		characterID = row.ID
	} else {
		characterID, err = p.Characters().Create(ctx, name)
		if err != nil {
			return err
		}
	}

	if err := p.SaveSession(ctx, characterID, s); err != nil {
		return err
	}
	slog.Info("session persisted", "character", characterID, "name", name)
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
