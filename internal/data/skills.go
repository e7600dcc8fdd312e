package data

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/udisondev/rpgkit/internal/game/skill"
	"github.com/udisondev/rpgkit/internal/game/stat"
)

type skillsDoc struct {
	Skills []skillDoc `yaml:"skills"`
}

type skillDoc struct {
	ID         int32         `yaml:"id"`
	Name       string        `yaml:"name"`
	Kind       string        `yaml:"kind"`
	CostStat   string        `yaml:"cost_stat"`
	CostAmount float64       `yaml:"cost_amount"`
	CooldownMs int32         `yaml:"cooldown_ms"`
	DurationMs int32         `yaml:"duration_ms"`
	Modifiers  []modifierDoc `yaml:"modifiers"`
}

func parseSkillKind(s string) (skill.Kind, error) {
	switch strings.ToLower(s) {
	case "", "active":
		return skill.KindActive, nil
	case "passive":
		return skill.KindPassive, nil
	}
	return 0, fmt.Errorf("unknown skill kind %q (want active or passive)", s)
}

func loadSkills(path string, stats *stat.Registry) (map[int32]*skill.Template, error) {
	var doc skillsDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	skills := make(map[int32]*skill.Template, len(doc.Skills))
	for _, sd := range doc.Skills {
		kind, err := parseSkillKind(sd.Kind)
		if err != nil {
			return nil, fmt.Errorf("skill %d: %w", sd.ID, err)
		}
		if sd.CostStat != "" && !stats.Has(stat.Key(sd.CostStat)) {
			return nil, fmt.Errorf("skill %d: unknown cost stat %q", sd.ID, sd.CostStat)
		}
		mods, err := parseModifiers(sd.Modifiers, stats)
		if err != nil {
			return nil, fmt.Errorf("skill %d: %w", sd.ID, err)
		}

		tpl := &skill.Template{
			ID:         sd.ID,
			Name:       sd.Name,
			Kind:       kind,
			CostStat:   stat.Key(sd.CostStat),
			CostAmount: sd.CostAmount,
			CooldownMs: sd.CooldownMs,
			DurationMs: sd.DurationMs,
			Modifiers:  mods,
		}
		if err := tpl.Validate(); err != nil {
			return nil, err
		}
		if _, dup := skills[tpl.ID]; dup {
			return nil, fmt.Errorf("skill %d: duplicate id", tpl.ID)
		}
		skills[tpl.ID] = tpl
	}

	slog.Info("loaded skills", "count", len(skills))
	return skills, nil
}
