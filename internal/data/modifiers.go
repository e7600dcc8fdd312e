package data

import (
	"fmt"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

// modifierDoc — YAML-представление модификатора. Поле kind опционально:
// пропущенный kind наследует правило агрегации целевой характеристики.
type modifierDoc struct {
	Target    string  `yaml:"target"`
	Kind      string  `yaml:"kind"`
	Magnitude float64 `yaml:"magnitude"`
	Priority  int32   `yaml:"priority"`
}

func parseModifierKind(s string) (stat.ModifierKind, error) {
	switch s {
	case "add":
		return stat.ModAdd, nil
	case "mul":
		return stat.ModMul, nil
	case "override":
		return stat.ModOverride, nil
	}
	return 0, fmt.Errorf("unknown modifier kind %q (want add, mul or override)", s)
}

func defaultModifierKind(agg stat.AggregationKind) stat.ModifierKind {
	switch agg {
	case stat.AggMultiplicative:
		return stat.ModMul
	case stat.AggOverride:
		return stat.ModOverride
	}
	return stat.ModAdd
}

// parseModifiers превращает YAML-модификаторы в stat.Modifier, подставляя
// kind по умолчанию из определения характеристики.
func parseModifiers(docs []modifierDoc, stats *stat.Registry) ([]stat.Modifier, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	mods := make([]stat.Modifier, 0, len(docs))
	for _, doc := range docs {
		def, ok := stats.Get(stat.Key(doc.Target))
		if !ok {
			return nil, fmt.Errorf("modifier targets unknown stat %q", doc.Target)
		}

		kind := defaultModifierKind(def.Aggregation)
		if doc.Kind != "" {
			var err error
			kind, err = parseModifierKind(doc.Kind)
			if err != nil {
				return nil, fmt.Errorf("modifier for %q: %w", doc.Target, err)
			}
		}

		mods = append(mods, stat.Modifier{
			Target:    def.Key,
			Kind:      kind,
			Magnitude: doc.Magnitude,
			Priority:  doc.Priority,
		})
	}
	return mods, nil
}
