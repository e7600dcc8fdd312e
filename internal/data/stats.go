package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

type statsDoc struct {
	Stats []statDoc `yaml:"stats"`
}

type statDoc struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Base        float64  `yaml:"base"`
	Aggregation string   `yaml:"aggregation"`
	Min         *float64 `yaml:"min"`
	Max         *float64 `yaml:"max"`
}

func parseAggregation(s string) (stat.AggregationKind, error) {
	switch s {
	case "", "add":
		return stat.AggAdditive, nil
	case "mul":
		return stat.AggMultiplicative, nil
	case "override":
		return stat.AggOverride, nil
	}
	return 0, fmt.Errorf("unknown aggregation %q (want add, mul or override)", s)
}

func loadStats(path string) (*stat.Registry, error) {
	var doc statsDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}
	if len(doc.Stats) == 0 {
		return nil, fmt.Errorf("%s: at least one stat required", path)
	}

	defs := make([]stat.Definition, 0, len(doc.Stats))
	for _, sd := range doc.Stats {
		agg, err := parseAggregation(sd.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", sd.Key, err)
		}
		def := stat.NewDefinition(stat.Key(sd.Key), sd.Name, sd.Base, agg)
		if sd.Min != nil {
			def.Min = *sd.Min
		}
		if sd.Max != nil {
			def.Max = *sd.Max
		}
		if sd.Min != nil && sd.Max != nil && *sd.Min > *sd.Max {
			return nil, fmt.Errorf("stat %q: min %v above max %v", sd.Key, *sd.Min, *sd.Max)
		}
		defs = append(defs, def)
	}

	reg, err := stat.NewRegistry(defs)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded stats", "count", reg.Len())
	return reg, nil
}
