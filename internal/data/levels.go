package data

import (
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/level"
)

type levelsDoc struct {
	// Thresholds — накопленный опыт на каждый уровень начиная с первого.
	Thresholds []int64 `yaml:"thresholds"`
}

func loadLevels(path string) (*level.Table, error) {
	var doc levelsDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	table, err := level.NewTable(doc.Thresholds)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded level table", "maxLevel", table.MaxLevel())
	return table, nil
}
