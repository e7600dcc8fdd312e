package data

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/rpgkit/internal/game/stat"
	"github.com/udisondev/rpgkit/internal/game/unlock"
)

type unlocksDoc struct {
	Nodes []unlockDoc `yaml:"nodes"`
}

type unlockDoc struct {
	ID            int32         `yaml:"id"`
	Name          string        `yaml:"name"`
	Prerequisites []int32       `yaml:"prerequisites"`
	Modifiers     []modifierDoc `yaml:"modifiers"`
	GrantSkills   []int32       `yaml:"grant_skills"`
	GrantItems    []int32       `yaml:"grant_items"`
}

func loadUnlocks(path string, stats *stat.Registry) (*unlock.Graph, error) {
	var doc unlocksDoc
	if err := readDoc(path, &doc); err != nil {
		return nil, err
	}

	nodes := make([]*unlock.Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		mods, err := parseModifiers(nd.Modifiers, stats)
		if err != nil {
			return nil, fmt.Errorf("unlock %d: %w", nd.ID, err)
		}
		nodes = append(nodes, &unlock.Node{
			ID:            nd.ID,
			Name:          nd.Name,
			Prerequisites: nd.Prerequisites,
			Modifiers:     mods,
			GrantSkills:   nd.GrantSkills,
			GrantItems:    nd.GrantItems,
		})
	}

	graph, err := unlock.NewGraph(nodes)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded unlock nodes", "count", graph.Len())
	return graph, nil
}
