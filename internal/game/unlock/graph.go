// Package unlock реализует дерево открытий: DAG узлов с предусловиями,
// навсегда дающих модификаторы, навыки или предметы.
package unlock

import (
	"errors"
	"fmt"
	"sort"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

var (
	// ErrUnknownNode — узел с таким ID не определён в графе.
	ErrUnknownNode = errors.New("unknown unlock node")
	// ErrDuplicateNode — узел с таким ID уже есть в графе.
	ErrDuplicateNode = errors.New("duplicate unlock node")
	// ErrUnknownPrerequisite — предусловие ссылается на несуществующий узел.
	ErrUnknownPrerequisite = errors.New("unknown prerequisite")
	// ErrCyclicPrerequisite — граф предусловий содержит цикл.
	ErrCyclicPrerequisite = errors.New("cyclic prerequisite")
)

// Node — узел дерева открытий.
//
// Узел открывается один раз и навсегда: его модификаторы навешиваются
// под SourceRef узла, а GrantSkills/GrantItems возвращаются хосту для
// применения (изучение навыка, выдача предмета).
type Node struct {
	ID            int32
	Name          string
	Prerequisites []int32
	Modifiers     []stat.Modifier
	GrantSkills   []int32
	GrantItems    []int32
}

// SourceRef возвращает идентификатор узла как источника модификаторов.
func (n *Node) SourceRef() stat.SourceRef {
	return stat.SourceRef{Kind: stat.SourceUnlock, ID: int64(n.ID)}
}

// Graph — проверенный набор узлов. Ацикличность и ссылочная целостность
// гарантируются конструктором: после NewGraph граф неизменяем.
type Graph struct {
	nodes map[int32]*Node
	order []int32
}

// NewGraph строит граф и валидирует его: дубликаты, висячие предусловия
// и циклы отклоняются на этапе загрузки, не во время игры.
//
// Returns:
//   - error: ErrDuplicateNode, ErrUnknownPrerequisite, ErrCyclicPrerequisite
func NewGraph(nodes []*Node) (*Graph, error) {
	g := &Graph{nodes: make(map[int32]*Node, len(nodes))}
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("unlock node cannot be nil")
		}
		if n.ID <= 0 {
			return nil, fmt.Errorf("unlock node id must be > 0, got %d", n.ID)
		}
		if _, ok := g.nodes[n.ID]; ok {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, n := range g.nodes {
		for _, pre := range n.Prerequisites {
			if _, ok := g.nodes[pre]; !ok {
				return nil, fmt.Errorf("node %d requires %d: %w", n.ID, pre, ErrUnknownPrerequisite)
			}
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// checkAcyclic обходит граф в глубину с трёхцветной раскраской.
func (g *Graph) checkAcyclic() error {
	const (
		white = 0 // не посещён
		gray  = 1 // в текущем пути
		black = 2 // обработан
	)
	color := make(map[int32]int, len(g.nodes))

	var visit func(id int32) error
	visit = func(id int32) error {
		switch color[id] {
		case gray:
			return fmt.Errorf("node %d: %w", id, ErrCyclicPrerequisite)
		case black:
			return nil
		}
		color[id] = gray
		for _, pre := range g.nodes[id].Prerequisites {
			if err := visit(pre); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	// Обход в детерминированном порядке ради воспроизводимых сообщений.
	ids := make([]int32, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// Node возвращает узел по ID.
func (g *Graph) Node(id int32) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len возвращает число узлов в графе.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs возвращает ID узлов в порядке определения.
func (g *Graph) IDs() []int32 {
	result := make([]int32, len(g.order))
	copy(result, g.order)
	return result
}
