package unlock

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

var (
	// ErrAlreadyUnlocked — узел уже открыт.
	ErrAlreadyUnlocked = errors.New("node already unlocked")
	// ErrPrerequisiteNotMet — не все прямые предусловия открыты.
	ErrPrerequisiteNotMet = errors.New("prerequisite not met")
)

// Grants — то, что узел даёт хосту при открытии, помимо модификаторов.
type Grants struct {
	Skills []int32
	Items  []int32
}

// State — множество открытых узлов одного персонажа поверх общего графа.
//
// Открытие необратимо: операции отката нет. Модификаторы узла живут в
// движке под SourceRef узла всё время жизни персонажа.
//
// Не потокобезопасен: доступ сериализует хост.
type State struct {
	graph    *Graph
	engine   *stat.Engine
	unlocked map[int32]bool
}

// NewState создаёт пустое состояние открытий.
func NewState(graph *Graph, engine *stat.Engine) (*State, error) {
	if graph == nil {
		return nil, fmt.Errorf("unlock graph cannot be nil")
	}
	if engine == nil {
		return nil, fmt.Errorf("stat engine cannot be nil")
	}
	return &State{
		graph:    graph,
		engine:   engine,
		unlocked: make(map[int32]bool),
	}, nil
}

// CanUnlock сообщает, открываемы ли сейчас все прямые предусловия узла.
//
// Returns:
//   - error: ErrUnknownNode, ErrAlreadyUnlocked
func (s *State) CanUnlock(id int32) (bool, error) {
	n, ok := s.graph.Node(id)
	if !ok {
		return false, fmt.Errorf("node %d: %w", id, ErrUnknownNode)
	}
	if s.unlocked[id] {
		return false, fmt.Errorf("node %d: %w", id, ErrAlreadyUnlocked)
	}
	for _, pre := range n.Prerequisites {
		if !s.unlocked[pre] {
			return false, nil
		}
	}
	return true, nil
}

// Unlock открывает узел: навешивает его модификаторы и возвращает
// гранты для применения хостом.
//
// Returns:
//   - Grants: навыки и предметы, которые узел даёт
//   - error: ErrUnknownNode, ErrAlreadyUnlocked, ErrPrerequisiteNotMet;
//     stat.ErrUnknownStat оставляет узел закрытым
func (s *State) Unlock(id int32) (Grants, error) {
	ok, err := s.CanUnlock(id)
	if err != nil {
		return Grants{}, err
	}
	if !ok {
		return Grants{}, fmt.Errorf("node %d: %w", id, ErrPrerequisiteNotMet)
	}

	n, _ := s.graph.Node(id)
	if len(n.Modifiers) > 0 {
		if err := s.engine.AttachSource(n.SourceRef(), n.Modifiers...); err != nil {
			return Grants{}, fmt.Errorf("attaching unlock %d: %w", id, err)
		}
	}
	s.unlocked[id] = true

	slog.Debug("node unlocked",
		"node", id,
		"skills", len(n.GrantSkills),
		"items", len(n.GrantItems))
	return Grants{Skills: n.GrantSkills, Items: n.GrantItems}, nil
}

// Restore помечает узлы открытыми при загрузке персонажа, навешивая их
// модификаторы без проверки предусловий по одному: вместо этого
// проверяется замкнутость всего множества.
func (s *State) Restore(ids []int32) error {
	set := make(map[int32]bool, len(ids))
	for _, id := range ids {
		if _, ok := s.graph.Node(id); !ok {
			return fmt.Errorf("node %d: %w", id, ErrUnknownNode)
		}
		set[id] = true
	}
	for _, id := range ids {
		n, _ := s.graph.Node(id)
		for _, pre := range n.Prerequisites {
			if !set[pre] {
				return fmt.Errorf("node %d requires %d: %w", id, pre, ErrPrerequisiteNotMet)
			}
		}
	}

	for _, id := range ids {
		if s.unlocked[id] {
			continue
		}
		n, _ := s.graph.Node(id)
		if len(n.Modifiers) > 0 {
			if err := s.engine.AttachSource(n.SourceRef(), n.Modifiers...); err != nil {
				return fmt.Errorf("restoring unlock %d: %w", id, err)
			}
		}
		s.unlocked[id] = true
	}
	return nil
}

// IsUnlocked сообщает, открыт ли узел.
func (s *State) IsUnlocked(id int32) bool {
	return s.unlocked[id]
}

// Unlocked возвращает отсортированные ID открытых узлов.
func (s *State) Unlocked() []int32 {
	result := make([]int32, 0, len(s.unlocked))
	for id := range s.unlocked {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Available возвращает ID узлов, которые можно открыть прямо сейчас.
func (s *State) Available() []int32 {
	var result []int32
	for _, id := range s.graph.IDs() {
		if ok, err := s.CanUnlock(id); err == nil && ok {
			result = append(result, id)
		}
	}
	return result
}
