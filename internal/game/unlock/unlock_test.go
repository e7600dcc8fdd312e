package unlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/game/stat"
)

func newTestEngine(t *testing.T) *stat.Engine {
	t.Helper()
	reg, err := stat.NewRegistry([]stat.Definition{
		stat.NewDefinition("maxHP", "Max HP", 100, stat.AggAdditive),
		stat.NewDefinition("pAtk", "Physical Attack", 10, stat.AggAdditive),
	})
	require.NoError(t, err)
	return stat.NewEngine(reg)
}

func node(id int32, prereqs ...int32) *Node {
	return &Node{
		ID:            id,
		Name:          "node",
		Prerequisites: prereqs,
		Modifiers: []stat.Modifier{
			{Target: "maxHP", Kind: stat.ModAdd, Magnitude: 10},
		},
	}
}

func TestNewGraph_Validation(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []*Node
		wantErr error
	}{
		{name: "empty graph", nodes: nil},
		{name: "chain", nodes: []*Node{node(1), node(2, 1), node(3, 2)}},
		{
			name:  "diamond",
			nodes: []*Node{node(1), node(2, 1), node(3, 1), node(4, 2, 3)},
		},
		{
			name:    "duplicate id",
			nodes:   []*Node{node(1), node(1)},
			wantErr: ErrDuplicateNode,
		},
		{
			name:    "dangling prerequisite",
			nodes:   []*Node{node(1, 99)},
			wantErr: ErrUnknownPrerequisite,
		},
		{
			name:    "two node cycle",
			nodes:   []*Node{node(1, 2), node(2, 1)},
			wantErr: ErrCyclicPrerequisite,
		},
		{
			name:    "self cycle",
			nodes:   []*Node{node(1, 1)},
			wantErr: ErrCyclicPrerequisite,
		},
		{
			name:    "long cycle",
			nodes:   []*Node{node(1, 3), node(2, 1), node(3, 2)},
			wantErr: ErrCyclicPrerequisite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewGraph_CycleEdgeRemoved(t *testing.T) {
	// A требует B, B требует A — отклоняется; без обратного ребра — принимается.
	_, err := NewGraph([]*Node{node(1, 2), node(2, 1)})
	require.ErrorIs(t, err, ErrCyclicPrerequisite)

	_, err = NewGraph([]*Node{node(1, 2), node(2)})
	assert.NoError(t, err)
}

func TestState_Unlock(t *testing.T) {
	engine := newTestEngine(t)
	graph, err := NewGraph([]*Node{
		node(1),
		{
			ID:            2,
			Name:          "veteran",
			Prerequisites: []int32{1},
			Modifiers:     []stat.Modifier{{Target: "pAtk", Kind: stat.ModAdd, Magnitude: 5}},
			GrantSkills:   []int32{10},
			GrantItems:    []int32{20},
		},
	})
	require.NoError(t, err)
	st, err := NewState(graph, engine)
	require.NoError(t, err)

	// Узел 2 заблокирован, пока не открыт узел 1.
	ok, err := st.CanUnlock(2)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = st.Unlock(2)
	assert.ErrorIs(t, err, ErrPrerequisiteNotMet)

	_, err = st.Unlock(1)
	require.NoError(t, err)
	v, err := engine.Compute("maxHP")
	require.NoError(t, err)
	assert.InDelta(t, 110.0, v, 1e-9)

	grants, err := st.Unlock(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{10}, grants.Skills)
	assert.Equal(t, []int32{20}, grants.Items)
	assert.True(t, st.IsUnlocked(2))

	_, err = st.Unlock(2)
	assert.ErrorIs(t, err, ErrAlreadyUnlocked)

	_, err = st.Unlock(99)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestState_Unlock_UnknownStatKeepsNodeLocked(t *testing.T) {
	engine := newTestEngine(t)
	bad := node(1)
	bad.Modifiers = []stat.Modifier{{Target: "luck", Kind: stat.ModAdd, Magnitude: 1}}
	graph, err := NewGraph([]*Node{bad})
	require.NoError(t, err)
	st, err := NewState(graph, engine)
	require.NoError(t, err)

	_, err = st.Unlock(1)
	assert.ErrorIs(t, err, stat.ErrUnknownStat)
	assert.False(t, st.IsUnlocked(1))
}

func TestState_Restore(t *testing.T) {
	engine := newTestEngine(t)
	graph, err := NewGraph([]*Node{node(1), node(2, 1), node(3, 2)})
	require.NoError(t, err)
	st, err := NewState(graph, engine)
	require.NoError(t, err)

	require.NoError(t, st.Restore([]int32{1, 2}))
	assert.Equal(t, []int32{1, 2}, st.Unlocked())

	v, err := engine.Compute("maxHP")
	require.NoError(t, err)
	assert.InDelta(t, 120.0, v, 1e-9, "restored nodes must contribute modifiers")

	// Множество без предусловия отклоняется целиком.
	st2, err := NewState(graph, engine)
	require.NoError(t, err)
	err = st2.Restore([]int32{3})
	assert.ErrorIs(t, err, ErrPrerequisiteNotMet)

	err = st2.Restore([]int32{99})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestState_Available(t *testing.T) {
	engine := newTestEngine(t)
	graph, err := NewGraph([]*Node{node(1), node(2), node(3, 1, 2)})
	require.NoError(t, err)
	st, err := NewState(graph, engine)
	require.NoError(t, err)

	assert.Equal(t, []int32{1, 2}, st.Available())

	_, err = st.Unlock(1)
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, st.Available())

	_, err = st.Unlock(2)
	require.NoError(t, err)
	assert.Equal(t, []int32{3}, st.Available())
}
