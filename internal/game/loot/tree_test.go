package loot

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestNewTree_Validation(t *testing.T) {
	tests := []struct {
		name    string
		root    *Node
		wantErr bool
	}{
		{name: "nil root", root: nil, wantErr: true},
		{name: "single leaf", root: Leaf(1, 5), wantErr: false},
		{name: "negative weight", root: Leaf(1, -1), wantErr: true},
		{name: "leaf with zero template", root: Leaf(0, 5), wantErr: true},
		{
			name:    "nested negative weight",
			root:    Branch(1, Leaf(1, 1), Branch(2, Leaf(2, -3))),
			wantErr: true,
		},
		{
			name:    "valid nested",
			root:    Branch(1, Leaf(1, 1), Branch(2, Leaf(2, 3), Leaf(3, 4))),
			wantErr: false,
		},
		{
			name: "zero weight subtree is allowed at build time",
			root: Branch(1, Leaf(1, 1), Branch(2, Leaf(2, 0))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.root)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTree_Sample_SingleLeaf(t *testing.T) {
	tree, err := NewTree(Leaf(42, 1))
	require.NoError(t, err)

	id, err := tree.Sample(testRNG(1))
	require.NoError(t, err)
	assert.Equal(t, int32(42), id)
}

func TestTree_Sample_WeightDistribution(t *testing.T) {
	// Листья с весами 1 и 3: за 10000 розыгрышей лёгкий лист должен
	// выпасть примерно в 25% случаев.
	tree, err := NewTree(Branch(1, Leaf(1, 1), Leaf(2, 3)))
	require.NoError(t, err)

	rng := testRNG(12345)
	const draws = 10000
	hits := 0
	for range draws {
		id, err := tree.Sample(rng)
		require.NoError(t, err)
		if id == 1 {
			hits++
		}
	}

	ratio := float64(hits) / draws
	assert.InDelta(t, 0.25, ratio, 0.02, "weight-1 leaf ratio %v", ratio)
}

func TestTree_Sample_ZeroTotalFailsNeverPanics(t *testing.T) {
	// Все дети с нулевым весом: всегда ErrEmptyLootPool, без паники.
	tree, err := NewTree(Branch(1, Leaf(1, 0), Leaf(2, 0)))
	require.NoError(t, err)

	rng := testRNG(1)
	for range 100 {
		_, err := tree.Sample(rng)
		assert.ErrorIs(t, err, ErrEmptyLootPool)
	}
}

func TestTree_Sample_ZeroWeightSubtreeExcluded(t *testing.T) {
	// Ветка с нулевым суммарным весом детей не выбирается, даже если её
	// собственный вес велик.
	dead := Branch(1000, Leaf(99, 0))
	tree, err := NewTree(Branch(1, Leaf(1, 1), dead))
	require.NoError(t, err)

	rng := testRNG(7)
	for range 1000 {
		id, err := tree.Sample(rng)
		require.NoError(t, err)
		assert.Equal(t, int32(1), id)
	}
}

func TestTree_Sample_NestedBranches(t *testing.T) {
	// common (вес 9): шаблоны 1..2, rare (вес 1): шаблон 3.
	tree, err := NewTree(Branch(1,
		Branch(9, Leaf(1, 1), Leaf(2, 1)),
		Branch(1, Leaf(3, 1)),
	))
	require.NoError(t, err)

	rng := testRNG(99)
	const draws = 10000
	rare := 0
	for range draws {
		id, err := tree.Sample(rng)
		require.NoError(t, err)
		if id == 3 {
			rare++
		}
	}
	assert.InDelta(t, 0.1, float64(rare)/draws, 0.02)
}

func TestTree_SampleN(t *testing.T) {
	tree, err := NewTree(Branch(1, Leaf(1, 1), Leaf(2, 1)))
	require.NoError(t, err)

	ids, err := tree.SampleN(testRNG(5), 50)
	require.NoError(t, err)
	assert.Len(t, ids, 50)
	for _, id := range ids {
		assert.Contains(t, []int32{1, 2}, id)
	}
}

func TestTree_Sample_Reproducible(t *testing.T) {
	tree, err := NewTree(Branch(1, Leaf(1, 1), Leaf(2, 3), Leaf(3, 6)))
	require.NoError(t, err)

	a, err := tree.SampleN(testRNG(42), 100)
	require.NoError(t, err)
	b, err := tree.SampleN(testRNG(42), 100)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must give same sequence")
}

func TestTree_Leaves(t *testing.T) {
	tree, err := NewTree(Branch(1,
		Leaf(1, 1),
		Branch(2, Leaf(2, 1), Leaf(3, 1)),
	))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{1, 2, 3}, tree.Leaves())
}
