package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rpgkit/internal/config"
)

// Уровни 1..5: 0, 100, 300, 700, 1500.
func newTestTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]int64{0, 100, 300, 700, 1500})
	require.NoError(t, err)
	return table
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []int64
		wantErr    bool
	}{
		{name: "valid", thresholds: []int64{0, 100, 300}},
		{name: "single level", thresholds: []int64{0}},
		{name: "empty", thresholds: nil, wantErr: true},
		{name: "nonzero first", thresholds: []int64{50, 100}, wantErr: true},
		{name: "not increasing", thresholds: []int64{0, 100, 100}, wantErr: true},
		{name: "decreasing", thresholds: []int64{0, 300, 100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.thresholds)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTable_LevelFor(t *testing.T) {
	table := newTestTable(t)

	tests := []struct {
		exp  int64
		want int32
	}{
		{exp: 0, want: 1},
		{exp: 99, want: 1},
		{exp: 100, want: 2},
		{exp: 299, want: 2},
		{exp: 300, want: 3},
		{exp: 1500, want: 5},
		{exp: 1_000_000, want: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.LevelFor(tt.exp), "exp=%d", tt.exp)
	}
}

func TestTable_ExpForLevel(t *testing.T) {
	table := newTestTable(t)

	assert.Equal(t, int64(0), table.ExpForLevel(0))
	assert.Equal(t, int64(0), table.ExpForLevel(1))
	assert.Equal(t, int64(100), table.ExpForLevel(2))
	assert.Equal(t, int64(1500), table.ExpForLevel(5))
	assert.Equal(t, int64(1500), table.ExpForLevel(99), "above max clamps to max")
}

func TestProgress_AddExp(t *testing.T) {
	p, err := NewProgress(newTestTable(t))
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.Level())
	assert.Equal(t, int64(100), p.ExpToNext())

	gained, err := p.AddExp(50, nil)
	require.NoError(t, err)
	assert.Zero(t, gained)
	assert.Equal(t, int32(1), p.Level())
	assert.Equal(t, int64(50), p.ExpToNext())

	gained, err = p.AddExp(50, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gained)
	assert.Equal(t, int32(2), p.Level())

	// Один большой кусок опыта может дать несколько уровней разом.
	gained, err = p.AddExp(1400, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), gained)
	assert.Equal(t, int32(5), p.Level())
	assert.Zero(t, p.ExpToNext(), "max level has nothing left")
}

func TestProgress_AddExp_Rates(t *testing.T) {
	p, err := NewProgress(newTestTable(t))
	require.NoError(t, err)

	rates := &config.Rates{ExperienceMultiplier: 2.0}
	gained, err := p.AddExp(50, rates)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gained)
	assert.Equal(t, int64(100), p.Exp())
}

func TestProgress_AddExp_Negative(t *testing.T) {
	p, err := NewProgress(newTestTable(t))
	require.NoError(t, err)

	_, err = p.AddExp(-1, nil)
	assert.ErrorIs(t, err, ErrNegativeExperience)
	assert.Zero(t, p.Exp())
}

func TestRestoreProgress(t *testing.T) {
	table := newTestTable(t)

	p, err := RestoreProgress(table, 350)
	require.NoError(t, err)
	assert.Equal(t, int32(3), p.Level())
	assert.Equal(t, int64(350), p.Exp())

	_, err = RestoreProgress(table, -1)
	assert.Error(t, err)
}
