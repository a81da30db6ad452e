package cost_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/tsalign/pkg/cost"
)

func TestNewFunction_Validates(t *testing.T) {
	t.Parallel()

	_, err := cost.NewFunction()
	require.ErrorIs(t, err, cost.ErrEmptyFunction)

	_, err = cost.NewFunction(cost.Entry{Index: 0, Cost: 1})
	require.ErrorIs(t, err, cost.ErrFirstIndexNotMin)

	_, err = cost.NewFunction(
		cost.Entry{Index: cost.IndexMin, Cost: 1},
		cost.Entry{Index: 5, Cost: 2},
		cost.Entry{Index: 5, Cost: 3},
	)
	require.ErrorIs(t, err, cost.ErrIndexOrder)

	assert.Panics(t, func() { cost.MustFunction(cost.Entry{Index: 3}) })
}

func TestFunction_EvaluateIsStepFunction(t *testing.T) {
	t.Parallel()

	f := cost.MustFunction(
		cost.Entry{Index: cost.IndexMin, Cost: cost.Inf},
		cost.Entry{Index: -2, Cost: 4},
		cost.Entry{Index: 0, Cost: 0},
		cost.Entry{Index: 3, Cost: 7},
	)

	cases := []struct {
		index int64
		want  cost.Cost
	}{
		{cost.IndexMin, cost.Inf},
		{-3, cost.Inf},
		{-2, 4},
		{-1, 4},
		{0, 0},
		{2, 0},
		{3, 7},
		{cost.IndexMax, 7},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, f.Evaluate(tc.index), "index %d", tc.index)
	}

	assert.Equal(t, cost.Zero, f.MinCost())
	assert.Equal(t, 4, f.Len())
}

func TestFunction_ZeroValueIsForbidden(t *testing.T) {
	t.Parallel()

	var f cost.Function

	assert.True(t, f.IsZero())
	assert.Equal(t, cost.Inf, f.Evaluate(0))
	assert.Equal(t, cost.Cost(5), cost.Constant(5).Evaluate(-12))
}

func TestFunction_EntriesAreCopied(t *testing.T) {
	t.Parallel()

	f := cost.Constant(1)
	entries := f.Entries()
	entries[0].Cost = 99

	assert.Equal(t, cost.Cost(1), f.Evaluate(0))
	assert.True(t, f.Equal(cost.Constant(1)))
	assert.False(t, f.Equal(cost.Constant(2)))
}

func TestTable_DefaultIsValid(t *testing.T) {
	t.Parallel()

	table := cost.DefaultTable()
	require.NoError(t, table.Validate())

	assert.Equal(t, cost.Cost(3), table.MinIndel())
	assert.Equal(t, cost.Cost(3), table.MinEntrance())
	assert.Equal(t, cost.Zero, table.MinExit())
}

func TestTable_ValidateRejectsNegativeCosts(t *testing.T) {
	t.Parallel()

	table := cost.DefaultTable()
	table.Secondary.Deletion = -1
	require.ErrorIs(t, table.Validate(), cost.ErrNegativeCost)

	table = cost.DefaultTable()
	table.Exit = -2
	require.ErrorIs(t, table.Validate(), cost.ErrNegativeCost)

	table = cost.DefaultTable()
	table.Length = cost.Constant(-1)
	err := table.Validate()
	require.ErrorIs(t, err, cost.ErrNegativeCost)
	assert.True(t, strings.Contains(err.Error(), "length"))

	table = cost.DefaultTable()
	table.Offset = cost.Function{}
	require.ErrorIs(t, table.Validate(), cost.ErrEmptyFunction)
}

func TestFunction_FiniteIntervals(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []cost.Interval{{From: -1000, To: 1000}}, cost.DefaultTable().Offset.FiniteIntervals())
	assert.Equal(t, []cost.Interval{{From: -100, To: 100}}, cost.DefaultTable().LengthDifference.FiniteIntervals())
	assert.Equal(t, []cost.Interval{{From: 0, To: cost.IndexMax}}, cost.DefaultTable().Length.FiniteIntervals())

	f := cost.MustFunction(
		cost.Entry{Index: cost.IndexMin, Cost: 1},
		cost.Entry{Index: 0, Cost: cost.Inf},
		cost.Entry{Index: 5, Cost: 2},
	)
	assert.Equal(t, []cost.Interval{
		{From: cost.IndexMin, To: -1},
		{From: 5, To: cost.IndexMax},
	}, f.FiniteIntervals())

	assert.Empty(t, cost.Constant(cost.Inf).FiniteIntervals())
}
