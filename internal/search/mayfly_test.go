package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

func TestMayflySphere(t *testing.T) {
	config := optimization.SearchConfig{
		Objective:     sphereObjective,
		Space:         continuousSpace(t, 2),
		MaxIterations: 80,
		RandomSeed:    5,
	}

	ms, err := NewMayflySearch(config)
	require.NoError(t, err)

	result, err := ms.Optimize(context.Background(), config)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotNil(t, result.BestSolution, "best solution should not be nil")
	assert.Less(t, result.BestSolution.Value, 1.0, "swarm should close in on the origin")
	assert.True(t, result.Converged)
	assert.Greater(t, len(result.History), 0, "history should not be empty")
	assert.Equal(t, len(result.History), result.Iterations)

	for i, eval := range result.History {
		assert.Equal(t, i, eval.Iteration, "history should be in order")
		for name, v := range eval.Solution.Assignment {
			assert.GreaterOrEqual(t, v, -5.0, "%s should stay in bounds", name)
			assert.LessOrEqual(t, v, 5.0, "%s should stay in bounds", name)
		}
	}
}

func TestMayflyDeterministic(t *testing.T) {
	run := func() *optimization.Result {
		config := optimization.SearchConfig{
			Objective:     sphereObjective,
			Space:         continuousSpace(t, 2),
			MaxIterations: 30,
			RandomSeed:    9,
		}
		ms, err := NewMayflySearch(config)
		require.NoError(t, err)
		result, err := ms.Optimize(context.Background(), config)
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()

	assert.Equal(t, first.BestSolution.Value, second.BestSolution.Value, "same seed should find the same best value")
	assert.Equal(t, first.BestSolution.Assignment, second.BestSolution.Assignment)
}

func TestMayflyKnapsack(t *testing.T) {
	items := []string{"hammer", "wrench", "screwdriver", "towel"}
	value := map[string]float64{"hammer": 8, "wrench": 3, "screwdriver": 6, "towel": 11}
	weight := map[string]float64{"hammer": 5, "wrench": 7, "screwdriver": 4, "towel": 3}

	space := optimization.NewSpace()
	for _, item := range items {
		require.NoError(t, space.Add(item, optimization.Scalar{Lower: 0, Upper: 1, Integer: true}))
	}

	config := optimization.SearchConfig{
		Objective: func(candidate optimization.Assignment) (float64, error) {
			total := 0.0
			for _, item := range items {
				total += value[item] * candidate[item]
			}
			return -total, nil
		},
		Constraints: []optimization.FeasibilityFunc{
			func(candidate optimization.Assignment) (bool, error) {
				total := 0.0
				for _, item := range items {
					total += weight[item] * candidate[item]
				}
				return total <= 14, nil
			},
		},
		Space:         space,
		MaxIterations: 60,
		RandomSeed:    17,
	}

	ms, err := NewMayflySearch(config)
	require.NoError(t, err)

	result, err := ms.Optimize(context.Background(), config)
	require.NoError(t, err)

	best := result.BestSolution
	assert.LessOrEqual(t, best.Value, -14.0, "should pack a good selection")

	packed := 0.0
	for _, item := range items {
		selected := best.Assignment[item]
		assert.Contains(t, []float64{0, 1}, selected, "%s should be a binary decision", item)
		packed += weight[item] * selected
	}
	assert.LessOrEqual(t, packed, 14.0, "best selection should respect the capacity")
}

func TestMayflyDecode(t *testing.T) {
	space := optimization.NewSpace()
	require.NoError(t, space.Add("a", optimization.Scalar{Lower: -2, Upper: 2}))
	require.NoError(t, space.Add("n", optimization.Scalar{Lower: 0, Upper: 4, Integer: true}))
	require.NoError(t, space.Add("c", optimization.Choice{Options: []float64{10, 20, 30}}))
	names := space.Names()

	tests := []struct {
		name string
		x    []float64
		want optimization.Assignment
	}{
		{
			name: "lower edge",
			x:    []float64{0, 0, 0},
			want: optimization.Assignment{"a": -2, "n": 0, "c": 10},
		},
		{
			name: "upper edge",
			x:    []float64{1, 1, 1},
			want: optimization.Assignment{"a": 2, "n": 4, "c": 30},
		},
		{
			name: "midpoint",
			x:    []float64{0.5, 0.5, 0.5},
			want: optimization.Assignment{"a": 0, "n": 2, "c": 20},
		},
		{
			name: "quarter points",
			x:    []float64{0.25, 0.25, 0.75},
			want: optimization.Assignment{"a": -1, "n": 1, "c": 30},
		},
		{
			name: "positions outside the cube are clamped",
			x:    []float64{-1, 2, -0.5},
			want: optimization.Assignment{"a": -2, "n": 4, "c": 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeAssignment(space, names, tt.x))
		})
	}
}

func TestMayflyCancel(t *testing.T) {
	config := optimization.SearchConfig{
		Objective:     sphereObjective,
		Space:         continuousSpace(t, 2),
		MaxIterations: 20,
		RandomSeed:    1,
	}

	ms, err := NewMayflySearch(config)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := ms.Optimize(ctx, config)
	require.Error(t, err, "should return error when context is cancelled")
	assert.Nil(t, result, "should not return result when cancelled")
	assert.ErrorIs(t, err, context.Canceled)
}
