package search

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

// sphereObjective is the canonical smooth test objective with its
// minimum of 0 at the origin. Summing in name order keeps repeated
// runs bitwise comparable.
func sphereObjective(candidate optimization.Assignment) (float64, error) {
	names := make([]string, 0, len(candidate))
	for name := range candidate {
		names = append(names, name)
	}
	sort.Strings(names)

	sum := 0.0
	for _, name := range names {
		v := candidate[name]
		sum += v * v
	}
	return sum, nil
}

// continuousSpace builds the box [-5, 5]^n with parameters x0..x(n-1)
func continuousSpace(t *testing.T, n int) *optimization.Space {
	t.Helper()
	space := optimization.NewSpace()
	for i := 0; i < n; i++ {
		require.NoError(t, space.Add(fmt.Sprintf("x%d", i), optimization.Scalar{Lower: -5, Upper: 5}))
	}
	return space
}

func TestNewSearcher(t *testing.T) {
	config := optimization.SearchConfig{
		Objective: sphereObjective,
		Space:     continuousSpace(t, 2),
	}

	tests := []struct {
		name   string
		driver string
		want   interface{}
	}{
		{name: "random", driver: DriverRandom, want: &RandomSearch{}},
		{name: "mayfly", driver: DriverMayfly, want: &MayflySearch{}},
		{name: "neldermead", driver: DriverNelderMead, want: &NelderMeadSearch{}},
		{name: "bayesian", driver: DriverBayesian, want: &BayesianSearch{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher, err := NewSearcher(tt.driver, config)
			require.NoError(t, err)
			require.NotNil(t, searcher)
			assert.IsType(t, tt.want, searcher)
		})
	}

	t.Run("unknown driver", func(t *testing.T) {
		searcher, err := NewSearcher("annealing", config)
		require.Error(t, err)
		assert.Nil(t, searcher)
		assert.Contains(t, err.Error(), "unknown search driver")
	})
}

func TestDrivers(t *testing.T) {
	assert.Equal(t, []string{DriverBayesian, DriverMayfly, DriverNelderMead, DriverRandom}, Drivers())
}

func TestScreen(t *testing.T) {
	objectiveCalls := 0
	objective := func(candidate optimization.Assignment) (float64, error) {
		objectiveCalls++
		return 7, nil
	}
	pass := func(candidate optimization.Assignment) (bool, error) { return true, nil }
	fail := func(candidate optimization.Assignment) (bool, error) { return false, nil }

	t.Run("feasible candidate reaches the objective", func(t *testing.T) {
		objectiveCalls = 0
		value, err := screen(objective, []optimization.FeasibilityFunc{pass, pass}, optimization.Assignment{})
		require.NoError(t, err)
		assert.Equal(t, 7.0, value)
		assert.Equal(t, 1, objectiveCalls)
	})

	t.Run("infeasible candidate is penalized without evaluation", func(t *testing.T) {
		objectiveCalls = 0
		value, err := screen(objective, []optimization.FeasibilityFunc{pass, fail}, optimization.Assignment{})
		require.NoError(t, err)
		assert.Equal(t, InfeasiblePenalty, value)
		assert.Equal(t, 0, objectiveCalls)
	})

	t.Run("predicates short-circuit on the first violation", func(t *testing.T) {
		secondCalled := false
		second := func(candidate optimization.Assignment) (bool, error) {
			secondCalled = true
			return true, nil
		}
		_, err := screen(objective, []optimization.FeasibilityFunc{fail, second}, optimization.Assignment{})
		require.NoError(t, err)
		assert.False(t, secondCalled, "later predicates should not run after a violation")
	})

	t.Run("predicate errors propagate", func(t *testing.T) {
		broken := func(candidate optimization.Assignment) (bool, error) { return false, assert.AnError }
		_, err := screen(objective, []optimization.FeasibilityFunc{broken}, optimization.Assignment{})
		assert.ErrorIs(t, err, assert.AnError)
	})
}
