package adapter

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/FJORD/internal/model"
	"github.com/copyleftdev/FJORD/internal/optimization"
)

// singleVarModel builds a minimal model around one variable so domain
// translation can be exercised in isolation.
func singleVarModel(t *testing.T, dom model.Domain) (*model.Model, *model.Var) {
	t.Helper()
	m := model.New("single")
	v := m.AddVar("x", dom)
	m.Minimize("obj", v)
	return m, v
}

func TestSpaceDerivation(t *testing.T) {
	tests := []struct {
		name string
		dom  model.Domain
		want optimization.Parameter
	}{
		{
			name: "closed continuous keeps exact bounds",
			dom:  model.Reals(-2, 2),
			want: optimization.Scalar{Lower: -2, Upper: 2},
		},
		{
			name: "open lower bound nudged inward",
			dom:  model.Interval{Lower: 0, Upper: 1, LowerOpen: true},
			want: optimization.Scalar{Lower: math.Nextafter(0, math.Inf(1)), Upper: 1},
		},
		{
			name: "open upper bound nudged inward",
			dom:  model.Interval{Lower: 0, Upper: 1, UpperOpen: true},
			want: optimization.Scalar{Lower: 0, Upper: math.Nextafter(1, math.Inf(-1))},
		},
		{
			name: "integer range marked integer",
			dom:  model.Integers(2, 7),
			want: optimization.Scalar{Lower: 2, Upper: 7, Integer: true},
		},
		{
			name: "binary",
			dom:  model.Binary(),
			want: optimization.Scalar{Lower: 0, Upper: 1, Integer: true},
		},
		{
			name: "descending integer range normalized",
			dom:  model.Interval{Lower: 5, Upper: 1, Step: -1},
			want: optimization.Scalar{Lower: 1, Upper: 5, Integer: true},
		},
		{
			name: "stepped grid becomes choice",
			dom:  model.Stepped(0, 10, 2.5),
			want: optimization.Choice{Options: []float64{0, 2.5, 5, 7.5, 10}},
		},
		{
			name: "union concatenates sub-ranges",
			dom:  model.RangeUnion(model.Integers(0, 1), model.Integers(5, 6)),
			want: optimization.Choice{Options: []float64{0, 1, 5, 6}},
		},
		{
			name: "unordered set sorted and deduped",
			dom:  model.Set(3, 1, 2, 1),
			want: optimization.Choice{Options: []float64{1, 2, 3}},
		},
		{
			name: "ordered set preserves order",
			dom:  model.OrderedSet(3, 1, 2),
			want: optimization.Choice{Options: []float64{3, 1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := singleVarModel(t, tt.dom)
			a, err := New(m)
			require.NoError(t, err)

			p, ok := a.Space().Get("x")
			require.True(t, ok, "derived space should contain the variable")
			assert.Equal(t, tt.want, p)
			assert.Equal(t, 1, a.Space().Len())
		})
	}
}

func TestOpenBoundIsStrictlyInterior(t *testing.T) {
	m, _ := singleVarModel(t, model.OpenReals(0, 1))
	a, err := New(m)
	require.NoError(t, err)

	p, _ := a.Space().Get("x")
	sc, ok := p.(optimization.Scalar)
	require.True(t, ok)
	assert.Greater(t, sc.Lower, 0.0, "open lower bound should exclude the endpoint")
	assert.Less(t, sc.Upper, 1.0, "open upper bound should exclude the endpoint")
	assert.Equal(t, 0.0, math.Nextafter(sc.Lower, math.Inf(-1)), "lower bound should be one increment above the endpoint")
}

func TestUnsupportedDomains(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *model.Model
	}{
		{
			name: "unbounded interval",
			setup: func() *model.Model {
				m, _ := singleVarModel(t, model.Interval{Lower: 0, Upper: math.Inf(1)})
				return m
			},
		},
		{
			name: "unbounded below",
			setup: func() *model.Model {
				m, _ := singleVarModel(t, model.Interval{Lower: math.Inf(-1), Upper: 0})
				return m
			},
		},
		{
			name: "fixed variable",
			setup: func() *model.Model {
				m, v := singleVarModel(t, model.Reals(0, 1))
				m.Fix(v, 0.5)
				return m
			},
		},
		{
			name: "empty set",
			setup: func() *model.Model {
				m, _ := singleVarModel(t, model.Set())
				return m
			},
		},
		{
			name: "union with continuous piece",
			setup: func() *model.Model {
				m, _ := singleVarModel(t, model.RangeUnion(model.Integers(0, 1), model.Reals(2, 3)))
				return m
			},
		},
		{
			name: "inverted continuous bounds",
			setup: func() *model.Model {
				m, _ := singleVarModel(t, model.Reals(2, 1))
				return m
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.setup())
			require.Error(t, err)
			assert.Nil(t, a, "construction should not partially succeed")

			var domErr *UnsupportedDomainError
			require.ErrorAs(t, err, &domErr)
			assert.Equal(t, "x", domErr.Var)
		})
	}
}

func TestObjectiveCardinality(t *testing.T) {
	t.Run("nil model", func(t *testing.T) {
		a, err := New(nil)
		assert.Nil(t, a)
		var modelErr *UnsupportedModelError
		require.ErrorAs(t, err, &modelErr)
	})

	t.Run("no variables", func(t *testing.T) {
		m := model.New("empty")
		m.Minimize("obj", model.Const(0))
		_, err := New(m)
		var modelErr *UnsupportedModelError
		require.ErrorAs(t, err, &modelErr)
	})

	t.Run("no objective", func(t *testing.T) {
		m := model.New("none")
		m.AddVar("x", model.Reals(0, 1))
		_, err := New(m)
		var missing *MissingObjectiveError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "none", missing.Model)
	})

	t.Run("deactivated objective counts as missing", func(t *testing.T) {
		m := model.New("off")
		x := m.AddVar("x", model.Reals(0, 1))
		m.Minimize("obj", x).Deactivate()
		_, err := New(m)
		var missing *MissingObjectiveError
		require.ErrorAs(t, err, &missing)
	})

	t.Run("two active objectives", func(t *testing.T) {
		m := model.New("two")
		x := m.AddVar("x", model.Reals(0, 1))
		m.Minimize("first", x)
		m.Maximize("second", x)
		_, err := New(m)
		var multiple *MultipleObjectivesError
		require.ErrorAs(t, err, &multiple)
		assert.Equal(t, 2, multiple.Count)
	})

	t.Run("one of two deactivated", func(t *testing.T) {
		m := model.New("onelive")
		x := m.AddVar("x", model.Reals(0, 1))
		m.Minimize("first", x)
		m.Maximize("second", x).Deactivate()
		a, err := New(m)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})
}

func TestMaximizationNegated(t *testing.T) {
	// maximize 3x over [0, 10]: the assignment x=10 achieves the
	// optimum 30, so the minimization-oriented evaluator returns -30.
	m := model.New("max")
	x := m.AddVar("x", model.Reals(0, 10))
	m.Maximize("obj", model.Scale(3, x))

	a, err := New(m)
	require.NoError(t, err)

	got, err := a.Objective()(optimization.Assignment{"x": 10})
	require.NoError(t, err)
	assert.Equal(t, -30.0, got)

	// Minimization passes the value through unchanged.
	m2 := model.New("min")
	y := m2.AddVar("y", model.Reals(0, 10))
	m2.Minimize("obj", model.Scale(3, y))
	a2, err := New(m2)
	require.NoError(t, err)

	got, err = a2.Objective()(optimization.Assignment{"y": 10})
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)
}

func TestObjectiveInjection(t *testing.T) {
	m := model.New("inject")
	xs := m.AddVars("x", model.StringKeys("a", "b"), model.Reals(0, 10))
	y := m.AddVar("y", model.Reals(0, 10))
	m.Minimize("obj", model.Add(xs.At("a"), model.Scale(10, xs.At("b")), model.Scale(100, y)))

	a, err := New(m)
	require.NoError(t, err)
	assert.Equal(t, []string{`x["a"]`, `x["b"]`, "y"}, a.Space().Names())

	objective := a.Objective()
	got, err := objective(optimization.Assignment{`x["a"]`: 1, `x["b"]`: 2, "y": 3})
	require.NoError(t, err)
	assert.Equal(t, 321.0, got, "each value should land in its own variable")

	// The next evaluation overwrites the previous injection.
	got, err = objective(optimization.Assignment{`x["a"]`: 0, `x["b"]`: 0, "y": 1})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)
}

func TestAssignmentValidation(t *testing.T) {
	m := model.New("strict")
	m.AddVar("x", model.Reals(0, 1))
	m.AddVar("y", model.Reals(0, 1))
	m.Minimize("obj", model.Const(0))

	a, err := New(m)
	require.NoError(t, err)

	_, err = a.Objective()(optimization.Assignment{"x": 0.5})
	assert.Error(t, err, "missing parameter should be rejected")

	_, err = a.Objective()(optimization.Assignment{"x": 0.5, "y": 0.5, "z": 1})
	assert.Error(t, err, "unknown parameter should be rejected")

	ok, err := a.Constraint(0)(optimization.Assignment{"x": 0.5, "y": 0.5})
	assert.False(t, ok)
	assert.Error(t, err, "feasibility of a missing constraint should fail")
}

func TestIndexedConstraintAllMustHold(t *testing.T) {
	m := model.New("family")
	xs := m.AddVars("x", model.IntKeys(3), model.Reals(0, 10))

	rels := make([]model.Relation, 0, xs.Len())
	for _, v := range xs.Vars() {
		rels = append(rels, model.LessEq(v, model.Const(1)))
	}
	m.AddConstraintList("caps", rels)
	m.Minimize("obj", model.Add(xs.At(0), xs.At(1), xs.At(2)))

	a, err := New(m)
	require.NoError(t, err)
	require.Equal(t, 1, a.NumConstraints())

	feasible := a.Constraint(0)

	ok, err := feasible(optimization.Assignment{"x[0]": 1, "x[1]": 0.5, "x[2]": 0})
	require.NoError(t, err)
	assert.True(t, ok, "family with all members satisfied should hold")

	ok, err = feasible(optimization.Assignment{"x[0]": 0, "x[1]": 2, "x[2]": 0})
	require.NoError(t, err)
	assert.False(t, ok, "one violated member should make the family infeasible")
}

func TestConstraintAccessors(t *testing.T) {
	m := model.New("cons")
	x := m.AddVar("x", model.Reals(0, 10))
	m.AddConstraint("lo", model.GreaterEq(x, model.Const(2)))
	m.AddConstraint("hi", model.LessEq(x, model.Const(8)))
	m.Minimize("obj", x)

	a, err := New(m)
	require.NoError(t, err)
	require.Equal(t, 2, a.NumConstraints())

	funcs := a.Constraints()
	require.Len(t, funcs, 2)

	ok, err := funcs[0](optimization.Assignment{"x": 1})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = funcs[1](optimization.Assignment{"x": 1})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.Constraint(5)(optimization.Assignment{"x": 1})
	var consErr *UnsupportedConstraintError
	require.ErrorAs(t, err, &consErr)
}

func TestDeactivatedConstraintSkipped(t *testing.T) {
	m := model.New("inactive")
	x := m.AddVar("x", model.Reals(0, 10))
	m.AddConstraint("ignored", model.LessEq(x, model.Const(0))).Deactivate()
	m.Minimize("obj", x)

	a, err := New(m)
	require.NoError(t, err)
	assert.Zero(t, a.NumConstraints())
}

func TestEmptyConstraintRejected(t *testing.T) {
	m := model.New("empty-cons")
	x := m.AddVar("x", model.Reals(0, 1))
	m.AddConstraintList("void", nil)
	m.Minimize("obj", x)

	_, err := New(m)
	var consErr *UnsupportedConstraintError
	require.ErrorAs(t, err, &consErr)
	assert.Equal(t, "void", consErr.Constraint)
}

func TestKnapsackScenario(t *testing.T) {
	items := []string{"hammer", "wrench", "screwdriver", "towel"}
	value := map[string]float64{"hammer": 8, "wrench": 3, "screwdriver": 6, "towel": 11}
	weight := map[string]float64{"hammer": 5, "wrench": 7, "screwdriver": 4, "towel": 3}

	m := model.New("knapsack")
	x := m.AddVars("x", model.StringKeys(items...), model.Binary())

	valueTerms := make([]model.Expr, 0, len(items))
	weightTerms := make([]model.Expr, 0, len(items))
	for _, it := range items {
		valueTerms = append(valueTerms, model.Scale(value[it], x.At(it)))
		weightTerms = append(weightTerms, model.Scale(weight[it], x.At(it)))
	}
	m.Maximize("value", model.Add(valueTerms...))
	m.AddConstraint("weight", model.LessEq(model.Add(weightTerms...), model.Const(14)))

	a, err := New(m)
	require.NoError(t, err)

	// Four boolean-equivalent parameters with quoted index names.
	require.Equal(t, 4, a.Space().Len())
	for _, it := range items {
		p, ok := a.Space().Get(`x["` + it + `"]`)
		require.True(t, ok, "parameter for %s should exist", it)
		assert.Equal(t, optimization.Scalar{Lower: 0, Upper: 1, Integer: true}, p)
	}

	assert.Equal(t, "value|x|weight", a.Name())

	pick := func(names ...string) optimization.Assignment {
		assignment := optimization.Assignment{}
		for _, it := range items {
			assignment[`x["`+it+`"]`] = 0
		}
		for _, n := range names {
			assignment[`x["`+n+`"]`] = 1
		}
		return assignment
	}

	objective := a.Objective()
	feasible := a.Constraint(0)

	// hammer+screwdriver+towel: value 25, weight 12.
	best := pick("hammer", "screwdriver", "towel")
	got, err := objective(best)
	require.NoError(t, err)
	assert.Equal(t, -25.0, got, "maximization should negate the value sum")

	ok, err := feasible(best)
	require.NoError(t, err)
	assert.True(t, ok)

	// All four items: weight 19 exceeds the capacity.
	all := pick(items...)
	ok, err = feasible(all)
	require.NoError(t, err)
	assert.False(t, ok, "total weight above capacity should be infeasible")

	got, err = objective(all)
	require.NoError(t, err)
	assert.Equal(t, -28.0, got, "objective ignores feasibility")
}

func TestAdapterOwnsItsClone(t *testing.T) {
	m := model.New("owned")
	x := m.AddVar("x", model.Reals(0, 10))
	obj := m.Minimize("obj", x)

	a, err := New(m)
	require.NoError(t, err)

	// Mutations of the source after construction must not be visible.
	m.SetValue(x, 99)
	obj.Deactivate()

	got, err := a.Objective()(optimization.Assignment{"x": 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestEvaluatorParallel(t *testing.T) {
	m := model.New("parallel")
	x := m.AddVar("x", model.Reals(0, 100))
	m.AddConstraint("cap", model.LessEq(x, model.Const(50)))
	m.Minimize("obj", model.Pow(x, model.Const(2)))

	a, err := New(m)
	require.NoError(t, err)

	const workers = 8
	const evals = 200

	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			ev := a.Evaluator()
			for i := 0; i < evals; i++ {
				v := float64((worker*evals + i) % 100)
				got, err := ev.Objective(optimization.Assignment{"x": v})
				if err != nil {
					errCh <- err
					return
				}
				if got != v*v {
					errCh <- assert.AnError
					return
				}
				ok, err := ev.Feasible(optimization.Assignment{"x": v})
				if err != nil {
					errCh <- err
					return
				}
				if ok != (v <= 50) {
					errCh <- assert.AnError
					return
				}
			}
		}(w)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err, "parallel evaluators should not interfere")
	}
}
