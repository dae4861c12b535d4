package problems

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/FJORD/internal/model"
)

// pmedianReference is the canonical 3 facility by 4 customer distance
// matrix
var pmedianReference = mat.NewDense(3, 4, []float64{
	1.7, 7.2, 9.0, 8.3,
	2.9, 6.3, 9.8, 0.7,
	4.5, 4.8, 4.2, 9.3,
})

// PMedian builds the facility-location benchmark: open exactly `open`
// of the candidate facilities and route every customer to one of them,
// minimizing the total assignment distance. Assignment variables are
// relaxed to [0, 1] while the facility indicators stay binary.
func PMedian(facilities, customers, open int) *model.Model {
	d := pmedianDistances(facilities, customers)
	m := model.New("pmedian")

	x := m.AddVars("x", model.PairKeys(facilities, customers), model.Reals(0, 1))
	y := m.AddVars("y", model.IntKeys(facilities), model.Binary())

	// Total assignment distance
	cost := make([]model.Expr, 0, facilities*customers)
	for i := 0; i < facilities; i++ {
		for j := 0; j < customers; j++ {
			cost = append(cost, model.Scale(d.At(i, j), x.At(i, j)))
		}
	}
	m.Minimize("cost", model.Add(cost...))

	// Every customer is assigned exactly once
	single := make([]model.Relation, 0, customers)
	for j := 0; j < customers; j++ {
		terms := make([]model.Expr, 0, facilities)
		for i := 0; i < facilities; i++ {
			terms = append(terms, x.At(i, j))
		}
		single = append(single, model.Equal(model.Add(terms...), model.Const(1)))
	}
	m.AddConstraintList("single_x", single)

	// Assignments may only target open facilities
	bound := make([]model.Relation, 0, facilities*customers)
	for i := 0; i < facilities; i++ {
		for j := 0; j < customers; j++ {
			bound = append(bound, model.LessEq(x.At(i, j), y.At(i)))
		}
	}
	m.AddConstraintList("bound_y", bound)

	// Exactly `open` facilities stay open
	indicators := make([]model.Expr, 0, facilities)
	for i := 0; i < facilities; i++ {
		indicators = append(indicators, y.At(i))
	}
	m.AddConstraint("num_facilities", model.Equal(model.Add(indicators...), model.Const(float64(open))))

	return m
}

// pmedianDistances returns the reference matrix when the shape matches
// it and otherwise derives a deterministic instance
func pmedianDistances(facilities, customers int) *mat.Dense {
	if facilities == 3 && customers == 4 {
		return pmedianReference
	}

	rng := rand.New(rand.NewSource(1000))
	d := mat.NewDense(facilities, customers, nil)
	for i := 0; i < facilities; i++ {
		for j := 0; j < customers; j++ {
			d.Set(i, j, 1+9*rng.Float64())
		}
	}
	return d
}
