package problems

import "github.com/copyleftdev/FJORD/internal/model"

// Rosenbrock builds the banana-valley benchmark
//
//	minimize (1-x)^2 + 100(y-x^2)^2
//
// on the box [-2, 2]^2. The minimum of 0 sits at (1, 1); variables
// start at the classic point (-1.2, 1).
func Rosenbrock() *model.Model {
	m := model.New("rosenbrock")

	x := m.AddVar("x", model.Reals(-2, 2))
	y := m.AddVar("y", model.Reals(-2, 2))
	m.SetValue(x, -1.2)
	m.SetValue(y, 1)

	flank := model.Sub(model.Const(1), x)
	valley := model.Sub(y, model.Mul(x, x))
	m.Minimize("obj", model.Add(
		model.Mul(flank, flank),
		model.Scale(100, model.Mul(valley, valley)),
	))

	return m
}
