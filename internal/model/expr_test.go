package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprEval(t *testing.T) {
	m := New("eval")
	x := m.AddVar("x", Reals(-10, 10))
	y := m.AddVar("y", Reals(-10, 10))
	m.SetValue(x, 2)
	m.SetValue(y, 3)

	tests := []struct {
		name string
		e    Expr
		want float64
	}{
		{name: "constant", e: Const(4.5), want: 4.5},
		{name: "variable", e: x, want: 2},
		{name: "sum", e: Add(x, y, Const(1)), want: 6},
		{name: "difference", e: Sub(y, x), want: 1},
		{name: "product", e: Mul(x, y), want: 6},
		{name: "quotient", e: Div(y, x), want: 1.5},
		{name: "negation", e: Neg(x), want: -2},
		{name: "power", e: Pow(x, Const(3)), want: 8},
		{name: "scale", e: Scale(10, y), want: 30},
		{name: "empty sum", e: Add(), want: 0},
		{name: "empty product", e: Mul(), want: 1},
		{name: "nested", e: Add(Pow(Sub(Const(1), x), Const(2)), Scale(100, Pow(Sub(y, Pow(x, Const(2))), Const(2)))), want: 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.EvalExpr(tt.e), 1e-12)
		})
	}
}

func TestExprSharedAcrossClones(t *testing.T) {
	m := New("shared")
	x := m.AddVar("x", Reals(0, 10))
	e := Pow(x, Const(2))

	m.SetValue(x, 3)
	c := m.Clone()
	c.SetValue(x, 5)

	require.InDelta(t, 9, m.EvalExpr(e), 1e-12, "original should evaluate with its own value")
	require.InDelta(t, 25, c.EvalExpr(e), 1e-12, "clone should evaluate with its own value")
}

func TestRelationHolds(t *testing.T) {
	m := New("rel")
	x := m.AddVar("x", Reals(0, 10))
	m.SetValue(x, 4)

	tests := []struct {
		name string
		rel  Relation
		want bool
	}{
		{name: "le satisfied", rel: LessEq(x, Const(4)), want: true},
		{name: "le violated", rel: LessEq(x, Const(3)), want: false},
		{name: "ge satisfied", rel: GreaterEq(x, Const(4)), want: true},
		{name: "ge violated", rel: GreaterEq(x, Const(5)), want: false},
		{name: "eq satisfied", rel: Equal(x, Const(4)), want: true},
		{name: "eq violated", rel: Equal(x, Const(4.5)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Satisfied(tt.rel))
		})
	}
}

func TestExprString(t *testing.T) {
	m := New("str")
	x := m.AddVar("x", Reals(0, 1))

	assert.Equal(t, "(1 - x)^2", Pow(Sub(Const(1), x), Const(2)).String())
	assert.Equal(t, "2*x", Scale(2, x).String())
	assert.Equal(t, "x <= 14", LessEq(x, Const(14)).String())
}
