package model

import (
	"math"
	"strconv"
	"strings"
)

// Expr is an immutable arithmetic expression over model variables.
// Expressions are evaluated against a model's value table, so a single
// tree can be shared by any number of model clones.
type Expr interface {
	// String returns an infix rendering of the expression.
	String() string

	eval(vals []float64) float64
}

type constant struct {
	v float64
}

// Const returns a constant expression.
func Const(v float64) Expr {
	return constant{v: v}
}

func (c constant) eval([]float64) float64 {
	return c.v
}

func (c constant) String() string {
	return strconv.FormatFloat(c.v, 'g', -1, 64)
}

type sum struct {
	terms []Expr
}

// Add returns the sum of the given terms. With no terms it is the
// constant 0; with one term it is that term.
func Add(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return Const(0)
	case 1:
		return terms[0]
	}
	return sum{terms: terms}
}

func (s sum) eval(vals []float64) float64 {
	total := 0.0
	for _, t := range s.terms {
		total += t.eval(vals)
	}
	return total
}

func (s sum) String() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

type difference struct {
	a, b Expr
}

// Sub returns a - b.
func Sub(a, b Expr) Expr {
	return difference{a: a, b: b}
}

func (d difference) eval(vals []float64) float64 {
	return d.a.eval(vals) - d.b.eval(vals)
}

func (d difference) String() string {
	return "(" + d.a.String() + " - " + d.b.String() + ")"
}

type product struct {
	factors []Expr
}

// Mul returns the product of the given factors. With no factors it is
// the constant 1; with one factor it is that factor.
func Mul(factors ...Expr) Expr {
	switch len(factors) {
	case 0:
		return Const(1)
	case 1:
		return factors[0]
	}
	return product{factors: factors}
}

// Scale returns c * e.
func Scale(c float64, e Expr) Expr {
	return Mul(Const(c), e)
}

func (p product) eval(vals []float64) float64 {
	total := 1.0
	for _, f := range p.factors {
		total *= f.eval(vals)
	}
	return total
}

func (p product) String() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, "*")
}

type quotient struct {
	num, den Expr
}

// Div returns num / den.
func Div(num, den Expr) Expr {
	return quotient{num: num, den: den}
}

func (q quotient) eval(vals []float64) float64 {
	return q.num.eval(vals) / q.den.eval(vals)
}

func (q quotient) String() string {
	return "(" + q.num.String() + " / " + q.den.String() + ")"
}

type negation struct {
	e Expr
}

// Neg returns -e.
func Neg(e Expr) Expr {
	return negation{e: e}
}

func (n negation) eval(vals []float64) float64 {
	return -n.e.eval(vals)
}

func (n negation) String() string {
	return "-" + n.e.String()
}

type power struct {
	base, exp Expr
}

// Pow returns base raised to exp.
func Pow(base, exp Expr) Expr {
	return power{base: base, exp: exp}
}

func (p power) eval(vals []float64) float64 {
	return math.Pow(p.base.eval(vals), p.exp.eval(vals))
}

func (p power) String() string {
	return p.base.String() + "^" + p.exp.String()
}

// RelOp is a relational operator.
type RelOp int

const (
	LE RelOp = iota // less than or equal
	GE              // greater than or equal
	EQ              // equal
)

func (op RelOp) String() string {
	switch op {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "=="
	}
	return "?"
}

// Relation is a relational expression between two arithmetic
// expressions, the body of a constraint.
type Relation struct {
	LHS Expr
	Op  RelOp
	RHS Expr
}

// LessEq returns the relation l <= r.
func LessEq(l, r Expr) Relation {
	return Relation{LHS: l, Op: LE, RHS: r}
}

// GreaterEq returns the relation l >= r.
func GreaterEq(l, r Expr) Relation {
	return Relation{LHS: l, Op: GE, RHS: r}
}

// Equal returns the relation l == r.
func Equal(l, r Expr) Relation {
	return Relation{LHS: l, Op: EQ, RHS: r}
}

func (r Relation) holds(vals []float64) bool {
	l := r.LHS.eval(vals)
	rr := r.RHS.eval(vals)
	switch r.Op {
	case LE:
		return l <= rr
	case GE:
		return l >= rr
	case EQ:
		return l == rr
	}
	return false
}

func (r Relation) String() string {
	return r.LHS.String() + " " + r.Op.String() + " " + r.RHS.String()
}
