package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Domain describes the set of legal values for a decision variable.
// The taxonomy is closed: Interval, Union and FiniteSet are the only
// implementations.
type Domain interface {
	// String returns a human-readable description of the domain.
	String() string

	isDomain()
}

// Interval is a numeric range domain. Step selects the flavor:
// 0 means a continuous range, +1 or -1 an integer range, and any
// other value a finite stepped grid. LowerOpen and UpperOpen mark
// open endpoints and are only meaningful for continuous ranges.
type Interval struct {
	Lower, Upper         float64
	LowerOpen, UpperOpen bool
	Step                 float64
}

func (Interval) isDomain() {}

// Reals returns the closed continuous range [lo, hi].
func Reals(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi}
}

// OpenReals returns the open continuous range (lo, hi).
func OpenReals(lo, hi float64) Interval {
	return Interval{Lower: lo, Upper: hi, LowerOpen: true, UpperOpen: true}
}

// UnitInterval returns the closed continuous range [0, 1].
func UnitInterval() Interval {
	return Reals(0, 1)
}

// Integers returns the integer range {lo, lo+1, ..., hi}.
func Integers(lo, hi int) Interval {
	return Interval{Lower: float64(lo), Upper: float64(hi), Step: 1}
}

// Binary returns the integer range {0, 1}.
func Binary() Interval {
	return Integers(0, 1)
}

// Stepped returns the finite grid {lo, lo+step, ...} up to hi.
func Stepped(lo, hi, step float64) Interval {
	return Interval{Lower: lo, Upper: hi, Step: step}
}

// Bounded reports whether both endpoints are finite.
func (iv Interval) Bounded() bool {
	return !math.IsInf(iv.Lower, 0) && !math.IsInf(iv.Upper, 0) &&
		!math.IsNaN(iv.Lower) && !math.IsNaN(iv.Upper)
}

// Finite reports whether the interval materializes to a finite value grid,
// which requires a nonzero step and finite endpoints.
func (iv Interval) Finite() bool {
	return iv.Step != 0 && iv.Bounded()
}

// Values materializes the interval's value grid. A positive step
// enumerates ascending from Lower, a negative step descending from
// Upper. Returns nil for continuous or unbounded intervals.
func (iv Interval) Values() []float64 {
	if !iv.Finite() {
		return nil
	}
	var vals []float64
	if iv.Step > 0 {
		for i := 0; ; i++ {
			v := iv.Lower + float64(i)*iv.Step
			if v > iv.Upper {
				break
			}
			vals = append(vals, v)
		}
	} else {
		for i := 0; ; i++ {
			v := iv.Upper + float64(i)*iv.Step
			if v < iv.Lower {
				break
			}
			vals = append(vals, v)
		}
	}
	return vals
}

func (iv Interval) String() string {
	lb, rb := "[", "]"
	if iv.LowerOpen {
		lb = "("
	}
	if iv.UpperOpen {
		rb = ")"
	}
	s := fmt.Sprintf("%s%s, %s%s", lb, formatBound(iv.Lower), formatBound(iv.Upper), rb)
	if iv.Step != 0 {
		s += fmt.Sprintf(" step %s", strconv.FormatFloat(iv.Step, 'g', -1, 64))
	}
	return s
}

func formatBound(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsInf(v, 1) {
		return "+inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Union is a multi-range domain. Every piece must be finitely
// materializable for the union to be usable in a search space.
type Union struct {
	Pieces []Interval
}

func (Union) isDomain() {}

// RangeUnion returns the union of the given intervals.
func RangeUnion(pieces ...Interval) Union {
	return Union{Pieces: pieces}
}

// Finite reports whether every piece materializes to a finite grid.
func (u Union) Finite() bool {
	if len(u.Pieces) == 0 {
		return false
	}
	for _, p := range u.Pieces {
		if !p.Finite() {
			return false
		}
	}
	return true
}

// Values concatenates the materialized values of all pieces in
// declaration order. Overlap between pieces is not checked.
func (u Union) Values() []float64 {
	if !u.Finite() {
		return nil
	}
	var vals []float64
	for _, p := range u.Pieces {
		vals = append(vals, p.Values()...)
	}
	return vals
}

func (u Union) String() string {
	parts := make([]string, len(u.Pieces))
	for i, p := range u.Pieces {
		parts[i] = p.String()
	}
	return strings.Join(parts, " | ")
}

// FiniteSet is an explicit enumeration domain. Ordered sets preserve
// their declaration order; unordered sets are stored sorted ascending
// so derived search spaces are deterministic.
type FiniteSet struct {
	Elements []float64
	Ordered  bool
}

func (FiniteSet) isDomain() {}

// Set returns an unordered finite set over the given elements.
// Duplicates are removed and the elements are sorted ascending.
func Set(elems ...float64) FiniteSet {
	out := dedupe(elems)
	sort.Float64s(out)
	return FiniteSet{Elements: out}
}

// OrderedSet returns an ordered finite set over the given elements.
// Duplicates are removed; the first occurrence keeps its position.
func OrderedSet(elems ...float64) FiniteSet {
	return FiniteSet{Elements: dedupe(elems), Ordered: true}
}

func dedupe(elems []float64) []float64 {
	seen := make(map[float64]struct{}, len(elems))
	out := make([]float64, 0, len(elems))
	for _, e := range elems {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

func (fs FiniteSet) String() string {
	parts := make([]string, len(fs.Elements))
	for i, e := range fs.Elements {
		parts[i] = strconv.FormatFloat(e, 'g', -1, 64)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
