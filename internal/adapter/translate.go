package adapter

import (
	"math"

	"github.com/copyleftdev/FJORD/internal/model"
	"github.com/copyleftdev/FJORD/internal/optimization"
)

// translateDomain maps one variable's declared domain onto a search
// parameter. The case analysis is exhaustive over the domain taxonomy;
// anything that does not fit a case fails with UnsupportedDomainError.
func translateDomain(m *model.Model, v *model.Var) (optimization.Parameter, error) {
	if m.IsFixed(v) {
		return nil, &UnsupportedDomainError{Var: v.Name(), Domain: "fixed"}
	}
	switch d := v.Domain().(type) {
	case model.Interval:
		return translateInterval(v, d)
	case model.Union:
		if !d.Finite() {
			return nil, &UnsupportedDomainError{Var: v.Name(), Domain: d.String()}
		}
		return optimization.Choice{Options: d.Values()}, nil
	case model.FiniteSet:
		if len(d.Elements) == 0 {
			return nil, &UnsupportedDomainError{Var: v.Name(), Domain: d.String()}
		}
		return optimization.Choice{Options: append([]float64(nil), d.Elements...)}, nil
	default:
		return nil, &UnsupportedDomainError{Var: v.Name(), Domain: v.Domain().String()}
	}
}

func translateInterval(v *model.Var, iv model.Interval) (optimization.Parameter, error) {
	if !iv.Bounded() {
		return nil, &UnsupportedDomainError{Var: v.Name(), Domain: iv.String()}
	}
	switch {
	case iv.Step == 0:
		lo, hi := iv.Lower, iv.Upper
		// An open endpoint becomes the nearest representable interior
		// value, so the closed-bound parameter excludes the endpoint.
		if iv.LowerOpen {
			lo = math.Nextafter(lo, math.Inf(1))
		}
		if iv.UpperOpen {
			hi = math.Nextafter(hi, math.Inf(-1))
		}
		if lo > hi {
			return nil, &UnsupportedDomainError{Var: v.Name(), Domain: iv.String()}
		}
		return optimization.Scalar{Lower: lo, Upper: hi}, nil
	case iv.Step == 1 || iv.Step == -1:
		lo, hi := iv.Lower, iv.Upper
		if lo > hi {
			lo, hi = hi, lo
		}
		return optimization.Scalar{Lower: lo, Upper: hi, Integer: true}, nil
	default:
		vals := iv.Values()
		if len(vals) == 0 {
			return nil, &UnsupportedDomainError{Var: v.Name(), Domain: iv.String()}
		}
		return optimization.Choice{Options: vals}, nil
	}
}
