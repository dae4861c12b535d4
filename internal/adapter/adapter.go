// Package adapter translates declarative optimization models into the
// black-box search interface: a parameter space derived from variable
// domains, a minimization-oriented objective callable, and one
// feasibility callable per constraint. Construction is fail-fast; an
// adapter is never partially built.
package adapter

import (
	"fmt"
	"strings"

	"github.com/copyleftdev/FJORD/internal/model"
	"github.com/copyleftdev/FJORD/internal/optimization"
)

// Adapter owns a private clone of the input model and evaluates
// candidate assignments against it. Values are injected through a
// name-to-variable resolution table built once at construction.
//
// Evaluation mutates the owned clone, so calls against one Adapter must
// be serialized; use Evaluator for concurrent evaluation.
type Adapter struct {
	m       *model.Model
	space   *optimization.Space
	resolve map[string]*model.Var
	obj     *model.Objective
	cons    []*model.Constraint
	tag     string
}

// New builds an adapter over a clone of the given model. The model must
// declare at least one variable with a supported, non-fixed domain and
// exactly one active objective.
func New(src *model.Model) (*Adapter, error) {
	if src == nil {
		return nil, &UnsupportedModelError{Reason: "nil model"}
	}
	m := src.Clone()
	a := &Adapter{
		m:       m,
		space:   optimization.NewSpace(),
		resolve: make(map[string]*model.Var, m.NumVars()),
	}

	for _, v := range m.Vars() {
		p, err := translateDomain(m, v)
		if err != nil {
			return nil, err
		}
		if err := a.space.Add(v.Name(), p); err != nil {
			return nil, err
		}
		a.resolve[v.Name()] = v
	}
	if a.space.Len() == 0 {
		return nil, &UnsupportedModelError{Reason: "model declares no variables"}
	}

	var active []*model.Objective
	for _, o := range m.Objectives() {
		if o.Active() {
			active = append(active, o)
		}
	}
	switch len(active) {
	case 0:
		return nil, &MissingObjectiveError{Model: m.Name()}
	case 1:
		a.obj = active[0]
	default:
		return nil, &MultipleObjectivesError{Model: m.Name(), Count: len(active)}
	}

	for _, c := range m.Constraints() {
		if !c.Active() {
			continue
		}
		if c.Size() == 0 {
			return nil, &UnsupportedConstraintError{Constraint: c.Name(), Reason: "no relations"}
		}
		a.cons = append(a.cons, c)
	}

	a.tag = buildTag(a.obj, m.Vars(), a.cons)
	return a, nil
}

// buildTag derives the experiment identifier: objective name, variable
// family names and constraint names, comma-joined per segment with
// segments pipe-joined.
func buildTag(obj *model.Objective, vars []*model.Var, cons []*model.Constraint) string {
	families := make([]string, 0, len(vars))
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if _, ok := seen[v.Base()]; ok {
			continue
		}
		seen[v.Base()] = struct{}{}
		families = append(families, v.Base())
	}
	names := make([]string, 0, len(cons))
	for _, c := range cons {
		names = append(names, c.Name())
	}
	return obj.Name() + "|" + strings.Join(families, ",") + "|" + strings.Join(names, ",")
}

// Name returns the experiment identifier for bookkeeping.
func (a *Adapter) Name() string {
	return a.tag
}

// Space returns the derived parameter space.
func (a *Adapter) Space() *optimization.Space {
	return a.space
}

// NumConstraints returns the number of active constraints.
func (a *Adapter) NumConstraints() int {
	return len(a.cons)
}

// inject pushes a full assignment into the owned model through the
// resolution table. The assignment must cover every parameter exactly.
func (a *Adapter) inject(assignment optimization.Assignment) error {
	if err := assignment.Validate(a.space); err != nil {
		return err
	}
	for name, value := range assignment {
		a.m.SetValue(a.resolve[name], value)
	}
	return nil
}

// Objective returns the objective callable. It injects the assignment,
// evaluates the active objective expression and multiplies by the
// declared sense, so maximization becomes negated minimization.
func (a *Adapter) Objective() optimization.ObjectiveFunc {
	return func(assignment optimization.Assignment) (float64, error) {
		if err := a.inject(assignment); err != nil {
			return 0, err
		}
		return a.m.EvalExpr(a.obj.Expr()) * float64(a.obj.Sense()), nil
	}
}

// Constraint returns the feasibility callable for constraint i. An
// indexed constraint is satisfied only if every member relation holds;
// evaluation stops at the first violation. A callable for an index
// with no constraint fails when invoked.
func (a *Adapter) Constraint(i int) optimization.FeasibilityFunc {
	if i < 0 || i >= len(a.cons) {
		return func(optimization.Assignment) (bool, error) {
			return false, &UnsupportedConstraintError{
				Constraint: fmt.Sprintf("#%d", i),
				Reason:     "no such constraint",
			}
		}
	}
	c := a.cons[i]
	return func(assignment optimization.Assignment) (bool, error) {
		if err := a.inject(assignment); err != nil {
			return false, err
		}
		for _, rel := range c.Relations() {
			if !a.m.Satisfied(rel) {
				return false, nil
			}
		}
		return true, nil
	}
}

// Constraints returns one feasibility callable per active constraint,
// in declaration order.
func (a *Adapter) Constraints() []optimization.FeasibilityFunc {
	out := make([]optimization.FeasibilityFunc, len(a.cons))
	for i := range a.cons {
		out[i] = a.Constraint(i)
	}
	return out
}

// Evaluator returns an independent evaluator over a fresh clone of the
// adapted model. Evaluators share the parameter space and resolution
// semantics but never share mutable state, so each can be driven by its
// own goroutine.
func (a *Adapter) Evaluator() *Evaluator {
	return &Evaluator{
		m:       a.m.Clone(),
		space:   a.space,
		resolve: a.resolve,
		obj:     a.obj,
		cons:    a.cons,
	}
}

// Evaluator evaluates candidates against a private model clone.
type Evaluator struct {
	m       *model.Model
	space   *optimization.Space
	resolve map[string]*model.Var
	obj     *model.Objective
	cons    []*model.Constraint
}

func (e *Evaluator) inject(assignment optimization.Assignment) error {
	if err := assignment.Validate(e.space); err != nil {
		return err
	}
	for name, value := range assignment {
		e.m.SetValue(e.resolve[name], value)
	}
	return nil
}

// Objective evaluates the objective for the assignment, minimization
// oriented.
func (e *Evaluator) Objective(assignment optimization.Assignment) (float64, error) {
	if err := e.inject(assignment); err != nil {
		return 0, err
	}
	return e.m.EvalExpr(e.obj.Expr()) * float64(e.obj.Sense()), nil
}

// Feasible reports whether the assignment satisfies every active
// constraint.
func (e *Evaluator) Feasible(assignment optimization.Assignment) (bool, error) {
	if err := e.inject(assignment); err != nil {
		return false, err
	}
	for _, c := range e.cons {
		for _, rel := range c.Relations() {
			if !e.m.Satisfied(rel) {
				return false, nil
			}
		}
	}
	return true, nil
}
