// Package model provides a declarative layer for numeric optimization
// problems: typed decision variables, arithmetic expressions, named
// objectives and constraints. Models are concrete value holders; the
// immutable structure (variables, domains, expression trees) is shared
// between a model and its clones while values, fixed flags and activity
// flags are per instance.
package model

import "fmt"

// Sense is an objective direction. The numeric values follow the usual
// convention so that value*sense is always minimization oriented.
type Sense int

const (
	Minimize Sense = 1
	Maximize Sense = -1
)

func (s Sense) String() string {
	switch s {
	case Minimize:
		return "minimize"
	case Maximize:
		return "maximize"
	}
	return "unknown"
}

// Objective is a named expression with a direction and an activity
// flag. Activity is per model instance.
type Objective struct {
	name   string
	expr   Expr
	sense  Sense
	active bool
}

// Name returns the objective's name.
func (o *Objective) Name() string { return o.name }

// Expr returns the objective's expression.
func (o *Objective) Expr() Expr { return o.expr }

// Sense returns the objective's direction.
func (o *Objective) Sense() Sense { return o.sense }

// Active reports whether the objective participates in the model.
func (o *Objective) Active() bool { return o.active }

// Activate marks the objective active.
func (o *Objective) Activate() { o.active = true }

// Deactivate marks the objective inactive.
func (o *Objective) Deactivate() { o.active = false }

// Constraint is a named relation family with an activity flag. A
// scalar constraint has a single relation; an indexed constraint holds
// one relation per index.
type Constraint struct {
	name   string
	rels   []Relation
	active bool
}

// Name returns the constraint's name.
func (c *Constraint) Name() string { return c.name }

// Relations returns the member relations in declaration order.
func (c *Constraint) Relations() []Relation {
	out := make([]Relation, len(c.rels))
	copy(out, c.rels)
	return out
}

// Size returns the number of member relations.
func (c *Constraint) Size() int { return len(c.rels) }

// Active reports whether the constraint participates in the model.
func (c *Constraint) Active() bool { return c.active }

// Activate marks the constraint active.
func (c *Constraint) Activate() { c.active = true }

// Deactivate marks the constraint inactive.
func (c *Constraint) Deactivate() { c.active = false }

// Model is a named, fully instantiated optimization problem. Builder
// methods panic on structural misuse (duplicate names, nil domains,
// unsupported key types), matching the construction-time contract of
// the numeric libraries this package sits on.
type Model struct {
	name        string
	vars        []*Var
	names       map[string]struct{}
	objectives  []*Objective
	constraints []*Constraint
	vals        []float64
	fixed       []bool
}

// New returns an empty model with the given name.
func New(name string) *Model {
	return &Model{
		name:  name,
		names: make(map[string]struct{}),
	}
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// Vars returns all variables in declaration order.
func (m *Model) Vars() []*Var {
	out := make([]*Var, len(m.vars))
	copy(out, m.vars)
	return out
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// Objectives returns all objectives in declaration order.
func (m *Model) Objectives() []*Objective {
	out := make([]*Objective, len(m.objectives))
	copy(out, m.objectives)
	return out
}

// Constraints returns all constraints in declaration order.
func (m *Model) Constraints() []*Constraint {
	out := make([]*Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

func (m *Model) reserveName(name string) {
	if name == "" {
		panic("model: empty name")
	}
	if _, ok := m.names[name]; ok {
		panic(fmt.Sprintf("model: duplicate name %q", name))
	}
	m.names[name] = struct{}{}
}

func (m *Model) newVar(rendered, base string, key any, dom Domain) *Var {
	if dom == nil {
		panic(fmt.Sprintf("model: variable %q has nil domain", rendered))
	}
	m.reserveName(rendered)
	v := &Var{
		name: rendered,
		base: base,
		key:  key,
		slot: len(m.vars),
		dom:  dom,
	}
	m.vars = append(m.vars, v)
	m.vals = append(m.vals, 0)
	m.fixed = append(m.fixed, false)
	return v
}

// AddVar declares a scalar variable.
func (m *Model) AddVar(name string, dom Domain) *Var {
	return m.newVar(name, name, nil, dom)
}

// AddVars declares an indexed variable family with one member per key,
// in key order. Keys may be strings, ints, or []any composites.
func (m *Model) AddVars(name string, keys []any, dom Domain) *VarGroup {
	m.reserveName(name)
	g := &VarGroup{
		name:  name,
		byKey: make(map[string]*Var, len(keys)),
	}
	for _, key := range keys {
		rk := renderKey(key)
		v := m.newVar(fmt.Sprintf("%s[%s]", name, rk), name, key, dom)
		g.vars = append(g.vars, v)
		g.byKey[rk] = v
	}
	return g
}

func (m *Model) addObjective(name string, e Expr, sense Sense) *Objective {
	if e == nil {
		panic(fmt.Sprintf("model: objective %q has nil expression", name))
	}
	m.reserveName(name)
	o := &Objective{name: name, expr: e, sense: sense, active: true}
	m.objectives = append(m.objectives, o)
	return o
}

// Minimize declares an active minimization objective.
func (m *Model) Minimize(name string, e Expr) *Objective {
	return m.addObjective(name, e, Minimize)
}

// Maximize declares an active maximization objective.
func (m *Model) Maximize(name string, e Expr) *Objective {
	return m.addObjective(name, e, Maximize)
}

// AddConstraint declares an active scalar constraint.
func (m *Model) AddConstraint(name string, rel Relation) *Constraint {
	return m.AddConstraintList(name, []Relation{rel})
}

// AddConstraintList declares an active indexed constraint holding the
// given relations. The constraint is satisfied only if every relation
// holds.
func (m *Model) AddConstraintList(name string, rels []Relation) *Constraint {
	m.reserveName(name)
	c := &Constraint{name: name, rels: append([]Relation(nil), rels...), active: true}
	m.constraints = append(m.constraints, c)
	return c
}

// Value returns the variable's current value in this model instance.
func (m *Model) Value(v *Var) float64 {
	return m.vals[v.slot]
}

// SetValue assigns the variable's value in this model instance.
func (m *Model) SetValue(v *Var, x float64) {
	m.vals[v.slot] = x
}

// Fix pins the variable to the given value. Fixed variables are
// excluded from search spaces.
func (m *Model) Fix(v *Var, x float64) {
	m.vals[v.slot] = x
	m.fixed[v.slot] = true
}

// Unfix releases a fixed variable.
func (m *Model) Unfix(v *Var) {
	m.fixed[v.slot] = false
}

// IsFixed reports whether the variable is fixed in this model instance.
func (m *Model) IsFixed(v *Var) bool {
	return m.fixed[v.slot]
}

// EvalExpr evaluates the expression against this instance's values.
func (m *Model) EvalExpr(e Expr) float64 {
	return e.eval(m.vals)
}

// Satisfied evaluates the relation against this instance's values.
func (m *Model) Satisfied(r Relation) bool {
	return r.holds(m.vals)
}

// Clone returns an independent copy of the model. Variable handles,
// domains and expression trees are shared; values, fixed flags and
// objective/constraint activity are copied so the clone evaluates and
// grows independently.
func (m *Model) Clone() *Model {
	c := &Model{
		name:  m.name,
		vars:  append([]*Var(nil), m.vars...),
		names: make(map[string]struct{}, len(m.names)),
		vals:  append([]float64(nil), m.vals...),
		fixed: append([]bool(nil), m.fixed...),
	}
	for n := range m.names {
		c.names[n] = struct{}{}
	}
	c.objectives = make([]*Objective, len(m.objectives))
	for i, o := range m.objectives {
		oc := *o
		c.objectives[i] = &oc
	}
	c.constraints = make([]*Constraint, len(m.constraints))
	for i, cn := range m.constraints {
		cc := *cn
		c.constraints[i] = &cc
	}
	return c
}
