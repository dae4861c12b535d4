package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Var is a decision variable handle. Handles are immutable and shared
// between a model and its clones; the variable's current value lives in
// the owning model instance.
type Var struct {
	name string
	base string
	key  any
	slot int
	dom  Domain
}

// Name returns the canonical rendered name. For indexed variables the
// index is embedded: string keys are quoted (`x["hammer"]`), numeric
// keys are bare (`x[3]`), multi-part keys are comma-joined (`x[0,2]`).
func (v *Var) Name() string {
	return v.name
}

// Base returns the family name without any index.
func (v *Var) Base() string {
	return v.base
}

// Key returns the index key, or nil for a scalar variable.
func (v *Var) Key() any {
	return v.key
}

// Domain returns the variable's declared domain.
func (v *Var) Domain() Domain {
	return v.dom
}

func (v *Var) eval(vals []float64) float64 {
	return vals[v.slot]
}

func (v *Var) String() string {
	return v.name
}

// renderKey produces the canonical index rendering for a key. Quoting
// string parts keeps names unambiguous: x["1"] and x[1] are distinct.
func renderKey(key any) string {
	switch k := key.(type) {
	case string:
		return strconv.Quote(k)
	case int:
		return strconv.Itoa(k)
	case []any:
		parts := make([]string, len(k))
		for i, p := range k {
			parts[i] = renderKey(p)
		}
		return strings.Join(parts, ",")
	default:
		panic(fmt.Sprintf("model: unsupported index key type %T", key))
	}
}

// VarGroup is an indexed variable family. Members keep their
// declaration order.
type VarGroup struct {
	name  string
	vars  []*Var
	byKey map[string]*Var
}

// Name returns the family name.
func (g *VarGroup) Name() string {
	return g.name
}

// Vars returns the member variables in declaration order.
func (g *VarGroup) Vars() []*Var {
	out := make([]*Var, len(g.vars))
	copy(out, g.vars)
	return out
}

// Len returns the number of members.
func (g *VarGroup) Len() int {
	return len(g.vars)
}

// At returns the member for the given key. Multi-part keys are passed
// as separate arguments: g.At(0, 2). Panics if no member has the key.
func (g *VarGroup) At(parts ...any) *Var {
	var key any
	switch len(parts) {
	case 0:
		panic("model: At requires at least one key part")
	case 1:
		key = parts[0]
	default:
		key = parts
	}
	v, ok := g.byKey[renderKey(key)]
	if !ok {
		panic(fmt.Sprintf("model: no member %s[%s]", g.name, renderKey(key)))
	}
	return v
}

// StringKeys converts names to a key slice for AddVars.
func StringKeys(names ...string) []any {
	keys := make([]any, len(names))
	for i, n := range names {
		keys[i] = n
	}
	return keys
}

// IntKeys returns the key slice 0, 1, ..., n-1 for AddVars.
func IntKeys(n int) []any {
	keys := make([]any, n)
	for i := range keys {
		keys[i] = i
	}
	return keys
}

// PairKeys returns the key slice (0,0), (0,1), ..., (n-1,m-1) in row
// major order for AddVars.
func PairKeys(n, m int) []any {
	keys := make([]any, 0, n*m)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			keys = append(keys, []any{i, j})
		}
	}
	return keys
}
