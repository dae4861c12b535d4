// Package problems carries the built-in reference models exposed by
// the server catalog and the CLI. The set is small but spans every
// domain kind the adapter translates: continuous boxes, binary
// indicators and indexed constraint families.
package problems

import (
	"sort"

	"github.com/copyleftdev/FJORD/internal/model"
	"github.com/copyleftdev/FJORD/internal/optimization"
)

// Builder constructs a fresh instance of a reference model
type Builder func() *model.Model

var registry = map[string]Builder{
	"rosenbrock": Rosenbrock,
	"knapsack":   Knapsack,
	"pmedian":    func() *model.Model { return PMedian(3, 4, 3) },
}

// Names returns the registered problem names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get builds a fresh instance of the named problem. Every call returns
// an independent model, so callers may solve concurrently.
func Get(name string) (*model.Model, error) {
	builder, ok := registry[name]
	if !ok {
		return nil, optimization.NewErrorf("unknown problem %q", name).WithComponent("problems")
	}
	return builder(), nil
}
