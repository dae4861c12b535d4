package optimization

import "fmt"

// Parameter is a search-space primitive consumed by search drivers.
// The taxonomy is closed: Scalar and Choice are the only implementations.
type Parameter interface {
	isParameter()
}

// Scalar is a bounded numeric parameter. Integer marks the parameter
// as integer-valued; candidates are rounded before evaluation.
type Scalar struct {
	Lower, Upper float64
	Integer      bool
}

func (Scalar) isParameter() {}

// Choice is a categorical parameter over an explicit option list.
type Choice struct {
	Options []float64
}

func (Choice) isParameter() {}

// Space is an ordered mapping of parameter names to parameters. The
// order is the declaration order of the underlying model variables, so
// vectorized drivers see a stable dimension layout.
type Space struct {
	names  []string
	params map[string]Parameter
}

// NewSpace returns an empty space.
func NewSpace() *Space {
	return &Space{params: make(map[string]Parameter)}
}

// Add appends a named parameter. Duplicate names are rejected.
func (s *Space) Add(name string, p Parameter) error {
	if _, ok := s.params[name]; ok {
		return NewErrorf("duplicate parameter %q", name).WithComponent("space")
	}
	s.names = append(s.names, name)
	s.params[name] = p
	return nil
}

// Names returns the parameter names in declaration order.
func (s *Space) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the parameter with the given name.
func (s *Space) Get(name string) (Parameter, bool) {
	p, ok := s.params[name]
	return p, ok
}

// Len returns the number of parameters.
func (s *Space) Len() int {
	return len(s.names)
}

// Assignment maps canonical parameter names to candidate values.
type Assignment map[string]float64

// Clone returns a copy of the assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Validate checks that the assignment covers every parameter of the
// space exactly: no missing names, no unknown names.
func (a Assignment) Validate(s *Space) error {
	for _, name := range s.names {
		if _, ok := a[name]; !ok {
			return NewErrorf("assignment missing parameter %q", name).WithComponent("space")
		}
	}
	if len(a) != s.Len() {
		for name := range a {
			if _, ok := s.params[name]; !ok {
				return NewErrorf("assignment has unknown parameter %q", name).WithComponent("space")
			}
		}
	}
	return nil
}

func (a Assignment) String() string {
	return fmt.Sprintf("%v", map[string]float64(a))
}
