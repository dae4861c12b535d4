package adapter

import "fmt"

// UnsupportedModelError indicates the input model cannot be adapted at
// all, for example a nil model.
type UnsupportedModelError struct {
	Reason string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("unsupported model: %s", e.Reason)
}

// UnsupportedDomainError indicates a variable whose domain has no
// parameter mapping, or a fixed variable.
type UnsupportedDomainError struct {
	Var    string
	Domain string
}

func (e *UnsupportedDomainError) Error() string {
	return fmt.Sprintf("variable %s has unsupported domain %s", e.Var, e.Domain)
}

// MissingObjectiveError indicates the model has no active objective.
type MissingObjectiveError struct {
	Model string
}

func (e *MissingObjectiveError) Error() string {
	return fmt.Sprintf("model %q has no active objective", e.Model)
}

// MultipleObjectivesError indicates the model has more than one active
// objective; only single-objective models are supported.
type MultipleObjectivesError struct {
	Model string
	Count int
}

func (e *MultipleObjectivesError) Error() string {
	return fmt.Sprintf("model %q has %d active objectives, want exactly one", e.Model, e.Count)
}

// UnsupportedConstraintError indicates a constraint shape that cannot
// be evaluated as a feasibility predicate.
type UnsupportedConstraintError struct {
	Constraint string
	Reason     string
}

func (e *UnsupportedConstraintError) Error() string {
	return fmt.Sprintf("constraint %q is unsupported: %s", e.Constraint, e.Reason)
}
