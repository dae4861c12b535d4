package search

import (
	"sync"

	"github.com/copyleftdev/FJORD/internal/optimization"
)

// CandidateEvaluator is the per-goroutine view of a model evaluator.
// Implementations do not need to be safe for concurrent use; batch
// drivers hand each evaluator to one goroutine at a time.
type CandidateEvaluator interface {
	Objective(optimization.Assignment) (float64, error)
	Feasible(optimization.Assignment) (bool, error)
}

// EvaluatorPool recycles evaluators between batch evaluations to avoid
// minting one per candidate
type EvaluatorPool struct {
	mu   sync.Mutex
	free []CandidateEvaluator
	mint func() CandidateEvaluator
}

// NewEvaluatorPool creates a pool backed by mint, which must return a
// fresh evaluator that is independent of all previously minted ones
func NewEvaluatorPool(mint func() CandidateEvaluator) *EvaluatorPool {
	return &EvaluatorPool{
		free: make([]CandidateEvaluator, 0, 4),
		mint: mint,
	}
}

// Get returns a free evaluator, minting a new one if none are available
func (p *EvaluatorPool) Get() CandidateEvaluator {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		ev := p.free[n-1]
		p.free = p.free[:n-1]
		return ev
	}
	return p.mint()
}

// Put returns an evaluator to the pool for reuse
func (p *EvaluatorPool) Put(ev CandidateEvaluator) {
	if ev == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, ev)
}

// screenEvaluator is the evaluator-backed variant of screen
func screenEvaluator(ev CandidateEvaluator, candidate optimization.Assignment) (float64, error) {
	ok, err := ev.Feasible(candidate)
	if err != nil {
		return 0, err
	}
	if !ok {
		return InfeasiblePenalty, nil
	}
	return ev.Objective(candidate)
}
