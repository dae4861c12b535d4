// Package server implements the HTTP and JSON-RPC surface of the FJORD
// solve service. It manages asynchronous solve jobs over the problem
// registry: each job adapts a registry model into a parameter space and
// callables, hands them to a search driver, and tracks the run in a
// shared state map.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/FJORD/internal/adapter"
	"github.com/copyleftdev/FJORD/internal/config"
	"github.com/copyleftdev/FJORD/internal/errors"
	"github.com/copyleftdev/FJORD/internal/logging"
	"github.com/copyleftdev/FJORD/internal/optimization"
	"github.com/copyleftdev/FJORD/internal/problems"
	"github.com/copyleftdev/FJORD/internal/search"
)

// Solve job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// SolveState tracks one solve job. The server's mutex guards every
// field; the embedded searcher is only read once done is set, because
// drivers update their history without locking while they run.
type SolveState struct {
	ID            string
	Problem       string
	Driver        string
	MaxIterations int
	Status        string
	Error         string
	StartTime     time.Time
	EndTime       *time.Time
	Progress      float64
	BestSolution  *optimization.Solution
	Searcher      optimization.Searcher
	CancelFunc    context.CancelFunc
	LastUpdated   time.Time

	done bool
}

// solveRequest is the request body for starting a solve, shared by the
// REST and JSON-RPC surfaces.
type solveRequest struct {
	Problem       string `json:"problem"`
	Driver        string `json:"driver,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty"`
	Seed          int64  `json:"seed,omitempty"`
	Workers       int    `json:"workers,omitempty"`
}

// Server manages solve jobs and serves their REST and JSON-RPC APIs.
type Server struct {
	cfg    *config.Config
	logger *logging.Logger
	zlog   *zap.Logger

	solves   map[string]*SolveState
	solvesMu sync.RWMutex
}

// NewServer creates a server over the given config and logger. Solve
// lifecycle events are logged through a zap bridge sharing the logger's
// sink.
func NewServer(cfg *config.Config, logger *logging.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		zlog:   logging.NewZapLogger(logger.WithComponent("solve")),
		solves: make(map[string]*SolveState),
	}
}

// RegisterRoutes mounts the API on the given router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolveStart)
		r.Get("/solve/{id}", s.handleSolveStatus)
		r.Delete("/solve/{id}", s.handleSolveCancel)
		r.Get("/problems", s.handleProblems)
		r.Get("/problems/{name}/space", s.handleProblemSpace)
	})

	r.Post("/rpc", s.handleJSONRPC)
}

// startSolve validates the request, builds the adapter and driver, and
// launches the solve goroutine. The returned state is already stored.
func (s *Server) startSolve(req solveRequest) (*SolveState, error) {
	if req.Problem == "" {
		return nil, errors.New(errors.CodeInvalid, "problem is required")
	}

	m, err := problems.Get(req.Problem)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalid, "invalid solve request")
	}

	ad, err := adapter.New(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalid, "model cannot be adapted")
	}

	driver := req.Driver
	if driver == "" {
		driver = s.cfg.Search.DefaultDriver
	}
	iterations := req.MaxIterations
	if iterations < 1 {
		iterations = s.cfg.Search.DefaultIterations
	}
	workers := req.Workers
	if workers < 1 {
		workers = s.cfg.Search.WorkerCount
	}

	searchCfg := optimization.SearchConfig{
		Objective:     ad.Objective(),
		Constraints:   ad.Constraints(),
		Space:         ad.Space(),
		MaxIterations: iterations,
		RandomSeed:    req.Seed,
		Workers:       workers,
	}

	searcher, err := search.NewSearcher(driver, searchCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalid, "invalid solve request")
	}
	if rs, ok := searcher.(*search.RandomSearch); ok && workers > 1 {
		rs.WithPool(search.NewEvaluatorPool(func() search.CandidateEvaluator {
			return ad.Evaluator()
		}))
	}
	if gs, ok := searcher.(*search.BayesianSearch); ok {
		gs.WithSurrogateLogger(s.zlog)
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	state := &SolveState{
		ID:            uuid.New().String(),
		Problem:       req.Problem,
		Driver:        driver,
		MaxIterations: iterations,
		Status:        StatusPending,
		StartTime:     now,
		Searcher:      searcher,
		CancelFunc:    cancel,
		LastUpdated:   now,
	}

	s.solvesMu.Lock()
	s.solves[state.ID] = state
	s.solvesMu.Unlock()

	solvesStarted.Inc()
	go s.runSolve(ctx, state, searchCfg)

	return state, nil
}

// runSolve executes one solve job in its own goroutine and records the
// outcome.
func (s *Server) runSolve(ctx context.Context, state *SolveState, cfg optimization.SearchConfig) {
	s.solvesMu.Lock()
	if state.Status == StatusCancelled {
		// Cancelled before the goroutine was scheduled
		state.done = true
		s.solvesMu.Unlock()
		return
	}
	state.Status = StatusRunning
	state.LastUpdated = time.Now()
	s.solvesMu.Unlock()

	s.zlog.Info("solve started",
		zap.String("solve_id", state.ID),
		zap.String("problem", state.Problem),
		zap.String("driver", state.Driver),
		zap.Int("max_iterations", cfg.MaxIterations),
		zap.Int("workers", cfg.Workers),
	)

	result, err := state.Searcher.Optimize(ctx, cfg)

	s.solvesMu.Lock()
	defer s.solvesMu.Unlock()

	switch {
	case state.Status == StatusCancelled:
		// The cancel handler already recorded the terminal state
		s.zlog.Info("solve cancelled",
			zap.String("solve_id", state.ID),
			zap.Duration("elapsed", time.Since(state.StartTime)),
		)
	case err != nil:
		state.Status = StatusFailed
		state.Error = err.Error()
		solvesFailed.Inc()
		s.zlog.Error("solve failed",
			zap.String("solve_id", state.ID),
			zap.String("problem", state.Problem),
			zap.Error(err),
		)
	default:
		state.Status = StatusCompleted
		state.BestSolution = result.BestSolution
		state.Progress = 1
		solvesCompleted.Inc()
		s.zlog.Info("solve completed",
			zap.String("solve_id", state.ID),
			zap.String("problem", state.Problem),
			zap.Float64("best_value", result.BestSolution.Value),
			zap.Int("iterations", result.Iterations),
			zap.Bool("converged", result.Converged),
		)
	}

	now := time.Now()
	if state.EndTime == nil {
		state.EndTime = &now
	}
	state.LastUpdated = now
	state.done = true
}

// solveStatus builds the status document for a job. History and live
// best are included only once the solve goroutine has finished.
func (s *Server) solveStatus(id string) (map[string]interface{}, error) {
	s.solvesMu.RLock()
	defer s.solvesMu.RUnlock()

	state, ok := s.solves[id]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "solve %s not found", id)
	}

	doc := map[string]interface{}{
		"solve_id":    state.ID,
		"problem":     state.Problem,
		"driver":      state.Driver,
		"status":      state.Status,
		"progress":    state.Progress,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.Error != "" {
		doc["error"] = state.Error
	}
	if state.EndTime != nil {
		doc["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.BestSolution != nil {
		doc["best_solution"] = solutionDoc(state.BestSolution)
	}

	if state.done {
		history := state.Searcher.GetHistory()
		doc["evaluations"] = len(history)
		if summary := summarizeHistory(history); summary != nil {
			doc["history"] = summary
		}
		if state.BestSolution == nil {
			if best := state.Searcher.GetBestSolution(); best != nil {
				doc["current_best"] = solutionDoc(best)
			}
		}
	}

	return doc, nil
}

// cancelSolve moves a non-terminal job to cancelled and signals its
// context.
func (s *Server) cancelSolve(id string) error {
	s.solvesMu.Lock()
	defer s.solvesMu.Unlock()

	state, ok := s.solves[id]
	if !ok {
		return errors.Newf(errors.CodeNotFound, "solve %s not found", id)
	}

	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return errors.Newf(errors.CodeConflict, "cannot cancel solve with status %s", state.Status)
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}

	now := time.Now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Solve cancelled", map[string]interface{}{"solve_id": id})
	return nil
}

// solutionDoc renders a solution for transport.
func solutionDoc(sol *optimization.Solution) map[string]interface{} {
	return map[string]interface{}{
		"assignment": sol.Assignment,
		"value":      sol.Value,
	}
}

// summarizeHistory condenses an evaluation trace into summary
// statistics so status responses stay small for long runs. Non-finite
// values are excluded; they would break JSON encoding.
func summarizeHistory(history []optimization.Evaluation) map[string]interface{} {
	values := make([]float64, 0, len(history))
	for _, ev := range history {
		if ev.Solution == nil {
			continue
		}
		if math.IsInf(ev.Solution.Value, 0) || math.IsNaN(ev.Solution.Value) {
			continue
		}
		values = append(values, ev.Solution.Value)
	}
	if len(values) == 0 {
		return nil
	}

	summary := map[string]interface{}{
		"count":      len(values),
		"mean_value": stat.Mean(values, nil),
		"min_value":  floats.Min(values),
		"max_value":  floats.Max(values),
	}
	if len(values) > 1 {
		summary["stddev_value"] = stat.StdDev(values, nil)
	}
	return summary
}

// spaceDoc renders a parameter space for transport, in declaration
// order.
func spaceDoc(space *optimization.Space) []map[string]interface{} {
	names := space.Names()
	out := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		p, ok := space.Get(name)
		if !ok {
			continue
		}
		entry := map[string]interface{}{"name": name}
		switch p := p.(type) {
		case optimization.Scalar:
			if p.Integer {
				entry["type"] = "integer"
			} else {
				entry["type"] = "scalar"
			}
			entry["lower"] = p.Lower
			entry["upper"] = p.Upper
		case optimization.Choice:
			entry["type"] = "choice"
			entry["options"] = p.Options
		}
		out = append(out, entry)
	}
	return out
}

// handleSolveStart handles POST /api/v1/solve.
func (s *Server) handleSolveStart(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(err, errors.CodeInvalid, "invalid request body"))
		return
	}

	state, err := s.startSolve(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The solve goroutine owns state.Status from here on
	s.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"solve_id": state.ID,
		"status":   StatusPending,
	})
}

// handleSolveStatus handles GET /api/v1/solve/{id}.
func (s *Server) handleSolveStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.solveStatus(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleSolveCancel handles DELETE /api/v1/solve/{id}.
func (s *Server) handleSolveCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cancelSolve(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cancellation requested"})
}

// handleProblems handles GET /api/v1/problems.
func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"problems": problems.Names(),
	})
}

// handleProblemSpace handles GET /api/v1/problems/{name}/space.
func (s *Server) handleProblemSpace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	m, err := problems.Get(name)
	if err != nil {
		s.writeError(w, errors.Wrap(err, errors.CodeNotFound, "unknown problem"))
		return
	}

	ad, err := adapter.New(m)
	if err != nil {
		s.writeError(w, errors.Wrap(err, errors.CodeInternal, "registry model cannot be adapted"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"problem":    name,
		"parameters": spaceDoc(ad.Space()),
	})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

// writeError maps a classified error onto its HTTP status and writes
// the standard error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJSON(w, errors.HTTPStatus(err), map[string]string{"error": err.Error()})
}

// Close cancels every live solve job.
func (s *Server) Close() error {
	s.solvesMu.Lock()
	defer s.solvesMu.Unlock()

	for _, state := range s.solves {
		if state.CancelFunc != nil {
			state.CancelFunc()
		}
	}
	return nil
}
