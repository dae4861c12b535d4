package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/FJORD/internal/adapter"
	"github.com/copyleftdev/FJORD/internal/logging"
	"github.com/copyleftdev/FJORD/internal/problems"
	"github.com/copyleftdev/FJORD/internal/scenario"
	"github.com/copyleftdev/FJORD/internal/search"
)

var (
	scenarioPath string
	problemName  string
	driverName   string
	iterations   int
	seed         int64
	workers      int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a built-in problem with a search driver",
	Long: `Adapts the named problem's model into search callables and runs the
chosen driver against it. The run can be described by flags or by a
scenario file; when both are given the scenario file wins.`,
	RunE: runSearch,
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario file describing the run (overrides the other flags)")
	runCmd.Flags().StringVar(&problemName, "problem", "", "Problem to solve (see the problems command)")
	runCmd.Flags().StringVar(&driverName, "driver", search.DriverRandom, "Search driver: bayesian, mayfly, neldermead or random")
	runCmd.Flags().IntVar(&iterations, "iterations", 200, "Iteration budget")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "Parallel evaluation goroutines (random driver only)")

	rootCmd.AddCommand(runCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario()
	if err != nil {
		return err
	}

	m, err := problems.Get(sc.Problem)
	if err != nil {
		return err
	}

	ad, err := adapter.New(m)
	if err != nil {
		return fmt.Errorf("model cannot be adapted: %w", err)
	}

	config := sc.SearchConfig()
	config.Objective = ad.Objective()
	config.Constraints = ad.Constraints()
	config.Space = ad.Space()

	searcher, err := search.NewSearcher(sc.Driver, config)
	if err != nil {
		return err
	}
	if rs, ok := searcher.(*search.RandomSearch); ok && sc.Workers > 1 {
		rs.WithPool(search.NewEvaluatorPool(func() search.CandidateEvaluator {
			return ad.Evaluator()
		}))
	}
	if gs, ok := searcher.(*search.BayesianSearch); ok {
		gs.WithSurrogateLogger(logging.NewZapLogger(logger.WithComponent("surrogate")))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Search started", map[string]interface{}{
		"problem":        sc.Problem,
		"driver":         sc.Driver,
		"max_iterations": sc.MaxIterations,
		"workers":        sc.Workers,
		"seed":           sc.Seed,
	})

	start := time.Now()
	result, err := searcher.Optimize(ctx, config)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	logger.Info("Search complete", map[string]interface{}{
		"iterations": result.Iterations,
		"converged":  result.Converged,
		"elapsed":    time.Since(start).String(),
	})

	if result.BestSolution == nil {
		fmt.Println("No solution found")
		return nil
	}

	fmt.Printf("Problem:    %s\n", sc.Problem)
	fmt.Printf("Driver:     %s\n", sc.Driver)
	fmt.Printf("Iterations: %d\n", result.Iterations)
	fmt.Printf("Converged:  %t\n", result.Converged)
	fmt.Printf("Best value: %g\n", result.BestSolution.Value)
	fmt.Println("Assignment:")
	for _, name := range ad.Space().Names() {
		fmt.Printf("  %s = %g\n", name, result.BestSolution.Assignment[name])
	}

	return nil
}

// loadScenario resolves the run description from either the scenario
// file or the individual flags
func loadScenario() (*scenario.Scenario, error) {
	if scenarioPath != "" {
		return scenario.Load(scenarioPath)
	}
	if problemName == "" {
		return nil, fmt.Errorf("either --problem or --scenario is required")
	}
	return scenario.New(problemName, driverName, iterations, seed, workers)
}
