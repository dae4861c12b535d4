// Package scenario describes a solve run as data: which problem to
// build, which driver to run and with what budget. Scenario files are
// YAML documents consumed by the CLI; the same payload shape is
// accepted by the solve endpoints.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/FJORD/internal/optimization"
	"github.com/copyleftdev/FJORD/internal/search"
)

// Scenario is one solve run description
type Scenario struct {
	Problem       string `yaml:"problem"`
	Driver        string `yaml:"driver,omitempty"` // bayesian, mayfly, neldermead, random
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	Seed          int64  `yaml:"seed,omitempty"`
	Workers       int    `yaml:"workers,omitempty"`
}

// Parse parses a Scenario from YAML bytes, applies defaults and
// validates it. This is used where the scenario arrives as payload
// rather than via the filesystem.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario yaml: %w", err)
	}

	sc.applyDefaults()
	if err := validate(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &sc, nil
}

// ParseString parses a Scenario from a YAML string
func ParseString(yamlText string) (*Scenario, error) {
	return Parse([]byte(yamlText))
}

// New builds a Scenario from explicit run parameters, applying the
// same defaults and validation as Parse
func New(problem, driver string, maxIterations int, seed int64, workers int) (*Scenario, error) {
	sc := &Scenario{
		Problem:       problem,
		Driver:        driver,
		MaxIterations: maxIterations,
		Seed:          seed,
		Workers:       workers,
	}

	sc.applyDefaults()
	if err := validate(sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return sc, nil
}

// Load loads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return sc, nil
}

// SearchConfig converts the run parameters into a driver configuration.
// The objective and feasibility callables are attached by the caller
// once the problem's model has been adapted.
func (s *Scenario) SearchConfig() optimization.SearchConfig {
	return optimization.SearchConfig{
		MaxIterations: s.MaxIterations,
		RandomSeed:    s.Seed,
		Workers:       s.Workers,
	}
}

func (s *Scenario) applyDefaults() {
	if s.Driver == "" {
		s.Driver = search.DriverRandom
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = 200
	}
	if s.Workers == 0 {
		s.Workers = 1
	}
}

// validate performs validation on the scenario
func validate(s *Scenario) error {
	if s.Problem == "" {
		return fmt.Errorf("problem cannot be empty")
	}

	validDrivers := make(map[string]bool)
	for _, name := range search.Drivers() {
		validDrivers[name] = true
	}
	if !validDrivers[s.Driver] {
		return fmt.Errorf("invalid driver: %s (must be one of %s)", s.Driver, strings.Join(search.Drivers(), ", "))
	}

	if s.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive, got %d", s.MaxIterations)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}

	return nil
}
