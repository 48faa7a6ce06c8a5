package automation

import (
	"context"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/experiment"
	"github.com/san-kum/etrack/internal/storage"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies the
// non-zero overrides. Save stores the run when a store is given.
type ScenarioStep struct {
	Preset    string    `yaml:"preset"`
	Kind      string    `yaml:"kind"`
	Method    string    `yaml:"method"`
	CFL       float64   `yaml:"cfl"`
	Rotations float64   `yaml:"rotations"`
	Speed     float64   `yaml:"speed"`
	Tau       float64   `yaml:"tau"`
	B         []float64 `yaml:"b,flow"`
	Save      bool      `yaml:"save"`
}

// StepResult is the outcome of one scenario step. RunID is empty for
// unsaved runs.
type StepResult struct {
	Step       int
	RunID      string
	Trajectory *dynamo.Trajectory
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Config builds the configuration of a step.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Kind != "" {
		cfg.Solver.Kind = s.Kind
	}
	if s.Method != "" {
		cfg.Solver.Method = s.Method
	}
	if s.CFL != 0 {
		cfg.Solver.CFL = s.CFL
	}
	if s.Rotations != 0 {
		cfg.Solver.Rotations = s.Rotations
	}
	if s.Speed != 0 {
		cfg.Init.Speed = s.Speed
		cfg.Init.KineticKeV = 0
	}
	if s.Tau != 0 {
		cfg.Particle.Tau = s.Tau
	}
	if len(s.B) > 0 {
		cfg.Field.B = s.B
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
// store may be nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		tr, err := exp.Run()
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		res := StepResult{Step: i + 1, Trajectory: tr}
		if step.Save && store != nil {
			if res.RunID, err = store.Save(cfg, tr); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// Parameters that ParameterSweep can vary.
const (
	ParamCFL       = "cfl"
	ParamRotations = "rotations"
	ParamSpeed     = "speed"
	ParamTau       = "tau"
	ParamBz        = "bz"
	ParamKeV       = "kev"
)

// ParameterSweep runs Base once per value of one parameter
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	FinalState dynamo.State
	Steps      int
	Metrics    map[string]float64
}

func apply(cfg *config.Config, name string, v float64) error {
	switch name {
	case ParamCFL:
		cfg.Solver.CFL = v
	case ParamRotations:
		cfg.Solver.Rotations = v
	case ParamSpeed:
		cfg.Init.Speed = v
		cfg.Init.KineticKeV = 0
	case ParamTau:
		cfg.Particle.Tau = v
		cfg.Particle.LarmorTau = false
	case ParamBz:
		b := experiment.Vector(cfg.Field.B)
		cfg.Field.B = []float64{b.X, b.Y, v}
	case ParamKeV:
		cfg.Init.KineticKeV = v
	default:
		return dynamo.InvalidParameter("unknown sweep parameter %q", name)
	}
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, dynamo.InvalidParameter("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	values := []float64{sweep.ParamMin}
	if sweep.NumSteps > 1 {
		values = floats.Span(make([]float64, sweep.NumSteps), sweep.ParamMin, sweep.ParamMax)
	}

	results := make([]SweepResult, 0, len(values))
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := sweep.Base.Clone()
		if err := apply(cfg, sweep.ParamName, v); err != nil {
			return nil, err
		}
		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		tr, err := exp.Run()
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}

		results = append(results, SweepResult{
			ParamValue: v,
			FinalState: tr.Final(),
			Steps:      tr.Steps,
			Metrics:    tr.Metrics,
		})
	}

	return results, nil
}
