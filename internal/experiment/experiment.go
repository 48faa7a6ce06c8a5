package experiment

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
	"github.com/san-kum/etrack/internal/trace"
)

// Experiment is a validated configuration with its field built.
type Experiment struct {
	cfg      *config.Config
	reg      *Registry
	field    field.Model
	b0       r3.Vec
	particle physics.Particle
}

func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:      cfg,
		reg:      reg,
		particle: cfg.BuildParticle(),
	}

	if cfg.Field.Type != config.FieldUniform {
		f, err := reg.BuildField(cfg.Field)
		if err != nil {
			return nil, err
		}
		e.field = f
	}

	if len(cfg.Field.B) > 0 {
		e.b0 = Vector(cfg.Field.B)
	} else if e.field != nil {
		start := Vector(cfg.Init.Position)
		b, err := e.field.EvaluateAt(start.X, start.Y, start.Z)
		if err != nil {
			return nil, err
		}
		e.b0 = b
	}
	return e, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Particle() physics.Particle { return e.particle }

// SizingField is the field that fixes omega0 and the step size.
func (e *Experiment) SizingField() r3.Vec { return e.b0 }

// Options assembles the solver options for a single run.
func (e *Experiment) Options() solver.Options {
	cfg := e.cfg
	kind := cfg.Kind()
	opts := solver.Options{
		Kind:       kind,
		Method:     cfg.Method(),
		Particle:   e.particle,
		EnergyKeV:  cfg.Solver.EnergyKeV,
		B0:         e.b0,
		Field:      e.field,
		Speed:      cfg.InitialSpeed(),
		NRotations: cfg.Solver.Rotations,
		CFL:        cfg.Solver.CFL,
		Tolerance:  cfg.Solver.Tolerance,
	}

	if len(cfg.Init.Position) == 3 {
		pos := Vector(cfg.Init.Position)
		vel := r3.Vec{X: opts.Speed * math.Cos(cfg.Init.Theta), Z: opts.Speed * math.Sin(cfg.Init.Theta)}
		if len(cfg.Init.Velocity) == 3 {
			vel = Vector(cfg.Init.Velocity)
		}
		ic := make(dynamo.State, kind.StateDim())
		ic.SetVec(0, pos)
		ic.SetVec(3, vel)
		opts.Initial = ic
	}
	return opts
}

// Run solves one trajectory and records the default metrics on it.
func (e *Experiment) Run() (*dynamo.Trajectory, error) {
	tr, err := solver.Solve(e.Options())
	if err != nil {
		return nil, err
	}
	tr.Observe(e.reg.DefaultMetrics(e.particle)...)
	return tr, nil
}

// RunPlanar solves the planar radiating equation in the x-y plane.
func (e *Experiment) RunPlanar() (*dynamo.Trajectory, error) {
	opts := e.Options()
	opts.Initial = nil
	tr, err := solver.SolvePlanar(opts)
	if err != nil {
		return nil, err
	}
	tr.Observe(e.reg.DefaultMetrics(e.particle)...)
	return tr, nil
}

// Reference evaluates the closed-form solution on the samples of tr, from
// the same starting point. Only uniform fields have one.
func (e *Experiment) Reference(tr *dynamo.Trajectory) (*dynamo.Trajectory, error) {
	if e.field != nil {
		return nil, dynamo.InvalidParameter("no analytic solution for a %s field", e.cfg.Field.Type)
	}
	if tr.Len() == 0 {
		return nil, dynamo.InvalidParameter("empty trajectory")
	}

	kind := e.cfg.Kind()
	p := e.particle
	if !kind.Radiating() {
		p.Tau = 0
	}
	return physics.AnalyticSolution(tr.Times, e.b0, tr.Positions[0], tr.Velocities[0], p,
		physics.AnalyticOptions{Relativistic: kind.Relativistic(), EnergyKeV: e.cfg.Solver.EnergyKeV})
}

// Sweep traces one electron per configured launch angle.
func (e *Experiment) Sweep(ctx context.Context) ([]float64, []*dynamo.Trajectory, error) {
	cfg := e.cfg
	angles := trace.Angles(cfg.Sweep.ThetaMin, cfg.Sweep.ThetaMax, cfg.Sweep.Count)

	f := e.field
	if f == nil {
		f = field.Uniform{B: e.b0}
	}
	trs, err := trace.Sweep(ctx, angles, trace.SweepConfig{
		B0:         r3.Norm(e.b0),
		Speed:      cfg.InitialSpeed(),
		Field:      f,
		NRotations: cfg.Solver.Rotations,
		Options: trace.Options{
			Kind:      cfg.Kind(),
			Method:    cfg.Method(),
			Particle:  e.particle,
			EnergyKeV: cfg.Solver.EnergyKeV,
			CFL:       cfg.Sweep.CFL,
		},
		Workers: cfg.Sweep.Workers,
	})
	if err != nil {
		return nil, nil, err
	}
	for _, tr := range trs {
		tr.Observe(e.reg.DefaultMetrics(e.particle)...)
	}
	return angles, trs, nil
}
