package solver

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
)

const (
	DefaultCFL       = 1e-3
	DefaultTolerance = 1e-9
)

// Options describes one solve.
//
// B0 is the field used to size the steps. When Field is nil the particle
// moves in the uniform field B0; otherwise Field drives the motion and B0
// only fixes omega0. Initial, when set, replaces the default start
// x0 = (1, 0, 0), v0 = (0, Speed, 0) and is laid out [x y z vx vy vz (E)]
// with the energy component present exactly when Kind radiates.
type Options struct {
	Kind       physics.Kind
	Method     Method
	Particle   physics.Particle
	EnergyKeV  float64
	B0         r3.Vec
	Field      field.Model
	Speed      float64
	Initial    dynamo.State
	NRotations float64
	CFL        float64
	Tolerance  float64
}

func DefaultOptions() Options {
	return Options{
		Kind:       physics.KindLorentz,
		Method:     MethodBoris,
		Particle:   physics.Electron(),
		B0:         r3.Vec{Z: 1},
		Speed:      1,
		NRotations: 1,
		CFL:        DefaultCFL,
		Tolerance:  DefaultTolerance,
	}
}

// Solve integrates one trajectory according to opts.
func Solve(opts Options) (*dynamo.Trajectory, error) {
	if opts.CFL == 0 {
		opts.CFL = DefaultCFL
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}
	if err := opts.Particle.Validate(); err != nil {
		return nil, err
	}

	f := opts.Field
	if f == nil {
		f = field.Uniform{B: opts.B0}
	}

	x0, v0, e0, err := initialConditions(opts)
	if err != nil {
		return nil, err
	}
	if r3.Norm(v0) >= physics.SpeedOfLight {
		return nil, dynamo.InvalidParameter("initial speed %g m/s is not below c", r3.Norm(v0))
	}

	plan, err := PlanSteps(opts.NRotations, gyroFrequency(opts, v0), opts.CFL)
	if err != nil {
		return nil, err
	}

	if opts.Method == MethodBoris {
		b, err := NewBoris(opts.Kind, opts.Particle, f)
		if err != nil {
			return nil, err
		}
		return b.Solve(x0, v0, e0, plan)
	}

	model, err := physics.NewModel(opts.Kind, opts.Particle, f, opts.EnergyKeV)
	if err != nil {
		return nil, err
	}
	state, err := model.InitialState(x0, v0)
	if err != nil {
		return nil, err
	}
	if opts.Kind.Radiating() {
		state[6] = e0
	}
	return solveODE(model, opts.Method, state, plan, opts.Tolerance, opts.Kind.Radiating(), model.Observables)
}

// initialConditions returns the starting position, velocity and radiated
// energy, from opts.Initial or else from the analytic solution at t = 0.
func initialConditions(opts Options) (r3.Vec, r3.Vec, float64, error) {
	if opts.Initial != nil {
		want := opts.Kind.StateDim()
		if len(opts.Initial) != want {
			return r3.Vec{}, r3.Vec{}, 0, fmt.Errorf("%w: initial state has %d components, %v expects %d",
				dynamo.ErrDimensionMismatch, len(opts.Initial), opts.Kind, want)
		}
		var e0 float64
		if opts.Kind.Radiating() {
			e0 = opts.Initial[6]
		}
		return opts.Initial.Vec(0), opts.Initial.Vec(3), e0, nil
	}

	p := opts.Particle
	if !opts.Kind.Radiating() {
		p.Tau = 0
	}
	tr, err := physics.AnalyticSolution([]float64{0}, opts.B0, r3.Vec{X: 1}, r3.Vec{Y: opts.Speed}, p,
		physics.AnalyticOptions{Relativistic: opts.Kind.Relativistic(), EnergyKeV: opts.EnergyKeV})
	if err != nil {
		return r3.Vec{}, r3.Vec{}, 0, err
	}
	return tr.Positions[0], tr.Velocities[0], 0, nil
}

// gyroFrequency is |ω| of the starting state in the sizing field B0. The
// Boris pusher and the relativistic kinds divide the rest-mass frequency by
// γ(v0); the other kinds use the energy-shifted mass.
func gyroFrequency(opts Options, v0 r3.Vec) float64 {
	p := opts.Particle
	if opts.Method == MethodBoris || opts.Kind.Relativistic() {
		return r3.Norm(physics.OmegaVec(opts.B0, p.Charge, p.Mass, 0)) / physics.GammaFromV(v0)
	}
	return r3.Norm(physics.OmegaVec(opts.B0, p.Charge, p.Mass, opts.EnergyKeV))
}
