package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
)

// SolvePlanar integrates the planar Ford-O'Connell equation with state
// [x y vx vy E]. Only B0.Z and the z component of opts.Field are used;
// Kind is ignored and the Boris method is not available. The default start
// is x0 = (1, 0), v0 = (0, Speed).
func SolvePlanar(opts Options) (*dynamo.Trajectory, error) {
	if opts.Method == MethodBoris {
		return nil, dynamo.InvalidParameter("planar solves need an ODE method, got %v", opts.Method)
	}
	if opts.CFL == 0 {
		opts.CFL = DefaultCFL
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}

	f := opts.Field
	if f == nil {
		f = field.Uniform{B: r3.Vec{Z: opts.B0.Z}}
	}
	model, err := physics.NewPlanarFord(opts.Particle, f, opts.EnergyKeV)
	if err != nil {
		return nil, err
	}

	var x0 dynamo.State
	if opts.Initial != nil {
		if len(opts.Initial) != model.StateDim() {
			return nil, fmt.Errorf("%w: planar initial state has %d components, want %d",
				dynamo.ErrDimensionMismatch, len(opts.Initial), model.StateDim())
		}
		x0 = opts.Initial.Clone()
	} else {
		sol, err := physics.AnalyticSolution1D([]float64{0}, opts.B0.Z, [2]float64{1, 0}, []float64{opts.Speed}, opts.Particle)
		if err != nil {
			return nil, err
		}
		x0 = dynamo.State{sol.X[0], sol.Y[0], sol.VX[0], sol.VY[0], 0}
	}

	p := opts.Particle
	omega0 := math.Abs(p.Charge * opts.B0.Z / physics.EffectiveMass(p.Mass, opts.EnergyKeV))
	plan, err := PlanSteps(opts.NRotations, omega0, opts.CFL)
	if err != nil {
		return nil, err
	}

	observe := func(x dynamo.State) (r3.Vec, r3.Vec, float64) {
		return r3.Vec{X: x[0], Y: x[1]}, r3.Vec{X: x[2], Y: x[3]}, x[4]
	}
	return solveODE(model, opts.Method, x0, plan, opts.Tolerance, true, observe)
}
