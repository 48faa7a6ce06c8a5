// Package trace launches electrons from the origin at a given pitch angle
// and fans batches of such traces out over worker goroutines.
package trace

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
)

// DefaultCFL trades accuracy for speed in batch scans.
const DefaultCFL = 1e-1

// Options configures ElectronTrace. Zero values select the Lorentz model,
// the Boris pusher, an electron without radiation and DefaultCFL.
type Options struct {
	Kind      physics.Kind
	Method    solver.Method
	Particle  physics.Particle
	EnergyKeV float64
	CFL       float64
}

// ElectronTrace follows an electron launched from the origin with speed v0
// at angle theta from the x axis in the xz plane, through field f, for
// nRotations orbits of the uniform field b0 along z.
func ElectronTrace(theta, b0, v0 float64, f field.Model, nRotations float64, opts Options) (*dynamo.Trajectory, error) {
	if opts.Particle == (physics.Particle{}) {
		opts.Particle = physics.Electron()
	}
	if opts.CFL == 0 {
		opts.CFL = DefaultCFL
	}

	ic := dynamo.State{0, 0, 0, v0 * math.Cos(theta), 0, v0 * math.Sin(theta)}
	if opts.Kind.Radiating() {
		ic = append(ic, 0)
	}

	return solver.Solve(solver.Options{
		Kind:       opts.Kind,
		Method:     opts.Method,
		Particle:   opts.Particle,
		EnergyKeV:  opts.EnergyKeV,
		B0:         r3.Vec{Z: b0},
		Field:      f,
		Speed:      v0,
		Initial:    ic,
		NRotations: nRotations,
		CFL:        opts.CFL,
	})
}
