package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

// Planar is a closed-form trajectory in the plane perpendicular to the field.
type Planar struct {
	Times  []float64
	X, Y   []float64
	VX, VY []float64
}

// AnalyticSolution1D solves the Ford-O'Connell equation in a uniform field bz
// along z. v0 is either the y speed alone or the in-plane velocity (vx, vy).
// The position is shifted so that it equals x0 at t = 0.
func AnalyticSolution1D(times []float64, bz float64, x0 [2]float64, v0 []float64, p Particle) (*Planar, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var vel [2]float64
	switch len(v0) {
	case 1:
		vel = [2]float64{0, v0[0]}
	case 2:
		vel = [2]float64{v0[0], v0[1]}
	default:
		return nil, dynamo.InvalidParameter("planar initial velocity has %d components, want 1 or 2", len(v0))
	}

	omega := p.Charge * bz / p.Mass
	return planarSolution(times, omega, p.Tau, x0, vel), nil
}

// planarSolution evaluates the decaying circular orbit for a signed
// frequency omega. With neither rotation nor decay the motion is a line.
func planarSolution(times []float64, omega, tau float64, x0, v0 [2]float64) *Planar {
	n := len(times)
	sol := &Planar{
		Times: append([]float64(nil), times...),
		X:     make([]float64, n),
		Y:     make([]float64, n),
		VX:    make([]float64, n),
		VY:    make([]float64, n),
	}

	mu := tau * omega * omega
	den := omega*omega + mu*mu
	if den == 0 {
		for i, t := range times {
			sol.VX[i], sol.VY[i] = v0[0], v0[1]
			sol.X[i] = x0[0] + v0[0]*t
			sol.Y[i] = x0[1] + v0[1]*t
		}
		return sol
	}

	speed := math.Hypot(v0[0], v0[1])
	phi := math.Atan2(v0[0], v0[1])

	position := func(vx, vy float64) (float64, float64) {
		return -(vx*mu + vy*omega) / den, (vx*omega - vy*mu) / den
	}
	sx, sy := position(speed*math.Sin(phi), speed*math.Cos(phi))

	for i, t := range times {
		decay := speed * math.Exp(-mu*t)
		phase := omega*t + phi
		vx, vy := decay*math.Sin(phase), decay*math.Cos(phase)
		x, y := position(vx, vy)

		sol.VX[i], sol.VY[i] = vx, vy
		sol.X[i] = x0[0] + (x - sx)
		sol.Y[i] = x0[1] + (y - sy)
	}
	return sol
}

// AnalyticOptions selects the mass used by AnalyticSolution. Relativistic
// replaces the rest mass by γ(v0)·m; otherwise EnergyKeV, if set, is added
// as mass equivalent.
type AnalyticOptions struct {
	Relativistic bool
	EnergyKeV    float64
}

// AnalyticSolution solves motion in the uniform field b by rotating the
// perpendicular velocity into the xy plane, solving the planar problem and
// rotating back with the parallel drift added. A zero field gives a straight
// line. When p.Tau > 0 the trajectory carries the radiated energy.
func AnalyticSolution(times []float64, b, x0, v0 r3.Vec, p Particle, opts AnalyticOptions) (*dynamo.Trajectory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	mass := EffectiveMass(p.Mass, opts.EnergyKeV)
	if opts.Relativistic {
		if r3.Norm(v0) >= SpeedOfLight {
			return nil, dynamo.InvalidParameter("speed %g m/s is not below c", r3.Norm(v0))
		}
		mass = GammaFromV(v0) * p.Mass
	}

	radiating := p.Tau > 0
	tr := dynamo.NewTrajectory(len(times), radiating)

	bmag := r3.Norm(b)
	if bmag == 0 {
		for _, t := range times {
			tr.Append(t, r3.Add(x0, r3.Scale(t, v0)), v0, 0)
		}
		return tr, nil
	}

	par, perp, err := DecomposeVelocity(v0, b)
	if err != nil {
		return nil, err
	}
	rot, err := RotateBField(b)
	if err != nil {
		return nil, err
	}
	inv, err := RotateBFieldInverse(b)
	if err != nil {
		return nil, err
	}

	omega := math.Abs(p.Charge) * bmag / mass
	if p.Charge < 0 {
		omega = -omega
	}
	mu := p.Tau * omega * omega
	vperp2 := r3.Norm2(perp)

	vrot := Apply(rot, perp)
	sol := planarSolution(times, omega, p.Tau, [2]float64{}, [2]float64{vrot.X, vrot.Y})

	for i, t := range times {
		pos := Apply(inv, r3.Vec{X: sol.X[i], Y: sol.Y[i]})
		pos = r3.Add(r3.Add(pos, r3.Scale(t, par)), x0)
		vel := r3.Add(Apply(inv, r3.Vec{X: sol.VX[i], Y: sol.VY[i]}), par)

		var radiated float64
		if radiating {
			radiated = 0.5 * mass * vperp2 * -math.Expm1(-2*mu*t)
		}
		tr.Append(t, pos, vel, radiated)
	}
	return tr, nil
}
