package solver

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
)

// Boris is the relativistic Boris pusher. It always works on u = γv; a
// radiating kind adds Ford-O'Connell half kicks on either side of the
// rotation and records the radiated energy.
type Boris struct {
	particle  physics.Particle
	field     field.Model
	radiating bool
}

func NewBoris(kind physics.Kind, p physics.Particle, f field.Model) (*Boris, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, dynamo.InvalidParameter("nil field model")
	}
	if !kind.Radiating() {
		p.Tau = 0
	}
	return &Boris{particle: p, field: f, radiating: kind.Radiating()}, nil
}

// Advance moves position x and momentum per mass u forward by dt. The field
// is sampled once, at the half-step position.
func (b *Boris) Advance(x, u r3.Vec, dt float64) (r3.Vec, r3.Vec, error) {
	q, m, tau := b.particle.Charge, b.particle.Mass, b.particle.Tau

	gamma := physics.GammaFromU(u)
	xHalf := r3.Add(x, r3.Scale(dt/(2*gamma), u))

	bf, err := b.field.EvaluateAt(xHalf.X, xHalf.Y, xHalf.Z)
	if err != nil {
		return r3.Vec{}, r3.Vec{}, err
	}

	var omega r3.Vec
	uMinus := u
	if tau > 0 {
		omega = physics.OmegaVec(bf, q, m, 0)
		uMinus = r3.Add(u, r3.Scale(dt/2, physics.RadiationAcceleration(omega, u, tau)))
	}

	gammaMinus := physics.GammaFromU(uMinus)
	t := r3.Scale(q*dt/(2*m*gammaMinus), bf)
	s := r3.Scale(2/(1+r3.Norm2(t)), t)
	uPlus := r3.Add(uMinus, r3.Cross(r3.Add(uMinus, r3.Cross(uMinus, t)), s))

	uNext := uPlus
	if tau > 0 {
		uNext = r3.Add(uPlus, r3.Scale(dt/2, physics.RadiationAcceleration(omega, uPlus, tau)))
	}

	gammaNext := physics.GammaFromU(uNext)
	xNext := r3.Add(xHalf, r3.Scale(dt/(2*gammaNext), uNext))
	return xNext, uNext, nil
}

// Solve takes exactly plan.Steps steps from position x0 and velocity v0.
// e0 seeds the radiated-energy series of a radiating pusher.
func (b *Boris) Solve(x0, v0 r3.Vec, e0 float64, plan Plan) (*dynamo.Trajectory, error) {
	u, err := physics.MomentumPerMass(v0)
	if err != nil {
		return nil, err
	}

	dt := plan.StepSize
	tr := dynamo.NewTrajectory(plan.Steps+1, b.radiating)
	tr.StepSize = dt

	x, v, energy := x0, v0, e0
	tr.Append(0, x, v, energy)

	for i := 0; i < plan.Steps; i++ {
		xNext, uNext, err := b.Advance(x, u, dt)
		if err != nil {
			return nil, &dynamo.SimulationError{Step: i, Time: plan.Time(i), Wrapped: err}
		}
		vNext := r3.Scale(1/physics.GammaFromU(uNext), uNext)

		if b.particle.Tau > 0 {
			acc := r3.Scale(1/dt, r3.Sub(vNext, v))
			energy += b.particle.Tau * b.particle.Mass * r3.Norm2(acc) * dt
		}

		x, u, v = xNext, uNext, vNext
		tr.Append(plan.Time(i+1), x, v, energy)
		tr.Steps++
	}
	return tr, nil
}
