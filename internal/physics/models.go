package physics

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
)

// Model is a right-hand side for one particle in a magnetic field.
type Model interface {
	dynamo.System
	Kind() Kind
	// Observables extracts position, velocity and radiated energy from a
	// model state.
	Observables(x dynamo.State) (pos, vel r3.Vec, energy float64)
	// InitialState builds a model state from a position and a velocity.
	InitialState(pos, vel r3.Vec) (dynamo.State, error)
}

// NewModel builds the model of the given kind. energyKeV shifts the mass of
// the non-relativistic kinds and is ignored by the relativistic ones, which
// take γ from the state.
func NewModel(kind Kind, p Particle, f field.Model, energyKeV float64) (Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, dynamo.InvalidParameter("nil field model")
	}

	switch kind {
	case KindLorentz:
		return &Lorentz{particle: p, omega: newOmegaSource(f, p.Charge, EffectiveMass(p.Mass, energyKeV))}, nil
	case KindFordOConnell:
		return &FordOConnell{particle: p, omega: newOmegaSource(f, p.Charge, EffectiveMass(p.Mass, energyKeV))}, nil
	case KindRelativisticLorentz:
		return &RelativisticLorentz{particle: p, omega: newOmegaSource(f, p.Charge, p.Mass)}, nil
	case KindRelativisticFordOConnell:
		return &RelativisticFordOConnell{particle: p, omega: newOmegaSource(f, p.Charge, p.Mass)}, nil
	}
	return nil, dynamo.InvalidParameter("unknown model kind %d", int(kind))
}

// omegaSource yields ω = qB/m at a point. A uniform field is evaluated once.
type omegaSource struct {
	field  field.Model
	charge float64
	mass   float64

	cached bool
	omega  r3.Vec
}

func newOmegaSource(f field.Model, charge, mass float64) omegaSource {
	src := omegaSource{field: f, charge: charge, mass: mass}
	switch u := f.(type) {
	case field.Uniform:
		src.cached, src.omega = true, OmegaVec(u.B, charge, mass, 0)
	case *field.Uniform:
		src.cached, src.omega = true, OmegaVec(u.B, charge, mass, 0)
	}
	return src
}

func (s *omegaSource) at(pos r3.Vec) (r3.Vec, error) {
	if s.cached {
		return s.omega, nil
	}
	b, err := s.field.EvaluateAt(pos.X, pos.Y, pos.Z)
	if err != nil {
		return r3.Vec{}, err
	}
	return OmegaVec(b, s.charge, s.mass, 0), nil
}

// RadiationAcceleration is the Ford-O'Connell radiation-reaction term
// -τ(|ω|²v - (ω·v)ω) / (1 + τ²|ω|²).
func RadiationAcceleration(omega, v r3.Vec, tau float64) r3.Vec {
	w2 := r3.Norm2(omega)
	larmor := r3.Sub(r3.Scale(w2, v), r3.Scale(r3.Dot(omega, v), omega))
	return r3.Scale(-tau/(1+tau*tau*w2), larmor)
}

// FordAcceleration is the full Ford-O'Connell acceleration
// (v × ω - τ(|ω|²v - (ω·v)ω)) / (1 + τ²|ω|²).
func FordAcceleration(omega, v r3.Vec, tau float64) r3.Vec {
	den := 1 + tau*tau*r3.Norm2(omega)
	return r3.Add(r3.Scale(1/den, r3.Cross(v, omega)), RadiationAcceleration(omega, v, tau))
}

func checkDim(x dynamo.State, want int) error {
	if len(x) != want {
		return fmt.Errorf("%w: state has %d components, want %d", dynamo.ErrDimensionMismatch, len(x), want)
	}
	return nil
}

// Lorentz is dv/dt = v × ω. Radiation is ignored even when Tau is set.
type Lorentz struct {
	particle Particle
	omega    omegaSource
}

func (m *Lorentz) Kind() Kind    { return KindLorentz }
func (m *Lorentz) StateDim() int { return 6 }

func (m *Lorentz) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkDim(x, 6); err != nil {
		return nil, err
	}
	v := x.Vec(3)
	omega, err := m.omega.at(x.Vec(0))
	if err != nil {
		return nil, err
	}
	dx := make(dynamo.State, 6)
	dx.SetVec(0, v)
	dx.SetVec(3, r3.Cross(v, omega))
	return dx, nil
}

func (m *Lorentz) Observables(x dynamo.State) (r3.Vec, r3.Vec, float64) {
	return x.Vec(0), x.Vec(3), 0
}

func (m *Lorentz) InitialState(pos, vel r3.Vec) (dynamo.State, error) {
	x := make(dynamo.State, 6)
	x.SetVec(0, pos)
	x.SetVec(3, vel)
	return x, nil
}

// FordOConnell adds Larmor radiation reaction to the Lorentz force. The
// seventh state component integrates the radiated power τ m |a|².
type FordOConnell struct {
	particle Particle
	omega    omegaSource
}

func (m *FordOConnell) Kind() Kind    { return KindFordOConnell }
func (m *FordOConnell) StateDim() int { return 7 }

func (m *FordOConnell) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkDim(x, 7); err != nil {
		return nil, err
	}
	v := x.Vec(3)
	omega, err := m.omega.at(x.Vec(0))
	if err != nil {
		return nil, err
	}
	acc := FordAcceleration(omega, v, m.particle.Tau)

	dx := make(dynamo.State, 7)
	dx.SetVec(0, v)
	dx.SetVec(3, acc)
	dx[6] = m.particle.Tau * m.particle.Mass * r3.Norm2(acc)
	return dx, nil
}

func (m *FordOConnell) Observables(x dynamo.State) (r3.Vec, r3.Vec, float64) {
	return x.Vec(0), x.Vec(3), x[6]
}

func (m *FordOConnell) InitialState(pos, vel r3.Vec) (dynamo.State, error) {
	x := make(dynamo.State, 7)
	x.SetVec(0, pos)
	x.SetVec(3, vel)
	return x, nil
}

// RelativisticLorentz integrates u = γv with du/dt = u × ω/γ.
type RelativisticLorentz struct {
	particle Particle
	omega    omegaSource
}

func (m *RelativisticLorentz) Kind() Kind    { return KindRelativisticLorentz }
func (m *RelativisticLorentz) StateDim() int { return 6 }

func (m *RelativisticLorentz) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkDim(x, 6); err != nil {
		return nil, err
	}
	u := x.Vec(3)
	gamma := GammaFromU(u)
	omega, err := m.omega.at(x.Vec(0))
	if err != nil {
		return nil, err
	}
	dx := make(dynamo.State, 6)
	dx.SetVec(0, r3.Scale(1/gamma, u))
	dx.SetVec(3, r3.Cross(u, r3.Scale(1/gamma, omega)))
	return dx, nil
}

func (m *RelativisticLorentz) Observables(x dynamo.State) (r3.Vec, r3.Vec, float64) {
	u := x.Vec(3)
	return x.Vec(0), r3.Scale(1/GammaFromU(u), u), 0
}

func (m *RelativisticLorentz) InitialState(pos, vel r3.Vec) (dynamo.State, error) {
	u, err := MomentumPerMass(vel)
	if err != nil {
		return nil, err
	}
	x := make(dynamo.State, 6)
	x.SetVec(0, pos)
	x.SetVec(3, u)
	return x, nil
}

// RelativisticFordOConnell applies the Ford-O'Connell acceleration to u = γv
// using the relativistic frequency Ω = ω/γ.
type RelativisticFordOConnell struct {
	particle Particle
	omega    omegaSource
}

func (m *RelativisticFordOConnell) Kind() Kind    { return KindRelativisticFordOConnell }
func (m *RelativisticFordOConnell) StateDim() int { return 7 }

func (m *RelativisticFordOConnell) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkDim(x, 7); err != nil {
		return nil, err
	}
	u := x.Vec(3)
	gamma := GammaFromU(u)
	omega, err := m.omega.at(x.Vec(0))
	if err != nil {
		return nil, err
	}
	acc := FordAcceleration(r3.Scale(1/gamma, omega), u, m.particle.Tau)

	dx := make(dynamo.State, 7)
	dx.SetVec(0, r3.Scale(1/gamma, u))
	dx.SetVec(3, acc)
	dx[6] = m.particle.Tau * m.particle.Mass * r3.Norm2(acc)
	return dx, nil
}

func (m *RelativisticFordOConnell) Observables(x dynamo.State) (r3.Vec, r3.Vec, float64) {
	u := x.Vec(3)
	return x.Vec(0), r3.Scale(1/GammaFromU(u), u), x[6]
}

func (m *RelativisticFordOConnell) InitialState(pos, vel r3.Vec) (dynamo.State, error) {
	u, err := MomentumPerMass(vel)
	if err != nil {
		return nil, err
	}
	x := make(dynamo.State, 7)
	x.SetVec(0, pos)
	x.SetVec(3, u)
	return x, nil
}

// PlanarFord is the Ford-O'Connell equation in the xy plane with the field
// along z, state [x y vx vy E]. Only B_z at (x, y, 0) is used.
type PlanarFord struct {
	particle Particle
	omega    omegaSource
}

func NewPlanarFord(p Particle, f field.Model, energyKeV float64) (*PlanarFord, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, dynamo.InvalidParameter("nil field model")
	}
	return &PlanarFord{particle: p, omega: newOmegaSource(f, p.Charge, EffectiveMass(p.Mass, energyKeV))}, nil
}

func (m *PlanarFord) StateDim() int { return 5 }

func (m *PlanarFord) Derive(x dynamo.State, t float64) (dynamo.State, error) {
	if err := checkDim(x, 5); err != nil {
		return nil, err
	}
	omegaVec, err := m.omega.at(r3.Vec{X: x[0], Y: x[1]})
	if err != nil {
		return nil, err
	}
	omega, tau := omegaVec.Z, m.particle.Tau
	den := 1 + tau*tau*omega*omega

	vx, vy := x[2], x[3]
	ax := (omega*vy - tau*omega*omega*vx) / den
	ay := (-omega*vx - tau*omega*omega*vy) / den

	return dynamo.State{vx, vy, ax, ay, tau * m.particle.Mass * (ax*ax + ay*ay)}, nil
}
