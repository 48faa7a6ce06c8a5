package physics

import (
	"math"

	"github.com/san-kum/etrack/internal/dynamo"
)

// Particle holds the properties of the tracked particle. Tau is the Larmor
// power parameter such that P = Tau * Mass * |a|²; zero disables radiation.
type Particle struct {
	Charge float64 `yaml:"charge" json:"charge"`
	Mass   float64 `yaml:"mass" json:"mass"`
	Tau    float64 `yaml:"tau" json:"tau"`
}

func Electron() Particle {
	return Particle{Charge: -ElementaryCharge, Mass: ElectronMass}
}

// WithLarmorTau returns p with Tau set to the classical Larmor value for its
// charge and mass.
func (p Particle) WithLarmorTau() Particle {
	p.Tau = LarmorTau(p.Charge, p.Mass)
	return p
}

func (p Particle) Validate() error {
	if math.IsNaN(p.Charge) || math.IsInf(p.Charge, 0) {
		return dynamo.InvalidParameter("charge must be finite, got %g", p.Charge)
	}
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return dynamo.InvalidParameter("mass must be positive, got %g", p.Mass)
	}
	if !(p.Tau >= 0) || math.IsInf(p.Tau, 0) {
		return dynamo.InvalidParameter("tau must be non-negative, got %g", p.Tau)
	}
	return nil
}
