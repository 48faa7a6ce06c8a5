package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

// EffectiveMass adds the mass equivalent of a kinetic energy given in keV.
func EffectiveMass(mass, energyKeV float64) float64 {
	return mass + energyKeV*KeV/(SpeedOfLight*SpeedOfLight)
}

// CalculateOmega converts a field sample into the angular cyclotron
// frequency q B / m_eff. A single-component sample is taken as B_z. Any other
// length fails with ErrInvalidShape.
func CalculateOmega(b []float64, charge, mass, energyKeV float64) (r3.Vec, error) {
	switch len(b) {
	case 1:
		return OmegaVec(r3.Vec{Z: b[0]}, charge, mass, energyKeV), nil
	case 3:
		return OmegaVec(r3.Vec{X: b[0], Y: b[1], Z: b[2]}, charge, mass, energyKeV), nil
	default:
		return r3.Vec{}, fmt.Errorf("%w: field sample has %d components, want 1 or 3", dynamo.ErrInvalidShape, len(b))
	}
}

// OmegaVec is CalculateOmega for a field already held as a vector.
func OmegaVec(b r3.Vec, charge, mass, energyKeV float64) r3.Vec {
	return r3.Scale(charge/EffectiveMass(mass, energyKeV), b)
}

// LarmorTau is the classical radiation-reaction time μ0 q² / (6π m c).
func LarmorTau(charge, mass float64) float64 {
	return MagneticConstant * charge * charge / (6 * math.Pi * mass * SpeedOfLight)
}

// SpeedFromKineticEnergy returns the speed of a particle of the given rest
// mass carrying energyKeV of kinetic energy.
func SpeedFromKineticEnergy(energyKeV, mass float64) float64 {
	gamma := 1 + energyKeV*KeV/(mass*SpeedOfLight*SpeedOfLight)
	return SpeedOfLight * math.Sqrt(1-1/(gamma*gamma))
}

// GammaFromU computes the Lorentz factor from u = γv. It is finite for any
// finite u.
func GammaFromU(u r3.Vec) float64 {
	return math.Sqrt(1 + r3.Norm2(u)/(SpeedOfLight*SpeedOfLight))
}

// GammaFromV computes the Lorentz factor from a velocity. It diverges as
// |v| approaches c and is only used to build initial conditions.
func GammaFromV(v r3.Vec) float64 {
	return 1 / math.Sqrt(1-r3.Norm2(v)/(SpeedOfLight*SpeedOfLight))
}

// MomentumPerMass converts a velocity to u = γv, rejecting |v| >= c.
func MomentumPerMass(v r3.Vec) (r3.Vec, error) {
	if r3.Norm(v) >= SpeedOfLight {
		return r3.Vec{}, dynamo.InvalidParameter("speed %g m/s is not below c", r3.Norm(v))
	}
	return r3.Scale(GammaFromV(v), v), nil
}

// KineticEnergy is (γ-1) m c², evaluated as m v² γ²/(γ+1) so that it stays
// accurate far below c.
func KineticEnergy(mass float64, v r3.Vec) float64 {
	gamma := GammaFromV(v)
	return mass * r3.Norm2(v) * gamma * gamma / (gamma + 1)
}
