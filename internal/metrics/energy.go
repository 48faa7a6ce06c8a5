package metrics

import (
	"math"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/physics"
)

// Samples are laid out [x y z vx vy vz (E)], as produced by
// dynamo.Trajectory.Sample.

// KineticEnergyDrift is the largest relative change of the kinetic energy
// from its first sample. Without radiation it should stay near zero.
type KineticEnergyDrift struct {
	name     string
	mass     float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewKineticEnergyDrift(mass float64) *KineticEnergyDrift {
	return &KineticEnergyDrift{
		name: "kinetic_energy_drift",
		mass: mass,
	}
}

func (k *KineticEnergyDrift) Name() string { return k.name }

func (k *KineticEnergyDrift) Observe(x dynamo.State, t float64) {
	if len(x) < 6 {
		return
	}
	energy := physics.KineticEnergy(k.mass, x.Vec(3))

	if k.samples == 0 {
		k.initial = energy
	}
	k.samples++

	if k.initial != 0 {
		drift := math.Abs(energy-k.initial) / k.initial
		k.maxDrift = math.Max(k.maxDrift, drift)
	}
}

func (k *KineticEnergyDrift) Value() float64 { return k.maxDrift }

func (k *KineticEnergyDrift) Reset() {
	k.initial = 0
	k.maxDrift = 0
	k.samples = 0
}

// RadiatedEnergy is the cumulative radiated energy at the last sample, in
// joules. It stays zero for samples without an energy component.
type RadiatedEnergy struct {
	name  string
	first float64
	last  float64
	seen  bool
}

func NewRadiatedEnergy() *RadiatedEnergy {
	return &RadiatedEnergy{name: "radiated_energy"}
}

func (r *RadiatedEnergy) Name() string { return r.name }

func (r *RadiatedEnergy) Observe(x dynamo.State, t float64) {
	if len(x) < 7 {
		return
	}
	if !r.seen {
		r.first, r.seen = x[6], true
	}
	r.last = x[6]
}

// Value is the energy radiated since the first sample.
func (r *RadiatedEnergy) Value() float64 { return r.last - r.first }

func (r *RadiatedEnergy) Reset() {
	r.first, r.last, r.seen = 0, 0, false
}

// EnergyBalance is the largest relative mismatch between the kinetic energy
// lost and the energy radiated, normalised by the initial kinetic energy.
type EnergyBalance struct {
	name     string
	mass     float64
	initial  float64
	maxError float64
	samples  int
}

func NewEnergyBalance(mass float64) *EnergyBalance {
	return &EnergyBalance{
		name: "energy_balance",
		mass: mass,
	}
}

func (e *EnergyBalance) Name() string { return e.name }

func (e *EnergyBalance) Observe(x dynamo.State, t float64) {
	if len(x) < 6 {
		return
	}
	total := physics.KineticEnergy(e.mass, x.Vec(3))
	if len(x) > 6 {
		total += x[6]
	}

	if e.samples == 0 {
		e.initial = total
	}
	e.samples++

	if e.initial != 0 {
		e.maxError = math.Max(e.maxError, math.Abs(total-e.initial)/e.initial)
	}
}

func (e *EnergyBalance) Value() float64 { return e.maxError }

func (e *EnergyBalance) Reset() {
	e.initial = 0
	e.maxError = 0
	e.samples = 0
}
