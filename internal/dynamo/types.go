package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Vec returns the 3-vector stored at s[i:i+3].
func (s State) Vec(i int) r3.Vec {
	return r3.Vec{X: s[i], Y: s[i+1], Z: s[i+2]}
}

// SetVec writes v into s[i:i+3].
func (s State) SetVec(i int, v r3.Vec) {
	s[i], s[i+1], s[i+2] = v.X, v.Y, v.Z
}

// System is an ODE right-hand side dX/dt = f(X, t). Errors raised while
// evaluating f (for example by an external field provider) are returned
// unmodified.
type System interface {
	Derive(x State, t float64) (State, error)
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) (State, error)
}

// AdaptiveIntegrator steps with error control. StepAdaptive returns the new
// state, the step actually taken and a suggested next step.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Tolerance     float64
	MaxDt         float64
	MinDt         float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		Tolerance:     1e-6,
		MaxDt:         0.1,
		MinDt:         1e-8,
		Adaptive:      false,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Times      []float64
	StepsTaken int
}

// Trajectory is the sampled path of a single particle: one entry per
// accepted step, starting at t=0. Radiated is the cumulative radiated
// energy in joules and is nil for models without radiation reaction.
type Trajectory struct {
	Times      []float64          `json:"times"`
	Positions  []r3.Vec           `json:"positions"`
	Velocities []r3.Vec           `json:"velocities"`
	Radiated   []float64          `json:"radiated,omitempty"`
	StepSize   float64            `json:"step_size"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func NewTrajectory(capacity int, radiating bool) *Trajectory {
	tr := &Trajectory{
		Times:      make([]float64, 0, capacity),
		Positions:  make([]r3.Vec, 0, capacity),
		Velocities: make([]r3.Vec, 0, capacity),
		Metrics:    make(map[string]float64),
	}
	if radiating {
		tr.Radiated = make([]float64, 0, capacity)
	}
	return tr
}

// Append records one sample. energy is ignored for non-radiating trajectories.
func (tr *Trajectory) Append(t float64, pos, vel r3.Vec, energy float64) {
	tr.Times = append(tr.Times, t)
	tr.Positions = append(tr.Positions, pos)
	tr.Velocities = append(tr.Velocities, vel)
	if tr.Radiated != nil {
		tr.Radiated = append(tr.Radiated, energy)
	}
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Sample returns sample i in the observable layout [x y z vx vy vz (E)].
func (tr *Trajectory) Sample(i int) State {
	n := 6
	if tr.Radiated != nil {
		n = 7
	}
	s := make(State, n)
	s.SetVec(0, tr.Positions[i])
	s.SetVec(3, tr.Velocities[i])
	if tr.Radiated != nil {
		s[6] = tr.Radiated[i]
	}
	return s
}

// Final returns the last sample in the observable layout.
func (tr *Trajectory) Final() State {
	if tr.Len() == 0 {
		return nil
	}
	return tr.Sample(tr.Len() - 1)
}

// Observe feeds every sample to the metrics and records their values.
func (tr *Trajectory) Observe(metrics ...Metric) {
	for _, m := range metrics {
		m.Reset()
	}
	for i := range tr.Times {
		x := tr.Sample(i)
		for _, m := range metrics {
			m.Observe(x, tr.Times[i])
		}
	}
	if tr.Metrics == nil {
		tr.Metrics = make(map[string]float64)
	}
	for _, m := range metrics {
		tr.Metrics[m.Name()] = m.Value()
	}
}
