package dynamo

import (
	"fmt"
	"math"
)

// Simulator drives a System with an Integrator. A run is synchronous and
// always completes: there is no cancellation inside the step loop.
type Simulator struct {
	sys        System
	integrator Integrator
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates from x0 at t=0 to cfg.Duration. Fixed-step runs take
// round(Duration/Dt) steps and place sample i at exactly i*Dt; adaptive runs
// clip their last step so the final sample lands on Duration.
func (s *Simulator) Run(x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: got %d components, want %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	if cfg.Adaptive {
		return s.runAdaptive(x0, cfg)
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	if steps < 1 {
		steps = 1
	}
	result := &Result{
		States: make([]State, 0, steps+1),
		Times:  make([]float64, 0, steps+1),
	}

	x := x0.Clone()
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		newX, err := s.integrator.Step(s.sys, x, t, cfg.Dt)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, Wrapped: err}
		}
		if cfg.ValidateState && !newX.IsValid() {
			return result, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		x = newX
		t = float64(i+1) * cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	return result, nil
}

func (s *Simulator) runAdaptive(x0 State, cfg Config) (*Result, error) {
	result := &Result{
		States: make([]State, 0, int(cfg.Duration/cfg.Dt)+1),
		Times:  make([]float64, 0, int(cfg.Duration/cfg.Dt)+1),
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	for i := 0; t < cfg.Duration; i++ {
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		last := false
		if t+dt >= cfg.Duration {
			dt = cfg.Duration - t
			last = true
		}

		newX, taken, next, err := s.adaptiveStep(x, t, dt, cfg)
		if err != nil {
			return result, &SimulationError{Step: i, Time: t, Wrapped: err}
		}
		if cfg.ValidateState && !newX.IsValid() {
			return result, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}

		x = newX
		if last && taken == dt {
			t = cfg.Duration
		} else {
			t += taken
		}
		dt = next
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return InvalidParameter("dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return InvalidParameter("duration must be positive, got %g", cfg.Duration)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return InvalidParameter("tolerance must be positive for adaptive stepping")
	}
	return nil
}

// adaptiveStep returns the new state, the step actually taken and the
// suggested next step.
func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		newX, taken, next, err := adaptive.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
		if err != nil {
			return nil, 0, 0, err
		}
		return newX, taken, s.clampDt(next, cfg), nil
	}

	x1, err := s.integrator.Step(s.sys, x, t, dt)
	if err != nil {
		return nil, 0, 0, err
	}
	xHalf, err := s.integrator.Step(s.sys, x, t, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}
	x2, err := s.integrator.Step(s.sys, xHalf, t+dt/2, dt/2)
	if err != nil {
		return nil, 0, 0, err
	}

	errEst := x1.Sub(x2).Norm()

	if errEst > cfg.Tolerance {
		if dt/2 < cfg.MinDt {
			return nil, 0, 0, ErrStepTooSmall
		}
		return s.adaptiveStep(x, t, dt/2, cfg)
	}

	next := dt
	if errEst < cfg.Tolerance/10 {
		next = dt * 2
	}

	return x2, dt, s.clampDt(next, cfg), nil
}

func (s *Simulator) clampDt(dt float64, cfg Config) float64 {
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		dt = cfg.MaxDt
	}
	if cfg.MinDt > 0 && dt < cfg.MinDt {
		dt = cfg.MinDt
	}
	return dt
}
