// Package dynamo provides the numerical primitives shared by the particle
// solvers.
//
// The package defines the fundamental interfaces and types for integrating
// ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE right-hand sides (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: drives a System with an Integrator over a fixed duration
//   - [Trajectory]: time, position, velocity and radiated-energy series of one particle
//
// # Example
//
//	sys, err := physics.NewModel(physics.KindLorentz, p, f, 0)
//	if err != nil {
//		return err
//	}
//	s := dynamo.New(sys, integrators.NewRK4())
//	result, err := s.Run(x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. A System implementation holds
// only immutable parameters, so one System may be shared by several
// Simulators running on different goroutines as long as each run owns its
// state vectors.
package dynamo
