// Package solver integrates particle trajectories over a whole number of
// gyro-orbits.
//
// Two paths share one step plan (see [PlanSteps]): the relativistic Boris
// pusher ([Boris]) and the generic ODE path, which drives a
// [physics.Model] with the RK4, RK45 or Euler steppers through
// [dynamo.Simulator]. [Solve] selects between them from [Options].
//
// A solve is synchronous and keeps all of its state on the call stack, so
// concurrent solves are safe as long as the field model is not mutated.
package solver
