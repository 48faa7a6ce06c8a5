// Package physics models a charged particle moving through a magnetic field.
//
// It provides the physical constants and particle description, the
// cyclotron-frequency calculator, closed-form solutions for uniform fields
// and the right-hand-side models integrated by the solvers:
//
//   - [Lorentz]: magnetic Lorentz force, dv/dt = v × ω
//   - [FordOConnell]: Lorentz force plus Larmor radiation reaction
//   - [RelativisticLorentz]: Lorentz force on u = γv
//   - [RelativisticFordOConnell]: radiation reaction on u = γv
//   - [PlanarFord]: Ford-O'Connell motion confined to the xy plane
//
// Every model implements [dynamo.System] and holds only immutable
// parameters, so one model may be shared by concurrent solves.
//
// # Units
//
// SI throughout: metres, seconds, kilograms, coulombs and tesla. Kinetic
// energies passed to [CalculateOmega] and [SpeedFromKineticEnergy] are in
// keV.
package physics
