// Package dynamo provides core simulation primitives for mechanical systems.
//
// The package defines the types shared by every model and runner:
//
//   - [Vector]: any state closed under addition and scalar multiplication
//   - [Derivative]: a state equation dX/dt = f(X, t)
//   - [Integrator]: fixed-step numerical stepper over a [Vector]
//   - [State]: flat float vector used for validation and persistence
//   - [Config]: step size and runtime of a run
//
// # Example
//
//	model := physics.NewPendulum(1.0)
//	rk4 := integrators.NewRK4[physics.AngularState]()
//	next := rk4.Step(model.Derive, x, t, dt)
//
// # Errors
//
// Configuration problems are reported with sentinel errors such as
// [ErrNoBodies]. Numerical faults found while stepping are wrapped in a
// [SimulationError] carrying the step, time and offending state.
package dynamo
