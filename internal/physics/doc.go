// Package physics provides the state equations simulated by mechsim.
//
// Each model exposes a Derive method with the [dynamo.Derivative] shape
// so it can be handed straight to an integrator:
//
//   - [Pendulum]: pivoted pendulum in angular coordinates (theta, omega)
//   - [Gravity]: mutually attracting point masses under Newtonian gravity
//
// State types ([AngularState], [JointState]) satisfy [dynamo.Vector] and
// [dynamo.Flattener].
//
// # Singularities
//
// Two bodies at zero separation make the gravitational acceleration
// undefined. With Softening == 0 the derivative reports NaN so runners can
// abort with [dynamo.ErrSingularity]; a positive Softening regularizes the
// force instead.
package physics
