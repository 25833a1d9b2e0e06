// Package bodies holds the simulated entities: a pendulum runner, planets
// and the System that integrates planets jointly.
//
// Each runner implements [sim.Process] and records its state once per tick,
// before the step is applied, so history[0] is always the initial condition.
package bodies
