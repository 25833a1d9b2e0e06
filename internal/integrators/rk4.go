package integrators

import "github.com/san-kum/mechsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta stepper. It works on any
// state that supports addition and scaling, so the same code advances a
// pendulum's (theta, omega) pair and a full N-body joint state.
type RK4[V dynamo.Vector[V]] struct{}

func NewRK4[V dynamo.Vector[V]]() *RK4[V] {
	return &RK4[V]{}
}

func (r *RK4[V]) Step(f dynamo.Derivative[V], x V, t, dt float64) V {
	half := dt * 0.5

	k1 := f(x, t)
	k2 := f(x.Add(k1.Scale(half)), t+half)
	k3 := f(x.Add(k2.Scale(half)), t+half)
	k4 := f(x.Add(k3.Scale(dt)), t+dt)

	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return x.Add(sum.Scale(dt / 6.0))
}
