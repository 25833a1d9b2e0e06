package integrators

import "github.com/san-kum/mechsim/internal/dynamo"

type Euler[V dynamo.Vector[V]] struct{}

func NewEuler[V dynamo.Vector[V]]() *Euler[V] {
	return &Euler[V]{}
}

func (e *Euler[V]) Step(f dynamo.Derivative[V], x V, t, dt float64) V {
	return x.Add(f(x, t).Scale(dt))
}
