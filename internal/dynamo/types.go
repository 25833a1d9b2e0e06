package dynamo

import (
	"fmt"
	"math"
)

// Vector is any state representation closed under addition and scaling.
type Vector[V any] interface {
	Add(other V) V
	Scale(factor float64) V
}

// Derivative maps (state, time) to the time derivative of the state.
type Derivative[V any] func(x V, t float64) V

type Integrator[V Vector[V]] interface {
	Step(f Derivative[V], x V, t, dt float64) V
}

// Flattener exposes a state as flat numbers for validation and persistence.
type Flattener interface {
	Flatten() State
}

type Metric[V any] interface {
	Name() string
	Observe(x V, t float64)
	Value() float64
	Reset()
}

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

func (s State) Flatten() State { return s }

// Config fixes the step size and total simulated runtime of a run.
type Config struct {
	Dt      float64
	Runtime float64
}

func DefaultConfig() Config {
	return Config{
		Dt:      1.0 / 3000,
		Runtime: 15.0,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrParameterBounds, c.Dt)
	}
	if c.Runtime < 0 || math.IsNaN(c.Runtime) || math.IsInf(c.Runtime, 0) {
		return fmt.Errorf("%w: runtime must be non-negative, got %g", ErrParameterBounds, c.Runtime)
	}
	return nil
}

// Steps is the number of ticks a run executes: every k >= 0 with k*dt < runtime.
func (c Config) Steps() int {
	if c.Validate() != nil {
		return 0
	}
	n := int(math.Ceil(c.Runtime / c.Dt))
	for n > 0 && float64(n-1)*c.Dt >= c.Runtime {
		n--
	}
	for float64(n)*c.Dt < c.Runtime {
		n++
	}
	return n
}
