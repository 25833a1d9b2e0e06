package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrSingularity indicates the state equation hit an undefined point,
	// such as two gravitating bodies at zero separation.
	ErrSingularity = errors.New("dynamo: numerical singularity in state equation")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDimensionMismatch indicates mismatched state/model dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrNoBodies indicates an aggregate was configured without members.
	ErrNoBodies = errors.New("dynamo: system requires at least one body")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Body    string
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
	}
	return fmt.Sprintf("%s: step %d (t=%.4f): %v", e.Body, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
