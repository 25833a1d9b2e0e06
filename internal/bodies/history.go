package bodies

import "gonum.org/v1/gonum/spatial/r2"

// Trajectory is a per-body record indexed by tick.
type Trajectory struct {
	Time     []float64
	Position []r2.Vec
	Velocity []r2.Vec
}

func newTrajectory(capacity int) Trajectory {
	return Trajectory{
		Time:     make([]float64, 0, capacity),
		Position: make([]r2.Vec, 0, capacity),
		Velocity: make([]r2.Vec, 0, capacity),
	}
}

func (h *Trajectory) append(t float64, pos, vel r2.Vec) {
	h.Time = append(h.Time, t)
	h.Position = append(h.Position, pos)
	h.Velocity = append(h.Velocity, vel)
}

func (h *Trajectory) Len() int { return len(h.Time) }

// PendulumHistory adds the angular source of truth to the derived
// Cartesian trajectory.
type PendulumHistory struct {
	Trajectory
	Angle           []float64
	AngularVelocity []float64
}
