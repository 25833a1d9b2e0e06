package viz

import (
	"math"

	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

// Runner is a live simulation the view can step and draw.
type Runner interface {
	sim.Process
	Energy() float64
	Positions() []r2.Vec
	// Anchor is a fixed point joined to the first body, if any.
	Anchor() (r2.Vec, bool)
	// Frame is the region the camera should show.
	Frame() Viewport
}

// Scene names a runner and knows how to build it from scratch, which the
// view uses on start and on restart.
type Scene struct {
	Name  string
	Build func() (Runner, error)
}

type pendulumRunner struct {
	*bodies.Pendulum
}

func (r pendulumRunner) Positions() []r2.Vec { return []r2.Vec{r.Position()} }

func (r pendulumRunner) Anchor() (r2.Vec, bool) { return r.Config().Center, true }

func (r pendulumRunner) Frame() Viewport {
	return Viewport{Center: r.Config().Center, HalfExtent: 1.2 * r.Config().Length}
}

// PendulumScene shows the pendulum returned by build, called again on restart.
func PendulumScene(name string, build func() (*bodies.Pendulum, error)) Scene {
	return Scene{
		Name: name,
		Build: func() (Runner, error) {
			p, err := build()
			if err != nil {
				return nil, err
			}
			return pendulumRunner{p}, nil
		},
	}
}

type systemRunner struct {
	*bodies.System
}

func (r systemRunner) Positions() []r2.Vec {
	state := r.State()
	out := make([]r2.Vec, len(state))
	for i, b := range state {
		out[i] = b.Pos
	}
	return out
}

func (r systemRunner) Anchor() (r2.Vec, bool) { return r2.Vec{}, false }

// Frame encloses every body with some margin.
func (r systemRunner) Frame() Viewport {
	pos := r.Positions()
	lo, hi := pos[0], pos[0]
	for _, p := range pos[1:] {
		lo = r2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = r2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	span := math.Max(hi.X-lo.X, hi.Y-lo.Y)
	if span == 0 {
		span = math.Max(r2.Norm(lo), 1)
	}
	return Viewport{Center: r2.Scale(0.5, r2.Add(lo, hi)), HalfExtent: 0.6 * span}
}

// SystemScene shows the system returned by build, called again on restart.
func SystemScene(name string, build func() (*bodies.System, error)) Scene {
	return Scene{
		Name: name,
		Build: func() (Runner, error) {
			s, err := build()
			if err != nil {
				return nil, err
			}
			return systemRunner{s}, nil
		},
	}
}
