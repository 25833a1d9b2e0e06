package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

const DefaultG = 6.67430e-11

// treeThreshold is the body count from which a positive Theta switches to
// the Barnes-Hut approximation.
const treeThreshold = 64

// BodyState is (position, velocity) of one point mass.
type BodyState struct {
	Pos r2.Vec
	Vel r2.Vec
}

func (b BodyState) Add(other BodyState) BodyState {
	return BodyState{Pos: r2.Add(b.Pos, other.Pos), Vel: r2.Add(b.Vel, other.Vel)}
}

func (b BodyState) Scale(factor float64) BodyState {
	return BodyState{Pos: r2.Scale(factor, b.Pos), Vel: r2.Scale(factor, b.Vel)}
}

// JointState is the concatenation, in body order, of every body's state.
// Its shape is (n, 2, 2).
type JointState []BodyState

func (s JointState) Add(other JointState) JointState {
	out := make(JointState, len(s))
	for i := range s {
		out[i] = s[i].Add(other[i])
	}
	return out
}

func (s JointState) Scale(factor float64) JointState {
	out := make(JointState, len(s))
	for i := range s {
		out[i] = s[i].Scale(factor)
	}
	return out
}

func (s JointState) Clone() JointState {
	out := make(JointState, len(s))
	copy(out, s)
	return out
}

// Flatten lays the state out row-major as x, y, vx, vy per body.
func (s JointState) Flatten() dynamo.State {
	flat := make(dynamo.State, 0, len(s)*4)
	for _, b := range s {
		flat = append(flat, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y)
	}
	return flat
}

func JointStateFrom(flat dynamo.State) (JointState, error) {
	if len(flat)%4 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of 4", dynamo.ErrDimensionMismatch, len(flat))
	}
	s := make(JointState, len(flat)/4)
	for i := range s {
		s[i] = BodyState{
			Pos: r2.Vec{X: flat[i*4], Y: flat[i*4+1]},
			Vel: r2.Vec{X: flat[i*4+2], Y: flat[i*4+3]},
		}
	}
	return s, nil
}

type Gravity struct {
	G         float64
	Masses    []float64
	Softening float64
	// Theta is the Barnes-Hut opening angle. Zero keeps the exact sum.
	Theta float64
}

func NewGravity(g float64, masses []float64) *Gravity {
	return &Gravity{
		G:      g,
		Masses: append([]float64(nil), masses...),
	}
}

// Check reports whether x has one body per configured mass.
func (g *Gravity) Check(x JointState) error {
	if len(x) != len(g.Masses) {
		return fmt.Errorf("%w: state has %d bodies, model has %d masses",
			dynamo.ErrDimensionMismatch, len(x), len(g.Masses))
	}
	return nil
}

// Derive returns (velocity, acceleration) for every body. All accelerations
// are computed from the same synchronized state.
func (g *Gravity) Derive(x JointState, t float64) JointState {
	if err := g.Check(x); err != nil {
		panic(err)
	}

	acc := g.accelerations(x)
	dx := make(JointState, len(x))
	for i := range x {
		dx[i] = BodyState{Pos: x[i].Vel, Vel: acc[i]}
	}
	return dx
}

func (g *Gravity) accelerations(x JointState) []r2.Vec {
	if g.Theta > 0 && len(x) >= treeThreshold {
		return g.treeAccelerations(x)
	}
	return g.pairwiseAccelerations(x)
}

// inverseCube returns 1/|d|^3, softened when configured. Zero separation
// without softening yields NaN.
func (g *Gravity) inverseCube(d r2.Vec) float64 {
	d2 := d.X*d.X + d.Y*d.Y + g.Softening*g.Softening
	if d2 == 0 {
		return math.NaN()
	}
	return 1.0 / (d2 * math.Sqrt(d2))
}

func (g *Gravity) pairwiseAccelerations(x JointState) []r2.Vec {
	acc := make([]r2.Vec, len(x))
	for i := range x {
		var a r2.Vec
		for j := range x {
			if i == j {
				continue
			}
			d := r2.Sub(x[j].Pos, x[i].Pos)
			a = r2.Add(a, r2.Scale(g.G*g.Masses[j]*g.inverseCube(d), d))
		}
		acc[i] = a
	}
	return acc
}

type particle struct {
	pos  r2.Vec
	mass float64
}

func (p *particle) Coord2() r2.Vec { return p.pos }
func (p *particle) Mass() float64  { return p.mass }

func (g *Gravity) treeAccelerations(x JointState) []r2.Vec {
	particles := make([]barneshut.Particle2, len(x))
	for i := range x {
		particles[i] = &particle{pos: x[i].Pos, mass: g.Masses[i]}
	}

	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		// coincident or unresolvable coordinates; the exact sum reports them
		return g.pairwiseAccelerations(x)
	}

	// acceleration per unit G exerted on p1 by the (possibly aggregated) mass m2
	field := func(p1, p2 barneshut.Particle2, m1, m2 float64, v r2.Vec) r2.Vec {
		if p2 != nil {
			if p1 == p2 {
				return r2.Vec{}
			}
			// barneshut stores a leaf's center divided by its mass; only
			// aggregate centers are usable, so leaves use the particle itself.
			v = r2.Sub(p2.Coord2(), p1.Coord2())
		}
		return r2.Scale(m2*g.inverseCube(v), v)
	}

	acc := make([]r2.Vec, len(x))
	for i, p := range particles {
		acc[i] = r2.Scale(g.G, plane.ForceOn(p, g.Theta, field))
	}
	return acc
}

func (g *Gravity) Energy(x JointState) float64 {
	eps2 := g.Softening * g.Softening
	ke, pe := 0.0, 0.0

	for i := range x {
		ke += 0.5 * g.Masses[i] * r2.Dot(x[i].Vel, x[i].Vel)
		for j := i + 1; j < len(x); j++ {
			d := r2.Sub(x[j].Pos, x[i].Pos)
			r := math.Sqrt(d.X*d.X + d.Y*d.Y + eps2)
			pe -= g.G * g.Masses[i] * g.Masses[j] / r
		}
	}

	return ke + pe
}

func (g *Gravity) Momentum(x JointState) r2.Vec {
	var p r2.Vec
	for i := range x {
		p = r2.Add(p, r2.Scale(g.Masses[i], x[i].Vel))
	}
	return p
}

func (g *Gravity) AngularMomentum(x JointState) float64 {
	L := 0.0
	for i := range x {
		L += g.Masses[i] * r2.Cross(x[i].Pos, x[i].Vel)
	}
	return L
}
