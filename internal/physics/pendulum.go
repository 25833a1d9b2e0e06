package physics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const EarthGravity = 9.80665

// axisTolerance is the smallest tangent x component still used to recover
// the angular acceleration; below it the y component is used instead.
const axisTolerance = 1e-9

// AngularState is (theta, omega). Theta is measured counter-clockwise from
// the downward vertical.
type AngularState struct {
	Theta float64
	Omega float64
}

func (s AngularState) Add(other AngularState) AngularState {
	return AngularState{Theta: s.Theta + other.Theta, Omega: s.Omega + other.Omega}
}

func (s AngularState) Scale(factor float64) AngularState {
	return AngularState{Theta: s.Theta * factor, Omega: s.Omega * factor}
}

func (s AngularState) Flatten() dynamo.State {
	return dynamo.State{s.Theta, s.Omega}
}

type Pendulum struct {
	Mass    float64
	Length  float64
	Gravity r2.Vec
}

func NewPendulum(length float64) *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  length,
		Gravity: r2.Vec{Y: -EarthGravity},
	}
}

// quarterTurn rotates by +90 degrees.
func quarterTurn(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// ToLinear converts an angular state into the bob position relative to the
// pivot, the unit tangent of the swing and the linear velocity.
func (p *Pendulum) ToLinear(x AngularState) (pos, tangent, vel r2.Vec) {
	radial := r2.Vec{X: math.Sin(x.Theta), Y: -math.Cos(x.Theta)}
	tangent = quarterTurn(radial)
	vel = r2.Scale(x.Omega*p.Length, tangent)
	pos = r2.Scale(p.Length, radial)
	return pos, tangent, vel
}

func (p *Pendulum) Derive(x AngularState, t float64) AngularState {
	_, tangent, _ := p.ToLinear(x)
	aTangent := r2.Scale(r2.Dot(p.Gravity, tangent), tangent)

	var alpha float64
	if math.Abs(tangent.X) > axisTolerance {
		alpha = aTangent.X / (tangent.X * p.Length)
	} else {
		alpha = aTangent.Y / (tangent.Y * p.Length)
	}

	return AngularState{Theta: x.Omega, Omega: alpha}
}

func (p *Pendulum) Energy(x AngularState) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = m * g * L * (1 - cos(theta)), zero at the bottom of the swing
	pos, _, vel := p.ToLinear(x)
	ke := 0.5 * p.Mass * r2.Dot(vel, vel)
	pe := p.Mass * (r2.Norm(p.Gravity)*p.Length - r2.Dot(p.Gravity, pos))
	return ke + pe
}

// SmallAnglePeriod is 2*pi*sqrt(L/g).
func (p *Pendulum) SmallAnglePeriod() float64 {
	return 2 * math.Pi * math.Sqrt(p.Length/r2.Norm(p.Gravity))
}
