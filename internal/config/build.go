package config

import (
	"fmt"
	"math"

	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/physics"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r2"
)

// RunnerConfig returns the pendulum runner configuration described by c.
func (c *Config) RunnerConfig() bodies.PendulumConfig {
	p := c.Pendulum
	return bodies.PendulumConfig{
		Mass:      p.Mass,
		Length:    p.Length,
		Center:    p.Center.R2(),
		InitAngle: p.InitAngle,
		InitSpeed: p.InitSpeed,
		Gravity:   p.Gravity,
		Dt:        c.Dt,
		Runtime:   c.Runtime,
	}
}

func (c *Config) BuildPendulum() (*bodies.Pendulum, error) {
	if c.Model != ModelPendulum {
		return nil, fmt.Errorf("config is for model %q, not %s", c.Model, ModelPendulum)
	}
	integ, err := integrators.Lookup[physics.AngularState](c.Integrator)
	if err != nil {
		return nil, err
	}
	return bodies.NewPendulum(c.RunnerConfig(), integ)
}

// Planets expands the body list, or the ring when no bodies are listed, and
// applies the seeded velocity perturbation.
func (c *Config) Planets() ([]*bodies.Planet, error) {
	rnd := rand.New(rand.NewSource(uint64(c.Seed)))

	specs := c.System.Bodies
	if len(specs) == 0 && c.System.Ring != nil {
		specs = ringBodies(*c.System.Ring, rnd)
	}

	planets := make([]*bodies.Planet, 0, len(specs))
	for _, b := range specs {
		vel := b.Velocity.R2()
		if c.System.Perturb > 0 {
			vel = r2.Add(vel, r2.Vec{
				X: c.System.Perturb * (2*rnd.Float64() - 1),
				Y: c.System.Perturb * (2*rnd.Float64() - 1),
			})
		}
		p, err := bodies.NewPlanet(bodies.PlanetConfig{
			Name:     b.Name,
			Mass:     b.Mass,
			Position: b.Position.R2(),
			Velocity: vel,
		})
		if err != nil {
			return nil, err
		}
		planets = append(planets, p)
	}
	return planets, nil
}

func ringBodies(ring RingConfig, rnd *rand.Rand) []BodyConfig {
	out := make([]BodyConfig, ring.Count)
	for i := range out {
		angle := 2 * math.Pi * float64(i) / float64(ring.Count)
		mass := ring.MassMin
		if ring.MassMax > ring.MassMin {
			mass += (ring.MassMax - ring.MassMin) * rnd.Float64()
		}
		sin, cos := math.Sincos(angle)
		out[i] = BodyConfig{
			Mass:     mass,
			Position: Vec2{ring.Radius * cos, ring.Radius * sin},
			Velocity: Vec2{-ring.Speed * sin, ring.Speed * cos},
		}
	}
	return out
}

func (c *Config) BuildSystem() (*bodies.System, error) {
	if c.Model != ModelNBody {
		return nil, fmt.Errorf("config is for model %q, not %s", c.Model, ModelNBody)
	}
	integ, err := integrators.Lookup[physics.JointState](c.Integrator)
	if err != nil {
		return nil, err
	}
	planets, err := c.Planets()
	if err != nil {
		return nil, err
	}
	return bodies.NewSystem(planets, bodies.SystemConfig{
		G:         c.System.G,
		Softening: c.System.Softening,
		Theta:     c.System.Theta,
		Dt:        c.Dt,
		Runtime:   c.Runtime,
	}, integ)
}
