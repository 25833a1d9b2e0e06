package bodies

import (
	"fmt"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

type PlanetConfig struct {
	// Name is optional; a System labels unnamed planets.
	Name     string
	Mass     float64
	Position r2.Vec
	Velocity r2.Vec
	// Dt and Runtime may be left zero to inherit the system's.
	Dt      float64
	Runtime float64
}

// Planet is a point mass with its own state and trajectory. Its state is
// advanced by the System it belongs to.
type Planet struct {
	name    string
	mass    float64
	dt      float64
	runtime float64
	state   physics.BodyState
	history Trajectory
}

func NewPlanet(cfg PlanetConfig) (*Planet, error) {
	if !(cfg.Mass > 0) {
		return nil, fmt.Errorf("%w: planet %q mass must be positive, got %g",
			dynamo.ErrParameterBounds, cfg.Name, cfg.Mass)
	}
	if cfg.Dt < 0 || cfg.Runtime < 0 {
		return nil, fmt.Errorf("%w: planet %q dt and runtime must be non-negative",
			dynamo.ErrParameterBounds, cfg.Name)
	}
	return &Planet{
		name:    cfg.Name,
		mass:    cfg.Mass,
		dt:      cfg.Dt,
		runtime: cfg.Runtime,
		state:   physics.BodyState{Pos: cfg.Position, Vel: cfg.Velocity},
	}, nil
}

func (p *Planet) Name() string             { return p.name }
func (p *Planet) Mass() float64            { return p.mass }
func (p *Planet) Dt() float64              { return p.dt }
func (p *Planet) Runtime() float64         { return p.runtime }
func (p *Planet) State() physics.BodyState { return p.state }
func (p *Planet) History() *Trajectory     { return &p.history }

// Update snapshots the current state at time t, then commits next.
func (p *Planet) Update(t float64, next physics.BodyState) {
	p.history.append(t, p.state.Pos, p.state.Vel)
	p.state = next
}
