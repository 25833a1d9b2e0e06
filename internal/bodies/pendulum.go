package bodies

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/logging"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/san-kum/mechsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const bobName = "bob"

type PendulumConfig struct {
	Mass   float64
	Length float64
	// Center is the pivot position.
	Center    r2.Vec
	InitAngle float64
	// InitSpeed is the initial tangential speed of the bob.
	InitSpeed float64
	// Gravity is the downward acceleration; zero uses standard gravity.
	Gravity float64
	Dt      float64
	Runtime float64
}

func DefaultPendulumConfig() PendulumConfig {
	cfg := dynamo.DefaultConfig()
	return PendulumConfig{
		Mass:    1.0,
		Length:  1.0,
		Gravity: physics.EarthGravity,
		Dt:      cfg.Dt,
		Runtime: cfg.Runtime,
	}
}

type Pendulum struct {
	cfg     PendulumConfig
	model   *physics.Pendulum
	integ   dynamo.Integrator[physics.AngularState]
	state   physics.AngularState
	step    int
	history PendulumHistory
	metrics []dynamo.Metric[physics.AngularState]
	log     *slog.Logger
}

// NewPendulum builds a pendulum runner. A nil integrator selects RK4.
func NewPendulum(cfg PendulumConfig, integ dynamo.Integrator[physics.AngularState]) (*Pendulum, error) {
	if !(cfg.Mass > 0) {
		return nil, fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, cfg.Mass)
	}
	if !(cfg.Length > 0) {
		return nil, fmt.Errorf("%w: length must be positive, got %g", dynamo.ErrParameterBounds, cfg.Length)
	}
	if cfg.Gravity < 0 {
		return nil, fmt.Errorf("%w: gravity must be non-negative, got %g", dynamo.ErrParameterBounds, cfg.Gravity)
	}
	if err := (dynamo.Config{Dt: cfg.Dt, Runtime: cfg.Runtime}).Validate(); err != nil {
		return nil, err
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = physics.EarthGravity
	}
	if integ == nil {
		integ = integrators.NewRK4[physics.AngularState]()
	}

	model := physics.NewPendulum(cfg.Length)
	model.Mass = cfg.Mass
	model.Gravity = r2.Vec{Y: -cfg.Gravity}

	steps := dynamo.Config{Dt: cfg.Dt, Runtime: cfg.Runtime}.Steps()
	return &Pendulum{
		cfg:   cfg,
		model: model,
		integ: integ,
		state: physics.AngularState{
			Theta: cfg.InitAngle,
			Omega: cfg.InitSpeed / cfg.Length,
		},
		history: PendulumHistory{
			Trajectory:      newTrajectory(steps),
			Angle:           make([]float64, 0, steps),
			AngularVelocity: make([]float64, 0, steps),
		},
		log: logging.Discard(),
	}, nil
}

func (p *Pendulum) SetLogger(l *slog.Logger) { p.log = logging.OrDiscard(l) }

func (p *Pendulum) AddMetric(m dynamo.Metric[physics.AngularState]) {
	p.metrics = append(p.metrics, m)
}

func (p *Pendulum) Metrics() map[string]float64 {
	out := make(map[string]float64, len(p.metrics))
	for _, m := range p.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (p *Pendulum) Period() float64  { return p.cfg.Dt }
func (p *Pendulum) Runtime() float64 { return p.cfg.Runtime }

func (p *Pendulum) Config() PendulumConfig      { return p.cfg }
func (p *Pendulum) Model() *physics.Pendulum    { return p.model }
func (p *Pendulum) State() physics.AngularState { return p.state }
func (p *Pendulum) History() *PendulumHistory   { return &p.history }
func (p *Pendulum) Energy() float64             { return p.model.Energy(p.state) }

// Position is the current bob position in world coordinates.
func (p *Pendulum) Position() r2.Vec {
	pos, _, _ := p.model.ToLinear(p.state)
	return r2.Add(p.cfg.Center, pos)
}

// Tick records the current state at now and advances it by one step.
func (p *Pendulum) Tick(now float64) error {
	next := p.integ.Step(p.model.Derive, p.state, now, p.cfg.Dt)
	if !next.Flatten().IsValid() {
		return &dynamo.SimulationError{
			Body:    bobName,
			Step:    p.step,
			Time:    now,
			State:   p.state.Flatten(),
			Wrapped: dynamo.ErrSingularity,
		}
	}

	p.record(now)
	for _, m := range p.metrics {
		m.Observe(p.state, now)
	}

	p.state = next
	p.step++
	return nil
}

func (p *Pendulum) record(now float64) {
	pos, _, vel := p.model.ToLinear(p.state)
	p.history.append(now, r2.Add(p.cfg.Center, pos), vel)
	p.history.Angle = append(p.history.Angle, p.state.Theta)
	p.history.AngularVelocity = append(p.history.AngularVelocity, p.state.Omega)
}

// Run drives the pendulum alone until its runtime elapses.
func (p *Pendulum) Run(ctx context.Context) error {
	for _, m := range p.metrics {
		m.Reset()
	}
	sched := sim.New(p.log)
	if err := sched.Register(p); err != nil {
		return err
	}
	_, err := sched.Run(ctx)
	return err
}
