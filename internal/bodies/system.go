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
)

type SystemConfig struct {
	// G is the gravitational constant; zero uses physics.DefaultG.
	G float64
	// Softening is the Plummer length. Zero keeps exact gravity, in which
	// case coinciding bodies abort the run with dynamo.ErrSingularity.
	Softening float64
	// Theta enables the Barnes-Hut approximation for large systems.
	Theta   float64
	Dt      float64
	Runtime float64
}

func DefaultSystemConfig() SystemConfig {
	cfg := dynamo.DefaultConfig()
	return SystemConfig{
		G:       physics.DefaultG,
		Dt:      cfg.Dt,
		Runtime: cfg.Runtime,
	}
}

// System integrates its planets as one joint state so every acceleration
// in a step comes from the same positions.
type System struct {
	cfg     SystemConfig
	planets []*Planet
	model   *physics.Gravity
	integ   dynamo.Integrator[physics.JointState]
	state   physics.JointState
	step    int
	history []physics.JointState
	times   []float64
	metrics []dynamo.Metric[physics.JointState]
	log     *slog.Logger
}

// NewSystem couples planets into a System. Unnamed planets are labelled
// Planet1, Planet2, ... in order. A nil integrator selects RK4.
func NewSystem(planets []*Planet, cfg SystemConfig, integ dynamo.Integrator[physics.JointState]) (*System, error) {
	if len(planets) == 0 {
		return nil, dynamo.ErrNoBodies
	}
	if cfg.G < 0 || cfg.Softening < 0 || cfg.Theta < 0 {
		return nil, fmt.Errorf("%w: G, softening and theta must be non-negative", dynamo.ErrParameterBounds)
	}
	if err := (dynamo.Config{Dt: cfg.Dt, Runtime: cfg.Runtime}).Validate(); err != nil {
		return nil, err
	}
	if cfg.G == 0 {
		cfg.G = physics.DefaultG
	}
	if integ == nil {
		integ = integrators.NewRK4[physics.JointState]()
	}

	taken := make(map[string]bool, len(planets))
	for i, p := range planets {
		if p == nil {
			return nil, fmt.Errorf("%w: planet %d is nil", dynamo.ErrParameterBounds, i)
		}
		if p.dt != 0 && p.dt != cfg.Dt {
			return nil, fmt.Errorf("%w: planet %d (%q) dt %g differs from system dt %g",
				dynamo.ErrParameterBounds, i, p.name, p.dt, cfg.Dt)
		}
		if p.runtime != 0 && p.runtime != cfg.Runtime {
			return nil, fmt.Errorf("%w: planet %d (%q) runtime %g differs from system runtime %g",
				dynamo.ErrParameterBounds, i, p.name, p.runtime, cfg.Runtime)
		}
		if p.name != "" {
			taken[p.name] = true
		}
	}

	// planets are only touched once every one of them is accepted
	namer := NewNamer("Planet")
	masses := make([]float64, len(planets))
	state := make(physics.JointState, len(planets))
	for i, p := range planets {
		p.dt, p.runtime = cfg.Dt, cfg.Runtime
		for p.name == "" {
			if name := namer.Next(); !taken[name] {
				p.name = name
			}
		}
		masses[i] = p.mass
		state[i] = p.state
	}

	model := physics.NewGravity(cfg.G, masses)
	model.Softening = cfg.Softening
	model.Theta = cfg.Theta

	steps := dynamo.Config{Dt: cfg.Dt, Runtime: cfg.Runtime}.Steps()
	for _, p := range planets {
		p.history = newTrajectory(steps)
	}

	return &System{
		cfg:     cfg,
		planets: planets,
		model:   model,
		integ:   integ,
		state:   state,
		history: make([]physics.JointState, 0, steps),
		times:   make([]float64, 0, steps),
		log:     logging.Discard(),
	}, nil
}

func (s *System) SetLogger(l *slog.Logger) { s.log = logging.OrDiscard(l) }

func (s *System) AddMetric(m dynamo.Metric[physics.JointState]) {
	s.metrics = append(s.metrics, m)
}

func (s *System) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *System) Period() float64  { return s.cfg.Dt }
func (s *System) Runtime() float64 { return s.cfg.Runtime }

func (s *System) Config() SystemConfig          { return s.cfg }
func (s *System) Model() *physics.Gravity       { return s.model }
func (s *System) Planets() []*Planet            { return s.planets }
func (s *System) State() physics.JointState     { return s.state.Clone() }
func (s *System) History() []physics.JointState { return s.history }
func (s *System) Times() []float64              { return s.times }
func (s *System) Energy() float64               { return s.model.Energy(s.state) }

// Names lists planet names in joint-state order.
func (s *System) Names() []string {
	names := make([]string, len(s.planets))
	for i, p := range s.planets {
		names[i] = p.name
	}
	return names
}

// Tick records the joint state at now, advances it by one step and hands
// each planet its new slice.
func (s *System) Tick(now float64) error {
	next := s.integ.Step(s.model.Derive, s.state, now, s.cfg.Dt)
	for i, b := range next {
		if (physics.JointState{b}).Flatten().IsValid() {
			continue
		}
		return &dynamo.SimulationError{
			Body:    s.planets[i].name,
			Step:    s.step,
			Time:    now,
			State:   s.state.Flatten(),
			Wrapped: dynamo.ErrSingularity,
		}
	}

	s.history = append(s.history, s.state.Clone())
	s.times = append(s.times, now)
	for _, m := range s.metrics {
		m.Observe(s.state, now)
	}

	for i, p := range s.planets {
		p.Update(now, next[i])
	}
	s.state = next
	s.step++
	return nil
}

// Run drives the system alone until its runtime elapses.
func (s *System) Run(ctx context.Context) error {
	for _, m := range s.metrics {
		m.Reset()
	}
	sched := sim.New(s.log)
	if err := sched.Register(s); err != nil {
		return err
	}
	s.log.Debug("system run", "bodies", len(s.planets), "steps", dynamo.Config{Dt: s.cfg.Dt, Runtime: s.cfg.Runtime}.Steps())
	_, err := sched.Run(ctx)
	return err
}
