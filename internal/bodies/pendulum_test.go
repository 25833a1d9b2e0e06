package bodies

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/metrics"
	"github.com/san-kum/mechsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func newTestPendulum(t *testing.T, mutate func(*PendulumConfig)) *Pendulum {
	t.Helper()
	cfg := DefaultPendulumConfig()
	cfg.Runtime = 1.0
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewPendulum(cfg, nil)
	if err != nil {
		t.Fatalf("NewPendulum: %v", err)
	}
	return p
}

func TestPendulumAtRestStaysAtRest(t *testing.T) {
	p := newTestPendulum(t, nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	h := p.History()
	if h.Len() != 3000 {
		t.Fatalf("expected 3000 samples, got %d", h.Len())
	}
	for i := range h.Angle {
		if h.Angle[i] != 0 || h.AngularVelocity[i] != 0 {
			t.Fatalf("state changed at step %d: theta=%g omega=%g", i, h.Angle[i], h.AngularVelocity[i])
		}
		if h.Position[i] != (r2.Vec{Y: -1}) {
			t.Fatalf("bob moved at step %d: %v", i, h.Position[i])
		}
	}
	if p.State() != (physics.AngularState{}) {
		t.Errorf("final state should be zero, got %+v", p.State())
	}
}

func TestPendulumHistoryStartsAtInitialCondition(t *testing.T) {
	center := r2.Vec{X: 2, Y: 3}
	p := newTestPendulum(t, func(c *PendulumConfig) {
		c.Center = center
		c.InitAngle = 0.3
		c.InitSpeed = 0.5
		c.Length = 2
		c.Runtime = 0.1
	})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	h := p.History()
	if h.Time[0] != 0 || h.Angle[0] != 0.3 || h.AngularVelocity[0] != 0.25 {
		t.Errorf("first sample is not the initial condition: t=%g theta=%g omega=%g",
			h.Time[0], h.Angle[0], h.AngularVelocity[0])
	}

	want := r2.Add(center, r2.Vec{X: 2 * math.Sin(0.3), Y: -2 * math.Cos(0.3)})
	if r2.Norm(r2.Sub(h.Position[0], want)) > 1e-12 {
		t.Errorf("expected initial position %v, got %v", want, h.Position[0])
	}
	if speed := r2.Norm(h.Velocity[0]); math.Abs(speed-0.5) > 1e-12 {
		t.Errorf("expected initial speed 0.5, got %g", speed)
	}
	if h.Angle[1] == h.Angle[0] {
		t.Error("second sample should reflect one step")
	}
}

func TestPendulumRadiusIsConstant(t *testing.T) {
	p := newTestPendulum(t, func(c *PendulumConfig) {
		c.InitAngle = 2.5
		c.Length = 1.5
		c.Center = r2.Vec{X: -1}
	})
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, pos := range p.History().Position {
		r := r2.Norm(r2.Sub(pos, r2.Vec{X: -1}))
		if math.Abs(r-1.5) > 1e-12 {
			t.Fatalf("radius drifted at step %d: %g", i, r)
		}
	}
}

func TestPendulumEnergyDrift(t *testing.T) {
	p := newTestPendulum(t, func(c *PendulumConfig) {
		c.InitAngle = 0.01
		c.Runtime = 2.1
	})
	drift := metrics.NewEnergyDrift(p.Model().Energy)
	p.AddMetric(drift)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.Metrics()["energy_drift"]; got >= 0.01 {
		t.Errorf("energy drift over one period %g, want < 1%%", got)
	}
}

func TestPendulumTickCount(t *testing.T) {
	tests := []struct {
		dt, runtime float64
		want        int
	}{
		{0.1, 1.0, 10},
		{0.25, 1.0, 4},
		{0.3, 1.0, 4},
		{0.1, 0, 0},
	}

	for _, tt := range tests {
		p := newTestPendulum(t, func(c *PendulumConfig) {
			c.Dt = tt.dt
			c.Runtime = tt.runtime
			c.InitAngle = 0.2
		})
		if err := p.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		if got := p.History().Len(); got != tt.want {
			t.Errorf("dt=%g runtime=%g: expected %d samples, got %d", tt.dt, tt.runtime, tt.want, got)
		}
	}
}

func TestPendulumConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PendulumConfig)
	}{
		{"zero mass", func(c *PendulumConfig) { c.Mass = 0 }},
		{"negative length", func(c *PendulumConfig) { c.Length = -1 }},
		{"zero dt", func(c *PendulumConfig) { c.Dt = 0 }},
		{"negative runtime", func(c *PendulumConfig) { c.Runtime = -1 }},
		{"negative gravity", func(c *PendulumConfig) { c.Gravity = -9.8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPendulumConfig()
			tt.mutate(&cfg)
			_, err := NewPendulum(cfg, nil)
			if !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestPendulumEulerGainsEnergy(t *testing.T) {
	cfg := DefaultPendulumConfig()
	cfg.InitAngle = 0.5
	cfg.Dt = 0.01
	cfg.Runtime = 5

	euler, err := NewPendulum(cfg, integrators.NewEuler[physics.AngularState]())
	if err != nil {
		t.Fatal(err)
	}
	rk4, err := NewPendulum(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	e0 := euler.Energy()
	for _, p := range []*Pendulum{euler, rk4} {
		if err := p.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if euler.Energy() <= e0 {
		t.Errorf("explicit Euler should gain energy: %g -> %g", e0, euler.Energy())
	}
	if math.Abs(rk4.Energy()-e0) >= math.Abs(euler.Energy()-e0) {
		t.Errorf("RK4 drift %g should be below Euler drift %g",
			math.Abs(rk4.Energy()-e0), math.Abs(euler.Energy()-e0))
	}
}

func TestPendulumCanceled(t *testing.T) {
	p := newTestPendulum(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
