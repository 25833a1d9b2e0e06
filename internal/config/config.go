package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/integrators"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	ModelPendulum = "pendulum"
	ModelNBody    = "nbody"
)

const (
	DefaultDt      = 1.0 / 3000
	DefaultRuntime = 15.0
	DefaultMass    = 1.0
	DefaultLength  = 1.0
)

// Vec2 is a 2D vector written as [x, y] in YAML.
type Vec2 [2]float64

func (v Vec2) R2() r2.Vec { return r2.Vec{X: v[0], Y: v[1]} }

type Config struct {
	Model      string         `yaml:"model"`
	Integrator string         `yaml:"integrator"`
	Dt         float64        `yaml:"dt"`
	Runtime    float64        `yaml:"runtime"`
	Seed       int64          `yaml:"seed"`
	Pendulum   PendulumConfig `yaml:"pendulum"`
	System     SystemConfig   `yaml:"system"`
}

type PendulumConfig struct {
	Mass      float64 `yaml:"mass"`
	Length    float64 `yaml:"length"`
	Center    Vec2    `yaml:"center"`
	InitAngle float64 `yaml:"init_angle"`
	InitSpeed float64 `yaml:"init_speed"`
	Gravity   float64 `yaml:"gravity"`
}

type BodyConfig struct {
	Name     string  `yaml:"name,omitempty"`
	Mass     float64 `yaml:"mass"`
	Position Vec2    `yaml:"position"`
	Velocity Vec2    `yaml:"velocity"`
}

// RingConfig places Count bodies evenly on a circle, used when no explicit
// bodies are listed. Each body starts moving counter-clockwise along the
// circle at Speed.
type RingConfig struct {
	Count   int     `yaml:"count"`
	Radius  float64 `yaml:"radius"`
	Speed   float64 `yaml:"speed"`
	MassMin float64 `yaml:"mass_min"`
	MassMax float64 `yaml:"mass_max"`
}

type SystemConfig struct {
	G         float64      `yaml:"g"`
	Softening float64      `yaml:"softening"`
	Theta     float64      `yaml:"theta"`
	Bodies    []BodyConfig `yaml:"bodies,omitempty"`
	Ring      *RingConfig  `yaml:"ring,omitempty"`
	// Perturb adds a seeded uniform random velocity in [-Perturb, Perturb]
	// to each component of every body.
	Perturb float64 `yaml:"perturb"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      ModelPendulum,
		Integrator: integrators.Default,
		Dt:         DefaultDt,
		Runtime:    DefaultRuntime,
		Pendulum: PendulumConfig{
			Mass:   DefaultMass,
			Length: DefaultLength,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.System.Bodies = append([]BodyConfig(nil), c.System.Bodies...)
	if c.System.Ring != nil {
		ring := *c.System.Ring
		out.System.Ring = &ring
	}
	return &out
}

func (c *Config) Validate() error {
	if err := (dynamo.Config{Dt: c.Dt, Runtime: c.Runtime}).Validate(); err != nil {
		return err
	}
	if _, err := integrators.Lookup[dynamo.State](c.Integrator); err != nil {
		return err
	}

	switch c.Model {
	case ModelPendulum:
		return nil
	case ModelNBody:
		if len(c.System.Bodies) == 0 && c.System.Ring == nil {
			return fmt.Errorf("nbody config: %w", dynamo.ErrNoBodies)
		}
		if r := c.System.Ring; r != nil && len(c.System.Bodies) == 0 {
			if r.Count <= 0 || !(r.Radius > 0) {
				return fmt.Errorf("%w: ring needs a positive count and radius", dynamo.ErrParameterBounds)
			}
		}
		if c.System.Perturb < 0 || math.IsNaN(c.System.Perturb) {
			return fmt.Errorf("%w: perturb must be non-negative", dynamo.ErrParameterBounds)
		}
		return nil
	default:
		return fmt.Errorf("unknown model: %q (available: %s, %s)", c.Model, ModelPendulum, ModelNBody)
	}
}
