package main

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/metrics"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/san-kum/mechsim/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

// defaultPresets seeds a model's config when neither --preset nor --config
// is given.
var defaultPresets = map[string]string{
	config.ModelPendulum: "small",
	config.ModelNBody:    "binary",
}

// resolveConfig layers preset, config file and explicitly set flags, in that
// order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, string, error) {
	name := preset
	if name == "" {
		name = defaultPresets[model]
	}
	cfg := config.GetPreset(model, name)
	if cfg == nil {
		if _, ok := config.Presets[model]; !ok {
			return nil, "", fmt.Errorf("unknown model: %s (available: %v)", model, config.Models())
		}
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(model))
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Model != model {
			return nil, "", fmt.Errorf("config %s is for model %s, not %s", configFile, loaded.Model, model)
		}
		cfg, name = loaded, ""
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Runtime = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("angle") {
		cfg.Pendulum.InitAngle = angle
	}
	if flags.Changed("speed") {
		cfg.Pendulum.InitSpeed = speed
	}
	if flags.Changed("length") {
		cfg.Pendulum.Length = length
	}
	if flags.Changed("gravity") {
		cfg.Pendulum.Gravity = gravity
	}
	if flags.Changed("G") {
		cfg.System.G = bigG
	}
	if flags.Changed("softening") {
		cfg.System.Softening = softening
	}
	if flags.Changed("opening") {
		cfg.System.Theta = opening
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// outcome is a finished (or aborted) run of either model.
type outcome struct {
	cfg      *config.Config
	pendulum *bodies.Pendulum
	system   *bodies.System
}

// build constructs the runner described by cfg and attaches the run metrics.
func build(cfg *config.Config) (*outcome, error) {
	out := &outcome{cfg: cfg}

	switch cfg.Model {
	case config.ModelPendulum:
		p, err := cfg.BuildPendulum()
		if err != nil {
			return nil, err
		}
		p.SetLogger(log)
		model := p.Model()
		p.AddMetric(metrics.NewEnergy(model.Energy))
		p.AddMetric(metrics.NewEnergyDrift(model.Energy))
		p.AddMetric(metrics.NewPeak("peak_angle", func(x physics.AngularState) float64 {
			return math.Abs(x.Theta)
		}))
		out.pendulum = p
	case config.ModelNBody:
		s, err := cfg.BuildSystem()
		if err != nil {
			return nil, err
		}
		s.SetLogger(log)
		model := s.Model()
		s.AddMetric(metrics.NewEnergy(model.Energy))
		s.AddMetric(metrics.NewEnergyDrift(model.Energy))
		s.AddMetric(metrics.NewPeak("peak_speed", func(x physics.JointState) float64 {
			fastest := 0.0
			for _, b := range x {
				fastest = math.Max(fastest, r2.Norm(b.Vel))
			}
			return fastest
		}))
		s.AddMetric(metrics.NewStability[physics.JointState](escapeRadius(s.State())))
		out.system = s
	default:
		return nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}
	return out, nil
}

// escapeRadius bounds the stability metric at a hundred times the initial
// extent of the state.
func escapeRadius(x physics.JointState) float64 {
	extent := 0.0
	for _, v := range x.Flatten() {
		extent = math.Max(extent, math.Abs(v))
	}
	if extent == 0 {
		extent = 1
	}
	return 100 * extent
}

// simulate builds and runs cfg to completion. A run aborted by a numerical
// fault is returned together with its error so partial history can be shown.
func simulate(ctx context.Context, cfg *config.Config) (*outcome, error) {
	out, err := build(cfg)
	if err != nil {
		return nil, err
	}
	if out.pendulum != nil {
		return out, out.pendulum.Run(ctx)
	}
	return out, out.system.Run(ctx)
}

func (o *outcome) metrics() map[string]float64 {
	if o.pendulum != nil {
		return o.pendulum.Metrics()
	}
	return o.system.Metrics()
}

func (o *outcome) energy() float64 {
	if o.pendulum != nil {
		return o.pendulum.Energy()
	}
	return o.system.Energy()
}

func (o *outcome) ticks() int {
	if o.pendulum != nil {
		return o.pendulum.History().Len()
	}
	return len(o.system.History())
}

func (o *outcome) bodyNames() []string {
	if o.pendulum != nil {
		return []string{"bob"}
	}
	return o.system.Names()
}

func (o *outcome) table() *storage.Table {
	if o.pendulum != nil {
		return storage.PendulumTable(o.pendulum)
	}
	return storage.SystemTable(o.system)
}
