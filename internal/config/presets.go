package config

import "sort"

const (
	day           = 86400.0
	sunMass       = 1.989e30
	earthMass     = 5.972e24
	earthDistance = 1.4959e11
	earthSpeed    = 3e4
)

var Presets = map[string]map[string]*Config{
	ModelPendulum: {
		"rest": {
			Model: ModelPendulum, Integrator: "rk4", Dt: DefaultDt, Runtime: 5.0,
			Pendulum: PendulumConfig{Mass: 1, Length: 1},
		},
		"small": {
			Model: ModelPendulum, Integrator: "rk4", Dt: DefaultDt, Runtime: DefaultRuntime,
			Pendulum: PendulumConfig{Mass: 1, Length: 1, InitAngle: 0.01},
		},
		"large": {
			Model: ModelPendulum, Integrator: "rk4", Dt: 0.001, Runtime: 20.0,
			Pendulum: PendulumConfig{Mass: 1, Length: 1, InitAngle: 2.5},
		},
		"spinning": {
			Model: ModelPendulum, Integrator: "rk4", Dt: 0.001, Runtime: 30.0,
			Pendulum: PendulumConfig{Mass: 1, Length: 1, InitAngle: 0.1, InitSpeed: 8.0},
		},
	},
	ModelNBody: {
		"binary": {
			Model: ModelNBody, Integrator: "rk4", Dt: 0.001, Runtime: 30.0,
			System: SystemConfig{
				G: 1,
				Bodies: []BodyConfig{
					{Mass: 1, Position: Vec2{0.5, 0}, Velocity: Vec2{0, 0.5}},
					{Mass: 1, Position: Vec2{-0.5, 0}, Velocity: Vec2{0, -0.5}},
				},
			},
		},
		"solar": {
			Model: ModelNBody, Integrator: "rk4", Dt: day / 50, Runtime: 1000 * day,
			System: SystemConfig{
				Bodies: []BodyConfig{
					{Name: "Sun", Mass: sunMass},
					{Name: "Earth", Mass: earthMass, Position: Vec2{earthDistance, 0}, Velocity: Vec2{0, earthSpeed}},
				},
			},
		},
		"threebody": {
			Model: ModelNBody, Integrator: "rk4", Dt: 0.001, Runtime: 10.0, Seed: 42,
			System: SystemConfig{
				G:       1,
				Ring:    &RingConfig{Count: 3, Radius: 0.5, Speed: 1, MassMin: 0.9, MassMax: 1.1},
				Perturb: 1.0,
			},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// FindPreset looks a preset up by name across every model.
func FindPreset(preset string) *Config {
	for _, model := range Models() {
		if cfg := GetPreset(model, preset); cfg != nil {
			return cfg
		}
	}
	return nil
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Models() []string {
	return []string{ModelNBody, ModelPendulum}
}
