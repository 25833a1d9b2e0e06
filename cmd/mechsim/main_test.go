package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/spf13/cobra"
)

func newSimCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addSimFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveConfigDefaults(t *testing.T) {
	cmd := newSimCommand(t)
	cfg, name, err := resolveConfig(cmd, config.ModelPendulum)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if name != "small" {
		t.Errorf("expected default preset small, got %q", name)
	}
	if cfg.Pendulum.InitAngle != 0.01 {
		t.Errorf("expected angle 0.01, got %f", cfg.Pendulum.InitAngle)
	}
}

func TestResolveConfigFlagsOverridePreset(t *testing.T) {
	cmd := newSimCommand(t, "--preset", "large", "--dt", "0.01")
	cfg, name, err := resolveConfig(cmd, config.ModelPendulum)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if name != "large" {
		t.Errorf("expected preset large, got %q", name)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", cfg.Dt)
	}
	if cfg.Pendulum.InitAngle != 2.5 {
		t.Errorf("unset flag overrode preset angle: %f", cfg.Pendulum.InitAngle)
	}
	if cfg.Pendulum.Length != 1 {
		t.Errorf("unset flag overrode preset length: %f", cfg.Pendulum.Length)
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pendulum.yaml")
	file := config.GetPreset(config.ModelPendulum, "spinning")
	file.Runtime = 2
	if err := config.Save(path, file); err != nil {
		t.Fatalf("save: %v", err)
	}

	cmd := newSimCommand(t, "--config", path, "--angle", "0.3")
	cfg, name, err := resolveConfig(cmd, config.ModelPendulum)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if name != "" {
		t.Errorf("expected no preset name for a file config, got %q", name)
	}
	if cfg.Runtime != 2 || cfg.Pendulum.InitSpeed != 8 {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.Pendulum.InitAngle != 0.3 {
		t.Errorf("expected flag angle 0.3, got %f", cfg.Pendulum.InitAngle)
	}

	cmd = newSimCommand(t, "--config", path)
	if _, _, err := resolveConfig(cmd, config.ModelNBody); err == nil {
		t.Error("expected error for a config of another model")
	}
}

func TestResolveConfigErrors(t *testing.T) {
	if _, _, err := resolveConfig(newSimCommand(t), "cartpole"); err == nil {
		t.Error("expected error for unknown model")
	}
	if _, _, err := resolveConfig(newSimCommand(t, "--preset", "nope"), config.ModelNBody); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, _, err := resolveConfig(newSimCommand(t, "--dt=-1"), config.ModelPendulum); err == nil {
		t.Error("expected error for negative dt")
	}
}

func TestSimulate(t *testing.T) {
	cmd := newSimCommand(t, "--dt", "0.01", "--time", "0.5")

	for _, model := range config.Models() {
		cfg, _, err := resolveConfig(cmd, model)
		if err != nil {
			t.Fatalf("%s: resolve: %v", model, err)
		}
		out, err := simulate(context.Background(), cfg)
		if err != nil {
			t.Fatalf("%s: simulate: %v", model, err)
		}
		if out.ticks() != 50 {
			t.Errorf("%s: expected 50 ticks, got %d", model, out.ticks())
		}
		table := out.table()
		if len(table.Rows) != 50 || len(table.Times) != 50 {
			t.Errorf("%s: table has %d rows", model, len(table.Rows))
		}
		if _, ok := out.metrics()["energy_drift"]; !ok {
			t.Errorf("%s: missing energy_drift metric in %v", model, out.metrics())
		}
	}
}
