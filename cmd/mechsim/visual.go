package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/render"
	"github.com/san-kum/mechsim/internal/storage"
	"github.com/san-kum/mechsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

// tracksFromTable rebuilds body tracks from the <body>.x/.y columns.
func tracksFromTable(table *storage.Table, names []string) ([]render.Track, error) {
	tracks := make([]render.Track, 0, len(names))
	for _, name := range names {
		xs, err := table.Column(name + ".x")
		if err != nil {
			return nil, err
		}
		ys, err := table.Column(name + ".y")
		if err != nil {
			return nil, err
		}
		positions := make([]r2.Vec, len(xs))
		for i := range xs {
			positions[i] = r2.Vec{X: xs[i], Y: ys[i]}
		}
		tracks = append(tracks, render.Track{Name: name, Positions: positions})
	}
	return tracks, nil
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	table, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	dir := outPath
	if dir == "" {
		dir = st.Dir(runID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tracks, err := tracksFromTable(table, meta.Bodies)
	if err != nil {
		return err
	}

	var written []string
	traj := filepath.Join(dir, "trajectory.png")
	if err := render.SaveTrajectoryPlot(traj, meta.ID, tracks); err != nil {
		return err
	}
	written = append(written, traj)

	if meta.Model == config.ModelPendulum {
		for _, col := range []struct{ name, label string }{
			{"angle", "angle (rad)"},
			{"omega", "angular velocity (rad/s)"},
		} {
			ys, err := table.Column(col.name)
			if err != nil {
				return err
			}
			file := filepath.Join(dir, col.name+".png")
			if err := render.SaveLinePlot(file, col.name, "time (s)", col.label, table.Times, ys); err != nil {
				return err
			}
			written = append(written, file)
		}
	}

	for _, f := range written {
		fmt.Println(f)
	}
	return nil
}

func animateModel(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	out, err := simulate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}

	opts := render.DefaultAnimOptions()
	if out.pendulum != nil {
		err = render.AnimatePendulum(f, out.pendulum, opts)
	} else {
		err = render.AnimateSystem(f, out.system, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	log.Info("animation written", "file", outPath, "ticks", out.ticks())
	fmt.Println(outPath)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}
	title := strings.TrimSpace(cfg.Model + " " + name)

	var scene viz.Scene
	switch cfg.Model {
	case config.ModelPendulum:
		scene = viz.PendulumScene(title, cfg.BuildPendulum)
	default:
		scene = viz.SystemScene(title, cfg.BuildSystem)
	}

	return viz.Run(cmd.Context(), scene, viz.Options{
		Speed:   liveSpeed,
		GIFPath: outPath,
		Logger:  log,
	})
}
