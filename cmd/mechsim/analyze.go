package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mechsim/internal/analysis"
	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/san-kum/mechsim/internal/storage"
	"github.com/spf13/cobra"
)

const perturbation = 1e-8

// signalColumns picks the analyzed column and its phase-space partner.
func signalColumns(meta *storage.RunMetadata) (string, string, error) {
	switch {
	case len(columns) >= 2:
		return columns[0], columns[1], nil
	case len(columns) == 1:
		return columns[0], "", nil
	case meta.Model == config.ModelPendulum:
		return "angle", "omega", nil
	case len(meta.Bodies) > 0:
		return meta.Bodies[0] + ".x", meta.Bodies[0] + ".vx", nil
	default:
		return "", "", fmt.Errorf("run %s has no bodies", meta.ID)
	}
}

func analyzeRun(cmd *cobra.Command, args []string) error {
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

	signal, partner, err := signalColumns(meta)
	if err != nil {
		return err
	}
	data, err := table.Column(signal)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("signal: %s\n\n", signal)

	ps := analysis.PowerSpectrum(data)
	if len(ps) > 8 {
		ps = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+signal+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("amplitude: %.6g\n", analysis.Amplitude(data))
	freq, err := analysis.DominantFrequency(data, meta.Dt)
	if err != nil {
		fmt.Printf("dominant frequency: %v\n", err)
	} else {
		fmt.Printf("dominant frequency: %.6g hz\n", freq)
	}
	period, err := analysis.ZeroCrossingPeriod(data, meta.Dt)
	switch {
	case errors.Is(err, analysis.ErrNoOscillation):
		fmt.Println("period: no oscillation")
	case err != nil:
		return err
	default:
		fmt.Printf("period: %.6g s\n", period)
	}

	if partner == "" {
		return nil
	}
	other, err := table.Column(partner)
	if err != nil {
		return err
	}
	portrait, err := analysis.NewPhasePortrait(data, other)
	if err != nil {
		return err
	}
	fmt.Printf("\nphase portrait (%s vs %s):\n", signal, partner)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	return nil
}

func lyapunovModel(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	var lambda float64
	switch cfg.Model {
	case config.ModelPendulum:
		p, err := cfg.BuildPendulum()
		if err != nil {
			return err
		}
		integ, err := integrators.Lookup[physics.AngularState](cfg.Integrator)
		if err != nil {
			return err
		}
		x0 := p.State()
		x0p := x0
		x0p.Theta += perturbation
		lambda = analysis.LyapunovExponent(p.Model().Derive, integ, x0, x0p, cfg.Dt, cfg.Runtime)
	default:
		s, err := cfg.BuildSystem()
		if err != nil {
			return err
		}
		integ, err := integrators.Lookup[physics.JointState](cfg.Integrator)
		if err != nil {
			return err
		}
		x0 := s.State()
		x0p := x0.Clone()
		x0p[0].Pos.X += perturbation
		lambda = analysis.LyapunovExponent(s.Model().Derive, integ, x0, x0p, cfg.Dt, cfg.Runtime)
	}

	fmt.Printf("lyapunov exponent: %.6g /s\n", lambda)
	if lambda > 0.01 {
		fmt.Println("trajectories diverge exponentially (chaotic)")
	} else {
		fmt.Println("no exponential divergence detected")
	}
	return nil
}

func sweepPendulum(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd, config.ModelPendulum)
	if err != nil {
		return err
	}
	if sweepN < 1 {
		return fmt.Errorf("sweep needs at least one angle, got %d", sweepN)
	}

	angles := analysis.Linspace(sweepFrom, sweepTo, sweepN)
	log.Info("sweeping initial angle", "from", sweepFrom, "to", sweepTo, "n", sweepN, "integrator", cfg.Integrator, "workers", sweepWorkers)

	start := time.Now()
	points, err := analysis.PendulumFrequencySweep(cmd.Context(), cfg.RunnerConfig(), cfg.Integrator, angles, sweepWorkers)
	if err != nil {
		return err
	}
	log.Info("sweep finished", "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tFREQ\tPERIOD")
	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.Value
		fmt.Fprintf(w, "%.4f\t%.6f\t%.6f\n", pt.Param, pt.Value, 1/pt.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(values) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("frequency vs initial angle"),
		))
	}

	if outPath != "" {
		if err := storage.SaveSweep(outPath, points); err != nil {
			return err
		}
		fmt.Printf("\nsaved: %s\n", outPath)
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, _, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tTIME\tFINAL ENERGY\tENERGY DRIFT\tSTATUS")

	for _, name := range args[1:] {
		cfg := base.Clone()
		cfg.Integrator = name
		if err := cfg.Validate(); err != nil {
			return err
		}

		start := time.Now()
		out, err := simulate(cmd.Context(), cfg)
		elapsed := time.Since(start)
		if out == nil {
			return err
		}

		status := "ok"
		if err != nil {
			status = err.Error()
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.6g\t%.3e\t%s\n",
			name, out.ticks(), elapsed.Round(time.Microsecond), out.energy(),
			out.metrics()["energy_drift"], status)
	}

	return w.Flush()
}
