package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/logging"
	"github.com/san-kum/mechsim/internal/physics"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	seed       int64
	// pendulum
	angle   float64
	speed   float64
	length  float64
	gravity float64
	// nbody
	bigG      float64
	softening float64
	opening   float64
	// output
	outPath   string
	columns   []string
	withPlots bool
	// live view
	liveSpeed float64
	// sweep
	sweepFrom    float64
	sweepTo      float64
	sweepN       int
	sweepWorkers int

	log *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mechsim",
		Short:        "pendulum and n-body simulation lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.NewLogger(logLevel, os.Stderr)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mechsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (error, warn, info, debug, trace)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation and save it",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().BoolVar(&withPlots, "plots", false, "write PNG figures into the run directory")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run columns in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", nil, "columns to plot (default depends on model)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render trajectory and time-series PNGs of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&outPath, "out", "", "output directory (default: the run directory)")

	animateCmd := &cobra.Command{
		Use:   "animate [model]",
		Short: "simulate and write an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  animateModel,
	}
	addSimFlags(animateCmd)
	animateCmd.Flags().StringVar(&outPath, "out", "simulation.gif", "output file")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().Float64Var(&liveSpeed, "speed-up", 1.0, "simulated seconds per second")
	liveCmd.Flags().StringVar(&outPath, "gif", "simulation.gif", "recording output file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase-space analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVar(&columns, "column", nil, "signal column and optional phase column")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest Lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  lyapunovModel,
	}
	addSimFlags(lyapunovCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "pendulum frequency against initial angle",
		Args:  cobra.NoArgs,
		RunE:  sweepPendulum,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.1, "first initial angle")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 3.0, "last initial angle")
	sweepCmd.Flags().IntVar(&sweepN, "n", 16, "number of angles")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 4, "concurrent runs")
	sweepCmd.Flags().StringVar(&outPath, "out", "", "write the sweep as .npy")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, animateCmd, liveCmd,
		analyzeCmd, lyapunovCmd, sweepCmd, compareCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultRuntime, "simulated runtime")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (nbody perturbation)")
	cmd.Flags().Float64Var(&angle, "angle", 0.0, "initial angle from the downward vertical (pendulum)")
	cmd.Flags().Float64Var(&speed, "speed", 0.0, "initial tangential speed (pendulum)")
	cmd.Flags().Float64Var(&length, "length", 1.0, "rod length (pendulum)")
	cmd.Flags().Float64Var(&gravity, "gravity", physics.EarthGravity, "gravitational acceleration (pendulum)")
	cmd.Flags().Float64Var(&bigG, "G", 0, "gravitational constant (nbody, 0 = SI value)")
	cmd.Flags().Float64Var(&softening, "softening", 0, "Plummer softening length (nbody)")
	cmd.Flags().Float64Var(&opening, "opening", 0, "Barnes-Hut opening angle (nbody, 0 = exact)")
}
