package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mechsim/internal/config"
	"github.com/san-kum/mechsim/internal/dynamo"
	"github.com/san-kum/mechsim/internal/render"
	"github.com/san-kum/mechsim/internal/storage"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, presetName, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	out, err := simulate(cmd.Context(), cfg)
	if err != nil {
		var simErr *dynamo.SimulationError
		if errors.As(err, &simErr) {
			log.Error("simulation aborted", "body", simErr.Body, "step", simErr.Step, "time", simErr.Time)
		}
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Model:      cfg.Model,
		Preset:     presetName,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Runtime:    cfg.Runtime,
		Integrator: cfg.Integrator,
		Bodies:     out.bodyNames(),
		Metrics:    out.metrics(),
	}
	if out.system != nil && out.ticks() > 0 {
		meta.Shape = []int{out.ticks(), len(meta.Bodies), 2, 2}
	}

	runID, err := st.Save(meta, out.table())
	if err != nil {
		return err
	}
	if meta.Shape != nil {
		if _, err := st.SaveHistory(runID, out.system.History()); err != nil {
			return err
		}
	}
	log.Info("run saved", "id", runID, "dir", st.Dir(runID))

	if withPlots {
		var files []string
		if out.pendulum != nil {
			files, err = render.PendulumFigures(st.Dir(runID), out.pendulum)
		} else {
			files, err = render.SystemFigures(st.Dir(runID), out.system)
		}
		if err != nil {
			return err
		}
		log.Info("figures written", "files", files)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", out.ticks())
	printMetrics(meta.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tPRESET\tTIME\tRUNTIME\tDT\tINTEG\tBODIES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%s\t%d\n",
			run.ID,
			run.Model,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Runtime,
			run.Dt,
			run.Integrator,
			len(run.Bodies),
		)
	}

	return w.Flush()
}

// defaultColumns picks what to plot for a stored run.
func defaultColumns(meta *storage.RunMetadata) []string {
	if meta.Model == config.ModelPendulum {
		return []string{"angle", "omega"}
	}
	var cols []string
	for _, body := range meta.Bodies {
		cols = append(cols, body+".x", body+".y")
	}
	if len(cols) > 6 {
		cols = cols[:6]
	}
	return cols
}

func plotRun(cmd *cobra.Command, args []string) error {
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
	if len(table.Rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(table.Rows))

	cols := columns
	if len(cols) == 0 {
		cols = defaultColumns(meta)
	}

	for _, name := range cols {
		data, err := table.Column(name)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := config.Models()
	if len(args) == 1 {
		models = args[:1]
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, name := range presets {
			fmt.Fprintf(w, "  %s\t%s\n", name, describePreset(config.GetPreset(model, name)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func describePreset(cfg *config.Config) string {
	parts := []string{fmt.Sprintf("dt=%g", cfg.Dt), fmt.Sprintf("runtime=%g", cfg.Runtime)}
	switch cfg.Model {
	case config.ModelPendulum:
		parts = append(parts, fmt.Sprintf("angle=%g", cfg.Pendulum.InitAngle))
		if cfg.Pendulum.InitSpeed != 0 {
			parts = append(parts, fmt.Sprintf("speed=%g", cfg.Pendulum.InitSpeed))
		}
	case config.ModelNBody:
		n := len(cfg.System.Bodies)
		if n == 0 && cfg.System.Ring != nil {
			n = cfg.System.Ring.Count
		}
		parts = append(parts, fmt.Sprintf("bodies=%d", n))
	}
	return strings.Join(parts, " ")
}
