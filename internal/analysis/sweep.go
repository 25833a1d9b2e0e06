package analysis

import (
	"context"
	"fmt"
	"runtime"

	"github.com/san-kum/mechsim/internal/bodies"
	"github.com/san-kum/mechsim/internal/integrators"
	"github.com/san-kum/mechsim/internal/physics"
	"golang.org/x/sync/errgroup"
)

// SweepPoint pairs a swept parameter with the scalar derived from its run.
type SweepPoint struct {
	Param float64
	Value float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Sweep evaluates fn for every param with at most workers runs in flight
// (GOMAXPROCS when workers <= 0). Results keep the order of params. The
// first error cancels the remaining runs.
func Sweep(ctx context.Context, params []float64, workers int, fn func(ctx context.Context, param float64) (float64, error)) ([]SweepPoint, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepPoint, len(params))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, param := range params {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := fn(ctx, param)
			if err != nil {
				return fmt.Errorf("param %g: %w", param, err)
			}
			results[i] = SweepPoint{Param: param, Value: v}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PendulumFrequencySweep runs base once per initial angle with the named
// integrator and reports the dominant frequency of the recorded angle.
func PendulumFrequencySweep(ctx context.Context, base bodies.PendulumConfig, integrator string, angles []float64, workers int) ([]SweepPoint, error) {
	if _, err := integrators.Lookup[physics.AngularState](integrator); err != nil {
		return nil, err
	}
	return Sweep(ctx, angles, workers, func(ctx context.Context, angle float64) (float64, error) {
		cfg := base
		cfg.InitAngle = angle
		integ, err := integrators.Lookup[physics.AngularState](integrator)
		if err != nil {
			return 0, err
		}
		p, err := bodies.NewPendulum(cfg, integ)
		if err != nil {
			return 0, err
		}
		if err := p.Run(ctx); err != nil {
			return 0, err
		}
		return DominantFrequency(p.History().Angle, cfg.Dt)
	})
}
