package analysis

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Trackable is a state that can be integrated and measured.
type Trackable[V any] interface {
	dynamo.Vector[V]
	dynamo.Flattener
}

func separation[V Trackable[V]](x, xp V) float64 {
	return xp.Add(x.Scale(-1)).Flatten().Norm()
}

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method. A positive value indicates chaos.
//
// Algorithm:
// 1. Run x0 and the nearby x0p side by side
// 2. After every step accumulate ln(|δx|/|δx0|)
// 3. Rescale δx back to |δx0| so the pair stays in the linear regime
// 4. λ ≈ sum / t
func LyapunovExponent[V Trackable[V]](
	f dynamo.Derivative[V],
	integ dynamo.Integrator[V],
	x0, x0p V,
	dt, duration float64,
) float64 {
	d0 := separation(x0, x0p)
	steps := dynamo.Config{Dt: dt, Runtime: duration}.Steps()
	if d0 == 0 || steps == 0 {
		return 0
	}

	x, xp := x0, x0p
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(f, x, t, dt)
		xp = integ.Step(f, xp, t, dt)

		sep := separation(x, xp)
		if !isFinite(sep) {
			break
		}
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		xp = x.Add(xp.Add(x.Scale(-1)).Scale(d0 / sep))
	}

	if count == 0 {
		return 0
	}

	return sumLog / (float64(count) * dt)
}
