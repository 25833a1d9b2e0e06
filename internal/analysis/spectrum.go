package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTooFewSamples = errors.New("analysis: too few samples")
	ErrNoOscillation = errors.New("analysis: signal does not oscillate")
)

func centered(samples []float64) []float64 {
	mean := stat.Mean(samples, nil)
	out := make([]float64, len(samples))
	copy(out, samples)
	floats.AddConst(-mean, out)
	return out
}

// PowerSpectrum returns the magnitude of the n/2+1 non-negative frequency
// coefficients of samples after removing their mean.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(samples))
	coeff := fft.Coefficients(nil, centered(samples))

	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-DC component of samples taken every dt. The peak bin is
// refined by parabolic interpolation.
func DominantFrequency(samples []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("dominant frequency: dt must be positive, got %g", dt)
	}
	if len(samples) < 4 {
		return 0, fmt.Errorf("dominant frequency: %w (%d)", ErrTooFewSamples, len(samples))
	}

	n := len(samples)
	fft := fourier.NewFFT(n)
	ps := PowerSpectrum(samples)

	peak := 0
	for i := 1; i < len(ps); i++ {
		if peak == 0 || ps[i] > ps[peak] {
			peak = i
		}
	}
	if ps[peak] == 0 {
		return 0, ErrNoOscillation
	}

	offset := 0.0
	if peak > 1 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			offset = 0.5 * (a - c) / denom
		}
	}

	// Freq is in cycles per sample
	binWidth := fft.Freq(1)
	return (fft.Freq(peak) + offset*binWidth) / dt, nil
}

// ZeroCrossingPeriod estimates the oscillation period of samples taken every
// dt from the spacing of their sign changes. Crossing times are linearly
// interpolated between samples.
func ZeroCrossingPeriod(samples []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("zero crossing period: dt must be positive, got %g", dt)
	}

	var crossings []float64
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		if (a < 0) == (b < 0) || a == b {
			continue
		}
		frac := a / (a - b)
		crossings = append(crossings, (float64(i-1)+frac)*dt)
	}

	if len(crossings) < 3 {
		return 0, fmt.Errorf("zero crossing period: %w (%d crossings)", ErrNoOscillation, len(crossings))
	}

	// consecutive crossings are half a period apart
	span := crossings[len(crossings)-1] - crossings[0]
	return 2 * span / float64(len(crossings)-1), nil
}

// Amplitude is half the peak-to-peak range of samples.
func Amplitude(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return 0.5 * (floats.Max(samples) - floats.Min(samples))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
