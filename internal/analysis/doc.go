// Package analysis extracts scalar features from recorded trajectories.
//
// The package includes:
//
//   - [DominantFrequency]: strongest oscillation frequency via FFT
//   - [PowerSpectrum]: one-sided FFT magnitude spectrum
//   - [ZeroCrossingPeriod]: oscillation period from sign changes
//   - [LyapunovExponent]: divergence rate of two nearby trajectories
//   - [NewPhasePortrait]: 2D phase space plot from recorded series
//   - [Sweep]: parallel parameter sweep, e.g. [PendulumFrequencySweep]
//
// # Frequency of a swing
//
//	h := pendulum.History()
//	f, err := analysis.DominantFrequency(h.Angle, cfg.Dt)
package analysis
