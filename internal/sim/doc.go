// Package sim provides the discrete simulated-time clock that drives bodies.
//
// Processes register with a [Scheduler] and are woken every Period units of
// simulated time. No goroutines are involved: Run is a plain loop that
// advances the [Clock] to the earliest pending wake time and ticks every
// process due at that instant, giving an implicit barrier between ticks.
package sim
