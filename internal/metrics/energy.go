package metrics

import (
	"math"
)

// Observable maps a state to a scalar quantity such as total energy.
type Observable[V any] func(x V) float64

type Energy[V any] struct {
	name        string
	energy      Observable[V]
	samples     int
	totalEnergy float64
}

// NewEnergy averages energy(x) over every observed state.
func NewEnergy[V any](energy Observable[V]) *Energy[V] {
	return &Energy[V]{
		name:   "energy",
		energy: energy,
	}
}

func (e *Energy[V]) Name() string { return e.name }

func (e *Energy[V]) Observe(x V, t float64) {
	e.totalEnergy += e.energy(x)
	e.samples++
}

func (e *Energy[V]) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy[V]) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the first observed
// energy.
type EnergyDrift[V any] struct {
	name          string
	energy        Observable[V]
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift[V any](energy Observable[V]) *EnergyDrift[V] {
	return &EnergyDrift[V]{
		name:   "energy_drift",
		energy: energy,
	}
}

func (e *EnergyDrift[V]) Name() string { return e.name }

func (e *EnergyDrift[V]) Observe(x V, t float64) {
	energy := e.energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift[V]) Value() float64 {
	return e.maxDrift
}

// Current is the energy of the last observed state.
func (e *EnergyDrift[V]) Current() float64 {
	return e.currentEnergy
}

func (e *EnergyDrift[V]) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// Peak records the largest absolute value of an observable.
type Peak[V any] struct {
	name string
	of   Observable[V]
	peak float64
}

func NewPeak[V any](name string, of Observable[V]) *Peak[V] {
	return &Peak[V]{name: name, of: of}
}

func (p *Peak[V]) Name() string { return p.name }

func (p *Peak[V]) Observe(x V, t float64) {
	p.peak = math.Max(p.peak, math.Abs(p.of(x)))
}

func (p *Peak[V]) Value() float64 { return p.peak }

func (p *Peak[V]) Reset() { p.peak = 0 }
