package metrics

import (
	"math"

	"github.com/san-kum/mechsim/internal/dynamo"
)

// Stability is the fraction of observed states whose every component stays
// within threshold.
type Stability[V dynamo.Flattener] struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability[V dynamo.Flattener](threshold float64) *Stability[V] {
	return &Stability[V]{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability[V]) Name() string {
	return s.name
}

func (s *Stability[V]) Observe(x V, t float64) {
	s.samples++
	for _, val := range x.Flatten() {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability[V]) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability[V]) Reset() {
	s.violations = 0
	s.samples = 0
}
