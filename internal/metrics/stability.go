package metrics

import (
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/physics"
)

// SpeedBound is the fraction of samples whose speed stays below limit.
type SpeedBound struct {
	name       string
	limit      float64
	violations int
	samples    int
}

func NewSpeedBound(limit float64) *SpeedBound {
	return &SpeedBound{
		name:  "speed_bound",
		limit: limit,
	}
}

// NewSubluminal bounds the speed by c.
func NewSubluminal() *SpeedBound {
	return NewSpeedBound(physics.SpeedOfLight)
}

func (s *SpeedBound) Name() string {
	return s.name
}

func (s *SpeedBound) Observe(x dynamo.State, t float64) {
	if len(x) < 6 {
		return
	}
	s.samples++
	if x[3:6].Norm() >= s.limit {
		s.violations++
	}
}

func (s *SpeedBound) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *SpeedBound) Reset() {
	s.violations = 0
	s.samples = 0
}

// Standard returns the metrics recorded for every stored run.
func Standard(mass float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewKineticEnergyDrift(mass),
		NewRadiatedEnergy(),
		NewEnergyBalance(mass),
		NewSubluminal(),
	}
}
