package calculation

import (
	"math"
	"math/rand"
)

// degenerateSD is the standard deviation below which a distribution is treated as a constant.
const degenerateSD = 1e-9

// Sampler draws bounded normal values from a generator owned by a single run.
// It must not be shared between goroutines.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler wraps a per-run generator.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample draws one value from N(mean, sd). A near-zero sd returns mean exactly
// without advancing the generator.
func (s *Sampler) Sample(mean, sd float64) float64 {
	if math.Abs(sd) < degenerateSD {
		return mean
	}
	return mean + sd*s.rng.NormFloat64()
}

// SampleLowerBounded draws a value clamped below at mean-2sd.
func (s *Sampler) SampleLowerBounded(mean, sd float64) float64 {
	return LowerBound(s.Sample(mean, sd), mean, sd)
}

// SampleUpperBounded draws a value clamped above at mean+2sd.
func (s *Sampler) SampleUpperBounded(mean, sd float64) float64 {
	return UpperBound(s.Sample(mean, sd), mean, sd)
}

// LowerBound returns max(v, mean-2sd).
func LowerBound(v, mean, sd float64) float64 {
	return math.Max(v, mean-2.0*sd)
}

// UpperBound returns min(v, mean+2sd).
func UpperBound(v, mean, sd float64) float64 {
	return math.Min(v, mean+2.0*sd)
}
