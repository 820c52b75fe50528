// SPDX-License-Identifier: MIT
package sampler

import (
	"math"
	"math/rand/v2"
)

// adcMid is the zero-signal level of a 12-bit conversion.
const adcMid = 2048

// Source models the analog converter: one call, one conversion. A call
// must be bounded and allocation-free; it runs on every sampler tick.
type Source interface {
	Sample() uint16
}

// SineSource synthesizes a pure tone, one conversion at a time. It stands
// in for a signal generator on the analog input and drives the end-to-end
// tests.
type SineSource struct {
	phase float64
	step  float64
}

// NewSineSource returns a tone source at freq Hz when sampled at
// sampleRate Hz.
func NewSineSource(freq, sampleRate float64) *SineSource {
	return &SineSource{step: 2 * math.Pi * freq / sampleRate}
}

func (s *SineSource) Sample() uint16 {
	v := math.Sin(s.phase)
	s.phase += s.step
	if s.phase > 2*math.Pi {
		s.phase -= 2 * math.Pi
	}
	return uint16(adcMid + v*(adcMid-1)*0.9)
}

// NoiseSource produces uniform noise across the full converter range,
// useful for soak-testing the pipeline under a flat spectrum.
type NoiseSource struct {
	rng *rand.Rand
}

func NewNoiseSource(seed uint64) *NoiseSource {
	return &NoiseSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b9))}
}

func (s *NoiseSource) Sample() uint16 {
	return uint16(s.rng.UintN(4096))
}
