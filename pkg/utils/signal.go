// SPDX-License-Identifier: MIT
// Package utils holds synthetic signal generators shared by tests.
package utils

import "math"

// adcMid is the zero-signal level of a 12-bit converter reading.
const adcMid = 2048.0

// GenerateSineWave returns size raw 12-bit readings of a pure tone at the
// given frequency, at 90% of full scale, centered at the ADC midpoint.
func GenerateSineWave(size int, sampleRate, frequency float64) []uint16 {
	buffer := make([]uint16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		s := math.Sin(2 * math.Pi * frequency * t)
		buffer[i] = uint16(adcMid + s*(adcMid-1)*0.9)
	}
	return buffer
}

// GenerateComplexWave returns readings of a 440Hz fundamental plus two
// harmonics, useful for exercising multi-band output.
func GenerateComplexWave(size int, sampleRate float64) []uint16 {
	buffer := make([]uint16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		s := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buffer[i] = uint16(adcMid + s*(adcMid-1)*0.9)
	}
	return buffer
}

// FindPeakBand returns the index of the largest value in bands.
func FindPeakBand(bands []float64) int {
	peak := 0
	for i := 1; i < len(bands); i++ {
		if bands[i] > bands[peak] {
			peak = i
		}
	}
	return peak
}
