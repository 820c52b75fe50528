// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"math"
	"testing"

	"spectrum/internal/config"
	"spectrum/pkg/utils"
)

func testConfig(sampleRate, fftSize, bands int) *config.Config {
	cfg := config.New()
	cfg.Audio.SampleRate = sampleRate
	cfg.Audio.FFTSize = fftSize
	cfg.Analysis.Bands = bands
	return cfg
}

func TestNewExtractor_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero sample rate", func(c *config.Config) { c.Audio.SampleRate = 0 }},
		{"non power-of-two block", func(c *config.Config) { c.Audio.FFTSize = 96 }},
		{"inverted freq range", func(c *config.Config) { c.Analysis.FreqMin, c.Analysis.FreqMax = 8000, 100 }},
		{"zero gain", func(c *config.Config) { c.Analysis.DisplayGain = 0 }},
		{"unknown window", func(c *config.Config) { c.Analysis.Window = "kaiser" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(22050, 64, 16)
			tt.mutate(cfg)
			if _, err := NewExtractor(cfg); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestCompute_InputErrors(t *testing.T) {
	e, err := NewExtractor(testConfig(22050, 64, 16))
	if err != nil {
		t.Fatal(err)
	}
	block := utils.GenerateSineWave(64, 22050, 1000)

	if err := e.Compute(block[:32], make([]float64, 16)); !errors.Is(err, ErrCompute) {
		t.Errorf("short input: expected ErrCompute, got %v", err)
	}
	if err := e.Compute(block, nil); !errors.Is(err, ErrCompute) {
		t.Errorf("nil band target: expected ErrCompute, got %v", err)
	}
	if err := e.Compute(nil, make([]float64, 16)); !errors.Is(err, ErrCompute) {
		t.Errorf("nil samples: expected ErrCompute, got %v", err)
	}
}

// The peak band must track a pure tone across better than three octaves.
func TestSinePeakTracksFrequency(t *testing.T) {
	const (
		rate  = 22050
		block = 512
		nb    = 16
	)
	e, err := NewExtractor(testConfig(rate, block, nb))
	if err != nil {
		t.Fatal(err)
	}

	bands := make([]float64, nb)
	// Tones at the geometric centers of bands spread over ~3.8 octaves.
	for _, b := range []int{4, 5, 7, 9, 11, 13} {
		f0, f1 := e.BandRange(b, nb)
		freq := math.Sqrt(f0 * f1)

		blockSamples := utils.GenerateSineWave(block, rate, freq)
		if err := e.Compute(blockSamples, bands); err != nil {
			t.Fatalf("Compute(%0.f Hz): %v", freq, err)
		}

		peak := utils.FindPeakBand(bands)
		p0, p1 := e.BandRange(peak, nb)
		if freq < p0 || freq >= p1 {
			t.Errorf("tone %.0f Hz: peak band %d covers [%.0f, %.0f), does not contain the tone",
				freq, peak, p0, p1)
		}
	}
}

func TestBandRange_ContiguousStrictlyIncreasing(t *testing.T) {
	e, err := NewExtractor(testConfig(22050, 64, 16))
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{4, 8, 16, 32} {
		min0, _ := e.BandRange(0, n)
		if math.Abs(min0-100) > 1e-9 {
			t.Errorf("n=%d: first band starts at %v, expected the configured minimum", n, min0)
		}
		for b := 0; b < n-1; b++ {
			_, f1 := e.BandRange(b, n)
			g0, g1 := e.BandRange(b+1, n)
			if f1 != g0 {
				t.Errorf("n=%d: band %d ends at %.6f but band %d starts at %.6f", n, b, f1, b+1, g0)
			}
			if g1 <= g0 {
				t.Errorf("n=%d: band %d range [%.4f, %.4f) not increasing", n, b+1, g0, g1)
			}
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	e, err := NewExtractor(testConfig(22050, 64, 16))
	if err != nil {
		t.Fatal(err)
	}
	block := utils.GenerateComplexWave(64, 22050)

	first := make([]float64, 16)
	second := make([]float64, 16)
	if err := e.Compute(block, first); err != nil {
		t.Fatal(err)
	}
	if err := e.Compute(block, second); err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("band %d differs between identical runs: %v vs %v", i, first[i], second[i])
		}
	}
}

// End to end: a 1 kHz tone in a 64-sample block at 22050 Hz, folded into
// 16 bands over 100-11000 Hz, yields one dominant band with everything
// else quiet. The display gain is raised so the peak stays inside the
// compression curve's linear region instead of clamping at 1.
func TestEndToEnd_1kHzTone(t *testing.T) {
	cfg := testConfig(22050, 64, 16)
	cfg.Analysis.DisplayGain = 100
	e, err := NewExtractor(cfg)
	if err != nil {
		t.Fatal(err)
	}

	block := utils.GenerateSineWave(64, 22050, 1000)
	bands := make([]float64, 16)
	if err := e.Compute(block, bands); err != nil {
		t.Fatal(err)
	}

	peak := utils.FindPeakBand(bands)
	p0, p1 := e.BandRange(peak, 16)
	if 1000 < p0 || 1000 >= p1 {
		t.Errorf("peak band %d covers [%.0f, %.0f), expected it to contain 1000 Hz", peak, p0, p1)
	}
	for i, v := range bands {
		if i == peak {
			continue
		}
		if v >= 0.3 {
			t.Errorf("band %d = %.3f, expected below 0.3 away from the peak", i, v)
		}
		if v >= bands[peak] {
			t.Errorf("band %d = %.3f not below peak band %d = %.3f", i, v, peak, bands[peak])
		}
	}
	for _, v := range bands {
		if v < 0 || v > 1 {
			t.Errorf("band value %v outside [0, 1]", v)
		}
	}
}

// High bands may cover zero true energy bins beyond the forced minimum of
// one; that is accepted, not an error.
func TestCompute_ManyBandsSmallBlock(t *testing.T) {
	e, err := NewExtractor(testConfig(22050, 64, 32))
	if err != nil {
		t.Fatal(err)
	}
	bands := make([]float64, 32)
	if err := e.Compute(utils.GenerateComplexWave(64, 22050), bands); err != nil {
		t.Errorf("32 bands over 32 bins must not error: %v", err)
	}
}

func TestComputeHotPathZeroAllocs(t *testing.T) {
	e, err := NewExtractor(testConfig(22050, 256, 16))
	if err != nil {
		t.Fatal(err)
	}
	block := utils.GenerateComplexWave(256, 22050)
	bands := make([]float64, 16)

	e.Compute(block, bands) // Warm-up.
	allocs := testing.AllocsPerRun(100, func() {
		_ = e.Compute(block, bands)
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations in Compute, got %.1f", allocs)
	}
}

func BenchmarkCompute(b *testing.B) {
	e, err := NewExtractor(testConfig(22050, 256, 16))
	if err != nil {
		b.Fatal(err)
	}
	block := utils.GenerateComplexWave(256, 22050)
	bands := make([]float64, 16)

	b.ReportAllocs()
	for b.Loop() {
		_ = e.Compute(block, bands)
	}
}
