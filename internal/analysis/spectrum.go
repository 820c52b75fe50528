// SPDX-License-Identifier: MIT
/*
Package analysis converts blocks of raw converter samples into normalized
frequency-band amplitudes and publishes them across the context boundary.

The extractor runs entirely on the acquisition context with pre-allocated
workspace buffers; Compute performs no allocation and no locking. The
publisher (publisher.go) is the only structure shared with the
presentation context.
*/
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/pkg/bitint"
)

// ErrCompute is the sentinel for malformed extractor input. It is never
// fatal: the caller skips that block, counts the failure and moves on.
var ErrCompute = errors.New("compute failed")

// adcMid is the DC midpoint of a 12-bit conversion.
const adcMid = 2048.0

// workspace holds the pre-allocated buffers for one extractor.
type workspace struct {
	input     []float64    // Windowed, scaled input block.
	coeffs    []complex128 // Complex FFT output.
	magnitude []float64    // Magnitudes of the first blockSize/2 bins.
	window    []float64    // Window coefficients, immutable after New.
}

// Extractor computes the band spectrum of fixed-size sample blocks.
// Not safe for concurrent use; it is owned by the acquisition context.
type Extractor struct {
	blockSize  int
	sampleRate float64
	freqMin    float64
	freqMax    float64
	gain       float64

	logMin   float64 // log(freqMin), precomputed.
	logRange float64 // log(freqMax) - log(freqMin).
	invLog11 float64 // 1/log(11) for the compression curve.

	fft *fourier.FFT
	ws  workspace
}

// NewExtractor precomputes the window coefficients and FFT plan for the
// configured block size. All parameter failures wrap config.ErrInvalid
// and abort startup.
func NewExtractor(cfg *config.Config) (*Extractor, error) {
	rate := float64(cfg.Audio.SampleRate)
	size := cfg.Audio.FFTSize

	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %g", config.ErrInvalid, rate)
	}
	if !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: fft size must be a power of 2, got %d", config.ErrInvalid, size)
	}
	if cfg.Analysis.FreqMin <= 0 || cfg.Analysis.FreqMax <= cfg.Analysis.FreqMin {
		return nil, fmt.Errorf("%w: frequency range [%g, %g] Hz",
			config.ErrInvalid, cfg.Analysis.FreqMin, cfg.Analysis.FreqMax)
	}
	if cfg.Analysis.DisplayGain <= 0 {
		return nil, fmt.Errorf("%w: display gain must be positive", config.ErrInvalid)
	}

	coeffs := make([]float64, size)
	if err := applyWindow(coeffs, cfg.Analysis.Window); err != nil {
		return nil, err
	}

	e := &Extractor{
		blockSize:  size,
		sampleRate: rate,
		freqMin:    cfg.Analysis.FreqMin,
		freqMax:    cfg.Analysis.FreqMax,
		gain:       cfg.Analysis.DisplayGain,
		logMin:     math.Log(cfg.Analysis.FreqMin),
		logRange:   math.Log(cfg.Analysis.FreqMax) - math.Log(cfg.Analysis.FreqMin),
		invLog11:   1 / math.Log(11),
		fft:        fourier.NewFFT(size),
		ws: workspace{
			input:     make([]float64, size),
			coeffs:    make([]complex128, size/2+1),
			magnitude: make([]float64, size/2),
			window:    coeffs,
		},
	}
	log.Debugf("Analysis: extractor ready (block %d, %g Hz, %g-%g Hz, window %q)",
		size, rate, e.freqMin, e.freqMax, cfg.Analysis.Window)
	return e, nil
}

// BlockSize returns the number of samples consumed per Compute call.
func (e *Extractor) BlockSize() int {
	return e.blockSize
}

// Compute fills bands with normalized [0,1] amplitudes for one block of
// samples. len(bands) selects the band count. The same input always
// yields bit-identical output. Zero allocations; acquisition context only.
func (e *Extractor) Compute(samples []uint16, bands []float64) error {
	if len(samples) < e.blockSize {
		return fmt.Errorf("%w: got %d samples, need %d", ErrCompute, len(samples), e.blockSize)
	}
	if len(bands) == 0 {
		return fmt.Errorf("%w: zero-length band target", ErrCompute)
	}

	// Remove the DC midpoint, scale to [-1, 1], taper.
	for i := 0; i < e.blockSize; i++ {
		e.ws.input[i] = (float64(samples[i]) - adcMid) / adcMid * e.ws.window[i]
	}

	e.fft.Coefficients(e.ws.coeffs, e.ws.input)

	// Real input: the upper half mirrors the lower, keep blockSize/2 bins.
	for i := range e.ws.magnitude {
		e.ws.magnitude[i] = cmplx.Abs(e.ws.coeffs[i])
	}

	half := e.blockSize / 2
	n := len(bands)
	for b := 0; b < n; b++ {
		f0, f1 := e.BandRange(b, n)

		bin0 := int(f0 * float64(e.blockSize) / e.sampleRate)
		bin1 := int(f1 * float64(e.blockSize) / e.sampleRate)
		if bin0 >= half {
			bin0 = half - 1
		}
		if bin1 >= half {
			bin1 = half - 1
		}
		// Every band covers at least one bin, even at the high end where
		// log spacing packs several bands into one bin.
		if bin1 <= bin0 {
			bin1 = bin0 + 1
		}

		sum := 0.0
		count := 0
		for bin := bin0; bin < bin1 && bin < half; bin++ {
			sum += e.ws.magnitude[bin]
			count++
		}
		avg := 0.0
		if count > 0 {
			avg = sum / float64(count)
		}

		// Display gain, then log compression to lift low-level detail.
		avg /= e.gain
		if avg > 0 {
			avg = math.Log(1+avg*10) * e.invLog11
		}
		bands[b] = math.Min(1, math.Max(0, avg))
	}
	return nil
}

// BandRange returns the [f0, f1) frequency range of band b out of n,
// interpolated logarithmically between the configured cutoffs. It uses
// the exact formula Compute uses, so callers can label bands without
// running a transform.
func (e *Extractor) BandRange(b, n int) (f0, f1 float64) {
	if n <= 0 {
		return 0, 0
	}
	t0 := float64(b) / float64(n)
	t1 := float64(b+1) / float64(n)
	f0 = math.Exp(e.logMin + t0*e.logRange)
	f1 = math.Exp(e.logMin + t1*e.logRange)
	return f0, f1
}

// applyWindow fills coeffs with the named window function. Defaults to
// Hann for an empty name; unknown names are a configuration error.
func applyWindow(coeffs []float64, name string) error {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch strings.ToLower(name) {
	case "", "hann", "hanning":
		window.Hann(coeffs)
	case "hamming":
		window.Hamming(coeffs)
	case "blackman":
		window.Blackman(coeffs)
	case "blackmannuttall":
		window.BlackmanNuttall(coeffs)
	case "nuttall":
		window.Nuttall(coeffs)
	case "lanczos":
		window.Lanczos(coeffs)
	case "none", "rectangular":
		// Leave the all-ones taper in place.
	default:
		return fmt.Errorf("%w: unknown window function %q", config.ErrInvalid, name)
	}
	return nil
}
