// SPDX-License-Identifier: MIT
// Package config defines the fixed configuration surface of the analyzer.
// Everything here is settled at startup; nothing is mutated at runtime.
package config

import (
	"errors"
	"fmt"

	"spectrum/pkg/bitint"
)

// Boundaries and defaults for the analyzer pipeline.
const (
	// Sampling
	DefaultSampleRate = 22050  // Hz
	MaxSampleRate     = 500000 // Converter ceiling (Hz)
	DefaultFFTSize    = 64     // Must be a power of 2
	MaxFFTSize        = 8192
	DefaultDeviceID   = -1 // System default input device

	// Ring buffer capacity, as a multiple of the FFT block size.
	// 4x absorbs scheduling jitter between the two contexts.
	RingCapacityBlocks = 4

	// Frequency bands
	MinBandCount     = 4
	MaxBandCount     = 32
	DefaultBandCount = 16
	DefaultFreqMin   = 100   // Hz
	DefaultFreqMax   = 11000 // Hz, below Nyquist at the default rate

	// Display sensitivity: band averages are divided by this before
	// log compression. Lower = more sensitive.
	DefaultDisplayGain = 5.0

	// Touch gestures
	DefaultSwipeThresholdPx  = 50
	DefaultSwipeTimeoutMs    = 500
	DefaultHoldTimeMs        = 1000
	DefaultPressureThreshold = 400
	DefaultOverlayMs         = 2000

	// Rendering
	DefaultFPS = 30
)

// ErrInvalid is the sentinel for configuration errors. All validation
// failures wrap it; they are fatal at initialization.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration, loaded from YAML and/or flags.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Verbose diagnostics.
	LogLevel string `yaml:"log_level"` // One of debug, info, warn, error.
	LogFile  string `yaml:"log_file"`  // Log destination. Empty discards logs while the display runs.
	Command  string `yaml:"-"`         // One-off CLI command, empty for the visualizer.

	Audio     AudioConfig     `yaml:"audio"`     // Capture settings.
	Analysis  AnalysisConfig  `yaml:"analysis"`  // Spectrum extraction settings.
	Touch     TouchConfig     `yaml:"touch"`     // Gesture thresholds.
	Display   DisplayConfig   `yaml:"display"`   // Frame pacing and theme.
	Capture   CaptureConfig   `yaml:"capture"`   // Raw sample recording.
	Transport TransportConfig `yaml:"transport"` // Spectrum broadcast.
}

// AudioConfig holds the sample acquisition settings.
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"` // Conversions per second (Hz).
	FFTSize    int    `yaml:"fft_size"`    // Samples per transform block (power of 2).
	Channel    int    `yaml:"channel"`     // Converter channel index (0-3).
	Source     string `yaml:"source"`      // "portaudio", "sine" or "noise".
	SineHz     int    `yaml:"sine_hz"`     // Tone frequency for the sine source.
	DeviceID   int    `yaml:"device_id"`   // Input device index, -1 = system default.
}

// AnalysisConfig holds the band extraction settings.
type AnalysisConfig struct {
	Bands       int     `yaml:"bands"`        // Output band count (4-32).
	FreqMin     float64 `yaml:"freq_min"`     // Low analysis cutoff (Hz).
	FreqMax     float64 `yaml:"freq_max"`     // High analysis cutoff (Hz).
	DisplayGain float64 `yaml:"display_gain"` // Normalization divisor.
	Window      string  `yaml:"window"`       // Window function name (e.g. "hann").
}

// TouchConfig holds the gesture classification thresholds.
type TouchConfig struct {
	SwipeThresholdPx  int `yaml:"swipe_threshold_px"` // Minimum swipe travel.
	SwipeTimeoutMs    int `yaml:"swipe_timeout_ms"`   // Maximum swipe/tap duration.
	HoldTimeMs        int `yaml:"hold_time_ms"`       // Long press threshold.
	PressureThreshold int `yaml:"pressure_threshold"` // Below this = not touched.
}

// DisplayConfig holds the presentation loop settings.
type DisplayConfig struct {
	FPS       int    `yaml:"fps"`        // Target frame rate.
	Theme     string `yaml:"theme"`      // Initial theme name.
	OverlayMs int    `yaml:"overlay_ms"` // Theme name overlay duration.
}

// CaptureConfig holds the optional raw-sample WAV recording settings.
type CaptureConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty = timestamped name.
}

// TransportConfig holds the optional WebSocket spectrum broadcast settings.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"` // e.g. ":8080".
}

// New returns a Config populated with the built-in defaults.
func New() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			SampleRate: DefaultSampleRate,
			FFTSize:    DefaultFFTSize,
			Channel:    0,
			Source:     "sine",
			SineHz:     1000,
			DeviceID:   DefaultDeviceID,
		},
		Analysis: AnalysisConfig{
			Bands:       DefaultBandCount,
			FreqMin:     DefaultFreqMin,
			FreqMax:     DefaultFreqMax,
			DisplayGain: DefaultDisplayGain,
			Window:      "hann",
		},
		Touch: TouchConfig{
			SwipeThresholdPx:  DefaultSwipeThresholdPx,
			SwipeTimeoutMs:    DefaultSwipeTimeoutMs,
			HoldTimeMs:        DefaultHoldTimeMs,
			PressureThreshold: DefaultPressureThreshold,
		},
		Display: DisplayConfig{
			FPS:       DefaultFPS,
			Theme:     "bars",
			OverlayMs: DefaultOverlayMs,
		},
		Capture: CaptureConfig{
			Enabled:    false,
			OutputFile: "",
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
		},
	}
}

// Validate checks the configuration against the pipeline's hard limits.
// Every failure wraps ErrInvalid; a failed validation aborts startup.
func (c *Config) Validate() error {
	if c.Audio.SampleRate <= 0 || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %d Hz outside (0, %d]",
			ErrInvalid, c.Audio.SampleRate, MaxSampleRate)
	}
	if !bitint.IsPowerOfTwo(c.Audio.FFTSize) || c.Audio.FFTSize > MaxFFTSize {
		return fmt.Errorf("%w: fft size %d must be a power of 2 <= %d",
			ErrInvalid, c.Audio.FFTSize, MaxFFTSize)
	}
	if c.Audio.Channel < 0 || c.Audio.Channel > 3 {
		return fmt.Errorf("%w: converter channel %d outside [0, 3]",
			ErrInvalid, c.Audio.Channel)
	}
	if c.Audio.DeviceID < DefaultDeviceID {
		return fmt.Errorf("%w: device ID %d below %d",
			ErrInvalid, c.Audio.DeviceID, DefaultDeviceID)
	}
	if c.Analysis.Bands < MinBandCount || c.Analysis.Bands > MaxBandCount {
		return fmt.Errorf("%w: band count %d outside [%d, %d]",
			ErrInvalid, c.Analysis.Bands, MinBandCount, MaxBandCount)
	}
	if c.Analysis.FreqMin <= 0 || c.Analysis.FreqMax <= c.Analysis.FreqMin {
		return fmt.Errorf("%w: frequency range [%.0f, %.0f] Hz",
			ErrInvalid, c.Analysis.FreqMin, c.Analysis.FreqMax)
	}
	if c.Analysis.FreqMax > float64(c.Audio.SampleRate)/2 {
		return fmt.Errorf("%w: freq_max %.0f Hz above Nyquist (%d Hz)",
			ErrInvalid, c.Analysis.FreqMax, c.Audio.SampleRate/2)
	}
	if c.Analysis.DisplayGain <= 0 {
		return fmt.Errorf("%w: display gain must be positive, got %g",
			ErrInvalid, c.Analysis.DisplayGain)
	}
	if c.Display.FPS <= 0 || c.Display.FPS > 240 {
		return fmt.Errorf("%w: fps %d outside (0, 240]", ErrInvalid, c.Display.FPS)
	}
	if c.Touch.SwipeThresholdPx <= 0 || c.Touch.SwipeTimeoutMs <= 0 || c.Touch.HoldTimeMs <= 0 {
		return fmt.Errorf("%w: touch thresholds must be positive", ErrInvalid)
	}
	return nil
}

// RingCapacity returns the sample ring buffer capacity for this
// configuration: at least RingCapacityBlocks FFT blocks, rounded up to a
// power of two so cursor arithmetic stays mask-friendly.
func (c *Config) RingCapacity() int {
	return bitint.NextPowerOfTwo(c.Audio.FFTSize * RingCapacityBlocks)
}
