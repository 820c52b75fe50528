// SPDX-License-Identifier: MIT
package sampler

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource adapts a live PortAudio input stream to the one-shot
// conversion model: the stream callback keeps the most recent frame, and
// each Sample call reads it as a 12-bit value. The sampler tick decides
// the effective rate; the stream just keeps the latest level fresh.
type PortAudioSource struct {
	stream *portaudio.Stream
	latest atomic.Uint32 // Most recent reading, already shifted to 12-bit.
}

// Initialize sets up the PortAudio subsystem. Call once at startup,
// paired with Terminate at shutdown.
func Initialize() error {
	return portaudio.Initialize()
}

// Terminate releases the PortAudio subsystem.
func Terminate() error {
	return portaudio.Terminate()
}

// NewPortAudioSource opens a mono input stream on the given device at
// the given rate and starts capturing. DefaultDeviceID selects the
// system default input.
func NewPortAudioSource(deviceID int, sampleRate float64, framesPerBuffer int) (*PortAudioSource, error) {
	device, err := inputDevice(deviceID)
	if err != nil {
		return nil, err
	}

	src := &PortAudioSource{}
	src.latest.Store(adcMid)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  device.DefaultLowInputLatency,
		},
		FramesPerBuffer: framesPerBuffer,
		SampleRate:      sampleRate,
	}
	stream, err := portaudio.OpenStream(params, src.capture)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	src.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	return src, nil
}

// capture is the stream callback. It must not allocate or block.
func (s *PortAudioSource) capture(in []int32) {
	if len(in) == 0 {
		return
	}
	// int32 full scale down to a centered 12-bit reading.
	v := in[len(in)-1] >> 20 // [-2048, 2047]
	s.latest.Store(uint32(v + adcMid))
}

// Sample returns the most recent converted reading.
func (s *PortAudioSource) Sample() uint16 {
	return uint16(s.latest.Load())
}

// Close stops and releases the input stream.
func (s *PortAudioSource) Close() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	return s.stream.Close()
}
