// SPDX-License-Identifier: MIT
/*
Package sampler drives periodic analog conversions into the sample ring
buffer. It owns the acquisition side's timing: one conversion per timer
tick at the configured rate. Delivery is not guaranteed (the ring drops
oldest on overflow); timing regularity is.
*/
package sampler

import (
	"fmt"
	"sync"
	"time"

	"spectrum/internal/config"
	"spectrum/internal/log"
	"spectrum/internal/ring"
)

// Sampler triggers one conversion per period and pushes the result into
// the ring buffer. It runs on its own goroutine, started with Start and
// halted with Stop.
type Sampler struct {
	src    Source
	buf    *ring.Buffer
	period time.Duration
	rate   int

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// New validates the rate and channel and returns an idle sampler.
// A rate outside (0, MaxSampleRate] is a configuration error.
func New(channel, rateHz int, src Source, buf *ring.Buffer) (*Sampler, error) {
	if rateHz <= 0 || rateHz > config.MaxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d Hz outside (0, %d]",
			config.ErrInvalid, rateHz, config.MaxSampleRate)
	}
	if channel < 0 || channel > 3 {
		return nil, fmt.Errorf("%w: converter channel %d outside [0, 3]",
			config.ErrInvalid, channel)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil sample source", config.ErrInvalid)
	}
	return &Sampler{
		src:    src,
		buf:    buf,
		rate:   rateHz,
		period: time.Duration(float64(time.Second) / float64(rateHz)),
	}, nil
}

// Rate returns the configured conversion rate in Hz.
func (s *Sampler) Rate() int {
	return s.rate
}

// Start begins periodic conversions. Calling Start on a running sampler
// is a no-op.
func (s *Sampler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.stop, s.done)
	log.Infof("Sampler: started at %d Hz (period %s)", s.rate, s.period)
}

// Stop halts future conversion triggers and waits for the in-flight
// conversion to complete. The ring buffer is left intact. Idempotent.
func (s *Sampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stop)
	<-s.done
	s.running = false
	log.Infof("Sampler: stopped (%d samples dropped to overflow)", s.buf.Overflows())
}

func (s *Sampler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// One conversion per tick. Push never blocks, so the tick
			// cadence is preserved even when the consumer stalls.
			s.buf.Push(s.src.Sample())
		}
	}
}
