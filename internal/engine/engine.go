// SPDX-License-Identifier: MIT
/*
Package engine runs the two free-running halves of the analyzer:

  - the acquisition loop drains full sample blocks from the ring,
    computes band energies and publishes snapshots
  - the presentation loop pulls the latest snapshot, polls the touch
    recognizer and renders one frame at a fixed period

The two loops share only the ring buffer and the snapshot publisher,
both lock-free. Neither side ever blocks on the other; the
presentation loop redraws a stale snapshot when nothing new has been
published since its previous frame.
*/
package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"spectrum/internal/analysis"
	"spectrum/internal/config"
	"spectrum/internal/display"
	"spectrum/internal/log"
	"spectrum/internal/ring"
	"spectrum/internal/sampler"
	"spectrum/internal/touch"
	"spectrum/internal/transport"
)

// acquirePoll is how long the acquisition loop sleeps when the ring
// does not yet hold a full block. At 22050 Hz a 64-sample block fills
// in ~2.9 ms, so this wakes a handful of times per block.
const acquirePoll = 500 * time.Microsecond

// Stats is a point-in-time snapshot of the engine's counters.
type Stats struct {
	Frames          uint64
	ReusedSnapshots uint64
	ComputeFailures uint64
	Overflows       uint64
}

type Engine struct {
	cfg *config.Config

	buf       *ring.Buffer
	smp       *sampler.Sampler
	extractor *analysis.Extractor
	pub       *analysis.Publisher

	mgr *display.Manager
	rec *touch.Recognizer
	tr  transport.Transport

	// Acquisition-side working buffers, allocated once.
	block []uint16
	bands []float64

	// Presentation-side snapshot buffer.
	frame   []float64
	lastSeq uint64

	frames   atomic.Uint64
	reused   atomic.Uint64
	failures atomic.Uint64

	recorder recorder

	// Injectable clock, overridden in tests.
	now   func() time.Time
	sleep func(d time.Duration, stop <-chan struct{})

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New wires a full pipeline from cfg: ring buffer, sampler around src,
// band extractor and snapshot publisher. The display manager and touch
// recognizer are built by the caller since they own the backend. tr
// may be nil when no transport is configured.
func New(cfg *config.Config, src sampler.Source, mgr *display.Manager, rec *touch.Recognizer, tr transport.Transport) (*Engine, error) {
	extractor, err := analysis.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	buf := ring.New(cfg.RingCapacity())
	smp, err := sampler.New(cfg.Audio.Channel, cfg.Audio.SampleRate, src, buf)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		buf:       buf,
		smp:       smp,
		extractor: extractor,
		pub:       analysis.NewPublisher(cfg.Analysis.Bands),
		mgr:       mgr,
		rec:       rec,
		tr:        tr,
		block:     make([]uint16, extractor.BlockSize()),
		bands:     make([]float64, cfg.Analysis.Bands),
		frame:     make([]float64, cfg.Analysis.Bands),
		now:       time.Now,
	}
	e.sleep = e.interruptibleSleep
	return e, nil
}

// Start launches the sampler and both loops. It is a no-op when the
// engine is already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stop = make(chan struct{})

	e.smp.Start()
	e.wg.Add(2)
	go e.acquire(e.stop)
	go e.present(e.stop)
	log.Infof("engine: started (rate=%d Hz, block=%d, bands=%d, fps=%d)",
		e.cfg.Audio.SampleRate, len(e.block), len(e.bands), e.cfg.Display.FPS)
}

// Stop halts the sampler, waits for both loops to exit and closes any
// open recording. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.running = false

	e.smp.Stop()
	close(e.stop)
	e.wg.Wait()

	if err := e.recorder.stop(); err != nil {
		log.Errorf("engine: closing recording: %v", err)
	}
	log.Infof("engine: stopped (%+v)", e.Stats())
}

// Stats reports the engine's counters. Callable at any time.
func (e *Engine) Stats() Stats {
	return Stats{
		Frames:          e.frames.Load(),
		ReusedSnapshots: e.reused.Load(),
		ComputeFailures: e.failures.Load(),
		Overflows:       e.buf.Overflows(),
	}
}

func (e *Engine) acquire(stop <-chan struct{}) {
	defer e.wg.Done()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if e.buf.Available() < len(e.block) {
			e.sleep(acquirePoll, stop)
			continue
		}

		n := e.buf.Drain(e.block)
		if n < len(e.block) {
			// Overflow stole part of the claim; the remaining samples
			// are stale anyway, start over on a fresh block.
			continue
		}

		e.recorder.write(e.block)

		if err := e.extractor.Compute(e.block, e.bands); err != nil {
			e.failures.Add(1)
			log.Debugf("engine: compute: %v", err)
			continue
		}
		e.pub.Publish(e.bands)

		if e.tr != nil {
			e.tr.Send(transport.Frame{
				Seq:       e.pub.Seq(),
				Bands:     e.bands,
				Overflows: e.buf.Overflows(),
				Failures:  e.failures.Load(),
			})
		}
	}
}

func (e *Engine) present(stop <-chan struct{}) {
	defer e.wg.Done()

	period := time.Second / time.Duration(e.cfg.Display.FPS)
	next := e.now().Add(period)

	for {
		select {
		case <-stop:
			return
		default:
		}

		seq, fresh := e.pub.Latest(e.frame, e.lastSeq)
		if fresh {
			e.lastSeq = seq
		} else {
			e.reused.Add(1)
		}

		e.dispatch(e.rec.Poll())

		e.mgr.Render(e.frame)
		e.frames.Add(1)

		// Fixed-period pacing. A late frame resets the deadline from
		// now instead of accumulating a backlog of missed periods.
		now := e.now()
		if now.Before(next) {
			e.sleep(next.Sub(now), stop)
			next = next.Add(period)
		} else {
			next = now.Add(period)
		}
	}
}

func (e *Engine) dispatch(g touch.Gesture) {
	switch g {
	case touch.SwipeRight:
		e.mgr.Next()
		log.Debugf("engine: theme -> %s", e.mgr.Name())
	case touch.SwipeLeft:
		e.mgr.Prev()
		log.Debugf("engine: theme -> %s", e.mgr.Name())
	case touch.Tap:
		e.mgr.ShowName()
	case touch.LongPress:
		e.toggleRecording()
	case touch.SwipeUp, touch.SwipeDown:
		// Classified but bound to no action.
		log.Debugf("engine: unbound gesture %s", g)
	}
}

func (e *Engine) interruptibleSleep(d time.Duration, stop <-chan struct{}) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-stop:
	}
}
