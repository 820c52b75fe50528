// SPDX-License-Identifier: MIT
package touch

import (
	"time"

	"spectrum/internal/config"
)

// Gesture is a classified touch interaction. It is valid only for the
// frame that produced it and is never queued.
type Gesture int

const (
	None Gesture = iota
	Tap
	SwipeLeft
	SwipeRight
	SwipeUp
	SwipeDown
	LongPress
)

func (g Gesture) String() string {
	switch g {
	case None:
		return "none"
	case Tap:
		return "tap"
	case SwipeLeft:
		return "swipe-left"
	case SwipeRight:
		return "swipe-right"
	case SwipeUp:
		return "swipe-up"
	case SwipeDown:
		return "swipe-down"
	case LongPress:
		return "long-press"
	default:
		return "unknown"
	}
}

// session is the recognizer's per-touch state, created on touch-down and
// reset on touch-up.
type session struct {
	active  bool
	startX  int
	startY  int
	lastX   int
	lastY   int
	startAt time.Time
}

// Recognizer samples the peripheral once per poll and runs a two-state
// machine (idle/touching). Its time base is the wall clock, so poll
// frequency affects latency but not classification.
type Recognizer struct {
	dev Peripheral

	pressureMin int
	swipeDistSq int
	swipeMax    time.Duration
	holdMin     time.Duration

	sess session
	now  func() time.Time
}

// NewRecognizer returns a recognizer using the configured thresholds.
func NewRecognizer(dev Peripheral, cfg config.TouchConfig) *Recognizer {
	return &Recognizer{
		dev:         dev,
		pressureMin: cfg.PressureThreshold,
		swipeDistSq: cfg.SwipeThresholdPx * cfg.SwipeThresholdPx,
		swipeMax:    time.Duration(cfg.SwipeTimeoutMs) * time.Millisecond,
		holdMin:     time.Duration(cfg.HoldTimeMs) * time.Millisecond,
		now:         time.Now,
	}
}

// Poll reads the peripheral once and advances the state machine. Call at
// most once per frame. Returns the gesture completed this poll, usually
// None.
func (r *Recognizer) Poll() Gesture {
	p := r.dev.Read()
	return r.observe(p, r.now())
}

// observe is the state machine body, separated from the clock and
// peripheral for testing.
func (r *Recognizer) observe(p Point, now time.Time) Gesture {
	pressed := p.Pressed && p.Pressure >= r.pressureMin

	switch {
	case pressed && !r.sess.active:
		// Touch-down: open a session.
		r.sess = session{
			active:  true,
			startX:  p.X,
			startY:  p.Y,
			lastX:   p.X,
			lastY:   p.Y,
			startAt: now,
		}
		return None

	case pressed && r.sess.active:
		r.sess.lastX = p.X
		r.sess.lastY = p.Y
		return None

	case !pressed && r.sess.active:
		// Touch-up: classify and reset.
		duration := now.Sub(r.sess.startAt)
		dx := r.sess.lastX - r.sess.startX
		dy := r.sess.lastY - r.sess.startY
		distSq := dx*dx + dy*dy
		r.sess = session{}
		return r.classify(duration, dx, dy, distSq)
	}
	return None
}

func (r *Recognizer) classify(duration time.Duration, dx, dy, distSq int) Gesture {
	small := distSq < r.swipeDistSq

	if duration > r.holdMin && small {
		return LongPress
	}
	if duration < r.swipeMax && small {
		return Tap
	}
	if duration < r.swipeMax {
		if abs(dx) > abs(dy) {
			if dx > 0 {
				return SwipeRight
			}
			return SwipeLeft
		}
		if dy > 0 {
			return SwipeDown
		}
		return SwipeUp
	}
	// Slow, long-distance drags are neither a swipe nor a tap.
	return None
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
