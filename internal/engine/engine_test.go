// SPDX-License-Identifier: MIT
package engine

import (
	"testing"
	"time"

	"spectrum/internal/config"
	"spectrum/internal/display"
	"spectrum/internal/sampler"
	"spectrum/internal/touch"
)

// scriptedTouch replays a fixed sequence of points, then reports an
// idle panel. An optional hook runs on every read.
type scriptedTouch struct {
	points []touch.Point
	i      int
	onRead func()
}

func (s *scriptedTouch) Read() touch.Point {
	if s.onRead != nil {
		s.onRead()
	}
	if s.i < len(s.points) {
		p := s.points[s.i]
		s.i++
		return p
	}
	return touch.Point{}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Audio.SineHz = 1000
	cfg.Display.FPS = 60
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config, dev touch.Peripheral) *Engine {
	t.Helper()
	fb := display.NewFramebuffer(64, 48)
	mgr := display.NewManager(fb, cfg.Display.Theme, time.Duration(cfg.Display.OverlayMs)*time.Millisecond)
	rec := touch.NewRecognizer(dev, cfg.Touch)
	src := sampler.NewSineSource(float64(cfg.Audio.SineHz), float64(cfg.Audio.SampleRate))

	e, err := New(cfg, src, mgr, rec, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestPresentReusesStaleSnapshot(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})

	published := make([]float64, len(e.bands))
	for i := range published {
		published[i] = float64(i) / 16
	}
	e.pub.Publish(published)

	cur := time.Unix(0, 0)
	e.now = func() time.Time { return cur }

	stop := make(chan struct{})
	sleeps := 0
	e.sleep = func(d time.Duration, _ <-chan struct{}) {
		cur = cur.Add(d)
		sleeps++
		if sleeps == 5 {
			close(stop)
		}
	}

	e.wg.Add(1)
	e.present(stop)

	st := e.Stats()
	if st.Frames < 5 {
		t.Fatalf("frames = %d, want >= 5", st.Frames)
	}
	// One snapshot was published, so exactly the first frame is fresh.
	if st.ReusedSnapshots != st.Frames-1 {
		t.Errorf("reused = %d with %d frames, want frames-1", st.ReusedSnapshots, st.Frames)
	}
	for i, v := range e.frame {
		if v != published[i] {
			t.Fatalf("frame[%d] = %v, want %v", i, v, published[i])
		}
	}
}

func TestPresentPacingResetsAfterLateFrame(t *testing.T) {
	cfg := testConfig()
	period := time.Second / time.Duration(cfg.Display.FPS)

	cur := time.Unix(0, 0)
	lateFrame := 2
	frame := 0
	dev := &scriptedTouch{onRead: func() {
		frame++
		if frame == lateFrame {
			cur = cur.Add(3 * period)
		}
	}}
	e := newTestEngine(t, cfg, dev)
	e.now = func() time.Time { return cur }

	stop := make(chan struct{})
	var sleeps []time.Duration
	e.sleep = func(d time.Duration, _ <-chan struct{}) {
		cur = cur.Add(d)
		sleeps = append(sleeps, d)
		if len(sleeps) == 4 {
			close(stop)
		}
	}

	e.wg.Add(1)
	e.present(stop)

	// The deadline resets after the late frame instead of burning
	// through the missed periods, so every sleep is one full period.
	for i, d := range sleeps {
		if d != period {
			t.Errorf("sleep %d = %v, want %v", i, d, period)
		}
	}
	if frame <= lateFrame {
		t.Fatalf("loop stopped before the late frame (%d frames)", frame)
	}
}

func TestDispatchThemeSwitching(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})

	if got := e.mgr.Current(); got != 0 {
		t.Fatalf("initial theme = %d, want 0", got)
	}

	e.dispatch(touch.SwipeRight)
	if got := e.mgr.Current(); got != 1 {
		t.Errorf("after swipe right: theme = %d, want 1", got)
	}

	e.dispatch(touch.SwipeLeft)
	e.dispatch(touch.SwipeLeft)
	want := e.mgr.Count() - 1
	if got := e.mgr.Current(); got != want {
		t.Errorf("after two swipes left: theme = %d, want %d (wrap)", got, want)
	}

	// Unbound gestures leave the theme alone.
	before := e.mgr.Current()
	e.dispatch(touch.SwipeUp)
	e.dispatch(touch.SwipeDown)
	e.dispatch(touch.None)
	e.dispatch(touch.Tap)
	if got := e.mgr.Current(); got != before {
		t.Errorf("theme changed to %d on non-horizontal gesture", got)
	}
}

func TestEngineRunsAndStops(t *testing.T) {
	cfg := testConfig()
	e := newTestEngine(t, cfg, &scriptedTouch{})

	e.Start()
	e.Start() // idempotent
	time.Sleep(250 * time.Millisecond)
	e.Stop()
	e.Stop()

	st := e.Stats()
	if st.Frames == 0 {
		t.Error("no frames rendered")
	}
	if st.ComputeFailures != 0 {
		t.Errorf("compute failures = %d, want 0", st.ComputeFailures)
	}
	if e.pub.Seq() == 0 {
		t.Error("no snapshots published")
	}
}

func TestDispatchSwipeDuringRun(t *testing.T) {
	cfg := testConfig()
	// Press at the origin, drag right, release. With frames every
	// ~16 ms the touch lasts well under the swipe timeout.
	dev := &scriptedTouch{points: []touch.Point{
		{X: 0, Y: 0, Pressure: 4095, Pressed: true},
		{X: 200, Y: 0, Pressure: 4095, Pressed: true},
		{X: 200, Y: 0, Pressure: 0, Pressed: false},
	}}
	e := newTestEngine(t, cfg, dev)

	e.Start()
	deadline := time.Now().Add(2 * time.Second)
	for e.mgr.Current() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	e.Stop()

	if got := e.mgr.Current(); got != 1 {
		t.Errorf("theme = %d after swipe right, want 1", got)
	}
}
