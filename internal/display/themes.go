// SPDX-License-Identifier: MIT
package display

import (
	"math"
)

// Renderer is one visualization theme. Render is called once per frame
// with the latest band snapshot; the renderer must tolerate receiving
// the same snapshot on consecutive frames. Init and Clear run on theme
// activation and deactivation.
type Renderer interface {
	Name() string
	Init(d Display)
	Render(bands []float64)
	Clear()
}

// BarsRenderer draws the classic vertical bar meter with peak-hold caps.
type BarsRenderer struct {
	d     Display
	peaks []float64
}

func NewBarsRenderer() *BarsRenderer { return &BarsRenderer{} }

func (r *BarsRenderer) Name() string   { return "Classic Bars" }
func (r *BarsRenderer) Init(d Display) { r.d = d; r.peaks = nil }
func (r *BarsRenderer) Clear()         { r.peaks = nil }

func (r *BarsRenderer) Render(bands []float64) {
	w, h := r.d.Width(), r.d.Height()
	n := len(bands)
	if n == 0 || w == 0 {
		return
	}
	if len(r.peaks) != n {
		r.peaks = make([]float64, n)
	}
	barW := w / n

	for i, v := range bands {
		x := i * barW
		barH := int(v * float64(h-1))

		if v > r.peaks[i] {
			r.peaks[i] = v
		} else {
			r.peaks[i] *= 0.95 // Peak decay per frame.
		}

		r.d.FillRect(x, 0, barW-1, h-barH, Black)
		r.d.FillRect(x, h-barH, barW-1, barH, amplitudeColor(v))

		peakY := h - 1 - int(r.peaks[i]*float64(h-1))
		r.d.FillRect(x, peakY, barW-1, 1, Blue)
	}
}

// WaterfallRenderer scrolls band history downward, newest row on top.
type WaterfallRenderer struct {
	d       Display
	history [][]float64
	row     int
}

func NewWaterfallRenderer() *WaterfallRenderer { return &WaterfallRenderer{} }

func (r *WaterfallRenderer) Name() string { return "Waterfall" }

func (r *WaterfallRenderer) Init(d Display) {
	r.d = d
	r.history = make([][]float64, d.Height())
	r.row = 0
}

func (r *WaterfallRenderer) Clear() { r.history = nil }

func (r *WaterfallRenderer) Render(bands []float64) {
	w, h := r.d.Width(), r.d.Height()
	n := len(bands)
	if n == 0 || len(r.history) != h {
		return
	}

	r.history[r.row] = append(r.history[r.row][:0], bands...)

	cellW := w / n
	for y := 0; y < h; y++ {
		src := r.history[(r.row-y+h)%h]
		if src == nil {
			continue
		}
		for i, v := range src {
			r.d.FillRect(i*cellW, y, cellW, 1, heatColor(v))
		}
	}
	r.row = (r.row + 1) % h
}

// heatColor maps amplitude to a black-blue-cyan-white ramp.
func heatColor(v float64) Color {
	switch {
	case v >= 0.75:
		return White
	case v >= 0.5:
		return Cyan
	case v >= 0.25:
		return Blue
	case v > 0.05:
		return Gray
	default:
		return Black
	}
}

// RadialRenderer draws bands as rays from the screen center.
type RadialRenderer struct {
	d Display
}

func NewRadialRenderer() *RadialRenderer { return &RadialRenderer{} }

func (r *RadialRenderer) Name() string   { return "Radial" }
func (r *RadialRenderer) Init(d Display) { r.d = d }
func (r *RadialRenderer) Clear()         {}

func (r *RadialRenderer) Render(bands []float64) {
	w, h := r.d.Width(), r.d.Height()
	n := len(bands)
	if n == 0 {
		return
	}
	r.d.FillRect(0, 0, w, h, Black)

	cx, cy := w/2, h/2
	maxLen := float64(min(cx, cy)) - 2

	for i, v := range bands {
		angle := 2 * math.Pi * float64(i) / float64(n)
		length := v * maxLen
		c := amplitudeColor(v)

		// Walk the ray one pixel at a time; cheap at these resolutions.
		sin, cos := math.Sincos(angle)
		for d := 0.0; d <= length; d++ {
			r.d.DrawPixel(cx+int(d*cos), cy+int(d*sin), c)
		}
	}
	r.d.DrawPixel(cx, cy, White)
}

// MirrorRenderer draws bars growing from the vertical center outward.
type MirrorRenderer struct {
	d Display
}

func NewMirrorRenderer() *MirrorRenderer { return &MirrorRenderer{} }

func (r *MirrorRenderer) Name() string   { return "Mirror Mode" }
func (r *MirrorRenderer) Init(d Display) { r.d = d }
func (r *MirrorRenderer) Clear()         {}

func (r *MirrorRenderer) Render(bands []float64) {
	w, h := r.d.Width(), r.d.Height()
	n := len(bands)
	if n == 0 {
		return
	}
	barW := w / n
	mid := h / 2

	for i, v := range bands {
		x := i * barW
		half := int(v * float64(mid-1))
		c := amplitudeColor(v)

		r.d.FillRect(x, 0, barW-1, mid-half, Black)
		r.d.FillRect(x, mid+half, barW-1, h-(mid+half), Black)
		r.d.FillRect(x, mid-half, barW-1, 2*half, c)
	}
}

