// SPDX-License-Identifier: MIT
/*
Package display holds the display collaborator interface, the
visualization renderers and the theme manager. The spectrum pipeline
never issues raw bus commands; everything it draws goes through the
Display interface below.
*/
package display

// Color is a packed RGB565 value, the native format of the panel.
type Color uint16

// Palette, shared by the renderers.
const (
	Black  Color = 0x0000
	White  Color = 0xFFFF
	Green  Color = 0x07E0
	Yellow Color = 0xFFE0
	Red    Color = 0xF800
	Blue   Color = 0x001F
	Cyan   Color = 0x07FF
	Gray   Color = 0x31A6
)

// Amplitude thresholds for the green/yellow/red bar coloring.
const (
	thresholdMed  = 0.5
	thresholdHigh = 0.8
)

// RGB565 packs 8-bit channels into a Color.
func RGB565(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGB returns the 8-bit channels of a Color.
func (c Color) RGB() (r, g, b uint8) {
	r = uint8(c>>8) & 0xF8
	g = uint8(c>>3) & 0xFC
	b = uint8(c<<3) & 0xF8
	return r, g, b
}

// Display is the pixel sink collaborator. Implementations may buffer;
// Flush makes the frame visible.
type Display interface {
	FillRect(x, y, w, h int, c Color)
	DrawPixel(x, y int, c Color)
	Width() int
	Height() int
	Flush()
}

// amplitudeColor maps a normalized band value to the bar palette.
func amplitudeColor(v float64) Color {
	switch {
	case v >= thresholdHigh:
		return Red
	case v >= thresholdMed:
		return Yellow
	default:
		return Green
	}
}

// Framebuffer is an in-memory Display for tests and headless runs.
type Framebuffer struct {
	w, h int
	buf  []Color
}

// NewFramebuffer returns a w x h framebuffer cleared to black.
func NewFramebuffer(w, h int) *Framebuffer {
	return &Framebuffer{w: w, h: h, buf: make([]Color, w*h)}
}

func (f *Framebuffer) Width() int  { return f.w }
func (f *Framebuffer) Height() int { return f.h }
func (f *Framebuffer) Flush()      {}

func (f *Framebuffer) DrawPixel(x, y int, c Color) {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return
	}
	f.buf[y*f.w+x] = c
}

func (f *Framebuffer) FillRect(x, y, w, h int, c Color) {
	for yy := y; yy < y+h; yy++ {
		if yy < 0 || yy >= f.h {
			continue
		}
		for xx := x; xx < x+w; xx++ {
			if xx < 0 || xx >= f.w {
				continue
			}
			f.buf[yy*f.w+xx] = c
		}
	}
}

// At returns the pixel at (x, y), black when out of bounds.
func (f *Framebuffer) At(x, y int) Color {
	if x < 0 || x >= f.w || y < 0 || y >= f.h {
		return Black
	}
	return f.buf[y*f.w+x]
}
