// SPDX-License-Identifier: MIT
package display

import (
	"strings"
	"time"

	"spectrum/internal/log"
)

// Manager owns the renderer set and the active theme index, and draws
// the theme-name overlay for a short period after a switch. It lives
// entirely on the presentation context.
type Manager struct {
	d      Display
	themes []Renderer

	current      int
	overlayUntil time.Time
	overlayFor   time.Duration

	now func() time.Time
}

// themeSlugs are the stable names accepted by the --theme flag and the
// config file, index-aligned with the Manager's renderer set.
var themeSlugs = []string{"bars", "waterfall", "radial", "mirror"}

// NewManager returns a manager over the standard theme set, with the
// named theme active. Unknown names fall back to the first theme.
func NewManager(d Display, initial string, overlayFor time.Duration) *Manager {
	m := &Manager{
		d: d,
		themes: []Renderer{
			NewBarsRenderer(),
			NewWaterfallRenderer(),
			NewRadialRenderer(),
			NewMirrorRenderer(),
		},
		overlayFor: overlayFor,
		now:        time.Now,
	}
	for i, slug := range themeSlugs {
		if strings.EqualFold(slug, initial) {
			m.current = i
			break
		}
	}
	m.themes[m.current].Init(d)
	log.Infof("Display: %d themes, starting with %q", len(m.themes), m.Name())
	return m
}

// Count returns the number of themes.
func (m *Manager) Count() int {
	return len(m.themes)
}

// Name returns the active theme's display name.
func (m *Manager) Name() string {
	return m.themes[m.current].Name()
}

// Current returns the active theme index.
func (m *Manager) Current() int {
	return m.current
}

// Next activates the following theme, wrapping at the end.
func (m *Manager) Next() {
	m.setTheme((m.current + 1) % len(m.themes))
}

// Prev activates the preceding theme, wrapping at the start.
func (m *Manager) Prev() {
	m.setTheme((m.current + len(m.themes) - 1) % len(m.themes))
}

func (m *Manager) setTheme(i int) {
	if i == m.current {
		return
	}
	m.themes[m.current].Clear()
	m.current = i
	m.d.FillRect(0, 0, m.d.Width(), m.d.Height(), Black)
	m.themes[i].Init(m.d)
	log.Debugf("Display: switched to theme %q", m.Name())
	m.ShowName()
}

// ShowName makes the theme-name overlay visible for the configured
// duration.
func (m *Manager) ShowName() {
	m.overlayUntil = m.now().Add(m.overlayFor)
}

// Render draws one frame of the active theme, plus the name overlay
// while it is live, and flushes the display.
func (m *Manager) Render(bands []float64) {
	m.themes[m.current].Render(bands)
	if m.now().Before(m.overlayUntil) {
		m.drawOverlay()
	}
	m.d.Flush()
}

// drawOverlay draws a bordered name box near the bottom of the screen.
func (m *Manager) drawOverlay() {
	name := m.Name()
	const charW, charH, pad = 12, 16, 10

	tw := len(name) * charW
	x := (m.d.Width() - tw) / 2
	y := m.d.Height() - 40

	m.d.FillRect(x-pad, y-pad, tw+2*pad, charH+2*pad, Black)
	// Border, one pixel thick.
	m.d.FillRect(x-pad, y-pad, tw+2*pad, 1, White)
	m.d.FillRect(x-pad, y+charH+pad-1, tw+2*pad, 1, White)
	m.d.FillRect(x-pad, y-pad, 1, charH+2*pad, White)
	m.d.FillRect(x+tw+pad-1, y-pad, 1, charH+2*pad, White)
	// Underline stand-in for text until a font lands.
	m.d.FillRect(x, y+charH/2, tw, 2, Cyan)
}
