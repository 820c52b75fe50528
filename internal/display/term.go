// SPDX-License-Identifier: MIT
package display

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"spectrum/internal/touch"
)

// Terminal renders to a terminal with one cell per pixel and doubles as
// a touch peripheral by treating the mouse as a single touch point.
// A left button held down reads as a pressed contact at full pressure.
type Terminal struct {
	screen tcell.Screen
	quit   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	point touch.Point
}

// NewTerminal initializes the terminal screen with mouse reporting on.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{screen: screen, quit: make(chan struct{})}
	go t.pumpEvents()
	return t, nil
}

// pumpEvents translates tcell input into touch state until the screen
// is closed or the user quits.
func (t *Terminal) pumpEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventMouse:
			x, y := ev.Position()
			pressed := ev.Buttons()&tcell.Button1 != 0
			t.mu.Lock()
			t.point = touch.Point{X: x, Y: y, Pressed: pressed}
			if pressed {
				t.point.Pressure = 4095
			}
			t.mu.Unlock()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC,
				ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				t.signalQuit()
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *Terminal) signalQuit() {
	t.once.Do(func() { close(t.quit) })
}

// Quit is closed when the user asks to exit.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// Read implements touch.Peripheral with the latest mouse state.
func (t *Terminal) Read() touch.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.point
}

func (t *Terminal) Width() int {
	w, _ := t.screen.Size()
	return w
}

func (t *Terminal) Height() int {
	_, h := t.screen.Size()
	return h
}

func (t *Terminal) DrawPixel(x, y int, c Color) {
	style := tcell.StyleDefault.Background(toTcell(c))
	t.screen.SetContent(x, y, ' ', nil, style)
}

func (t *Terminal) FillRect(x, y, w, h int, c Color) {
	style := tcell.StyleDefault.Background(toTcell(c))
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			t.screen.SetContent(xx, yy, ' ', nil, style)
		}
	}
}

func (t *Terminal) Flush() {
	t.screen.Show()
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.signalQuit()
	t.screen.Fini()
}

func toTcell(c Color) tcell.Color {
	r, g, b := c.RGB()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

var _ Display = (*Terminal)(nil)
var _ touch.Peripheral = (*Terminal)(nil)
