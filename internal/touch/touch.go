// SPDX-License-Identifier: MIT
/*
Package touch reads a resistive touch peripheral and classifies completed
touch interactions into discrete gestures. All state lives on the
presentation context; nothing here crosses the concurrency boundary.
*/
package touch

// Point is one instantaneous reading from the touch peripheral.
type Point struct {
	X        int
	Y        int
	Pressure int
	// Pressed is the peripheral's own presence claim. The recognizer
	// trusts the pressure value over this signal: sub-threshold pressure
	// is treated as no contact to reject noise.
	Pressed bool
}

// Peripheral is the touch controller collaborator. Read returns
// immediately when there is no contact, otherwise within one bus
// transaction. Exactly one Read per frame poll.
type Peripheral interface {
	Read() Point
}

// PressureFromRaw derives a pressure value from the controller's raw
// X and plate resistance readings (z1, z2). Zero z1 means no contact.
func PressureFromRaw(x, z1, z2 int) int {
	if z1 == 0 {
		return 0
	}
	return x * (z2 - z1) / z1
}
