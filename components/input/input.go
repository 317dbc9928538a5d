// Package input provides human input from a gamepad: a polled snapshot of its sticks, triggers
// and face/shoulder buttons, plus callbacks on changes.
package input

import (
	"context"
	"time"
)

// ControlFunction is a callback passed to RegisterControlCallback.
type ControlFunction func(ctx context.Context, ev Event)

// EventType represents the type of input event passed to ControlFunction callbacks.
type EventType string

// EventType list.
const (
	// Callbacks registered for this event will be called in ADDITION to other registered event callbacks.
	AllEvents EventType = "AllEvents"
	// Sent when a controller is found, and on reconnects.
	Connect EventType = "Connect"
	// If unplugged, or the device stops answering.
	Disconnect EventType = "Disconnect"
	// Typical key press.
	ButtonPress EventType = "ButtonPress"
	// Key release.
	ButtonRelease EventType = "ButtonRelease"
	// Both up and down for convenience during registration, not typically emitted.
	ButtonChange EventType = "ButtonChange"
	// Absolute position is reported via Value, a la joysticks.
	PositionChangeAbs EventType = "PositionChangeAbs"
)

// Control identifies the input (specific Axis or Button) of a controller.
type Control string

// Controls read from the gamepad.
const (
	// Axes. Sticks report [-1, 1] with up and right positive; triggers report [0, 1].
	AbsoluteX  Control = "AbsoluteX"  // left stick, horizontal
	AbsoluteY  Control = "AbsoluteY"  // left stick, vertical
	AbsoluteRX Control = "AbsoluteRX" // right stick, horizontal
	AbsoluteRY Control = "AbsoluteRY" // right stick, vertical
	AbsoluteZ  Control = "AbsoluteZ"  // left trigger
	AbsoluteRZ Control = "AbsoluteRZ" // right trigger

	// Buttons, named by position. On a DualShock West is square, North triangle, East circle and
	// South cross; LT and RT are the shoulder bumpers L1 and R1.
	ButtonWest  Control = "ButtonWest"
	ButtonNorth Control = "ButtonNorth"
	ButtonEast  Control = "ButtonEast"
	ButtonSouth Control = "ButtonSouth"
	ButtonLT    Control = "ButtonLT"
	ButtonRT    Control = "ButtonRT"
)

// Axes lists every axis a Sample carries.
var Axes = []Control{AbsoluteX, AbsoluteY, AbsoluteRX, AbsoluteRY, AbsoluteZ, AbsoluteRZ}

// Buttons lists every button a Sample carries.
var Buttons = []Control{ButtonWest, ButtonNorth, ButtonEast, ButtonSouth, ButtonLT, ButtonRT}

// IsAxis reports whether c is one of Axes.
func IsAxis(c Control) bool {
	for _, axis := range Axes {
		if axis == c {
			return true
		}
	}
	return false
}

// IsButton reports whether c is one of Buttons.
func IsButton(c Control) bool {
	for _, button := range Buttons {
		if button == c {
			return true
		}
	}
	return false
}

// Event is passed to the registered ControlFunction.
type Event struct {
	Time    time.Time
	Event   EventType
	Control Control // Key or Axis
	Value   float64 // 0 or 1 for buttons, -1.0 to +1.0 for axes
}
