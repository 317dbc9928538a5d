package input

import (
	"fmt"
	"time"
)

// ButtonState is one button as of one update.
type ButtonState struct {
	// Pressed is set only on the update in which the button went down.
	Pressed bool
	// HoldTime is how long the button has been held continuously, or 0 when it is released.
	HoldTime time.Duration
}

// Held reports whether the button is down.
func (b ButtonState) Held() bool {
	return b.HoldTime > 0
}

// A Sample is an immutable snapshot of the gamepad taken at one update.
type Sample struct {
	Time time.Time

	LeftX, LeftY              float64
	RightX, RightY            float64
	LeftTrigger, RightTrigger float64

	Square, Triangle, Circle, Cross ButtonState
	LeftBumper, RightBumper         ButtonState
}

// Axis returns the value of the given axis, or 0 for a control that is not an axis.
func (s Sample) Axis(c Control) float64 {
	switch c {
	case AbsoluteX:
		return s.LeftX
	case AbsoluteY:
		return s.LeftY
	case AbsoluteRX:
		return s.RightX
	case AbsoluteRY:
		return s.RightY
	case AbsoluteZ:
		return s.LeftTrigger
	case AbsoluteRZ:
		return s.RightTrigger
	default:
		return 0
	}
}

func (s *Sample) setAxis(c Control, v float64) {
	switch c {
	case AbsoluteX:
		s.LeftX = v
	case AbsoluteY:
		s.LeftY = v
	case AbsoluteRX:
		s.RightX = v
	case AbsoluteRY:
		s.RightY = v
	case AbsoluteZ:
		s.LeftTrigger = v
	case AbsoluteRZ:
		s.RightTrigger = v
	}
}

// Button returns the state of the given button, or the zero state for a control that is not a
// button.
func (s Sample) Button(c Control) ButtonState {
	switch c {
	case ButtonWest:
		return s.Square
	case ButtonNorth:
		return s.Triangle
	case ButtonEast:
		return s.Circle
	case ButtonSouth:
		return s.Cross
	case ButtonLT:
		return s.LeftBumper
	case ButtonRT:
		return s.RightBumper
	default:
		return ButtonState{}
	}
}

func (s *Sample) setButton(c Control, b ButtonState) {
	switch c {
	case ButtonWest:
		s.Square = b
	case ButtonNorth:
		s.Triangle = b
	case ButtonEast:
		s.Circle = b
	case ButtonSouth:
		s.Cross = b
	case ButtonLT:
		s.LeftBumper = b
	case ButtonRT:
		s.RightBumper = b
	}
}

// Held reports whether the given button is down, computed from its hold time.
func (s Sample) Held(c Control) bool {
	return s.Button(c).Held()
}

// newSample builds a snapshot from a device report. Controls the report leaves out read as zero,
// and a button with no hold time never counts as pressed.
func newSample(t time.Time, state State) Sample {
	s := Sample{Time: t}
	for _, c := range Axes {
		s.setAxis(c, state.Axes[c])
	}
	for _, c := range Buttons {
		b := state.Buttons[c]
		if b.HoldTime <= 0 {
			b = ButtonState{}
		}
		s.setButton(c, b)
	}
	return s
}

func (s Sample) String() string {
	held := ""
	for _, c := range Buttons {
		if s.Held(c) {
			held += fmt.Sprintf(" %s(%s)", c, s.Button(c).HoldTime.Round(time.Millisecond))
		}
	}
	return fmt.Sprintf("L[%.2f %.2f] R[%.2f %.2f] T[%.2f %.2f] held[%s ]",
		s.LeftX, s.LeftY, s.RightX, s.RightY, s.LeftTrigger, s.RightTrigger, held)
}
