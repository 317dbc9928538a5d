package gamepad

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/components/input"
	"github.com/diffdrive/teleop/utils"
)

// Defaults for a gamepad config.
const (
	DefaultMaxIndex = 3
	DefaultPollHz   = 100
)

// An AxisMapping locates one axis in the joystick report.
type AxisMapping struct {
	Index  int  `json:"index" yaml:"index"`
	Invert bool `json:"invert,omitempty" yaml:"invert,omitempty"`
}

// Config describes where to look for a joystick and how its report maps onto controls.
type Config struct {
	// MaxIndex is the highest /dev/input/jsN tried during discovery.
	MaxIndex int     `json:"max_index" yaml:"max_index"`
	PollHz   float64 `json:"poll_hz" yaml:"poll_hz"`

	Axes    map[input.Control]AxisMapping `json:"axes,omitempty" yaml:"axes,omitempty"`
	Buttons map[input.Control]int         `json:"buttons,omitempty" yaml:"buttons,omitempty"`
}

// DefaultConfig returns the layout the Linux hid-sony driver gives a DualShock 4. Its sticks
// report down as positive, so both vertical axes are inverted.
func DefaultConfig() Config {
	return Config{
		MaxIndex: DefaultMaxIndex,
		PollHz:   DefaultPollHz,
		Axes:     DefaultAxes(),
		Buttons:  DefaultButtons(),
	}
}

// DefaultAxes returns the hid-sony axis layout.
func DefaultAxes() map[input.Control]AxisMapping {
	return map[input.Control]AxisMapping{
		input.AbsoluteX:  {Index: 0},
		input.AbsoluteY:  {Index: 1, Invert: true},
		input.AbsoluteZ:  {Index: 2},
		input.AbsoluteRX: {Index: 3},
		input.AbsoluteRY: {Index: 4, Invert: true},
		input.AbsoluteRZ: {Index: 5},
	}
}

// DefaultButtons returns the hid-sony button layout.
func DefaultButtons() map[input.Control]int {
	return map[input.Control]int{
		input.ButtonSouth: 0,
		input.ButtonEast:  1,
		input.ButtonNorth: 2,
		input.ButtonWest:  3,
		input.ButtonLT:    4,
		input.ButtonRT:    5,
	}
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.MaxIndex < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("max_index must not be negative, got %d", conf.MaxIndex))
	}
	if conf.PollHz <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("poll_hz must be positive, got %v", conf.PollHz))
	}
	for c, m := range conf.Axes {
		if !input.IsAxis(c) {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.axes", path), errors.Errorf("unknown axis %q", c))
		}
		if m.Index < 0 {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.axes.%s", path, c),
				errors.Errorf("index must not be negative, got %d", m.Index))
		}
	}
	for c, index := range conf.Buttons {
		if !input.IsButton(c) {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.buttons", path), errors.Errorf("unknown button %q", c))
		}
		if index < 0 || index > 31 {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.buttons.%s", path, c),
				errors.Errorf("index must be in [0, 31], got %d", index))
		}
	}
	return nil
}
