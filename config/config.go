// Package config defines the structures to configure the teleop controller and the means to
// read them from a file and the environment.
package config

import (
	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/components/base/wheeled"
	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/components/input/gamepad"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

// Controller drivers.
const (
	ControllerJoystick = "joystick"
	ControllerFake     = "fake"
)

// DefaultLoopHz is how often the driving loop forwards stick positions to the wheels.
const DefaultLoopHz = 50

// A Config describes the configuration of the whole robot.
type Config struct {
	Board      board.Config     `json:"board" yaml:"board"`
	Drive      wheeled.Config   `json:"drive" yaml:"drive"`
	Controller ControllerConfig `json:"controller" yaml:"controller"`

	LoopHz float64 `json:"loop_hz" yaml:"loop_hz" env:"TELEOP_LOOP_HZ"`

	// LogLevel is one of debug, info, warn or error. Debug forces debug regardless.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"TELEOP_LOG_LEVEL"`
	Debug    bool   `json:"debug,omitempty" yaml:"debug,omitempty" env:"TELEOP_DEBUG"`
	// LogFile, when set, also writes logs to this file with size-based rotation.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty" env:"TELEOP_LOG_FILE"`

	// ConfigFilePath is the path this config was read from, if any.
	ConfigFilePath string `json:"-" yaml:"-"`
}

// ControllerConfig picks the controller driver. The joystick settings are inlined next to it.
type ControllerConfig struct {
	Driver string `json:"driver" yaml:"driver" env:"TELEOP_CONTROLLER_DRIVER"`

	gamepad.Config `yaml:",inline"`
}

// Default returns the config of the reference robot: a gpiochip board, a DualShock on
// /dev/input/js0..3 and a speed limit of 0.7.
func Default() *Config {
	return &Config{
		Board: board.Config{
			Driver:   board.DefaultDriver,
			GPIOChip: board.DefaultGPIOChip,
		},
		Drive: wheeled.DefaultConfig(),
		Controller: ControllerConfig{
			Driver: ControllerJoystick,
			Config: gamepad.DefaultConfig(),
		},
		LoopHz:   DefaultLoopHz,
		LogLevel: "info",
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Board.Validate("board"); err != nil {
		return err
	}
	if err := c.Drive.Validate("drive"); err != nil {
		return err
	}
	if err := c.Controller.Validate("controller"); err != nil {
		return err
	}
	if c.LoopHz <= 0 {
		return utils.NewConfigValidationError("loop_hz", errors.Errorf("must be positive, got %v", c.LoopHz))
	}
	if _, err := logging.LevelFromString(c.LogLevel); err != nil {
		return utils.NewConfigValidationError("log_level", err)
	}
	return nil
}

// Validate ensures all parts of the config are valid.
func (c *ControllerConfig) Validate(path string) error {
	switch c.Driver {
	case ControllerJoystick, ControllerFake:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "driver")
	default:
		return utils.NewConfigValidationError(path,
			errors.Errorf("unknown driver %q, want %q or %q", c.Driver, ControllerJoystick, ControllerFake))
	}
	return c.Config.Validate(path)
}
