package gpio

import (
	"github.com/diffdrive/teleop/components/motor"
	"github.com/diffdrive/teleop/utils"
)

// DefaultPWMFreqHz is the PWM carrier frequency used when none is configured.
const DefaultPWMFreqHz = 100

// PinConfig defines the mapping of where motor are wired.
type PinConfig struct {
	Direction string
	PWM       string
}

// Config describes the configuration of a motor.
type Config struct {
	Pins PinConfig
	// MaxPowerPct bounds the magnitude of any power applied, as a fraction of full scale.
	MaxPowerPct float64
	PWMFreqHz   uint
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Pins.Direction == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "dir")
	}
	if conf.Pins.PWM == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "pwm")
	}
	if conf.Pins.Direction == conf.Pins.PWM {
		return utils.NewConfigValidationError(path, motor.NewSamePinError(conf.Pins.PWM))
	}
	if conf.MaxPowerPct <= 0 || conf.MaxPowerPct > 1 {
		return utils.NewConfigValidationError(path, motor.NewInvalidMaxPowerError(conf.MaxPowerPct))
	}
	return nil
}
