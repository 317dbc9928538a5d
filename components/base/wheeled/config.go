package wheeled

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/components/motor/gpio"
	"github.com/diffdrive/teleop/utils"
)

// Default values for a wheeled base config.
const (
	DefaultSpeedLimit = 0.7
	DefaultPWMLeft    = "18"
	DefaultPWMRight   = "15"
	DefaultDirLeft    = "24"
	DefaultDirRight   = "23"
)

// PinConfig assigns the four lines a base drives.
type PinConfig struct {
	PWMLeft  string `json:"pwm_left" yaml:"pwm_left"`
	PWMRight string `json:"pwm_right" yaml:"pwm_right"`
	DirLeft  string `json:"dir_left" yaml:"dir_left"`
	DirRight string `json:"dir_right" yaml:"dir_right"`
}

// Config is how you configure a wheeled base.
type Config struct {
	SpeedLimit float64   `json:"speed_limit" yaml:"speed_limit" env:"TELEOP_SPEED_LIMIT"`
	PWMFreqHz  uint      `json:"pwm_freq_hz,omitempty" yaml:"pwm_freq_hz,omitempty"`
	Pins       PinConfig `json:"pins" yaml:"pins"`
}

// DefaultConfig returns the config of the reference robot.
func DefaultConfig() Config {
	return Config{
		SpeedLimit: DefaultSpeedLimit,
		PWMFreqHz:  gpio.DefaultPWMFreqHz,
		Pins: PinConfig{
			PWMLeft:  DefaultPWMLeft,
			PWMRight: DefaultPWMRight,
			DirLeft:  DefaultDirLeft,
			DirRight: DefaultDirRight,
		},
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if cfg.SpeedLimit <= 0 || cfg.SpeedLimit > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("speed_limit must be in (0, 1], got %v", cfg.SpeedLimit))
	}

	pinsPath := fmt.Sprintf("%s.%s", path, "pins")
	seen := map[string]string{}
	for _, pin := range []struct{ field, name string }{
		{"pwm_left", cfg.Pins.PWMLeft},
		{"pwm_right", cfg.Pins.PWMRight},
		{"dir_left", cfg.Pins.DirLeft},
		{"dir_right", cfg.Pins.DirRight},
	} {
		if pin.name == "" {
			return utils.NewConfigValidationFieldRequiredError(pinsPath, pin.field)
		}
		if other, ok := seen[pin.name]; ok {
			return utils.NewConfigValidationError(pinsPath,
				errors.Errorf("%s and %s both use pin %q", other, pin.field, pin.name))
		}
		seen[pin.name] = pin.field
	}
	return nil
}

func (cfg *Config) motorConfigs() (gpio.Config, gpio.Config) {
	left := gpio.Config{
		Pins:        gpio.PinConfig{Direction: cfg.Pins.DirLeft, PWM: cfg.Pins.PWMLeft},
		MaxPowerPct: cfg.SpeedLimit,
		PWMFreqHz:   cfg.PWMFreqHz,
	}
	right := gpio.Config{
		Pins:        gpio.PinConfig{Direction: cfg.Pins.DirRight, PWM: cfg.Pins.PWMRight},
		MaxPowerPct: cfg.SpeedLimit,
		PWMFreqHz:   cfg.PWMFreqHz,
	}
	return left, right
}
