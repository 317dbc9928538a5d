package board

import (
	"github.com/diffdrive/teleop/utils"
)

// Default values for a board config.
const (
	DefaultDriver   = "gpiochip"
	DefaultGPIOChip = "/dev/gpiochip0"
)

// A Config describes which board driver to use and where its lines live.
type Config struct {
	Driver   string `json:"driver" yaml:"driver" env:"TELEOP_BOARD_DRIVER"`
	GPIOChip string `json:"gpio_chip,omitempty" yaml:"gpio_chip,omitempty" env:"TELEOP_GPIO_CHIP"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Driver == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "driver")
	}
	return nil
}
