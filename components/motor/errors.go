package motor

import "github.com/pkg/errors"

// NewInvalidMaxPowerError returns an error for a power ceiling outside (0, 1].
func NewInvalidMaxPowerError(maxPowerPct float64) error {
	return errors.Errorf("max power must be in (0, 1], got %v", maxPowerPct)
}

// NewSamePinError returns an error when a motor is configured to use one pin twice.
func NewSamePinError(pin string) error {
	return errors.Errorf("motor cannot use pin %q for both direction and PWM", pin)
}
