// Package gpio implements a motor driven through a direction pin and a PWM pin on a board.
package gpio

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/components/motor"
	"github.com/diffdrive/teleop/logging"
)

// Direction pin levels, matching the wiring of the drive: low turns the wheel forward, high
// reverses it and is also the idle level.
const (
	forwardLevel = false
	reverseLevel = true
)

var _ motor.Motor = (*Motor)(nil)

// A Motor is a direction/PWM motor with a ceiling on the power it will apply.
type Motor struct {
	mu sync.Mutex

	dirPin      board.GPIOPin
	pwmPin      board.GPIOPin
	maxPowerPct float64
	powerPct    float64

	logger logging.Logger
}

// NewMotor claims the configured pins on b, sets the direction pin to its idle level and starts
// PWM at the configured frequency with a 0% duty cycle.
func NewMotor(ctx context.Context, b board.Board, conf Config, logger logging.Logger) (*Motor, error) {
	if err := conf.Validate("motor"); err != nil {
		return nil, err
	}
	freqHz := conf.PWMFreqHz
	if freqHz == 0 {
		freqHz = DefaultPWMFreqHz
	}

	dirPin, err := b.GPIOPinByName(conf.Pins.Direction)
	if err != nil {
		return nil, errors.Wrapf(err, "claiming direction pin %s", conf.Pins.Direction)
	}
	pwmPin, err := b.GPIOPinByName(conf.Pins.PWM)
	if err != nil {
		return nil, errors.Wrapf(err, "claiming PWM pin %s", conf.Pins.PWM)
	}

	if err := dirPin.Set(ctx, reverseLevel); err != nil {
		return nil, errors.Wrapf(err, "initializing direction pin %s", conf.Pins.Direction)
	}
	if err := pwmPin.SetPWMFreq(ctx, freqHz); err != nil {
		return nil, errors.Wrapf(err, "setting PWM frequency on pin %s", conf.Pins.PWM)
	}
	if err := pwmPin.SetPWM(ctx, 0); err != nil {
		return nil, errors.Wrapf(err, "initializing PWM pin %s", conf.Pins.PWM)
	}

	logger.Debugw("motor ready",
		"dir", conf.Pins.Direction, "pwm", conf.Pins.PWM, "max_power", conf.MaxPowerPct, "freq_hz", freqHz)
	return &Motor{
		dirPin:      dirPin,
		pwmPin:      pwmPin,
		maxPowerPct: conf.MaxPowerPct,
		logger:      logger,
	}, nil
}

// SetPower clamps powerPct to the motor's ceiling, selects the direction from its sign and
// writes its magnitude as the duty cycle. Zero counts as reverse.
func (m *Motor) SetPower(ctx context.Context, powerPct float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	powerPct, err := fixPowerPct(powerPct, m.maxPowerPct)
	if err != nil {
		return err
	}

	level := reverseLevel
	if motor.GetSign(powerPct) > 0 {
		level = forwardLevel
	}
	if err := m.dirPin.Set(ctx, level); err != nil {
		return errors.Wrap(err, "setting direction")
	}
	if err := m.pwmPin.SetPWM(ctx, dutyCyclePct(powerPct)); err != nil {
		return errors.Wrap(err, "setting duty cycle")
	}
	m.powerPct = powerPct
	return nil
}

// Stop turns the power to the motor off immediately.
func (m *Motor) Stop(ctx context.Context) error {
	return m.SetPower(ctx, 0)
}

// IsPowered returns if the motor is currently on or off, and the power it was last set to after
// clamping.
func (m *Motor) IsPowered(ctx context.Context) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.powerPct != 0, m.powerPct, nil
}
