// Package wheeled implements a differential-drive base with one direction/PWM motor per side.
package wheeled

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/diffdrive/teleop/components/base"
	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/components/motor"
	"github.com/diffdrive/teleop/components/motor/gpio"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

var _ base.Base = (*Base)(nil)

// ErrClosed is returned from commands issued after Close.
var ErrClosed = errors.New("base is closed")

// A Base drives a left and a right motor, both clamped to the same speed limit.
type Base struct {
	mu     sync.Mutex
	closed bool

	board     board.Board
	left      motor.Motor
	right     motor.Motor
	allMotors []motor.Motor

	logger logging.Logger
}

// NewBase claims the configured lines on b and brings both motors to a stopped state. The base
// takes ownership of b: Close releases it, and so does a failed construction.
func NewBase(ctx context.Context, b board.Board, cfg Config, logger logging.Logger) (*Base, error) {
	guard := utils.NewGuard(func() {
		if err := b.Close(ctx); err != nil {
			logger.Warnw("failed to release board", "error", err)
		}
	})
	defer guard.OnFail()

	if err := cfg.Validate("drive"); err != nil {
		return nil, err
	}

	leftConf, rightConf := cfg.motorConfigs()
	left, err := gpio.NewMotor(ctx, b, leftConf, logger.Sublogger("left"))
	if err != nil {
		return nil, errors.Wrap(err, "left motor")
	}
	right, err := gpio.NewMotor(ctx, b, rightConf, logger.Sublogger("right"))
	if err != nil {
		return nil, errors.Wrap(err, "right motor")
	}

	guard.Success()
	logger.Infow("base ready", "speed_limit", cfg.SpeedLimit)
	return &Base{
		board:     b,
		left:      left,
		right:     right,
		allMotors: []motor.Motor{left, right},
		logger:    logger,
	}, nil
}

// SetSpeeds commands both wheels. Each speed is clamped to the speed limit; its sign picks the
// direction and its magnitude the duty cycle. If either motor fails the base is stopped.
func (wb *Base) SetSpeeds(ctx context.Context, left, right float64) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return ErrClosed
	}

	err := multierr.Combine(
		wb.left.SetPower(ctx, left),
		wb.right.SetPower(ctx, right),
	)
	if err != nil {
		return multierr.Combine(err, wb.stop(ctx))
	}
	return nil
}

// Stop commands the base to stop moving. It is the same as SetSpeeds(ctx, 0, 0).
func (wb *Base) Stop(ctx context.Context) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return ErrClosed
	}
	return wb.stop(ctx)
}

func (wb *Base) stop(ctx context.Context) error {
	var err error
	for _, m := range wb.allMotors {
		err = multierr.Combine(err, m.Stop(ctx))
	}
	return err
}

// IsMoving returns whether either wheel is powered.
func (wb *Base) IsMoving(ctx context.Context) (bool, error) {
	for _, m := range wb.allMotors {
		isMoving, _, err := m.IsPowered(ctx)
		if err != nil {
			return false, err
		}
		if isMoving {
			return true, nil
		}
	}
	return false, nil
}

// Close stops the wheels and releases the board. A failure to stop is logged and otherwise
// ignored so that shutdown always completes. Calling Close more than once is a no-op.
func (wb *Base) Close(ctx context.Context) error {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if wb.closed {
		return nil
	}
	wb.closed = true

	if err := wb.stop(ctx); err != nil {
		wb.logger.Errorw("failed to stop wheels", "error", err)
	}
	err := wb.board.Close(ctx)
	wb.logger.Info("robot shut down")
	return err
}
