// Package genericlinux implements a board on top of the Linux GPIO character device
// (/dev/gpiochipN). Pins are named by their line offset on the chip, which on a Raspberry Pi's
// gpiochip0 is the BCM GPIO number. PWM is generated in software.
package genericlinux

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

// DriverName is the name this board registers under.
const DriverName = "gpiochip"

func init() {
	board.RegisterDriver(DriverName, func(
		ctx context.Context,
		conf board.Config,
		logger logging.Logger,
	) (board.Board, error) {
		return NewBoard(conf, logger), nil
	})
}

// Board hands out software-PWM capable pins on a single GPIO chip.
type Board struct {
	devicePath string
	logger     logging.Logger
	workers    utils.StoppableWorkers

	mu   sync.Mutex
	pins map[string]*gpioPin
}

// NewBoard returns a board for the chip named in conf, defaulting to /dev/gpiochip0. Lines are
// not opened until a pin is first used.
func NewBoard(conf board.Config, logger logging.Logger) *Board {
	devicePath := conf.GPIOChip
	if devicePath == "" {
		devicePath = board.DefaultGPIOChip
	}
	return &Board{
		devicePath: devicePath,
		logger:     logger,
		workers:    utils.NewStoppableWorkers(),
		pins:       map[string]*gpioPin{},
	}
}

// GPIOPinByName returns the pin at the named line offset.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if pin, ok := b.pins[name]; ok {
		return pin, nil
	}
	offset, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return nil, errors.Errorf("pin name %q is not a line offset on %s", name, b.devicePath)
	}
	pin := &gpioPin{
		devicePath: b.devicePath,
		offset:     uint32(offset),
		workers:    b.workers,
		logger:     b.logger,
	}
	b.pins[name] = pin
	return pin, nil
}

// Close stops every software PWM loop, then drives each line low and releases it.
func (b *Board) Close(ctx context.Context) error {
	b.workers.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for name, pin := range b.pins {
		if closeErr := pin.Close(); closeErr != nil {
			err = multierr.Combine(err, errors.Wrapf(closeErr, "closing pin %s", name))
		}
	}
	b.pins = map[string]*gpioPin{}
	return err
}
