//go:build !linux

package genericlinux

import (
	"context"

	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

var errUnsupported = errors.New("GPIO character devices are only supported on Linux")

// gpioPin is implemented in the Linux version. This one exists so the package compiles
// elsewhere; every operation fails.
type gpioPin struct {
	devicePath string
	offset     uint32
	workers    utils.StoppableWorkers
	logger     logging.Logger
}

func (pin *gpioPin) Set(ctx context.Context, isHigh bool) error    { return errUnsupported }
func (pin *gpioPin) Get(ctx context.Context) (bool, error)         { return false, errUnsupported }
func (pin *gpioPin) PWM(ctx context.Context) (float64, error)      { return 0, errUnsupported }
func (pin *gpioPin) SetPWM(ctx context.Context, pct float64) error { return errUnsupported }
func (pin *gpioPin) PWMFreq(ctx context.Context) (uint, error)     { return 0, errUnsupported }
func (pin *gpioPin) SetPWMFreq(ctx context.Context, hz uint) error { return errUnsupported }
func (pin *gpioPin) Close() error                                  { return nil }
