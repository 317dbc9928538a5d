// Package pi implements a board on top of periph.io's host drivers. Pins are looked up in the
// periph.io registry, so both "GPIO18" and "18" name BCM pin 18 on a Raspberry Pi. Pins that
// support hardware PWM use it; the rest fall back to a software loop.
package pi

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

// DriverName is the name this board registers under.
const DriverName = "pi"

func init() {
	board.RegisterDriver(DriverName, func(
		ctx context.Context,
		conf board.Config,
		logger logging.Logger,
	) (board.Board, error) {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "error initializing host")
		}
		return newBoard(gpioreg.ByName, logger), nil
	})
}

type pwmSetting struct {
	dutyCycle gpio.Duty
	frequency physic.Frequency
	software  bool
}

type sysfsBoard struct {
	lookup  func(name string) gpio.PinIO
	logger  logging.Logger
	workers utils.StoppableWorkers

	mu   sync.RWMutex
	pins map[string]*gpioPin
	pwms map[string]pwmSetting
}

func newBoard(lookup func(string) gpio.PinIO, logger logging.Logger) *sysfsBoard {
	return &sysfsBoard{
		lookup:  lookup,
		logger:  logger,
		workers: utils.NewStoppableWorkers(),
		pins:    map[string]*gpioPin{},
		pwms:    map[string]pwmSetting{},
	}
}

type gpioPin struct {
	b       *sysfsBoard
	pin     gpio.PinIO
	pinName string

	// guarded by b.mu
	loopRunning bool
}

func (b *sysfsBoard) GPIOPinByName(pinName string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gp, ok := b.pins[pinName]; ok {
		return gp, nil
	}
	pin := b.lookup(pinName)
	if pin == nil {
		return nil, errors.Errorf("no global pin found for %q", pinName)
	}
	gp := &gpioPin{b: b, pin: pin, pinName: pinName}
	b.pins[pinName] = gp
	return gp, nil
}

func (gp *gpioPin) Set(ctx context.Context, high bool) error {
	gp.b.mu.Lock()
	defer gp.b.mu.Unlock()

	delete(gp.b.pwms, gp.pinName)

	return gp.set(high)
}

func (gp *gpioPin) set(high bool) error {
	l := gpio.Low
	if high {
		l = gpio.High
	}
	return gp.pin.Out(l)
}

func (gp *gpioPin) Get(ctx context.Context) (bool, error) {
	return gp.pin.Read() == gpio.High, nil
}

func (gp *gpioPin) PWM(ctx context.Context) (float64, error) {
	gp.b.mu.RLock()
	defer gp.b.mu.RUnlock()

	pwm, ok := gp.b.pwms[gp.pinName]
	if !ok {
		return 0, errors.Errorf("pin %s is not running PWM", gp.pinName)
	}
	return 100 * float64(pwm.dutyCycle) / float64(gpio.DutyMax), nil
}

func (gp *gpioPin) SetPWM(ctx context.Context, dutyCyclePct float64) error {
	if err := board.ValidateDutyCycle(dutyCyclePct); err != nil {
		return err
	}
	gp.b.mu.Lock()
	defer gp.b.mu.Unlock()

	last := gp.b.pwms[gp.pinName]
	last.dutyCycle = gpio.Duty(dutyCyclePct / 100 * float64(gpio.DutyMax))
	return gp.b.applyPWM(gp, last)
}

func (gp *gpioPin) PWMFreq(ctx context.Context) (uint, error) {
	gp.b.mu.RLock()
	defer gp.b.mu.RUnlock()

	return uint(gp.b.pwms[gp.pinName].frequency / physic.Hertz), nil
}

func (gp *gpioPin) SetPWMFreq(ctx context.Context, freqHz uint) error {
	gp.b.mu.Lock()
	defer gp.b.mu.Unlock()

	last := gp.b.pwms[gp.pinName]
	last.frequency = physic.Hertz * physic.Frequency(freqHz)
	return gp.b.applyPWM(gp, last)
}

// expects to already have lock acquired. Hardware PWM is tried first; once a pin has fallen back
// to software it stays there.
func (b *sysfsBoard) applyPWM(gp *gpioPin, setting pwmSetting) error {
	if !setting.software && setting.frequency != 0 {
		err := gp.pin.PWM(setting.dutyCycle, setting.frequency)
		if err == nil {
			b.pwms[gp.pinName] = setting
			return nil
		}
		b.logger.Debugw("hardware PWM unavailable, using software PWM", "pin", gp.pinName, "error", err)
		setting.software = true
	}
	b.pwms[gp.pinName] = setting

	if setting.software && !gp.loopRunning {
		gp.loopRunning = true
		b.workers.AddWorkers(func(ctx context.Context) {
			b.softwarePWMLoop(ctx, gp)
		})
	}
	return nil
}

// softwarePWMPeriods returns how long the pin should spend high and low, and false once the pin
// should stop looping.
func (b *sysfsBoard) softwarePWMPeriods(gp *gpioPin) (time.Duration, time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pwmSetting, ok := b.pwms[gp.pinName]
	if !ok || pwmSetting.frequency == 0 {
		b.logger.Debugw("pwm setting deleted; stopping", "pin", gp.pinName)
		gp.loopRunning = false
		return 0, 0, false
	}
	period := pwmSetting.frequency.Period()
	onPeriod := time.Duration(float64(pwmSetting.dutyCycle) / float64(gpio.DutyMax) * float64(period))
	return onPeriod, period - onPeriod, true
}

func (b *sysfsBoard) softwarePWMLoop(ctx context.Context, gp *gpioPin) {
	for {
		onPeriod, offPeriod, ok := b.softwarePWMPeriods(gp)
		if !ok {
			return
		}
		if onPeriod > 0 {
			if err := gp.out(true); err != nil {
				b.logger.Errorw("error setting pin", "pin_name", gp.pinName, "error", err)
			}
			if !goutils.SelectContextOrWait(ctx, onPeriod) {
				return
			}
		}
		if offPeriod > 0 {
			if err := gp.out(false); err != nil {
				b.logger.Errorw("error setting pin", "pin_name", gp.pinName, "error", err)
			}
			if !goutils.SelectContextOrWait(ctx, offPeriod) {
				return
			}
		}
	}
}

// out sets the level while honoring a concurrent Set, which owns the pin once it has removed the
// PWM setting.
func (gp *gpioPin) out(high bool) error {
	gp.b.mu.RLock()
	defer gp.b.mu.RUnlock()
	if _, ok := gp.b.pwms[gp.pinName]; !ok {
		return nil
	}
	return gp.set(high)
}

// Close stops every software PWM loop, drives each pin low and halts it.
func (b *sysfsBoard) Close(ctx context.Context) error {
	b.workers.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for name, gp := range b.pins {
		err = multierr.Combine(
			err,
			errors.Wrapf(gp.set(false), "driving pin %s low", name),
			errors.Wrapf(gp.pin.Halt(), "halting pin %s", name),
		)
	}
	b.pins = map[string]*gpioPin{}
	b.pwms = map[string]pwmSetting{}
	return err
}
