//go:build linux

package genericlinux

import (
	"context"
	"sync"
	"time"

	"github.com/mkch/gpio"
	goutils "go.viam.com/utils"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

const consumerName = "teleop"

// outputLine is a requested GPIO line. *gpio.Line satisfies it.
type outputLine interface {
	SetValue(value byte) error
	Value() (byte, error)
	Close() error
}

// openOutputLine requests one line on the chip at devicePath as an output.
func openOutputLine(devicePath string, offset uint32) (outputLine, error) {
	chip, err := gpio.OpenChip(devicePath)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(chip.Close)

	line, err := chip.OpenLine(offset, 0, gpio.Output, consumerName)
	if err != nil {
		return nil, err
	}
	return line, nil
}

type gpioPin struct {
	// These values should be considered immutable.
	devicePath string
	offset     uint32
	workers    utils.StoppableWorkers
	logger     logging.Logger
	// open requests the line; nil means openOutputLine.
	open func(devicePath string, offset uint32) (outputLine, error)

	// These values are mutable. Lock the mutex when interacting with them.
	line            outputLine
	pwmRunning      bool
	pwmGeneration   uint64
	pwmFreqHz       uint
	pwmDutyCyclePct float64

	mu sync.Mutex
}

// This is a private helper function that should only be called when the mutex is locked. It sets
// pin.line to a valid struct or returns an error.
func (pin *gpioPin) openGpioFd() error {
	if pin.line != nil {
		return nil
	}

	open := pin.open
	if open == nil {
		open = openOutputLine
	}
	line, err := open(pin.devicePath, pin.offset)
	if err != nil {
		return err
	}
	pin.line = line
	return nil
}

// Set sets the pin level and stops any software PWM running on it.
func (pin *gpioPin) Set(ctx context.Context, isHigh bool) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openGpioFd(); err != nil {
		return err
	}

	pin.pwmRunning = false
	return pin.setInternal(isHigh)
}

// This function assumes you've already locked the mutex. It sets the value of a pin without
// changing whether the pin is part of a PWM loop.
func (pin *gpioPin) setInternal(isHigh bool) error {
	var value byte
	if isHigh {
		value = 1
	}
	return pin.line.SetValue(value)
}

func (pin *gpioPin) Get(ctx context.Context) (bool, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openGpioFd(); err != nil {
		return false, err
	}

	value, err := pin.line.Value()
	if err != nil {
		return false, err
	}

	// Any non-zero value should be considered high.
	return value != 0, nil
}

// Lock the mutex before calling this! Starts a software PWM loop if the pin has both a duty cycle
// and a frequency and no loop is already running.
func (pin *gpioPin) startSoftwarePWM() error {
	if err := pin.openGpioFd(); err != nil {
		return err
	}
	if pin.pwmDutyCyclePct <= 0 || pin.pwmFreqHz == 0 {
		pin.pwmRunning = false
		return pin.setInternal(false)
	}
	if pin.pwmDutyCyclePct >= 100 {
		pin.pwmRunning = false
		return pin.setInternal(true)
	}
	if pin.pwmRunning {
		return nil
	}

	pin.pwmRunning = true
	pin.pwmGeneration++
	generation := pin.pwmGeneration
	pin.workers.AddWorkers(func(ctx context.Context) {
		pin.softwarePwmLoop(ctx, generation)
	})
	return nil
}

// halfPwmCycle turns the pin on or off and then waits until it's time to flip it again. It
// returns whether the loop should continue.
func (pin *gpioPin) halfPwmCycle(ctx context.Context, generation uint64, shouldBeOn bool) bool {
	var dutyCycle float64
	var freqHz uint

	shouldContinue := func() bool {
		pin.mu.Lock()
		defer pin.mu.Unlock()
		// A newer loop may have replaced this one while we were waiting.
		if !pin.pwmRunning || pin.pwmGeneration != generation {
			return false
		}

		dutyCycle = pin.pwmDutyCyclePct / 100
		freqHz = pin.pwmFreqHz

		// A failed toggle does not stop the loop; hopefully the next one succeeds.
		goutils.UncheckedErrorFunc(func() error { return pin.setInternal(shouldBeOn) })
		return true
	}()

	if !shouldContinue {
		return false
	}

	if !shouldBeOn {
		dutyCycle = 1 - dutyCycle
	}
	duration := time.Duration(float64(time.Second) * dutyCycle / float64(freqHz))
	return goutils.SelectContextOrWait(ctx, duration)
}

func (pin *gpioPin) softwarePwmLoop(ctx context.Context, generation uint64) {
	for {
		if !pin.halfPwmCycle(ctx, generation, true) {
			return
		}
		if !pin.halfPwmCycle(ctx, generation, false) {
			return
		}
	}
}

func (pin *gpioPin) PWM(ctx context.Context) (float64, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	return pin.pwmDutyCyclePct, nil
}

func (pin *gpioPin) SetPWM(ctx context.Context, dutyCyclePct float64) error {
	if err := board.ValidateDutyCycle(dutyCyclePct); err != nil {
		return err
	}
	pin.mu.Lock()
	defer pin.mu.Unlock()

	pin.pwmDutyCyclePct = dutyCyclePct
	return pin.startSoftwarePWM()
}

func (pin *gpioPin) PWMFreq(ctx context.Context) (uint, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	return pin.pwmFreqHz, nil
}

func (pin *gpioPin) SetPWMFreq(ctx context.Context, freqHz uint) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	pin.pwmFreqHz = freqHz
	return pin.startSoftwarePWM()
}

// Close drives the line low and releases it. Software PWM loops must already be stopped.
func (pin *gpioPin) Close() error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return nil // Never opened, so no need to close
	}

	pin.pwmRunning = false
	goutils.UncheckedErrorFunc(func() error { return pin.setInternal(false) })
	err := pin.line.Close()
	pin.line = nil
	if err == nil {
		pin.logger.Debugw("released line", "chip", pin.devicePath, "offset", pin.offset)
	}
	return err
}
