package pi

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
)

// softwareOnlyPin is a test pin without hardware PWM.
type softwareOnlyPin struct {
	*gpiotest.Pin
}

func (p softwareOnlyPin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("no hardware PWM on this pin")
}

func newTestBoard(t *testing.T, pins map[string]gpio.PinIO) *sysfsBoard {
	t.Helper()
	return newBoard(func(name string) gpio.PinIO { return pins[name] }, logging.NewTestLogger(t))
}

func TestHardwarePWM(t *testing.T) {
	ctx := context.Background()
	raw := &gpiotest.Pin{N: "GPIO18", Num: 18}
	b := newTestBoard(t, map[string]gpio.PinIO{"18": raw})

	_, err := b.GPIOPinByName("99")
	test.That(t, err, test.ShouldNotBeNil)

	pin, err := b.GPIOPinByName("18")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pin.SetPWMFreq(ctx, 100), test.ShouldBeNil)
	test.That(t, pin.SetPWM(ctx, 50), test.ShouldBeNil)
	test.That(t, errors.Is(pin.SetPWM(ctx, math.NaN()), board.ErrInvalidDutyCycle), test.ShouldBeTrue)

	duty, err := pin.PWM(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, duty, test.ShouldAlmostEqual, 50, 0.01)
	freq, err := pin.PWMFreq(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, freq, test.ShouldEqual, 100)
	test.That(t, raw.F, test.ShouldEqual, 100*physic.Hertz)
	test.That(t, raw.D, test.ShouldEqual, gpio.DutyHalf)

	test.That(t, pin.Set(ctx, true), test.ShouldBeNil)
	high, err := pin.Get(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeTrue)
	_, err = pin.PWM(ctx)
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, b.Close(ctx), test.ShouldBeNil)
	test.That(t, raw.Read(), test.ShouldEqual, gpio.Low)
}

func TestSoftwarePWMFallback(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t, map[string]gpio.PinIO{"15": softwareOnlyPin{&gpiotest.Pin{N: "GPIO15", Num: 15}}})

	pin, err := b.GPIOPinByName("15")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pin.SetPWMFreq(ctx, 100), test.ShouldBeNil)
	test.That(t, pin.SetPWM(ctx, 30), test.ShouldBeNil)

	duty, err := pin.PWM(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, duty, test.ShouldAlmostEqual, 30, 0.01)

	b.mu.RLock()
	test.That(t, b.pwms["15"].software, test.ShouldBeTrue)
	test.That(t, b.pins["15"].loopRunning, test.ShouldBeTrue)
	b.mu.RUnlock()

	// Close must stop the loop rather than hang.
	test.That(t, b.Close(ctx), test.ShouldBeNil)
}
