package genericlinux

import (
	"context"
	"testing"

	"go.viam.com/test"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
)

func TestPinNames(t *testing.T) {
	b := NewBoard(board.Config{Driver: DriverName}, logging.NewTestLogger(t))
	test.That(t, b.devicePath, test.ShouldEqual, board.DefaultGPIOChip)

	_, err := b.GPIOPinByName("GPIO18")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not a line offset")

	pin, err := b.GPIOPinByName("18")
	test.That(t, err, test.ShouldBeNil)
	again, err := b.GPIOPinByName("18")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, pin)
	test.That(t, pin.(*gpioPin).offset, test.ShouldEqual, 18)

	// No line was ever opened, so there is nothing to release.
	test.That(t, b.Close(context.Background()), test.ShouldBeNil)
}

func TestCustomChip(t *testing.T) {
	b := NewBoard(board.Config{Driver: DriverName, GPIOChip: "/dev/gpiochip4"}, logging.NewTestLogger(t))
	test.That(t, b.devicePath, test.ShouldEqual, "/dev/gpiochip4")
	test.That(t, board.RegisteredDrivers(), test.ShouldContain, DriverName)
}
