package wheeled

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/diffdrive/teleop/components/board/fake"
	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

func newTestBase(t *testing.T) (*Base, *fake.Board) {
	t.Helper()
	b := fake.NewBoard(logging.NewTestLogger(t))
	wb, err := NewBase(context.Background(), b, DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return wb, b
}

// wheelState reads back the direction level and duty cycle of one side.
func wheelState(t *testing.T, b *fake.Board, dirPin, pwmPin string) (bool, float64) {
	t.Helper()
	ctx := context.Background()
	high, err := b.Pin(dirPin).Get(ctx)
	test.That(t, err, test.ShouldBeNil)
	duty, err := b.Pin(pwmPin).PWM(ctx)
	test.That(t, err, test.ShouldBeNil)
	return high, duty
}

func TestNewBase(t *testing.T) {
	_, b := newTestBase(t)

	for _, pins := range [][2]string{{DefaultDirLeft, DefaultPWMLeft}, {DefaultDirRight, DefaultPWMRight}} {
		high, duty := wheelState(t, b, pins[0], pins[1])
		test.That(t, high, test.ShouldBeTrue)
		test.That(t, duty, test.ShouldEqual, 0)
		freq, err := b.Pin(pins[1]).PWMFreq(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, freq, test.ShouldEqual, 100)
	}
}

func TestSetSpeeds(t *testing.T) {
	ctx := context.Background()

	t.Run("opposite directions", func(t *testing.T) {
		wb, b := newTestBase(t)
		test.That(t, wb.SetSpeeds(ctx, 0.5, -0.5), test.ShouldBeNil)

		high, duty := wheelState(t, b, DefaultDirLeft, DefaultPWMLeft)
		test.That(t, high, test.ShouldBeFalse)
		test.That(t, duty, test.ShouldAlmostEqual, 50)

		high, duty = wheelState(t, b, DefaultDirRight, DefaultPWMRight)
		test.That(t, high, test.ShouldBeTrue)
		test.That(t, duty, test.ShouldAlmostEqual, 50)
	})

	t.Run("clamped to the speed limit", func(t *testing.T) {
		wb, b := newTestBase(t)
		test.That(t, wb.SetSpeeds(ctx, 1, 1), test.ShouldBeNil)

		for _, pins := range [][2]string{{DefaultDirLeft, DefaultPWMLeft}, {DefaultDirRight, DefaultPWMRight}} {
			high, duty := wheelState(t, b, pins[0], pins[1])
			test.That(t, high, test.ShouldBeFalse)
			test.That(t, duty, test.ShouldAlmostEqual, 70)
		}
		moving, err := wb.IsMoving(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, moving, test.ShouldBeTrue)
	})

	t.Run("two direction and two duty writes per call", func(t *testing.T) {
		wb, b := newTestBase(t)
		before := b.Writes.Load()
		test.That(t, wb.SetSpeeds(ctx, 0.2, 0.3), test.ShouldBeNil)
		test.That(t, b.Writes.Load()-before, test.ShouldEqual, 4)
	})

	t.Run("never above the limit", func(t *testing.T) {
		wb, b := newTestBase(t)
		rng := rand.New(rand.NewSource(11))
		for i := 0; i < 500; i++ {
			test.That(t, wb.SetSpeeds(ctx, rng.Float64()*4-2, rng.Float64()*4-2), test.ShouldBeNil)
			_, leftDuty := wheelState(t, b, DefaultDirLeft, DefaultPWMLeft)
			_, rightDuty := wheelState(t, b, DefaultDirRight, DefaultPWMRight)
			test.That(t, leftDuty, test.ShouldBeBetweenOrEqual, 0, 70+1e-9)
			test.That(t, rightDuty, test.ShouldBeBetweenOrEqual, 0, 70+1e-9)
		}
	})
}

func TestSetSpeedsNonFinite(t *testing.T) {
	ctx := context.Background()

	t.Run("NaN is rejected and stops the base", func(t *testing.T) {
		wb, b := newTestBase(t)
		test.That(t, wb.SetSpeeds(ctx, 0.5, 0.5), test.ShouldBeNil)

		err := wb.SetSpeeds(ctx, math.NaN(), math.Inf(-1))
		test.That(t, errors.Is(err, utils.ErrNotANumber), test.ShouldBeTrue)

		for _, pins := range [][2]string{{DefaultDirLeft, DefaultPWMLeft}, {DefaultDirRight, DefaultPWMRight}} {
			high, duty := wheelState(t, b, pins[0], pins[1])
			test.That(t, high, test.ShouldBeTrue)
			test.That(t, duty, test.ShouldEqual, 0)
			for _, w := range b.Pin(pins[1]).History() {
				test.That(t, w.Value, test.ShouldBeBetweenOrEqual, 0, 100)
			}
		}
	})

	t.Run("infinities saturate", func(t *testing.T) {
		wb, b := newTestBase(t)
		test.That(t, wb.SetSpeeds(ctx, math.Inf(1), math.Inf(-1)), test.ShouldBeNil)

		high, duty := wheelState(t, b, DefaultDirLeft, DefaultPWMLeft)
		test.That(t, high, test.ShouldBeFalse)
		test.That(t, duty, test.ShouldAlmostEqual, 70)
		high, duty = wheelState(t, b, DefaultDirRight, DefaultPWMRight)
		test.That(t, high, test.ShouldBeTrue)
		test.That(t, duty, test.ShouldAlmostEqual, 70)
	})
}

func TestStop(t *testing.T) {
	ctx := context.Background()
	wb, b := newTestBase(t)
	test.That(t, wb.SetSpeeds(ctx, 0.6, -0.4), test.ShouldBeNil)
	test.That(t, wb.Stop(ctx), test.ShouldBeNil)

	for _, pins := range [][2]string{{DefaultDirLeft, DefaultPWMLeft}, {DefaultDirRight, DefaultPWMRight}} {
		high, duty := wheelState(t, b, pins[0], pins[1])
		test.That(t, high, test.ShouldBeTrue)
		test.That(t, duty, test.ShouldEqual, 0)
	}
	moving, err := wb.IsMoving(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, moving, test.ShouldBeFalse)
}

func TestSetSpeedsFailureStops(t *testing.T) {
	ctx := context.Background()
	wb, b := newTestBase(t)
	test.That(t, wb.SetSpeeds(ctx, 0.5, 0.5), test.ShouldBeNil)

	b.Pin(DefaultPWMRight).Fail(errors.New("pwm fault"))
	err := wb.SetSpeeds(ctx, 0.6, 0.6)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pwm fault")

	// The healthy side was stopped.
	high, duty := wheelState(t, b, DefaultDirLeft, DefaultPWMLeft)
	test.That(t, high, test.ShouldBeTrue)
	test.That(t, duty, test.ShouldEqual, 0)
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	logger, logs := logging.NewObservedTestLogger(t)
	b := fake.NewBoard(logging.NewTestLogger(t))
	wb, err := NewBase(ctx, b, DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wb.SetSpeeds(ctx, 0.3, 0.3), test.ShouldBeNil)

	test.That(t, wb.Close(ctx), test.ShouldBeNil)
	test.That(t, b.CloseCount, test.ShouldEqual, 1)
	_, duty := wheelState(t, b, DefaultDirLeft, DefaultPWMLeft)
	test.That(t, duty, test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("robot shut down").Len(), test.ShouldEqual, 1)

	test.That(t, wb.Close(ctx), test.ShouldBeNil)
	test.That(t, b.CloseCount, test.ShouldEqual, 1)
	test.That(t, errors.Is(wb.SetSpeeds(ctx, 0.1, 0.1), ErrClosed), test.ShouldBeTrue)
	test.That(t, errors.Is(wb.Stop(ctx), ErrClosed), test.ShouldBeTrue)
}

func TestCloseSwallowsStopFailure(t *testing.T) {
	ctx := context.Background()
	logger, logs := logging.NewObservedTestLogger(t)
	b := fake.NewBoard(logging.NewTestLogger(t))
	wb, err := NewBase(ctx, b, DefaultConfig(), logger)
	test.That(t, err, test.ShouldBeNil)

	b.Pin(DefaultDirLeft).Fail(errors.New("line gone"))
	test.That(t, wb.Close(ctx), test.ShouldBeNil)
	test.That(t, logs.FilterMessage("failed to stop wheels").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("robot shut down").Len(), test.ShouldEqual, 1)
	test.That(t, b.CloseCount, test.ShouldEqual, 1)
}

func TestNewBaseFailureReleasesBoard(t *testing.T) {
	ctx := context.Background()
	b := fake.NewBoard(logging.NewTestLogger(t))
	b.Pin(DefaultPWMRight).Fail(errors.New("busy"))

	_, err := NewBase(ctx, b, DefaultConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "right motor")
	test.That(t, b.CloseCount, test.ShouldEqual, 1)
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name    string
		mutate  func(*Config)
		field   string
		errText string
	}{
		{"defaults", func(*Config) {}, "", ""},
		{"zero limit", func(c *Config) { c.SpeedLimit = 0 }, "", "speed_limit"},
		{"limit above one", func(c *Config) { c.SpeedLimit = 1.2 }, "", "speed_limit"},
		{"missing pin", func(c *Config) { c.Pins.DirRight = "" }, "dir_right", ""},
		{"shared pin", func(c *Config) { c.Pins.DirLeft = c.Pins.PWMRight }, "", "both use pin"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate("drive")
			if tc.field == "" && tc.errText == "" {
				test.That(t, err, test.ShouldBeNil)
				return
			}
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, utils.GetFieldFromFieldRequiredError(err), test.ShouldEqual, tc.field)
			if tc.errText != "" {
				test.That(t, err.Error(), test.ShouldContainSubstring, tc.errText)
			}
		})
	}
}
