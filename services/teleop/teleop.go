// Package teleop drives a base from a gamepad: the left stick's vertical axis sets the left
// wheel and the right stick's vertical axis sets the right wheel.
package teleop

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/components/input"
	"github.com/diffdrive/teleop/logging"
)

// DefaultStatusInterval is how often the loop logs what it is doing at debug level.
const DefaultStatusInterval = time.Second

// A SampleSource hands out the latest controller snapshot without blocking.
type SampleSource interface {
	Sample() input.Sample
}

// A Driver is what the loop steers.
type Driver interface {
	SetSpeeds(ctx context.Context, left, right float64) error
	Stop(ctx context.Context) error
}

// A Loop forwards stick positions to a Driver at a fixed rate.
type Loop struct {
	samples SampleSource
	driver  Driver
	logger  logging.Logger
	clock   clock.Clock

	period         time.Duration
	statusInterval time.Duration
}

// An Option configures a Loop.
type Option func(*Loop)

// WithClock makes the loop tick on c.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithStatusInterval overrides DefaultStatusInterval. A non-positive interval disables the
// status log.
func WithStatusInterval(d time.Duration) Option {
	return func(l *Loop) { l.statusInterval = d }
}

// New returns a loop that updates driver hz times a second.
func New(samples SampleSource, driver Driver, hz float64, logger logging.Logger, opts ...Option) (*Loop, error) {
	if hz <= 0 {
		return nil, errors.Errorf("loop rate must be positive, got %v", hz)
	}
	l := &Loop{
		samples:        samples,
		driver:         driver,
		logger:         logger,
		clock:          clock.New(),
		period:         time.Duration(float64(time.Second) / hz),
		statusInterval: DefaultStatusInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Run drives until ctx is cancelled, then stops the driver. A failed update is logged and
// retried on the next tick.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.Ticker(l.period)
	defer ticker.Stop()

	var lastStatus time.Time
	failing := false
	for {
		select {
		case <-ctx.Done():
			// ctx is already done, so the final stop gets a fresh one.
			if err := l.driver.Stop(context.Background()); err != nil {
				l.logger.Warnw("failed to stop wheels", "error", err)
			}
			return nil
		case <-ticker.C:
		}

		s := l.samples.Sample()
		err := l.driver.SetSpeeds(ctx, s.LeftY, s.RightY)
		switch {
		case err != nil && !failing:
			failing = true
			l.logger.Warnw("failed to set wheel speeds", "error", err)
		case err != nil:
			l.logger.CDebugw(ctx, "failed to set wheel speeds", "error", err)
		case failing:
			failing = false
			l.logger.Info("wheels responding again")
		}

		now := l.clock.Now()
		if l.statusInterval > 0 && now.Sub(lastStatus) >= l.statusInterval {
			lastStatus = now
			l.logger.CDebugw(ctx, "status", "sample", s.String(), "left", s.LeftY, "right", s.RightY)
		}
	}
}

// Run is shorthand for New followed by Loop.Run.
func Run(ctx context.Context, samples SampleSource, driver Driver, logger logging.Logger, hz float64) error {
	l, err := New(samples, driver, hz, logger)
	if err != nil {
		return err
	}
	return l.Run(ctx)
}
