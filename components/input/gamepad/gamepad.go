// Package gamepad implements an input source backed by the Linux joystick API (/dev/input/jsN).
package gamepad

import (
	"context"
	"time"

	"github.com/0xcafed00d/joystick"
	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/diffdrive/teleop/components/input"
	"github.com/diffdrive/teleop/logging"
)

// axisMax is the magnitude the joystick API reports at full deflection.
const axisMax = 32767

// A Source opens the first joystick it finds on /dev/input/js0 through js<MaxIndex>.
type Source struct {
	conf   Config
	clock  clock.Clock
	logger logging.Logger

	open func(id int) (joystick.Joystick, error)
}

// NewSource returns a joystick source. conf must already be valid.
func NewSource(conf Config, clk clock.Clock, logger logging.Logger) *Source {
	return &Source{conf: conf, clock: clk, logger: logger, open: joystick.Open}
}

// Open returns the first joystick that can be opened.
func (s *Source) Open(ctx context.Context) (input.Device, error) {
	for i := 0; i <= s.conf.MaxIndex; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		js, err := s.open(i)
		if err != nil {
			continue
		}
		s.logger.Infow("controller found",
			"name", js.Name(), "index", i, "axes", js.AxisCount(), "buttons", js.ButtonCount())
		return &device{
			js:      js,
			mapping: s.conf,
			clock:   s.clock,
			ticker:  s.clock.Ticker(time.Duration(float64(time.Second) / s.conf.PollHz)),
			holds:   input.NewHoldTracker(),
		}, nil
	}
	return nil, errors.Wrapf(input.ErrDeviceNotFound, "tried /dev/input/js0 to js%d", s.conf.MaxIndex)
}

type device struct {
	js      joystick.Joystick
	mapping Config
	clock   clock.Clock
	ticker  *clock.Ticker
	holds   *input.HoldTracker
	lost    atomic.Bool
}

// Next waits for the next poll tick and reads the joystick.
func (d *device) Next(ctx context.Context) (input.State, error) {
	select {
	case <-ctx.Done():
		return input.State{}, ctx.Err()
	case <-d.ticker.C:
	}

	raw, err := d.js.Read()
	if err != nil {
		d.lost.Store(true)
		return input.State{}, errors.Wrap(err, "reading joystick")
	}
	return d.mapping.toState(raw, d.holds, d.clock.Now()), nil
}

func (d *device) Connected() bool {
	return !d.lost.Load()
}

func (d *device) Close() error {
	d.ticker.Stop()
	d.js.Close()
	return nil
}

// toState maps a raw joystick report onto controls. Axes and buttons the report does not have
// read as zero and released.
func (conf *Config) toState(raw joystick.State, holds *input.HoldTracker, now time.Time) input.State {
	axes := make(map[input.Control]float64, len(conf.Axes))
	for c, m := range conf.Axes {
		if m.Index >= len(raw.AxisData) {
			continue
		}
		axes[c] = normalizeAxis(c, raw.AxisData[m.Index], m.Invert)
	}

	down := make(map[input.Control]bool, len(conf.Buttons))
	for c, index := range conf.Buttons {
		down[c] = raw.Buttons&(1<<uint(index)) != 0
	}
	return input.State{Axes: axes, Buttons: holds.Update(now, down)}
}

// normalizeAxis scales a raw reading to [-1, 1], or to [0, 1] for the triggers, which rest at
// full negative deflection.
func normalizeAxis(c input.Control, value int, invert bool) float64 {
	v := float64(value) / axisMax
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	if invert {
		v = -v
	}
	if c == input.AbsoluteZ || c == input.AbsoluteRZ {
		return (v + 1) / 2
	}
	return v
}
