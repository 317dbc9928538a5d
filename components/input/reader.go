package input

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	goutils "go.viam.com/utils"

	"github.com/diffdrive/teleop/logging"
	"github.com/diffdrive/teleop/utils"
)

// Discovery timing.
const (
	// DefaultSearchBudget is the total time failed discovery attempts may take before the reader
	// gives up. It is spent once: after the first connection the reader searches forever.
	DefaultSearchBudget = 60 * time.Second
	// DefaultRetryBackoff is the pause after each failed attempt.
	DefaultRetryBackoff = 500 * time.Millisecond
)

type options struct {
	clock   clock.Clock
	budget  time.Duration
	backoff time.Duration
}

// An Option changes how a Reader searches for its controller.
type Option func(*options)

// WithClock makes the reader measure time with c.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithSearchBudget overrides DefaultSearchBudget.
func WithSearchBudget(d time.Duration) Option {
	return func(o *options) { o.budget = d }
}

// WithRetryBackoff overrides DefaultRetryBackoff.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) { o.backoff = d }
}

// A Reader keeps the latest Sample of a gamepad, searching for one when none is attached.
//
// A single background goroutine opens the device, polls it and publishes each update as a new
// immutable Sample, so readers always see one complete update. Close stops the goroutine.
type Reader struct {
	source Source
	logger logging.Logger
	clock  clock.Clock

	budget  time.Duration
	backoff time.Duration

	sample    atomic.Pointer[Sample]
	connected atomic.Bool
	gaveUp    atomic.Bool
	attempts  atomic.Int64

	callbacksMu sync.RWMutex
	callbacks   map[Control]map[EventType]ControlFunction

	workers utils.StoppableWorkers
	done    chan struct{}
}

// NewReader starts searching source for a controller in the background.
func NewReader(source Source, logger logging.Logger, opts ...Option) *Reader {
	o := options{
		clock:   clock.New(),
		budget:  DefaultSearchBudget,
		backoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Reader{
		source:    source,
		logger:    logger,
		clock:     o.clock,
		budget:    o.budget,
		backoff:   o.backoff,
		callbacks: map[Control]map[EventType]ControlFunction{},
		done:      make(chan struct{}),
	}
	r.sample.Store(&Sample{})
	r.workers = utils.NewStoppableWorkers(r.run)
	return r
}

// Sample returns the latest snapshot. Before the first update every value is zero.
func (r *Reader) Sample() Sample {
	return *r.sample.Load()
}

// Held reports whether the given button is down in the latest snapshot.
func (r *Reader) Held(c Control) bool {
	return r.Sample().Held(c)
}

// Connected reports whether a controller is currently open.
func (r *Reader) Connected() bool {
	return r.connected.Load()
}

// GaveUp reports whether the reader exhausted its search budget without ever finding a
// controller.
func (r *Reader) GaveUp() bool {
	return r.gaveUp.Load()
}

// Attempts returns how many times the reader has tried to open a controller.
func (r *Reader) Attempts() int64 {
	return r.attempts.Load()
}

// Done is closed once the background goroutine has exited, either by giving up or by Close.
func (r *Reader) Done() <-chan struct{} {
	return r.done
}

// Close stops the background goroutine and waits for it to exit, closing any open device.
func (r *Reader) Close() error {
	r.workers.Stop()
	return nil
}

// RegisterControlCallback registers a callback function to be executed on the specified trigger
// Event types. Callbacks run on the polling goroutine, after the Sample they describe has been
// published. A nil ctrlFunc removes the registration.
func (r *Reader) RegisterControlCallback(
	ctx context.Context,
	control Control,
	triggers []EventType,
	ctrlFunc ControlFunction,
) error {
	if !IsAxis(control) && !IsButton(control) {
		return errors.Errorf("unknown control %q", control)
	}

	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()

	if r.callbacks[control] == nil {
		r.callbacks[control] = make(map[EventType]ControlFunction)
	}

	for _, trigger := range triggers {
		if trigger == ButtonChange {
			r.callbacks[control][ButtonRelease] = ctrlFunc
			r.callbacks[control][ButtonPress] = ctrlFunc
		} else {
			r.callbacks[control][trigger] = ctrlFunc
		}
	}
	return nil
}

func (r *Reader) run(ctx context.Context) {
	defer close(r.done)

	var searched time.Duration
	everConnected := false
	for ctx.Err() == nil {
		start := r.clock.Now()
		r.attempts.Inc()
		dev, err := r.source.Open(ctx)
		if err == nil {
			everConnected = true
			// A controller that drops before its first update is retried after the backoff.
			if r.poll(ctx, dev) == 0 && !r.wait(ctx, r.backoff) {
				return
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if !errors.Is(err, ErrDeviceNotFound) {
			r.logger.Debugw("error opening controller", "error", err)
		}

		if !r.wait(ctx, r.backoff) {
			return
		}
		if everConnected {
			continue
		}
		searched += r.clock.Since(start)
		if searched >= r.budget {
			r.gaveUp.Store(true)
			r.logger.Warnw("Failed to find a controller, giving up", "searched", searched, "attempts", r.attempts.Load())
			return
		}
	}
}

// poll publishes every update from dev until it disconnects or ctx is cancelled, and returns how
// many it published.
func (r *Reader) poll(ctx context.Context, dev Device) int {
	defer goutils.UncheckedErrorFunc(dev.Close)

	r.connected.Store(true)
	r.logger.Info("Joystick connected")
	r.dispatchAll(ctx, Connect)

	updates := 0
	for dev.Connected() {
		state, err := dev.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Debugw("controller read failed", "error", err)
			}
			break
		}
		prev := r.Sample()
		next := newSample(r.clock.Now(), state)
		r.sample.Store(&next)
		r.notify(ctx, prev, next)
		updates++
	}

	// A neutral sample keeps a lost controller from leaving the robot driving.
	r.sample.Store(&Sample{Time: r.clock.Now()})
	r.connected.Store(false)
	r.logger.Info("Joystick disconnected")
	r.dispatchAll(ctx, Disconnect)
	return updates
}

// wait sleeps for d on the reader's clock and reports whether ctx is still live.
func (r *Reader) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := r.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// notify fires callbacks for everything that changed between two consecutive samples.
func (r *Reader) notify(ctx context.Context, prev, next Sample) {
	for _, c := range Axes {
		if v := next.Axis(c); v != prev.Axis(c) {
			r.dispatch(ctx, Event{Time: next.Time, Event: PositionChangeAbs, Control: c, Value: v})
		}
	}
	for _, c := range Buttons {
		b := next.Button(c)
		switch {
		case b.Pressed || (b.Held() && !prev.Held(c)):
			r.dispatch(ctx, Event{Time: next.Time, Event: ButtonPress, Control: c, Value: 1})
		case !b.Held() && prev.Held(c):
			r.dispatch(ctx, Event{Time: next.Time, Event: ButtonRelease, Control: c, Value: 0})
		}
	}
}

// dispatchAll sends a connection event to every control with a callback for it.
func (r *Reader) dispatchAll(ctx context.Context, eventType EventType) {
	now := r.clock.Now()
	for _, c := range append(append([]Control{}, Axes...), Buttons...) {
		r.dispatch(ctx, Event{Time: now, Event: eventType, Control: c})
	}
}

func (r *Reader) dispatch(ctx context.Context, ev Event) {
	r.callbacksMu.RLock()
	ctrlFunc, ok := r.callbacks[ev.Control][ev.Event]
	allFunc, allOk := r.callbacks[ev.Control][AllEvents]
	r.callbacksMu.RUnlock()

	if ok && ctrlFunc != nil {
		ctrlFunc(ctx, ev)
	}
	if allOk && allFunc != nil {
		allFunc(ctx, ev)
	}
}
