// Package fake implements a fake board that records every write.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/diffdrive/teleop/components/board"
	"github.com/diffdrive/teleop/logging"
)

// DriverName is the name the fake board registers under.
const DriverName = "fake"

func init() {
	board.RegisterDriver(DriverName, func(
		ctx context.Context,
		conf board.Config,
		logger logging.Logger,
	) (board.Board, error) {
		return NewBoard(logger), nil
	})
}

// NewBoard returns a new fake board.
func NewBoard(logger logging.Logger) *Board {
	return &Board{
		GPIOPins: map[string]*GPIOPin{},
		logger:   logger,
	}
}

// A Board hands out fake pins which read back the values written to them.
type Board struct {
	mu         sync.Mutex
	GPIOPins   map[string]*GPIOPin
	logger     logging.Logger
	CloseCount int

	// Writes counts every Set/SetPWM/SetPWMFreq call across all pins.
	Writes atomic.Int64
}

// GPIOPinByName returns the GPIO pin by the given name, creating it on first use.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	return b.Pin(name), nil
}

// Pin is like GPIOPinByName but returns the concrete fake pin for inspection in tests.
func (b *Board) Pin(name string) *GPIOPin {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.GPIOPins[name]
	if !ok {
		p = &GPIOPin{name: name, writes: &b.Writes}
		b.GPIOPins[name] = p
	}
	return p
}

// Close releases every pin.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCount++
	for _, p := range b.GPIOPins {
		p.release()
	}
	b.logger.Debugw("fake board closed", "pins", len(b.GPIOPins))
	return nil
}

// WriteKind identifies which operation a Write records.
type WriteKind int

const (
	// WriteLevel is a Set call.
	WriteLevel WriteKind = iota
	// WriteDuty is a SetPWM call.
	WriteDuty
	// WriteFreq is a SetPWMFreq call.
	WriteFreq
)

// A Write is a single recorded pin operation.
type Write struct {
	Kind  WriteKind
	High  bool
	Value float64
}

// A GPIOPin reads back the same set values and keeps a history of writes.
type GPIOPin struct {
	name    string
	high    bool
	pwm     float64
	pwmFreq uint

	history  []Write
	released bool
	writes   *atomic.Int64

	// FailWith, when non-nil, is returned from every write.
	FailWith error

	mu sync.Mutex
}

// ErrReleased is returned from writes to a pin whose board has been closed.
var ErrReleased = errors.New("pin has been released")

func (gp *GPIOPin) checkWrite() error {
	if gp.released {
		return errors.Wrapf(ErrReleased, "pin %s", gp.name)
	}
	if gp.FailWith != nil {
		return gp.FailWith
	}
	gp.writes.Inc()
	return nil
}

// Set sets the pin to either low or high.
func (gp *GPIOPin) Set(ctx context.Context, high bool) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if err := gp.checkWrite(); err != nil {
		return err
	}
	gp.high = high
	gp.history = append(gp.history, Write{Kind: WriteLevel, High: high})
	return nil
}

// Get gets the high/low state of the pin.
func (gp *GPIOPin) Get(ctx context.Context) (bool, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.high, nil
}

// PWM gets the pin's given duty cycle.
func (gp *GPIOPin) PWM(ctx context.Context) (float64, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwm, nil
}

// SetPWM sets the pin to the given duty cycle.
func (gp *GPIOPin) SetPWM(ctx context.Context, dutyCyclePct float64) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if err := board.ValidateDutyCycle(dutyCyclePct); err != nil {
		return err
	}
	if err := gp.checkWrite(); err != nil {
		return err
	}
	gp.pwm = dutyCyclePct
	gp.history = append(gp.history, Write{Kind: WriteDuty, Value: dutyCyclePct})
	return nil
}

// PWMFreq gets the PWM frequency of the pin.
func (gp *GPIOPin) PWMFreq(ctx context.Context) (uint, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwmFreq, nil
}

// SetPWMFreq sets the given pin to the given PWM frequency.
func (gp *GPIOPin) SetPWMFreq(ctx context.Context, freqHz uint) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if err := gp.checkWrite(); err != nil {
		return err
	}
	gp.pwmFreq = freqHz
	gp.history = append(gp.history, Write{Kind: WriteFreq, Value: float64(freqHz)})
	return nil
}

// History returns a copy of every write made to the pin, oldest first.
func (gp *GPIOPin) History() []Write {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return append([]Write(nil), gp.history...)
}

// Fail makes every subsequent write return err. A nil err clears the failure.
func (gp *GPIOPin) Fail(err error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.FailWith = err
}

// Released reports whether the owning board has been closed.
func (gp *GPIOPin) Released() bool {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.released
}

func (gp *GPIOPin) release() {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	gp.released = true
}
