// Package fake implements simulated gamepads: a scripted one for tests and a waveform one for
// running without hardware.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/diffdrive/teleop/components/input"
)

// ErrDisconnected is returned by Next once a Device has been unplugged.
var ErrDisconnected = errors.New("fake controller disconnected")

// A Source hands out queued devices in order, and reports no controller when the queue is empty.
type Source struct {
	mu      sync.Mutex
	devices []*Device
	opens   atomic.Int64

	// OnOpen, when set, is called at the start of every Open. Tests use it to advance a mock
	// clock so each attempt takes simulated time.
	OnOpen func()
}

// NewSource returns a source that will hand out devices in order.
func NewSource(devices ...*Device) *Source {
	return &Source{devices: devices}
}

// Plug queues another device for the next Open.
func (s *Source) Plug(d *Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append(s.devices, d)
}

// Open pops the next queued device.
func (s *Source) Open(ctx context.Context) (input.Device, error) {
	s.opens.Inc()
	if s.OnOpen != nil {
		s.OnOpen()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.devices) == 0 {
		return nil, input.ErrDeviceNotFound
	}
	d := s.devices[0]
	s.devices = s.devices[1:]
	return d, nil
}

// Opens returns how many times Open has been called.
func (s *Source) Opens() int64 {
	return s.opens.Load()
}

// A Device delivers the states a test sends it, one per Next.
type Device struct {
	updates chan input.State
	gone    chan struct{}
	unplug  sync.Once
	closed  atomic.Bool
}

// NewDevice returns a connected device with no pending updates.
func NewDevice() *Device {
	return &Device{
		updates: make(chan input.State),
		gone:    make(chan struct{}),
	}
}

// Send blocks until the reader picks up state, the device is unplugged or ctx is done.
func (d *Device) Send(ctx context.Context, state input.State) error {
	select {
	case d.updates <- state:
		return nil
	case <-d.gone:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unplug disconnects the device. Pending and future Next calls fail.
func (d *Device) Unplug() {
	d.unplug.Do(func() { close(d.gone) })
}

// Next waits for the next sent state.
func (d *Device) Next(ctx context.Context) (input.State, error) {
	select {
	case state := <-d.updates:
		return state, nil
	case <-d.gone:
		return input.State{}, ErrDisconnected
	case <-ctx.Done():
		return input.State{}, ctx.Err()
	}
}

// Connected reports whether Unplug has not been called yet.
func (d *Device) Connected() bool {
	select {
	case <-d.gone:
		return false
	default:
		return true
	}
}

// Close marks the device closed.
func (d *Device) Close() error {
	d.closed.Store(true)
	return nil
}

// Closed reports whether the reader has released the device.
func (d *Device) Closed() bool {
	return d.closed.Load()
}
