package input

import (
	"context"

	"github.com/pkg/errors"
)

// ErrDeviceNotFound is returned by a Source when no controller is attached.
var ErrDeviceNotFound = errors.New("no controller found")

// A Source finds and opens gamepads.
type Source interface {
	// Open returns an exclusive handle to a connected controller, or an error wrapping
	// ErrDeviceNotFound when there is none.
	Open(ctx context.Context) (Device, error)
}

// A Device is an opened controller.
type Device interface {
	// Next blocks until the controller has a new report and returns it. An error means the
	// device is gone.
	Next(ctx context.Context) (State, error)

	// Connected reports whether the controller is still attached.
	Connected() bool

	// Close releases the handle.
	Close() error
}

// State is a single report from a Device. Controls missing from the maps read as zero.
type State struct {
	Axes    map[Control]float64
	Buttons map[Control]ButtonState
}
