// Package board defines the digital and PWM output surface the motors are driven through, and a
// registry of the drivers that implement it.
package board

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/diffdrive/teleop/logging"
)

// A Board represents a physical general purpose board that exposes GPIO pins by name.
//
// Pins are claimed on first lookup and held until Close, which releases every line the board
// handed out.
type Board interface {
	// GPIOPinByName returns a GPIOPin by name.
	GPIOPinByName(name string) (GPIOPin, error)

	// Close releases all claimed lines.
	Close(ctx context.Context) error
}

// ErrUnknownDriver is returned when a config names a board driver nobody registered.
var ErrUnknownDriver = errors.New("unknown board driver")

// A Constructor builds a board from its config.
type Constructor func(ctx context.Context, conf Config, logger logging.Logger) (Board, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterDriver makes a board driver available by name. It panics if the name is registered
// twice.
func RegisterDriver(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(errors.Errorf("board driver %q already registered", name))
	}
	registry[name] = constructor
}

// RegisteredDrivers returns the sorted names of all registered drivers.
func RegisteredDrivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFromConfig constructs the board named by conf.Driver.
func NewFromConfig(ctx context.Context, conf Config, logger logging.Logger) (Board, error) {
	registryMu.RLock()
	constructor, ok := registry[conf.Driver]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDriver, "%q (registered: %v)", conf.Driver, RegisteredDrivers())
	}
	return constructor(ctx, conf, logger.Sublogger(conf.Driver))
}
