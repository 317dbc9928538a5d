// Package motor defines a motor driven by a signed power fraction.
package motor

import (
	"context"
	"math"
)

// A Motor represents a physical motor connected to a board.
type Motor interface {
	// SetPower sets the percentage of power the motor should employ between -1 and 1.
	// Negative power implies a backward direction of rotation.
	SetPower(ctx context.Context, powerPct float64) error

	// Stop stops the motor.
	Stop(ctx context.Context) error

	// IsPowered returns whether or not the motor is currently on, and the percent power (between
	// -1 and 1) it was last set to.
	IsPowered(ctx context.Context) (bool, float64, error)
}

// GetSign returns the sign of the float as a helper.
func GetSign(x float64) float64 {
	if x == 0 {
		return 0
	}
	if math.Signbit(x) {
		return -1.0
	}
	return 1.0
}
