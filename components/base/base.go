// Package base defines a mobile base steered by independent left and right wheel speeds.
package base

import "context"

// A Base represents a physical base of a robot.
type Base interface {
	// SetSpeeds commands the left and right wheels. Each speed is a fraction of full scale in
	// [-1, 1]; implementations clamp it to their own speed limit.
	SetSpeeds(ctx context.Context, left, right float64) error

	// Stop stops the base. It is assumed the base stops immediately.
	Stop(ctx context.Context) error

	// IsMoving returns whether any wheel is powered.
	IsMoving(ctx context.Context) (bool, error)

	// Close stops the base and releases the hardware it holds.
	Close(ctx context.Context) error
}
