package utils

import (
	"math"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidBounds is returned by Clamp when the lower bound exceeds the upper bound.
	ErrInvalidBounds = errors.New("lower bound exceeds upper bound")
	// ErrNotANumber is returned by Clamp for a NaN input, which has no place in any range.
	ErrNotANumber = errors.New("value is not a number")
)

// Clamp limits x to the closed range [lo, hi]. Values below lo saturate to lo, values above hi
// saturate to hi and anything in between passes through unchanged. Infinities saturate; NaN is
// an error.
func Clamp(x, lo, hi float64) (float64, error) {
	if lo > hi {
		return 0, errors.Wrapf(ErrInvalidBounds, "cannot clamp to [%v, %v]", lo, hi)
	}
	if math.IsNaN(x) {
		return 0, ErrNotANumber
	}
	if x < lo {
		return lo, nil
	}
	if x > hi {
		return hi, nil
	}
	return x, nil
}
