package gpio

import (
	"math"

	"github.com/diffdrive/teleop/utils"
)

// fixPowerPct clamps powerPct to [-max, max]. NaN is an error.
func fixPowerPct(powerPct, max float64) (float64, error) {
	return utils.Clamp(powerPct, -max, max)
}

// dutyCyclePct converts a clamped power into the PWM duty cycle percentage.
func dutyCyclePct(powerPct float64) float64 {
	return math.Abs(powerPct) * 100
}
