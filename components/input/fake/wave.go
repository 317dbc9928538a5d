package fake

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/diffdrive/teleop/components/input"
)

// WavePeriod is how long the simulated sticks take to sweep through one full cycle.
const WavePeriod = 10 * time.Second

// A WaveSource always finds a controller whose sticks and triggers follow phase-shifted sine
// waves and whose buttons toggle every few seconds.
type WaveSource struct {
	clock  clock.Clock
	period time.Duration
}

// NewWaveSource returns a source of simulated controllers reporting pollHz times a second.
func NewWaveSource(clk clock.Clock, pollHz float64) *WaveSource {
	if pollHz <= 0 {
		pollHz = 100
	}
	return &WaveSource{clock: clk, period: time.Duration(float64(time.Second) / pollHz)}
}

// Open starts a new simulated controller.
func (s *WaveSource) Open(ctx context.Context) (input.Device, error) {
	return &waveDevice{
		clock:  s.clock,
		ticker: s.clock.Ticker(s.period),
		start:  s.clock.Now(),
		holds:  input.NewHoldTracker(),
	}, nil
}

type waveDevice struct {
	clock  clock.Clock
	ticker *clock.Ticker
	start  time.Time
	holds  *input.HoldTracker
}

// wave is a sine with period WavePeriod in [-1, 1], shifted by a fraction of a period.
func wave(elapsed time.Duration, phase float64) float64 {
	t := elapsed.Seconds() / WavePeriod.Seconds()
	return math.Sin(2 * math.Pi * (t + phase))
}

// buttonPeriods toggles each button every n seconds so they change out of step.
var buttonPeriods = map[input.Control]int{
	input.ButtonNorth: 2,
	input.ButtonEast:  3,
	input.ButtonSouth: 5,
	input.ButtonWest:  7,
	input.ButtonLT:    4,
	input.ButtonRT:    6,
}

func (d *waveDevice) state(now time.Time) input.State {
	elapsed := now.Sub(d.start)
	down := make(map[input.Control]bool, len(buttonPeriods))
	for c, n := range buttonPeriods {
		down[c] = (int(elapsed.Seconds())/n)%2 == 1
	}
	return input.State{
		Axes: map[input.Control]float64{
			input.AbsoluteX:  wave(elapsed, 0),
			input.AbsoluteY:  wave(elapsed, 0.25),
			input.AbsoluteRX: wave(elapsed, 0.125),
			input.AbsoluteRY: wave(elapsed, 0.5),
			input.AbsoluteZ:  0.5 + 0.5*wave(elapsed, 0.375),
			input.AbsoluteRZ: 0.5 + 0.5*wave(elapsed, 0.625),
		},
		Buttons: d.holds.Update(now, down),
	}
}

func (d *waveDevice) Next(ctx context.Context) (input.State, error) {
	select {
	case <-ctx.Done():
		return input.State{}, ctx.Err()
	case <-d.ticker.C:
		return d.state(d.clock.Now()), nil
	}
}

func (d *waveDevice) Connected() bool {
	return true
}

func (d *waveDevice) Close() error {
	d.ticker.Stop()
	return nil
}
