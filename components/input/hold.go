package input

import "time"

// minHoldTime is the hold time reported for a button seen down for the first time on a poll with
// no earlier poll to date the press from.
const minHoldTime = time.Millisecond

// A HoldTracker turns raw up/down button readings taken at successive polls into ButtonStates.
// A press is dated to the previous poll, since the button went down somewhere in between. It is
// not safe for concurrent use.
type HoldTracker struct {
	since    map[Control]time.Time
	lastPoll time.Time
}

// NewHoldTracker returns a tracker with every button released.
func NewHoldTracker() *HoldTracker {
	return &HoldTracker{since: map[Control]time.Time{}}
}

// Update records the buttons that are down at now and returns the state of every button that is.
func (h *HoldTracker) Update(now time.Time, down map[Control]bool) map[Control]ButtonState {
	states := make(map[Control]ButtonState, len(down))
	for _, c := range Buttons {
		if !down[c] {
			delete(h.since, c)
			continue
		}
		start, held := h.since[c]
		if !held {
			start = h.lastPoll
			if start.IsZero() || start.After(now) {
				start = now
			}
			h.since[c] = start
		}
		holdTime := now.Sub(start)
		if holdTime < minHoldTime {
			holdTime = minHoldTime
		}
		states[c] = ButtonState{Pressed: !held, HoldTime: holdTime}
	}
	h.lastPoll = now
	return states
}
