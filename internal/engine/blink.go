package engine

// blinkState tracks the open/closed eye cycle. The zero value is "open"
// with no blinks counted.
type blinkState struct {
	closed bool
	count  int
}

// step advances the blink machine with one frame's eye probabilities and
// returns the new state.
//
// Transitions:
//   - open → closed: both probabilities below the closed threshold
//   - closed → open: both probabilities above the open threshold; the blink
//     is counted on this edge
//
// Frames with EyeUnavailable on either eye leave the state untouched. There
// is no cap on closed duration: an arbitrarily long closure still counts as
// exactly one blink on reopening.
func (s blinkState) step(left, right float64, cfg BlinkConfig) blinkState {
	if left == EyeUnavailable || right == EyeUnavailable {
		return s
	}

	switch {
	case !s.closed && left < cfg.ClosedThreshold && right < cfg.ClosedThreshold:
		s.closed = true
	case s.closed && left > cfg.OpenThreshold && right > cfg.OpenThreshold:
		s.closed = false
		s.count++
	}
	return s
}
