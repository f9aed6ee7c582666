package focusengine

// FacePresenceRate returns the fraction of processed post-calibration frames
// that contained a detected face (0.0 to 1.0).
// Returns 0.0 if no frames have been processed.
func FacePresenceRate(stats Stats) float64 {
	if stats.FramesProcessed == 0 {
		return 0.0
	}
	return float64(stats.FramesWithFace) / float64(stats.FramesProcessed)
}

// RejectRate returns the fraction of counted frames rejected as malformed
// (0.0 to 1.0). Rejected frames are not counted in FramesProcessed, so the
// denominator is the sum of the two.
// Returns 0.0 if nothing has been counted.
func RejectRate(stats Stats) float64 {
	total := stats.FramesProcessed + stats.FramesRejected
	if total == 0 {
		return 0.0
	}
	return float64(stats.FramesRejected) / float64(total)
}
