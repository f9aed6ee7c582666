package engine

import "time"

// EyeUnavailable is the sentinel open-probability reported by detectors that
// could not estimate an eye state for a frame. Frames carrying it on either
// eye are skipped entirely by blink detection.
const EyeUnavailable = -1.0

// Frame is one observation from the external face detector, delivered per
// camera frame. Pose and eye fields are meaningful only when FaceDetected is
// true; Timestamp must always be set.
type Frame struct {
	// Timestamp is when the detector observed the camera frame.
	Timestamp time.Time
	// FaceDetected reports whether the detector found a face in this frame.
	FaceDetected bool
	// Yaw is the horizontal head rotation in degrees (left/right).
	Yaw float64
	// Pitch is the vertical head rotation in degrees (up/down).
	Pitch float64
	// Roll is the head tilt in degrees.
	Roll float64
	// FaceX is the normalized horizontal face-center coordinate (0.0-1.0).
	FaceX float64
	// FaceY is the normalized vertical face-center coordinate (0.0-1.0).
	FaceY float64
	// LeftEyeOpen is the left eye open-probability in [0,1], or EyeUnavailable.
	LeftEyeOpen float64
	// RightEyeOpen is the right eye open-probability in [0,1], or EyeUnavailable.
	RightEyeOpen float64
}

// Baseline is the per-session resting pose: the per-axis median over usable
// calibration samples. Set exactly once per session, immutable thereafter.
type Baseline struct {
	Yaw   float64
	Pitch float64
	Roll  float64
	FaceX float64
	FaceY float64
}

// DeadZone is the per-axis noise tolerance around the baseline, derived from
// the standard deviation of the calibration samples. Movement inside it is
// treated as sensor noise, not attention loss. Set exactly once per session.
type DeadZone struct {
	Yaw   float64
	Pitch float64
	Roll  float64
	FaceX float64
	FaceY float64
}

// FrameResult is the per-frame output consumed by live displays.
type FrameResult struct {
	// FrameScore is this frame's normalized stillness contribution in [0,1].
	FrameScore float64
	// Stillness is the running session average in [0,100].
	Stillness float64
	// LiveStillness is a fast EMA of per-frame stillness in [0,100], tuned
	// for low-latency display rather than accuracy.
	LiveStillness float64
	// BlinkCount is the total blinks observed so far in the session.
	BlinkCount int
	// Calibrating is true while the baseline is still being established;
	// scores are neutral placeholders until it flips false.
	Calibrating bool
}

// SessionResults is the final graded outcome of one session. Scores are
// clamped into [0,100] and rounded to one decimal; percentages are rounded
// to integers.
type SessionResults struct {
	// SessionID identifies the engine session that produced this result.
	SessionID string `json:"session_id" yaml:"session_id"`
	// CompositeScore is the weighted blend of the three sub-scores.
	CompositeScore float64 `json:"composite_score" yaml:"composite_score"`
	// StillnessScore is the trimmed-mean stillness over all scored frames.
	StillnessScore float64 `json:"stillness_score" yaml:"stillness_score"`
	// BlinkScore rewards a low blink rate (sustained visual fixation).
	BlinkScore float64 `json:"blink_score" yaml:"blink_score"`
	// DurationScore rewards session length on a logarithmic curve, scaled
	// by how much of the committed duration was completed.
	DurationScore float64 `json:"duration_score" yaml:"duration_score"`
	// Grade is the letter from the configured grade table; Label and Color
	// carry its display metadata.
	Grade string `json:"grade" yaml:"grade"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
	// BlinksPerMinute is the observed blink rate over the session.
	BlinksPerMinute float64 `json:"blinks_per_minute" yaml:"blinks_per_minute"`
	// StillnessPercent is StillnessScore rounded to an integer for display.
	StillnessPercent int `json:"stillness_percent" yaml:"stillness_percent"`
	// FacePresencePercent is the share of processed post-calibration frames
	// that contained a detected face.
	FacePresencePercent int `json:"face_presence_percent" yaml:"face_presence_percent"`
}

// CalibrationReport describes a completed calibration, delivered once per
// session through the Observer hook.
type CalibrationReport struct {
	// Baseline and DeadZone are the values the session will score against.
	Baseline Baseline
	DeadZone DeadZone
	// Samples is the number of usable frames the window produced.
	Samples int
	// Discarded is the number of frames dropped during the settle period.
	Discarded int
	// Fallback is true when too few samples were collected and the
	// conservative fixed defaults were applied instead.
	Fallback bool
}

// Stats is a point-in-time snapshot of engine counters. Safe to retain; it
// shares no state with the engine.
type Stats struct {
	// SessionID identifies the current session.
	SessionID string
	// Calibrating reports whether the baseline is still being established.
	Calibrating bool
	// CalibrationSamples is the number of usable calibration frames
	// collected so far (final once Calibrating is false).
	CalibrationSamples int
	// CalibrationDiscarded counts frames dropped during the settle period.
	CalibrationDiscarded int
	// CalibrationFallback is true when calibration completed on the
	// conservative fixed defaults.
	CalibrationFallback bool
	// FramesProcessed counts valid post-calibration frames (present,
	// held, and absent alike).
	FramesProcessed uint64
	// FramesWithFace counts post-calibration frames with a detected face.
	FramesWithFace uint64
	// FramesHeld counts face-absent frames absorbed by the grace window.
	FramesHeld uint64
	// FramesRejected counts malformed frames (NaN/Inf pose, zero timestamp).
	FramesRejected uint64
	// BlinkCount is the total blinks observed.
	BlinkCount int
	// FaceSeconds is the accumulated face-visible time, gap-adjusted.
	FaceSeconds float64
	// Baseline and DeadZone are zero values until calibration completes.
	Baseline Baseline
	DeadZone DeadZone
}
