package focusengine

import "github.com/e7canasta/orion-focus-engine/internal/engine"

// Public API - Re-export internal types as stable contract

// Engine scores one session at a time; see the package documentation.
type Engine = engine.Engine

// Frame is one observation from the external face detector.
type Frame = engine.Frame

// FrameResult is the per-frame output for live display.
type FrameResult = engine.FrameResult

// SessionResults is the final graded outcome of one session.
type SessionResults = engine.SessionResults

// Baseline is the per-session resting pose established by calibration.
type Baseline = engine.Baseline

// DeadZone is the per-axis noise tolerance established by calibration.
type DeadZone = engine.DeadZone

// Stats is a point-in-time snapshot of engine counters.
type Stats = engine.Stats

// CalibrationReport describes a completed calibration.
type CalibrationReport = engine.CalibrationReport

// Observer receives engine lifecycle events.
type Observer = engine.Observer

// Config holds every tunable parameter of the engine.
type Config = engine.Config

// CalibrationConfig controls the baseline-establishment phase.
type CalibrationConfig = engine.CalibrationConfig

// StillnessConfig controls per-frame movement scoring.
type StillnessConfig = engine.StillnessConfig

// BlinkConfig controls the blink state machine.
type BlinkConfig = engine.BlinkConfig

// SessionConfig controls end-of-session aggregation and grading.
type SessionConfig = engine.SessionConfig

// GradeBand is one row of the descending grade table.
type GradeBand = engine.GradeBand

// EyeUnavailable is the sentinel open-probability for frames where the
// detector could not estimate an eye state.
const EyeUnavailable = engine.EyeUnavailable

// Public API errors - Re-export internal errors as stable contract
var (
	ErrInvalidConfig = engine.ErrInvalidConfig
)
