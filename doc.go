// Package focusengine scores focus sessions from per-frame head-pose and
// eye-openness observations.
//
// # Overview
//
// The engine consumes one observation per camera frame from an external
// face detector and produces a live stillness score for display plus one
// graded composite result at session end. The key design principle is:
//
//	"Degrade, never fail. A scored session beats a crashed one."
//
// Malformed frames repeat the previous result, a thin calibration window
// falls back to conservative defaults, and face loss decays the score
// toward zero instead of raising an error. The frame path never returns an
// error and never panics.
//
// # Session Lifecycle
//
// A session opens with a calibration window (3s by default, first 500ms
// discarded) that establishes a personal baseline pose and per-axis dead
// zones from the median and standard deviation of the collected samples.
// Frames processed during calibration return neutral results. Once the
// window closes the engine scores every frame: pose deltas between
// consecutive EMA-smoothed poses map onto a stillness scale, a two-state
// machine counts blinks, and presence accounting tracks how much of the
// session a face was actually visible. Finalize folds the accumulated
// history into one graded SessionResults.
//
// # Basic Usage
//
//	eng := focusengine.New()
//
//	for obs := range detector.Frames() {
//	    res := eng.ProcessFrame(obs)
//	    ui.ShowStillness(res.LiveStillness)
//	}
//
//	results := eng.Finalize(elapsed, committed)
//	fmt.Printf("%s (%s): %.1f\n", results.Grade, results.Label, results.CompositeScore)
//
// Reset() reuses the same engine for the next session.
//
// # Scoring Model
//
// The composite blends three sub-scores, each in [0,100]:
//   - Stillness (55%): trimmed mean of per-frame movement scores
//   - Blink (25%): inverse-linear blink rate, rewarding sustained fixation
//   - Duration (20%): logarithmic session-length curve, scaled by how much
//     of the committed duration was completed
//
// The composite resolves against a descending grade table (S/A/B/C/D with F
// as the unconditional catch-all).
//
// # Configuration
//
// Every scoring constant is configurable. Start from DefaultConfig (or the
// RelaxedConfig/StrictConfig presets) and override fields, or load a
// partial YAML file over the defaults with LoadConfig. NewWithConfig
// validates before the engine ever sees a frame.
//
// # Observability
//
// The scoring path is silent. SetObserver installs a hook that receives
// calibration, per-frame, and session-end events; NewLogObserver adapts the
// hook onto a slog.Logger with per-frame sampling.
//
// # Thread Safety
//
// An Engine is single-owner: one session, one goroutine, no internal locks.
// ProcessFrame, Finalize, Stats, and Reset all run to completion without
// blocking. Do not share an instance across concurrent sessions.
//
// # Example
//
// See examples/basic/ for a complete synthetic session and cmd/focus-sim
// for a scenario simulator with live display.
package focusengine
