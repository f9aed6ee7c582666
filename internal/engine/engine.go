package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/e7canasta/orion-focus-engine/internal/stats"
)

// Engine turns a stream of detector frames into live stillness results and
// one graded session outcome. It owns all per-session state and is driven
// synchronously by the caller's frame callback.
//
// One Engine serves one session at a time and must not be shared across
// concurrent sessions. There are no internal goroutines or locks; every
// method runs to completion without blocking. Reset prepares the same
// instance for the next session.
type Engine struct {
	cfg Config
	obs Observer

	sessionID string

	// Calibration window
	calibrating bool
	calStart    time.Time
	samples     []poseSample
	discarded   int
	fallback    bool
	baseline    Baseline
	deadZone    DeadZone

	// Pose tracking
	smoothed   pose
	prev       pose
	poseSeeded bool

	// Blink cycle
	blink blinkState

	// Presence accounting
	lastFaceSeen time.Time
	faceSeconds  float64

	// Running collections
	scores     []float64
	scoreSum   float64
	live       float64
	lastResult FrameResult

	// Counters
	framesTotal    uint64
	framesWithFace uint64
	framesHeld     uint64
	framesRejected uint64

	finalized bool
}

// New returns an engine for a fresh session. The configuration is validated
// (and structurally gap-filled) first; an invalid configuration is the only
// way construction can fail.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg}
	e.Reset()
	return e, nil
}

// Reset clears all mutable session state and assigns a fresh session ID,
// readying the engine for a new session. The configuration and observer are
// kept.
func (e *Engine) Reset() {
	e.sessionID = uuid.New().String()

	e.calibrating = true
	e.calStart = time.Time{}
	e.samples = nil
	e.discarded = 0
	e.fallback = false
	e.baseline = Baseline{}
	e.deadZone = DeadZone{}

	e.smoothed = pose{}
	e.prev = pose{}
	e.poseSeeded = false

	e.blink = blinkState{}

	e.lastFaceSeen = time.Time{}
	e.faceSeconds = 0

	e.scores = nil
	e.scoreSum = 0
	e.live = 100 // neutral display until scoring starts
	e.lastResult = FrameResult{
		FrameScore:    1,
		Stillness:     100,
		LiveStillness: 100,
		Calibrating:   true,
	}

	e.framesTotal = 0
	e.framesWithFace = 0
	e.framesHeld = 0
	e.framesRejected = 0

	e.finalized = false
}

// SetObserver installs the lifecycle observer. Passing nil removes it.
// Install before the first frame; the engine never synchronizes access.
func (e *Engine) SetObserver(obs Observer) {
	e.obs = obs
}

// SessionID returns the identifier of the current session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Calibrating reports whether the baseline is still being established.
func (e *Engine) Calibrating() bool {
	return e.calibrating
}

// Config returns a copy of the engine configuration. The grade table slice
// is shared; callers must not modify it.
func (e *Engine) Config() Config {
	return e.cfg
}

// ProcessFrame consumes one detector observation and returns the result for
// live display. It never fails: malformed frames (NaN/Inf pose values or a
// zero timestamp) repeat the previous result, carrying the current blink
// count.
func (e *Engine) ProcessFrame(f Frame) FrameResult {
	if malformed(f) {
		e.framesRejected++
		res := e.lastResult
		res.BlinkCount = e.blink.count
		e.notifyFrame(f, res)
		return res
	}

	// Blink detection runs in both phases; counting is not scoring.
	if f.FaceDetected {
		e.blink = e.blink.step(f.LeftEyeOpen, f.RightEyeOpen, e.cfg.Blink)
	}

	if e.calibrating {
		if e.calStart.IsZero() {
			e.calStart = f.Timestamp
		}
		sinceStart := f.Timestamp.Sub(e.calStart)
		if sinceStart < e.cfg.Calibration.Window() {
			e.collectSample(f, sinceStart)
			if f.FaceDetected {
				e.lastFaceSeen = f.Timestamp
			}
			res := FrameResult{
				FrameScore:    1,
				Stillness:     100,
				LiveStillness: 100,
				BlinkCount:    e.blink.count,
				Calibrating:   true,
			}
			e.lastResult = res
			e.notifyFrame(f, res)
			return res
		}
		// This frame crossed the window boundary: finish calibration and
		// score it as the first active frame.
		e.completeCalibration()
	}

	var res FrameResult
	if f.FaceDetected {
		res = e.scorePresence(f)
	} else {
		res = e.scoreAbsence(f)
	}
	e.lastResult = res
	e.notifyFrame(f, res)
	return res
}

// collectSample buffers a calibration observation. Settle-period frames are
// discarded as face-acquisition noise; faceless frames are never usable.
func (e *Engine) collectSample(f Frame, sinceStart time.Duration) {
	if !f.FaceDetected {
		return
	}
	if sinceStart < e.cfg.Calibration.Settle() {
		e.discarded++
		return
	}
	e.samples = append(e.samples, poseSample{
		yaw:   f.Yaw,
		pitch: f.Pitch,
		roll:  f.Roll,
		faceX: f.FaceX,
		faceY: f.FaceY,
	})
}

// completeCalibration derives the baseline and dead zones, seeds the pose
// trackers with the last collected sample so delta scoring starts from a
// realistic reference, and flips the engine active.
func (e *Engine) completeCalibration() {
	e.baseline, e.deadZone, e.fallback = finalizeWindow(e.samples, e.cfg.Calibration)

	if n := len(e.samples); n > 0 {
		last := e.samples[n-1]
		seed := pose{yaw: last.yaw, pitch: last.pitch, roll: last.roll}
		e.smoothed = seed
		e.prev = seed
		e.poseSeeded = true
	}
	e.calibrating = false

	if e.obs != nil {
		e.obs.OnCalibrated(CalibrationReport{
			Baseline:  e.baseline,
			DeadZone:  e.deadZone,
			Samples:   len(e.samples),
			Discarded: e.discarded,
			Fallback:  e.fallback,
		})
	}
}

// scorePresence handles a face-detected frame on the active path.
func (e *Engine) scorePresence(f Frame) FrameResult {
	e.framesTotal++
	e.framesWithFace++

	// Face-seconds accumulate only across gaps the tolerance window
	// covers; larger gaps would inflate presence after detection resumes.
	if !e.lastFaceSeen.IsZero() {
		gap := f.Timestamp.Sub(e.lastFaceSeen)
		if gap > 0 && gap <= e.cfg.Stillness.FaceGapTolerance() {
			e.faceSeconds += gap.Seconds()
		}
	}
	e.lastFaceSeen = f.Timestamp

	if e.poseSeeded {
		e.smoothed = smoothPose(e.smoothed, f, e.cfg.Stillness.SmoothingAlpha)
	} else {
		// First sample seeds directly, no blending from zero.
		e.smoothed = pose{yaw: f.Yaw, pitch: f.Pitch, roll: f.Roll}
		e.prev = e.smoothed
		e.poseSeeded = true
	}

	movement := movementMagnitude(e.prev, e.smoothed, e.cfg.Stillness.RollWeight)
	stillness := scoreMovement(movement, e.deadZone, e.cfg.Stillness)
	e.prev = e.smoothed

	score := stillness / 100
	e.scores = append(e.scores, score)
	e.scoreSum += score
	e.live = stats.EMA(e.live, stillness, e.cfg.Stillness.LiveAlpha)

	return FrameResult{
		FrameScore:    score,
		Stillness:     e.scoreSum / float64(len(e.scores)) * 100,
		LiveStillness: e.live,
		BlinkCount:    e.blink.count,
		Calibrating:   false,
	}
}

// scoreAbsence handles a face-absent frame on the active path: held without
// penalty inside the tolerance window, scored 0 beyond it.
func (e *Engine) scoreAbsence(f Frame) FrameResult {
	e.framesTotal++

	if !e.lastFaceSeen.IsZero() &&
		f.Timestamp.Sub(e.lastFaceSeen) <= e.cfg.Stillness.FaceGapTolerance() {
		e.framesHeld++
		res := e.lastResult
		res.BlinkCount = e.blink.count
		res.Calibrating = false
		return res
	}

	e.scores = append(e.scores, 0)
	e.live = stats.EMA(e.live, 0, e.cfg.Stillness.LiveAlpha)

	return FrameResult{
		FrameScore:    0,
		Stillness:     e.scoreSum / float64(len(e.scores)) * 100,
		LiveStillness: e.live,
		BlinkCount:    e.blink.count,
		Calibrating:   false,
	}
}

// Finalize computes the graded session results. elapsed is the
// caller-measured session length; committed is the originally committed
// duration, or 0 when the session was open-ended. Finalize is pure over the
// accumulated state and may be called more than once; only the first call
// notifies the observer.
func (e *Engine) Finalize(elapsed, committed time.Duration) SessionResults {
	res := aggregate(sessionTotals{
		scores:         e.scores,
		framesTotal:    e.framesTotal,
		framesWithFace: e.framesWithFace,
		blinks:         e.blink.count,
	}, elapsed, committed, e.cfg.Session)
	res.SessionID = e.sessionID

	if e.obs != nil && !e.finalized {
		e.obs.OnSessionEnd(res)
	}
	e.finalized = true
	return res
}

// Stats returns a point-in-time snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		SessionID:            e.sessionID,
		Calibrating:          e.calibrating,
		CalibrationSamples:   len(e.samples),
		CalibrationDiscarded: e.discarded,
		CalibrationFallback:  e.fallback,
		FramesProcessed:      e.framesTotal,
		FramesWithFace:       e.framesWithFace,
		FramesHeld:           e.framesHeld,
		FramesRejected:       e.framesRejected,
		BlinkCount:           e.blink.count,
		FaceSeconds:          e.faceSeconds,
		Baseline:             e.baseline,
		DeadZone:             e.deadZone,
	}
}

func (e *Engine) notifyFrame(f Frame, res FrameResult) {
	if e.obs != nil {
		e.obs.OnFrame(f, res)
	}
}

// malformed reports whether a frame carries unusable numbers: a zero
// timestamp, or NaN/Inf pose values on a face-detected frame.
func malformed(f Frame) bool {
	if f.Timestamp.IsZero() {
		return true
	}
	if !f.FaceDetected {
		return false
	}
	for _, v := range [...]float64{f.Yaw, f.Pitch, f.Roll, f.FaceX, f.FaceY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
