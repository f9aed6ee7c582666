package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"testing/quick"
	"time"
)

var testBase = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func faceFrame(offsetMS int, yaw, pitch, roll float64) Frame {
	return Frame{
		Timestamp:    testBase.Add(time.Duration(offsetMS) * time.Millisecond),
		FaceDetected: true,
		Yaw:          yaw,
		Pitch:        pitch,
		Roll:         roll,
		FaceX:        0.5,
		FaceY:        0.5,
		LeftEyeOpen:  0.9,
		RightEyeOpen: 0.9,
	}
}

func absentFrame(offsetMS int) Frame {
	return Frame{Timestamp: testBase.Add(time.Duration(offsetMS) * time.Millisecond)}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// calibrate drives a steady face at 20 fps through the whole calibration
// window and returns the first post-window frame offset in ms.
func calibrate(e *Engine, yaw, pitch, roll float64) int {
	window := e.Config().Calibration.WindowMS
	off := 0
	for ; off < window; off += 50 {
		e.ProcessFrame(faceFrame(off, yaw, pitch, roll))
	}
	return off
}

type recordingObserver struct {
	calibrated []CalibrationReport
	frames     int
	sessions   []SessionResults
}

func (r *recordingObserver) OnCalibrated(rep CalibrationReport) {
	r.calibrated = append(r.calibrated, rep)
}

func (r *recordingObserver) OnFrame(f Frame, res FrameResult) {
	r.frames++
}

func (r *recordingObserver) OnSessionEnd(res SessionResults) {
	r.sessions = append(r.sessions, res)
}

func TestEngine_CalibrationPhase(t *testing.T) {
	e := newTestEngine(t)

	if !e.Calibrating() {
		t.Fatal("fresh engine should be calibrating")
	}
	if e.SessionID() == "" {
		t.Fatal("fresh engine has no session ID")
	}

	// 20 fps steady face: 60 frames inside the window, 10 in the settle
	// period.
	for off := 0; off < 3000; off += 50 {
		res := e.ProcessFrame(faceFrame(off, 1, -2, 0.5))
		if !res.Calibrating {
			t.Fatalf("frame at %dms left calibration early", off)
		}
		if res.FrameScore != 1 || res.Stillness != 100 {
			t.Fatalf("calibration frame scored %+v, want neutral", res)
		}
	}

	res := e.ProcessFrame(faceFrame(3000, 1, -2, 0.5))
	if res.Calibrating {
		t.Error("boundary frame should complete calibration")
	}

	st := e.Stats()
	if st.Calibrating {
		t.Error("stats still report calibrating")
	}
	if st.CalibrationSamples != 50 {
		t.Errorf("samples = %d, want 50", st.CalibrationSamples)
	}
	if st.CalibrationDiscarded != 10 {
		t.Errorf("discarded = %d, want 10", st.CalibrationDiscarded)
	}
	if st.CalibrationFallback {
		t.Error("unexpected fallback with 50 samples")
	}
	if st.Baseline.Yaw != 1 || st.Baseline.Pitch != -2 || st.Baseline.Roll != 0.5 {
		t.Errorf("baseline = %+v, want the steady pose", st.Baseline)
	}
}

func TestEngine_SteadyFramesScorePerfect(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 2, -1, 0)

	// 180 identical frames at ~6 fps: zero movement end to end.
	for i := 0; i < 180; i++ {
		res := e.ProcessFrame(faceFrame(off+i*167, 2, -1, 0))
		if res.FrameScore != 1 {
			t.Fatalf("frame %d: FrameScore = %v, want 1", i, res.FrameScore)
		}
		if res.Stillness != 100 {
			t.Fatalf("frame %d: Stillness = %v, want 100", i, res.Stillness)
		}
		if math.Abs(res.LiveStillness-100) > 1e-9 {
			t.Fatalf("frame %d: LiveStillness = %v, want 100", i, res.LiveStillness)
		}
	}
}

func TestEngine_TwitchFloorsAtFrameFloor(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0)

	// A violent head swing: the smoothed pose jumps ~20 degrees, far past
	// the movement ceiling. The frame floors at FloorScore, never below.
	res := e.ProcessFrame(faceFrame(off, 40, 0, 0))

	floor := e.Config().Stillness.FloorScore
	if math.Abs(res.FrameScore-floor/100) > 1e-9 {
		t.Errorf("FrameScore = %v, want floor %v", res.FrameScore, floor/100)
	}
	if res.LiveStillness >= 100 {
		t.Errorf("LiveStillness = %v, want decayed below 100", res.LiveStillness)
	}
}

func TestEngine_AbsenceTolerance(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0)

	first := e.ProcessFrame(faceFrame(off, 0, 0, 0))
	if first.FrameScore != 1 {
		t.Fatalf("setup frame scored %v, want 1", first.FrameScore)
	}

	// 200ms dropout: inside the tolerance window, held without penalty.
	held := e.ProcessFrame(absentFrame(off + 200))
	if held.FrameScore != 1 || held.Stillness != 100 {
		t.Errorf("held frame = %+v, want previous result", held)
	}
	if held.Calibrating {
		t.Error("held frame reports calibrating")
	}
	if st := e.Stats(); st.FramesHeld != 1 {
		t.Errorf("FramesHeld = %d, want 1", st.FramesHeld)
	}

	// 2.5s after the face was last seen: beyond tolerance, scores zero.
	gone := e.ProcessFrame(absentFrame(off + 2500))
	if gone.FrameScore != 0 {
		t.Errorf("absent frame FrameScore = %v, want 0", gone.FrameScore)
	}
	if gone.Stillness != 50 {
		t.Errorf("running stillness = %v, want 50", gone.Stillness)
	}
	if math.Abs(gone.LiveStillness-70) > 1e-9 {
		t.Errorf("LiveStillness = %v, want 70", gone.LiveStillness)
	}

	st := e.Stats()
	if st.FramesProcessed != 3 || st.FramesWithFace != 1 {
		t.Errorf("counters = %d processed / %d with face, want 3 / 1",
			st.FramesProcessed, st.FramesWithFace)
	}
}

func TestEngine_MalformedFrameRepeatsPrevious(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0)

	prev := e.ProcessFrame(faceFrame(off, 0, 0, 0))

	bad := faceFrame(off+167, 0, 0, 0)
	bad.Yaw = math.NaN()
	res := e.ProcessFrame(bad)

	if res != prev {
		t.Errorf("malformed frame returned %+v, want repeat of %+v", res, prev)
	}

	st := e.Stats()
	if st.FramesRejected != 1 {
		t.Errorf("FramesRejected = %d, want 1", st.FramesRejected)
	}
	if st.FramesProcessed != 1 {
		t.Errorf("FramesProcessed = %d, want 1 (rejects are not processed)", st.FramesProcessed)
	}

	t.Run("zero timestamp is malformed", func(t *testing.T) {
		res := e.ProcessFrame(Frame{FaceDetected: true, LeftEyeOpen: 0.9, RightEyeOpen: 0.9})
		if res.FrameScore != prev.FrameScore {
			t.Errorf("zero-timestamp frame scored %v, want repeat", res.FrameScore)
		}
		if st := e.Stats(); st.FramesRejected != 2 {
			t.Errorf("FramesRejected = %d, want 2", st.FramesRejected)
		}
	})

	t.Run("pose junk on an absent frame is not malformed", func(t *testing.T) {
		junk := absentFrame(off + 300)
		junk.Yaw = math.NaN()
		res := e.ProcessFrame(junk)
		if res.FrameScore != 1 {
			t.Errorf("absent frame inside tolerance scored %v, want held 1", res.FrameScore)
		}
		if st := e.Stats(); st.FramesRejected != 2 {
			t.Errorf("FramesRejected = %d, want unchanged 2", st.FramesRejected)
		}
	})
}

func TestEngine_MalformedDuringCalibration(t *testing.T) {
	e := newTestEngine(t)

	bad := faceFrame(0, 0, 0, 0)
	bad.Pitch = math.Inf(1)
	res := e.ProcessFrame(bad)

	if !res.Calibrating || res.FrameScore != 1 {
		t.Errorf("malformed first frame = %+v, want the neutral result", res)
	}
	st := e.Stats()
	if st.FramesRejected != 1 {
		t.Errorf("FramesRejected = %d, want 1", st.FramesRejected)
	}
	if !st.Calibrating {
		t.Error("rejected frame should not advance calibration")
	}
}

func TestEngine_FallbackWithFewSamples(t *testing.T) {
	e := newTestEngine(t)

	// 6 fps only yields ~15 usable frames in a 3s window, below the
	// 30-sample minimum: calibration must fall back.
	off := 0
	for ; off < 3000; off += 167 {
		e.ProcessFrame(faceFrame(off, 5, 5, 5))
	}
	res := e.ProcessFrame(faceFrame(off, 5, 5, 5))

	st := e.Stats()
	if !st.CalibrationFallback {
		t.Fatal("expected fallback calibration")
	}
	if st.Baseline != (Baseline{}) {
		t.Errorf("fallback baseline = %+v, want zero", st.Baseline)
	}
	cfg := e.Config().Calibration
	if st.DeadZone.Yaw != cfg.FallbackAngleDeadZone || st.DeadZone.FaceX != cfg.FallbackFaceDeadZone {
		t.Errorf("fallback dead zone = %+v", st.DeadZone)
	}
	// The pose tracker still seeds from the last collected sample, so a
	// steady subject scores clean even on the fallback path.
	if res.FrameScore != 1 {
		t.Errorf("first active frame scored %v, want 1", res.FrameScore)
	}
}

func TestEngine_FallbackWithNoFace(t *testing.T) {
	e := newTestEngine(t)

	for off := 0; off < 3000; off += 50 {
		res := e.ProcessFrame(absentFrame(off))
		if !res.Calibrating {
			t.Fatalf("absent frame at %dms ended calibration", off)
		}
	}

	// First face ever arrives after the window: it seeds the pose tracker
	// directly and scores clean.
	res := e.ProcessFrame(faceFrame(3000, 8, -3, 1))

	if res.Calibrating {
		t.Error("face frame after the window should be active")
	}
	if res.FrameScore != 1 {
		t.Errorf("seeding frame scored %v, want 1", res.FrameScore)
	}
	st := e.Stats()
	if !st.CalibrationFallback || st.CalibrationSamples != 0 {
		t.Errorf("stats = %+v, want zero-sample fallback", st)
	}
}

func TestEngine_BlinkCountingSpansCalibration(t *testing.T) {
	e := newTestEngine(t)

	closed := func(off int) Frame {
		f := faceFrame(off, 0, 0, 0)
		f.LeftEyeOpen = 0.1
		f.RightEyeOpen = 0.1
		return f
	}

	// One blink inside the calibration window.
	e.ProcessFrame(faceFrame(0, 0, 0, 0))
	e.ProcessFrame(closed(200))
	res := e.ProcessFrame(faceFrame(400, 0, 0, 0))
	if res.BlinkCount != 1 {
		t.Errorf("calibration-phase blink count = %d, want 1", res.BlinkCount)
	}

	for off := 600; off < 3000; off += 50 {
		e.ProcessFrame(faceFrame(off, 0, 0, 0))
	}

	// And one more after calibration.
	e.ProcessFrame(closed(3000))
	res = e.ProcessFrame(faceFrame(3200, 0, 0, 0))
	if res.BlinkCount != 2 {
		t.Errorf("total blink count = %d, want 2", res.BlinkCount)
	}

	final := e.Finalize(2*time.Minute, 0)
	if final.BlinksPerMinute != 1.0 {
		t.Errorf("BlinksPerMinute = %v, want 1.0", final.BlinksPerMinute)
	}
}

func TestEngine_SingleBlinkMinuteSession(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0)

	closed := func(off int) Frame {
		f := faceFrame(off, 0, 0, 0)
		f.LeftEyeOpen = 0.1
		f.RightEyeOpen = 0.1
		return f
	}

	// Three closed frames then one open frame: one full cycle, one blink.
	e.ProcessFrame(faceFrame(off, 0, 0, 0))
	e.ProcessFrame(closed(off + 167))
	e.ProcessFrame(closed(off + 334))
	e.ProcessFrame(closed(off + 501))
	e.ProcessFrame(faceFrame(off+668, 0, 0, 0))

	if st := e.Stats(); st.BlinkCount != 1 {
		t.Fatalf("BlinkCount = %d, want 1", st.BlinkCount)
	}

	res := e.Finalize(time.Minute, 0)

	if res.BlinksPerMinute != 1.0 {
		t.Errorf("BlinksPerMinute = %v, want 1.0", res.BlinksPerMinute)
	}
	// 1 blink/min sits below the 4/min floor of the inverse map.
	if res.BlinkScore != 100 {
		t.Errorf("BlinkScore = %v, want 100", res.BlinkScore)
	}
}

func TestEngine_SteadySessionEndToEnd(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 1, 1, 1)

	for i := 0; i < 180; i++ {
		e.ProcessFrame(faceFrame(off+i*167, 1, 1, 1))
	}

	res := e.Finalize(30*time.Second, 0)

	if res.SessionID != e.SessionID() {
		t.Errorf("SessionID = %q, want %q", res.SessionID, e.SessionID())
	}
	if res.StillnessScore != 100 || res.StillnessPercent != 100 {
		t.Errorf("stillness = %v / %d%%, want 100", res.StillnessScore, res.StillnessPercent)
	}
	if res.BlinkScore != 100 {
		t.Errorf("BlinkScore = %v, want 100 (no blinks)", res.BlinkScore)
	}
	// 0.5 minutes: 20 + 25·ln(1.5) = 30.14
	if res.DurationScore != 30.1 {
		t.Errorf("DurationScore = %v, want 30.1", res.DurationScore)
	}
	// 0.55·100 + 0.25·100 + 0.20·30.14 = 86.03
	if res.CompositeScore != 86.0 {
		t.Errorf("CompositeScore = %v, want 86.0", res.CompositeScore)
	}
	if res.Grade != "A" || res.Label != "Deep Focus" {
		t.Errorf("grade = %q %q, want A Deep Focus", res.Grade, res.Label)
	}
	if res.FacePresencePercent != 100 {
		t.Errorf("FacePresencePercent = %d, want 100", res.FacePresencePercent)
	}

	t.Run("committed duration scales the curve", func(t *testing.T) {
		res := e.Finalize(30*time.Second, time.Minute)
		if res.DurationScore != 15.1 {
			t.Errorf("DurationScore = %v, want 15.1 (half completion)", res.DurationScore)
		}
		if res.CompositeScore != 83.0 {
			t.Errorf("CompositeScore = %v, want 83.0", res.CompositeScore)
		}
	})
}

func TestEngine_AbsentSessionScoresZero(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0)

	for i := 0; off+i*167 < 63000; i++ {
		e.ProcessFrame(absentFrame(off + i*167))
	}

	res := e.Finalize(time.Minute, 0)

	if res.FacePresencePercent != 0 {
		t.Errorf("FacePresencePercent = %d, want 0", res.FacePresencePercent)
	}
	if res.StillnessScore != 0 {
		t.Errorf("StillnessScore = %v, want 0 (floor needs presence)", res.StillnessScore)
	}
	if res.Grade != "D" {
		t.Errorf("Grade = %q, want D", res.Grade)
	}
}

func TestEngine_FaceSecondsSkipLongGaps(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 0, 0, 0) // last calibration frame at off-50

	e.ProcessFrame(faceFrame(off, 0, 0, 0))     // +0.050s
	e.ProcessFrame(faceFrame(off+167, 0, 0, 0)) // +0.167s
	// 3.8s dropout: the gap is skipped entirely.
	e.ProcessFrame(faceFrame(off+4000, 0, 0, 0))
	e.ProcessFrame(faceFrame(off+4167, 0, 0, 0)) // +0.167s

	want := 0.05 + 0.167 + 0.167
	if got := e.Stats().FaceSeconds; math.Abs(got-want) > 1e-6 {
		t.Errorf("FaceSeconds = %v, want %v", got, want)
	}
}

func TestEngine_ResetStartsFreshSession(t *testing.T) {
	e := newTestEngine(t)
	off := calibrate(e, 3, 3, 3)
	for i := 0; i < 20; i++ {
		e.ProcessFrame(faceFrame(off+i*167, 3, 3, 3))
	}
	e.Finalize(10*time.Second, 0)
	id1 := e.SessionID()

	e.Reset()

	if e.SessionID() == id1 {
		t.Error("Reset kept the old session ID")
	}
	if !e.Calibrating() {
		t.Error("Reset should restart calibration")
	}
	st := e.Stats()
	if st.FramesProcessed != 0 || st.BlinkCount != 0 || st.CalibrationSamples != 0 {
		t.Errorf("stats not cleared: %+v", st)
	}

	// The same instance runs a full second session.
	off = calibrate(e, 0, 0, 0)
	res := e.ProcessFrame(faceFrame(off, 0, 0, 0))
	if res.Calibrating || res.FrameScore != 1 {
		t.Errorf("second session frame = %+v", res)
	}
}

func TestEngine_ObserverLifecycle(t *testing.T) {
	e := newTestEngine(t)
	rec := &recordingObserver{}
	e.SetObserver(rec)

	off := calibrate(e, 0, 0, 0)
	e.ProcessFrame(faceFrame(off, 0, 0, 0))

	if len(rec.calibrated) != 1 {
		t.Fatalf("OnCalibrated fired %d times, want 1", len(rec.calibrated))
	}
	rep := rec.calibrated[0]
	if rep.Samples != 50 || rep.Discarded != 10 || rep.Fallback {
		t.Errorf("calibration report = %+v", rep)
	}
	if rec.frames != 61 {
		t.Errorf("OnFrame fired %d times, want 61", rec.frames)
	}

	first := e.Finalize(10*time.Second, 0)
	second := e.Finalize(10*time.Second, 0)

	if first != second {
		t.Errorf("Finalize is not repeatable: %+v vs %+v", first, second)
	}
	if len(rec.sessions) != 1 {
		t.Errorf("OnSessionEnd fired %d times, want 1", len(rec.sessions))
	}
	if rec.sessions[0].SessionID != e.SessionID() {
		t.Errorf("observer saw session %q, want %q", rec.sessions[0].SessionID, e.SessionID())
	}
}

func TestEngine_NewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blink.ClosedThreshold = 0.9

	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New = %v, want ErrInvalidConfig", err)
	}
}

// TestEngine_Property_NeverPanicsBoundedResults checks degradation
//
// Property: arbitrary frame streams (dropouts, NaN injections, pose noise)
// never panic the engine, every result stays bounded, and the blink count
// never decreases.
func TestEngine_Property_NeverPanicsBoundedResults(t *testing.T) {
	f := func(seed int64, n uint8) bool {
		rng := rand.New(rand.NewSource(seed))
		e, err := New(DefaultConfig())
		if err != nil {
			t.Logf("FAIL: New: %v", err)
			return false
		}

		off := 0
		lastBlinks := 0
		for i := 0; i < int(n)+20; i++ {
			off += rng.Intn(400)

			var fr Frame
			switch rng.Intn(10) {
			case 0: // malformed
				fr = faceFrame(off, math.NaN(), 0, 0)
			case 1, 2: // dropout
				fr = absentFrame(off)
			default:
				fr = faceFrame(off,
					rng.Float64()*60-30,
					rng.Float64()*40-20,
					rng.Float64()*20-10)
				fr.LeftEyeOpen = rng.Float64()
				fr.RightEyeOpen = rng.Float64()
			}

			res := e.ProcessFrame(fr)

			if res.FrameScore < 0 || res.FrameScore > 1 {
				t.Logf("FAIL: FrameScore %v outside [0,1]", res.FrameScore)
				return false
			}
			if res.Stillness < 0 || res.Stillness > 100 {
				t.Logf("FAIL: Stillness %v outside [0,100]", res.Stillness)
				return false
			}
			if res.LiveStillness < 0 || res.LiveStillness > 100 {
				t.Logf("FAIL: LiveStillness %v outside [0,100]", res.LiveStillness)
				return false
			}
			if res.BlinkCount < lastBlinks {
				t.Logf("FAIL: blink count decreased %d -> %d", lastBlinks, res.BlinkCount)
				return false
			}
			lastBlinks = res.BlinkCount
		}

		final := e.Finalize(time.Duration(off)*time.Millisecond, 0)
		if final.CompositeScore < 0 || final.CompositeScore > 100 {
			t.Logf("FAIL: composite %v outside [0,100]", final.CompositeScore)
			return false
		}
		if final.Grade == "" {
			t.Logf("FAIL: empty grade")
			return false
		}
		return true
	}

	if err := quick.Check(f, &quick.Config{MaxCount: 150}); err != nil {
		t.Errorf("Property violated: %v", err)
	}
}

func BenchmarkProcessFrame(b *testing.B) {
	e, err := New(DefaultConfig())
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	off := 0
	for ; off < 3000; off += 50 {
		e.ProcessFrame(faceFrame(off, 0, 0, 0))
	}
	rng := rand.New(rand.NewSource(42))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f := faceFrame(off+i*167,
			rng.Float64()*4-2,
			rng.Float64()*4-2,
			rng.Float64()*2-1)
		e.ProcessFrame(f)
	}
}
