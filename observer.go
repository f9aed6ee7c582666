package focusengine

import "log/slog"

// LogObserver adapts the Observer hook onto a slog.Logger. Calibration and
// session-end events log at Info; per-frame results log at Debug, sampled
// every N frames so a 6 fps session does not flood the log.
type LogObserver struct {
	logger *slog.Logger
	every  int
	frames int
}

var _ Observer = (*LogObserver)(nil)

// NewLogObserver returns a LogObserver writing to logger (slog.Default when
// nil). sampleEvery controls per-frame logging: every Nth frame is logged,
// <= 0 disables frame logging entirely.
func NewLogObserver(logger *slog.Logger, sampleEvery int) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger, every: sampleEvery}
}

// OnCalibrated logs the established baseline and dead zones.
func (o *LogObserver) OnCalibrated(report CalibrationReport) {
	o.logger.Info("calibration complete",
		"samples", report.Samples,
		"discarded", report.Discarded,
		"fallback", report.Fallback,
		"yaw_zone", report.DeadZone.Yaw,
		"pitch_zone", report.DeadZone.Pitch,
		"roll_zone", report.DeadZone.Roll,
	)
}

// OnFrame logs every Nth frame result at Debug level.
func (o *LogObserver) OnFrame(frame Frame, result FrameResult) {
	if o.every <= 0 {
		return
	}
	o.frames++
	if o.frames%o.every != 0 {
		return
	}
	o.logger.Debug("frame scored",
		"frame", o.frames,
		"face", frame.FaceDetected,
		"frame_score", result.FrameScore,
		"stillness", result.Stillness,
		"live", result.LiveStillness,
		"blinks", result.BlinkCount,
		"calibrating", result.Calibrating,
	)
}

// OnSessionEnd logs the graded session outcome.
func (o *LogObserver) OnSessionEnd(results SessionResults) {
	o.logger.Info("session complete",
		"session_id", results.SessionID,
		"grade", results.Grade,
		"composite", results.CompositeScore,
		"stillness", results.StillnessScore,
		"blink_score", results.BlinkScore,
		"duration_score", results.DurationScore,
		"blinks_per_minute", results.BlinksPerMinute,
		"face_presence_pct", results.FacePresencePercent,
	)
}
