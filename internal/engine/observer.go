package engine

// Observer receives engine lifecycle events for logging, metrics, or UI
// wiring. All methods are invoked synchronously on the session goroutine,
// inside ProcessFrame and Finalize; implementations must return quickly and
// must not call back into the engine.
type Observer interface {
	// OnCalibrated fires once per session, when the baseline and dead
	// zones are established.
	OnCalibrated(report CalibrationReport)

	// OnFrame fires for every ProcessFrame call (scored, held, and
	// rejected frames alike) with the result the caller received.
	OnFrame(frame Frame, result FrameResult)

	// OnSessionEnd fires on the first Finalize call of a session.
	OnSessionEnd(results SessionResults)
}
