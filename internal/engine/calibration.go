package engine

import (
	"github.com/e7canasta/orion-focus-engine/internal/stats"
)

// poseSample is one usable calibration observation, collected after the
// settle period from face-detected frames only.
type poseSample struct {
	yaw   float64
	pitch float64
	roll  float64
	faceX float64
	faceY float64
}

// finalizeWindow derives the session baseline and dead zones from the
// samples a calibration window collected.
//
// This function:
//  1. Falls back to a zero baseline and the fixed conservative dead zones
//     when fewer than MinSamples usable frames were collected
//  2. Otherwise takes the per-axis median as the baseline
//  3. Sets angle dead zones to per-axis standard deviation ×
//     DeadZoneMultiplier, clamped to [DeadZoneFloor, DeadZoneCeiling]
//  4. Sets face-center dead zones to standard deviation ×
//     FaceDeadZoneMultiplier, unclamped (normalized units, not degrees)
//
// The returned bool reports whether the fallback path was taken.
func finalizeWindow(samples []poseSample, cfg CalibrationConfig) (Baseline, DeadZone, bool) {
	if len(samples) < cfg.MinSamples {
		dz := DeadZone{
			Yaw:   cfg.FallbackAngleDeadZone,
			Pitch: cfg.FallbackAngleDeadZone,
			Roll:  cfg.FallbackAngleDeadZone,
			FaceX: cfg.FallbackFaceDeadZone,
			FaceY: cfg.FallbackFaceDeadZone,
		}
		return Baseline{}, dz, true
	}

	n := len(samples)
	yaw := make([]float64, n)
	pitch := make([]float64, n)
	roll := make([]float64, n)
	faceX := make([]float64, n)
	faceY := make([]float64, n)
	for i, s := range samples {
		yaw[i] = s.yaw
		pitch[i] = s.pitch
		roll[i] = s.roll
		faceX[i] = s.faceX
		faceY[i] = s.faceY
	}

	baseline := Baseline{
		Yaw:   stats.Median(yaw),
		Pitch: stats.Median(pitch),
		Roll:  stats.Median(roll),
		FaceX: stats.Median(faceX),
		FaceY: stats.Median(faceY),
	}

	angleZone := func(values []float64) float64 {
		return stats.Clamp(stats.StdDev(values)*cfg.DeadZoneMultiplier,
			cfg.DeadZoneFloor, cfg.DeadZoneCeiling)
	}
	dz := DeadZone{
		Yaw:   angleZone(yaw),
		Pitch: angleZone(pitch),
		Roll:  angleZone(roll),
		FaceX: stats.StdDev(faceX) * cfg.FaceDeadZoneMultiplier,
		FaceY: stats.StdDev(faceY) * cfg.FaceDeadZoneMultiplier,
	}

	return baseline, dz, false
}
