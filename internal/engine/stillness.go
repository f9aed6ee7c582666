package engine

import (
	"math"

	"github.com/e7canasta/orion-focus-engine/internal/stats"
)

// pose is a yaw/pitch/roll triple in degrees.
type pose struct {
	yaw   float64
	pitch float64
	roll  float64
}

// smoothPose blends a raw observation into the smoothed pose with an EMA.
// Callers seed the first sample directly instead of blending from zero.
func smoothPose(prev pose, f Frame, alpha float64) pose {
	return pose{
		yaw:   stats.EMA(prev.yaw, f.Yaw, alpha),
		pitch: stats.EMA(prev.pitch, f.Pitch, alpha),
		roll:  stats.EMA(prev.roll, f.Roll, alpha),
	}
}

// movementMagnitude is the degree-equivalent distance between two
// consecutive smoothed poses. Roll is weighted down: roll drift correlates
// less with attention loss than yaw/pitch.
func movementMagnitude(prev, cur pose, rollWeight float64) float64 {
	dYaw := cur.yaw - prev.yaw
	dPitch := cur.pitch - prev.pitch
	dRoll := cur.roll - prev.roll
	return math.Sqrt(dYaw*dYaw + dPitch*dPitch + rollWeight*dRoll*dRoll)
}

// scoreMovement maps a movement magnitude onto the per-frame stillness
// scale.
//
// The calibrated dead-zone offset (DeadZoneFraction of the smaller of the
// yaw/pitch dead zones) is subtracted first so personal sensor noise does
// not register as movement; the adjusted magnitude then maps linearly from
// [0, MovementCeiling] onto [100, FloorScore]. Movement at or beyond the
// ceiling scores exactly the floor, never less.
func scoreMovement(movement float64, dz DeadZone, cfg StillnessConfig) float64 {
	offset := cfg.DeadZoneFraction * math.Min(dz.Yaw, dz.Pitch)
	adjusted := math.Max(0, movement-offset)
	frac := stats.Position(adjusted, 0, cfg.MovementCeiling)
	return 100 - frac*(100-cfg.FloorScore)
}
