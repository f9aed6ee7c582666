package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
// Test with errors.Is.
var ErrInvalidConfig = errors.New("focusengine: invalid config")

// Config holds every tunable parameter of the engine. No scoring constant is
// embedded in logic; everything numeric lives here. Build one with
// DefaultConfig (or a preset) and override fields, or unmarshal a partial
// YAML document over the defaults. Validate fills structural gaps and
// rejects contradictions.
type Config struct {
	Calibration CalibrationConfig `yaml:"calibration"`
	Stillness   StillnessConfig   `yaml:"stillness"`
	Blink       BlinkConfig       `yaml:"blink"`
	Session     SessionConfig     `yaml:"session"`
}

// CalibrationConfig controls the baseline-establishment phase at the start
// of every session.
type CalibrationConfig struct {
	// WindowMS is the calibration window length from the first frame, ms.
	WindowMS int `yaml:"window_ms"`
	// SettleMS is the initial slice of the window discarded as
	// face-acquisition noise, ms.
	SettleMS int `yaml:"settle_ms"`
	// MinSamples is the usable-frame count below which calibration falls
	// back to the fixed conservative defaults.
	MinSamples int `yaml:"min_samples"`
	// DeadZoneMultiplier scales the per-axis standard deviation into the
	// yaw/pitch/roll dead zones.
	DeadZoneMultiplier float64 `yaml:"dead_zone_multiplier"`
	// DeadZoneFloor / DeadZoneCeiling clamp the angle dead zones, degrees.
	DeadZoneFloor   float64 `yaml:"dead_zone_floor"`
	DeadZoneCeiling float64 `yaml:"dead_zone_ceiling"`
	// FaceDeadZoneMultiplier scales the face-center standard deviation into
	// the faceX/faceY dead zones. Unclamped: face-center units are
	// normalized coordinates, not degrees.
	FaceDeadZoneMultiplier float64 `yaml:"face_dead_zone_multiplier"`
	// FallbackAngleDeadZone is the fixed per-angle-axis dead zone (degrees)
	// applied when too few samples were collected.
	FallbackAngleDeadZone float64 `yaml:"fallback_angle_dead_zone"`
	// FallbackFaceDeadZone is the fixed face-axis dead zone (normalized
	// coordinates) applied when too few samples were collected.
	FallbackFaceDeadZone float64 `yaml:"fallback_face_dead_zone"`
}

// Window returns the calibration window as a duration.
func (c CalibrationConfig) Window() time.Duration {
	return time.Duration(c.WindowMS) * time.Millisecond
}

// Settle returns the settle period as a duration.
func (c CalibrationConfig) Settle() time.Duration {
	return time.Duration(c.SettleMS) * time.Millisecond
}

// StillnessConfig controls per-frame movement scoring.
type StillnessConfig struct {
	// SmoothingAlpha is the EMA weight for new pose samples (0-1, higher =
	// more responsive, lower = smoother).
	SmoothingAlpha float64 `yaml:"smoothing_alpha"`
	// LiveAlpha is the EMA weight of the fast display score.
	LiveAlpha float64 `yaml:"live_alpha"`
	// RollWeight scales roll deltas inside the movement magnitude; roll
	// drift correlates less with attention loss than yaw/pitch.
	RollWeight float64 `yaml:"roll_weight"`
	// MovementCeiling is the adjusted movement magnitude
	// (degree-equivalents) at which a frame scores the floor. Empirically
	// tuned; treat with care.
	MovementCeiling float64 `yaml:"movement_ceiling"`
	// DeadZoneFraction is the fraction of min(yaw, pitch) dead zone
	// subtracted from every movement magnitude. Empirically tuned.
	DeadZoneFraction float64 `yaml:"dead_zone_fraction"`
	// FloorScore is the lowest stillness a face-present frame can score;
	// single-frame twitches bottom out here instead of cratering the live
	// score. True face loss still scores 0 through the absence path.
	FloorScore float64 `yaml:"floor_score"`
	// FaceGapToleranceMS is how long a detection dropout is held without
	// penalty before absence starts scoring 0, ms.
	FaceGapToleranceMS int `yaml:"face_gap_tolerance_ms"`
}

// FaceGapTolerance returns the dropout tolerance as a duration.
func (c StillnessConfig) FaceGapTolerance() time.Duration {
	return time.Duration(c.FaceGapToleranceMS) * time.Millisecond
}

// BlinkConfig controls the blink state machine.
type BlinkConfig struct {
	// ClosedThreshold: both eyes below this open-probability counts as
	// closed.
	ClosedThreshold float64 `yaml:"closed_threshold"`
	// OpenThreshold: both eyes above this open-probability counts as open
	// again; the gap between the thresholds is the hysteresis band.
	OpenThreshold float64 `yaml:"open_threshold"`
}

// SessionConfig controls end-of-session aggregation and grading.
type SessionConfig struct {
	// TrimFraction is the share of lowest per-frame scores discarded before
	// averaging stillness (outlier suppression).
	TrimFraction float64 `yaml:"trim_fraction"`
	// StillnessFloorScore / StillnessFloorMinPresence: a session whose
	// trimmed stillness lands below the floor is raised to it when face
	// presence exceeded the given percentage, so a rough stretch inside an
	// otherwise well-tracked session does not zero the grade.
	StillnessFloorScore       float64 `yaml:"stillness_floor_score"`
	StillnessFloorMinPresence float64 `yaml:"stillness_floor_min_presence"`
	// BlinkFloorPerMinute scores 100; BlinkCeilingPerMinute scores 0;
	// linear in between. Fewer blinks per minute = higher score.
	BlinkFloorPerMinute   float64 `yaml:"blink_floor_per_minute"`
	BlinkCeilingPerMinute float64 `yaml:"blink_ceiling_per_minute"`
	// DurationScore = DurationBase + DurationMultiplier*ln(minutes+1),
	// scaled by the completion ratio and clamped to DurationMax.
	DurationBase       float64 `yaml:"duration_base"`
	DurationMultiplier float64 `yaml:"duration_multiplier"`
	DurationMax        float64 `yaml:"duration_max"`
	// MinDurationMinutes floors degenerate session lengths so per-minute
	// rates never divide by zero.
	MinDurationMinutes float64 `yaml:"min_duration_minutes"`
	// Composite weights; must sum to 1.
	StillnessWeight float64 `yaml:"stillness_weight"`
	BlinkWeight     float64 `yaml:"blink_weight"`
	DurationWeight  float64 `yaml:"duration_weight"`
	// Grades is the descending threshold table; the last entry must have
	// Min 0 so the lookup never falls through.
	Grades []GradeBand `yaml:"grades"`
}

// GradeBand is one row of the grade table: composite scores at or above Min
// (and below the previous band) earn this grade.
type GradeBand struct {
	Min   float64 `yaml:"min"`
	Grade string  `yaml:"grade"`
	Label string  `yaml:"label"`
	Color string  `yaml:"color"`
}

// DefaultConfig returns the recommended configuration for typical webcam
// sessions (~6 fps pose detection).
func DefaultConfig() Config {
	return Config{
		Calibration: CalibrationConfig{
			WindowMS:   3000, // 3s of frames to establish the baseline
			SettleMS:   500,  // discard face-acquisition noise
			MinSamples: 30,

			DeadZoneMultiplier:     2.0,
			DeadZoneFloor:          0.5, // degrees
			DeadZoneCeiling:        3.0, // degrees
			FaceDeadZoneMultiplier: 2.0,

			FallbackAngleDeadZone: 2.0,  // degrees
			FallbackFaceDeadZone:  0.05, // normalized coordinates
		},
		Stillness: StillnessConfig{
			SmoothingAlpha:     0.5, // 50% new, 50% old
			LiveAlpha:          0.3, // fast display EMA
			RollWeight:         0.7, // roll matters less than yaw/pitch
			MovementCeiling:    2.0, // degree-equivalents, empirically tuned
			DeadZoneFraction:   0.15,
			FloorScore:         25,
			FaceGapToleranceMS: 2000, // hold through brief dropouts
		},
		Blink: BlinkConfig{
			ClosedThreshold: 0.3,
			OpenThreshold:   0.5,
		},
		Session: SessionConfig{
			TrimFraction:              0.10, // drop the worst 10% of frames
			StillnessFloorScore:       25,
			StillnessFloorMinPresence: 50, // percent

			BlinkFloorPerMinute:   4,  // relaxed fixation
			BlinkCeilingPerMinute: 30, // restless blinking

			DurationBase:       20,
			DurationMultiplier: 25,
			DurationMax:        100,
			MinDurationMinutes: 0.01,

			StillnessWeight: 0.55,
			BlinkWeight:     0.25,
			DurationWeight:  0.20,

			Grades: DefaultGrades(),
		},
	}
}

// DefaultGrades returns the standard descending grade table.
func DefaultGrades() []GradeBand {
	return []GradeBand{
		{Min: 90, Grade: "S", Label: "Laser Focus", Color: "#FFD700"},
		{Min: 80, Grade: "A", Label: "Deep Focus", Color: "#4CAF50"},
		{Min: 65, Grade: "B", Label: "Engaged", Color: "#8BC34A"},
		{Min: 50, Grade: "C", Label: "Steady", Color: "#FFC107"},
		{Min: 30, Grade: "D", Label: "Restless", Color: "#FF9800"},
		{Min: 0, Grade: "F", Label: "Scattered", Color: "#F44336"},
	}
}

// RelaxedConfig returns a configuration for noisy setups: glasses glare,
// low light, or users who naturally shift more.
func RelaxedConfig() Config {
	cfg := DefaultConfig()
	cfg.Calibration.DeadZoneMultiplier = 2.5
	cfg.Calibration.DeadZoneCeiling = 4.0
	cfg.Calibration.FallbackAngleDeadZone = 3.0
	cfg.Stillness.MovementCeiling = 3.0 // tolerate larger shifts
	cfg.Stillness.FaceGapToleranceMS = 3000
	cfg.Session.BlinkFloorPerMinute = 8
	cfg.Session.BlinkCeilingPerMinute = 40
	return cfg
}

// StrictConfig returns a configuration for competitive scoring: tighter
// dead zones and a less forgiving blink range.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.Calibration.DeadZoneMultiplier = 1.5
	cfg.Calibration.DeadZoneCeiling = 2.0
	cfg.Stillness.MovementCeiling = 1.5
	cfg.Stillness.FaceGapToleranceMS = 1500
	cfg.Session.BlinkFloorPerMinute = 2
	cfg.Session.BlinkCeilingPerMinute = 20
	return cfg
}

// Validate checks the configuration and fills structural gaps with defaults,
// mirroring how absent YAML fields inherit them. Contradictory values return
// an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	def := DefaultConfig()

	// Calibration
	if c.Calibration.WindowMS <= 0 {
		c.Calibration.WindowMS = def.Calibration.WindowMS
	}
	if c.Calibration.SettleMS < 0 {
		return fmt.Errorf("%w: calibration.settle_ms must be >= 0", ErrInvalidConfig)
	}
	if c.Calibration.SettleMS >= c.Calibration.WindowMS {
		return fmt.Errorf("%w: calibration.settle_ms (%d) must be below window_ms (%d)",
			ErrInvalidConfig, c.Calibration.SettleMS, c.Calibration.WindowMS)
	}
	if c.Calibration.MinSamples <= 0 {
		c.Calibration.MinSamples = def.Calibration.MinSamples
	}
	if c.Calibration.DeadZoneMultiplier <= 0 {
		c.Calibration.DeadZoneMultiplier = def.Calibration.DeadZoneMultiplier
	}
	if c.Calibration.FaceDeadZoneMultiplier <= 0 {
		c.Calibration.FaceDeadZoneMultiplier = def.Calibration.FaceDeadZoneMultiplier
	}
	if c.Calibration.DeadZoneFloor < 0 {
		return fmt.Errorf("%w: calibration.dead_zone_floor must be >= 0", ErrInvalidConfig)
	}
	if c.Calibration.DeadZoneCeiling <= 0 {
		c.Calibration.DeadZoneCeiling = def.Calibration.DeadZoneCeiling
	}
	if c.Calibration.DeadZoneCeiling < c.Calibration.DeadZoneFloor {
		return fmt.Errorf("%w: calibration.dead_zone_ceiling (%.2f) below dead_zone_floor (%.2f)",
			ErrInvalidConfig, c.Calibration.DeadZoneCeiling, c.Calibration.DeadZoneFloor)
	}
	if c.Calibration.FallbackAngleDeadZone <= 0 {
		c.Calibration.FallbackAngleDeadZone = def.Calibration.FallbackAngleDeadZone
	}
	if c.Calibration.FallbackFaceDeadZone <= 0 {
		c.Calibration.FallbackFaceDeadZone = def.Calibration.FallbackFaceDeadZone
	}

	// Stillness
	if c.Stillness.SmoothingAlpha == 0 {
		c.Stillness.SmoothingAlpha = def.Stillness.SmoothingAlpha
	}
	if c.Stillness.SmoothingAlpha <= 0 || c.Stillness.SmoothingAlpha > 1 {
		return fmt.Errorf("%w: stillness.smoothing_alpha must be in (0, 1], got %.3f",
			ErrInvalidConfig, c.Stillness.SmoothingAlpha)
	}
	if c.Stillness.LiveAlpha == 0 {
		c.Stillness.LiveAlpha = def.Stillness.LiveAlpha
	}
	if c.Stillness.LiveAlpha <= 0 || c.Stillness.LiveAlpha > 1 {
		return fmt.Errorf("%w: stillness.live_alpha must be in (0, 1], got %.3f",
			ErrInvalidConfig, c.Stillness.LiveAlpha)
	}
	if c.Stillness.RollWeight < 0 {
		return fmt.Errorf("%w: stillness.roll_weight must be >= 0", ErrInvalidConfig)
	}
	if c.Stillness.MovementCeiling <= 0 {
		c.Stillness.MovementCeiling = def.Stillness.MovementCeiling
	}
	if c.Stillness.DeadZoneFraction < 0 || c.Stillness.DeadZoneFraction > 1 {
		return fmt.Errorf("%w: stillness.dead_zone_fraction must be in [0, 1], got %.3f",
			ErrInvalidConfig, c.Stillness.DeadZoneFraction)
	}
	if c.Stillness.FloorScore < 0 || c.Stillness.FloorScore >= 100 {
		return fmt.Errorf("%w: stillness.floor_score must be in [0, 100), got %.1f",
			ErrInvalidConfig, c.Stillness.FloorScore)
	}
	if c.Stillness.FaceGapToleranceMS <= 0 {
		c.Stillness.FaceGapToleranceMS = def.Stillness.FaceGapToleranceMS
	}

	// Blink
	if c.Blink.ClosedThreshold <= 0 {
		c.Blink.ClosedThreshold = def.Blink.ClosedThreshold
	}
	if c.Blink.OpenThreshold <= 0 {
		c.Blink.OpenThreshold = def.Blink.OpenThreshold
	}
	if c.Blink.ClosedThreshold >= c.Blink.OpenThreshold {
		return fmt.Errorf("%w: blink.closed_threshold (%.2f) must be below open_threshold (%.2f)",
			ErrInvalidConfig, c.Blink.ClosedThreshold, c.Blink.OpenThreshold)
	}
	if c.Blink.OpenThreshold > 1 {
		return fmt.Errorf("%w: blink.open_threshold must be <= 1, got %.2f",
			ErrInvalidConfig, c.Blink.OpenThreshold)
	}

	// Session
	if c.Session.TrimFraction < 0 || c.Session.TrimFraction >= 1 {
		return fmt.Errorf("%w: session.trim_fraction must be in [0, 1), got %.3f",
			ErrInvalidConfig, c.Session.TrimFraction)
	}
	if c.Session.StillnessFloorScore < 0 || c.Session.StillnessFloorScore > 100 {
		return fmt.Errorf("%w: session.stillness_floor_score must be in [0, 100]", ErrInvalidConfig)
	}
	if c.Session.StillnessFloorMinPresence < 0 || c.Session.StillnessFloorMinPresence > 100 {
		return fmt.Errorf("%w: session.stillness_floor_min_presence must be in [0, 100]", ErrInvalidConfig)
	}
	if c.Session.BlinkFloorPerMinute < 0 {
		return fmt.Errorf("%w: session.blink_floor_per_minute must be >= 0", ErrInvalidConfig)
	}
	if c.Session.BlinkCeilingPerMinute <= 0 {
		c.Session.BlinkCeilingPerMinute = def.Session.BlinkCeilingPerMinute
	}
	if c.Session.BlinkCeilingPerMinute <= c.Session.BlinkFloorPerMinute {
		return fmt.Errorf("%w: session.blink_ceiling_per_minute (%.1f) must exceed blink_floor_per_minute (%.1f)",
			ErrInvalidConfig, c.Session.BlinkCeilingPerMinute, c.Session.BlinkFloorPerMinute)
	}
	if c.Session.DurationMax <= 0 {
		c.Session.DurationMax = def.Session.DurationMax
	}
	if c.Session.MinDurationMinutes <= 0 {
		c.Session.MinDurationMinutes = def.Session.MinDurationMinutes
	}

	// Composite weights: all unset falls back to defaults, otherwise they
	// must be non-negative and sum to 1.
	ws, wb, wd := c.Session.StillnessWeight, c.Session.BlinkWeight, c.Session.DurationWeight
	if ws == 0 && wb == 0 && wd == 0 {
		c.Session.StillnessWeight = def.Session.StillnessWeight
		c.Session.BlinkWeight = def.Session.BlinkWeight
		c.Session.DurationWeight = def.Session.DurationWeight
		ws, wb, wd = c.Session.StillnessWeight, c.Session.BlinkWeight, c.Session.DurationWeight
	}
	if ws < 0 || wb < 0 || wd < 0 {
		return fmt.Errorf("%w: composite weights must be >= 0", ErrInvalidConfig)
	}
	if sum := ws + wb + wd; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("%w: composite weights must sum to 1, got %.3f", ErrInvalidConfig, sum)
	}

	// Grade table: descending, catch-all last.
	if len(c.Session.Grades) == 0 {
		c.Session.Grades = DefaultGrades()
	}
	for i, band := range c.Session.Grades {
		if band.Grade == "" {
			return fmt.Errorf("%w: grade band %d has no grade letter", ErrInvalidConfig, i)
		}
		if band.Min < 0 || band.Min > 100 {
			return fmt.Errorf("%w: grade band %q min must be in [0, 100], got %.1f",
				ErrInvalidConfig, band.Grade, band.Min)
		}
		if i > 0 && band.Min >= c.Session.Grades[i-1].Min {
			return fmt.Errorf("%w: grade table must be strictly descending (%q >= %q)",
				ErrInvalidConfig, band.Grade, c.Session.Grades[i-1].Grade)
		}
	}
	if last := c.Session.Grades[len(c.Session.Grades)-1]; last.Min != 0 {
		return fmt.Errorf("%w: last grade band %q must have min 0 (catch-all)",
			ErrInvalidConfig, last.Grade)
	}

	return nil
}
