package engine

import (
	"math"
	"time"

	"github.com/e7canasta/orion-focus-engine/internal/stats"
)

// sessionTotals is the accumulated per-session history that aggregation
// consumes.
type sessionTotals struct {
	scores         []float64
	framesTotal    uint64
	framesWithFace uint64
	blinks         int
}

// aggregate produces the final graded results for one session.
//
// This function:
//  1. Floors the elapsed duration at MinDurationMinutes so per-minute
//     rates never divide by zero
//  2. Computes face presence as framesWithFace / framesTotal
//  3. Computes stillness as the bottom-trimmed mean of per-frame scores,
//     raised to the configured floor when presence was high enough
//  4. Maps the blink rate inversely onto [100,0]; fewer blinks per minute
//     score higher, modeling sustained visual fixation
//  5. Scores duration on a log curve scaled by the completion ratio
//  6. Blends the three sub-scores with the configured weights and grades
//     the composite against the descending grade table
//
// committed <= 0 means no committed duration was known; the completion
// ratio is then 1.
func aggregate(t sessionTotals, elapsed, committed time.Duration, cfg SessionConfig) SessionResults {
	minutes := math.Max(elapsed.Minutes(), cfg.MinDurationMinutes)

	presence := 0.0
	if t.framesTotal > 0 {
		presence = float64(t.framesWithFace) / float64(t.framesTotal) * 100
	}

	stillness := stats.TrimmedMean(t.scores, cfg.TrimFraction) * 100
	if stillness < cfg.StillnessFloorScore && presence > cfg.StillnessFloorMinPresence {
		// A rough stretch inside an otherwise well-tracked session should
		// not zero out the grade.
		stillness = cfg.StillnessFloorScore
	}
	stillness = stats.Clamp(stillness, 0, 100)

	blinksPerMinute := float64(t.blinks) / minutes
	blinkScore := 100 * (1 - stats.Position(blinksPerMinute,
		cfg.BlinkFloorPerMinute, cfg.BlinkCeilingPerMinute))

	duration := cfg.DurationBase + cfg.DurationMultiplier*math.Log(minutes+1)
	ratio := 1.0
	if committed > 0 {
		ratio = math.Min(1, elapsed.Seconds()/committed.Seconds())
	}
	duration = stats.Clamp(duration*ratio, 0, cfg.DurationMax)

	composite := stats.Clamp(
		stillness*cfg.StillnessWeight+blinkScore*cfg.BlinkWeight+duration*cfg.DurationWeight,
		0, 100)
	band := gradeFor(composite, cfg.Grades)

	return SessionResults{
		CompositeScore:      stats.Round1(composite),
		StillnessScore:      stats.Round1(stillness),
		BlinkScore:          stats.Round1(blinkScore),
		DurationScore:       stats.Round1(duration),
		Grade:               band.Grade,
		Label:               band.Label,
		Color:               band.Color,
		BlinksPerMinute:     stats.Round1(blinksPerMinute),
		StillnessPercent:    int(math.Round(stillness)),
		FacePresencePercent: int(math.Round(presence)),
	}
}

// gradeFor returns the first band whose Min the composite reaches. Validate
// guarantees a Min-0 catch-all, so in-range scores always resolve; the last
// band is returned as a backstop regardless.
func gradeFor(composite float64, grades []GradeBand) GradeBand {
	for _, band := range grades {
		if composite >= band.Min {
			return band
		}
	}
	return grades[len(grades)-1]
}
