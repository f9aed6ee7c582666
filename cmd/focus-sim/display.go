package main

import (
	"fmt"
	"time"

	focusengine "github.com/e7canasta/orion-focus-engine"
)

func printBanner(scenario string, duration time.Duration, fps float64, sessionID string) {
	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Printf("║ %-61s ║\n", "focus-sim - Synthetic Engagement Sessions")
	fmt.Printf("║ %-61s ║\n", fmt.Sprintf("Version %s", version))
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Scenario:        %s\n", scenario)
	fmt.Printf("  Duration:        %v\n", duration)
	fmt.Printf("  Frame Rate:      %.1f fps\n", fps)
	fmt.Printf("  Session ID:      %s\n", sessionID)
	fmt.Println()
}

// printLive rewrites one status line as the session progresses.
func printLive(offMS int, res focusengine.FrameResult) {
	phase := "scoring    "
	if res.Calibrating {
		phase = "calibrating"
	}
	fmt.Printf("\r  %7.1fs  %s  live %5.1f  session %5.1f  blinks %3d",
		float64(offMS)/1000, phase, res.LiveStillness, res.Stillness, res.BlinkCount)
}

func printReport(res focusengine.SessionResults, stats focusengine.Stats) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("                        Session Report")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("  Session:               %s\n", res.SessionID)
	fmt.Printf("  Grade:                 %s (%s)\n", res.Grade, res.Label)
	fmt.Printf("  Composite Score:       %5.1f\n", res.CompositeScore)
	fmt.Println()
	fmt.Printf("  Stillness Score:       %5.1f (%d%%)\n", res.StillnessScore, res.StillnessPercent)
	fmt.Printf("  Blink Score:           %5.1f (%.1f blinks/min)\n", res.BlinkScore, res.BlinksPerMinute)
	fmt.Printf("  Duration Score:        %5.1f\n", res.DurationScore)
	fmt.Println()
	fmt.Printf("  Face Presence:         %d%%\n", res.FacePresencePercent)
	fmt.Printf("  Frames Scored:         %d (%d with face, %d held, %d rejected)\n",
		stats.FramesProcessed, stats.FramesWithFace, stats.FramesHeld, stats.FramesRejected)
	fmt.Printf("  Blinks:                %d\n", stats.BlinkCount)
	if stats.CalibrationFallback {
		fmt.Printf("  Calibration:           fallback (%d samples)\n", stats.CalibrationSamples)
	} else {
		fmt.Printf("  Calibration:           %d samples, %d discarded\n",
			stats.CalibrationSamples, stats.CalibrationDiscarded)
		fmt.Printf("  Dead Zones:            yaw %.2f  pitch %.2f  roll %.2f (degrees)\n",
			stats.DeadZone.Yaw, stats.DeadZone.Pitch, stats.DeadZone.Roll)
	}
	fmt.Println("═══════════════════════════════════════════════════════════════")
}
