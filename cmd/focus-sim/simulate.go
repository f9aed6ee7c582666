package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	focusengine "github.com/e7canasta/orion-focus-engine"
)

var (
	scenarioFlag = &cli.StringFlag{
		Name:  "scenario",
		Usage: fmt.Sprintf("Subject profile [%s]", strings.Join(scenarioNames(), ", ")),
		Value: "steady",
	}

	durationFlag = &cli.DurationFlag{
		Name:  "duration",
		Usage: "Simulated session length",
		Value: time.Minute,
	}

	fpsFlag = &cli.Float64Flag{
		Name:  "fps",
		Usage: "Detector frame rate",
		Value: 6.0,
	}

	committedFlag = &cli.DurationFlag{
		Name:  "committed",
		Usage: "Committed session length for the completion ratio (0 = open-ended)",
	}

	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Random seed for reproducible runs",
		Value: 42,
	}

	recordFlag = &cli.StringFlag{
		Name:  "record",
		Usage: "Write the generated frames to a JSONL file (replayable)",
	}

	quietFlag = &cli.BoolFlag{
		Name:  "quiet",
		Usage: "Suppress the banner and live score line",
	}

	simulateCmd = &cli.Command{
		Name:    "simulate",
		Aliases: []string{"sim"},
		Usage:   "Run a synthetic subject through a full scoring session",
		UsageText: `focus-sim simulate --scenario steady --duration 2m
   focus-sim simulate --scenario restless --fps 10 --seed 7
   focus-sim simulate --scenario flaky --record frames.jsonl`,
		Action: cmdSimulate,
		Flags: []cli.Flag{
			scenarioFlag,
			durationFlag,
			fpsFlag,
			committedFlag,
			seedFlag,
			recordFlag,
			quietFlag,
		},
	}
)

func cmdSimulate(c *cli.Context) error {
	cfg := getConfig(c)

	duration := c.Duration(durationFlag.Name)
	fps := c.Float64(fpsFlag.Name)
	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", duration)
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %v", fps)
	}

	gen, err := newScenario(c.String(scenarioFlag.Name), c.Int64(seedFlag.Name))
	if err != nil {
		return err
	}

	eng, err := focusengine.NewWithConfig(cfg.Engine)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	if cfg.Debug {
		eng.SetObserver(focusengine.NewLogObserver(nil, 30))
	}

	var rec *recorder
	if path := c.String(recordFlag.Name); path != "" {
		rec, err = newRecorder(path)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	// Live display would interleave with a piped json/yaml report.
	live := !c.Bool(quietFlag.Name) && outputFormat == formatText
	if live {
		printBanner(gen.name, duration, fps, eng.SessionID())
	}

	stepMS := 1000.0 / fps
	total := int(duration.Seconds() * fps)
	lineEvery := int(fps)
	if lineEvery < 1 {
		lineEvery = 1
	}
	start := time.Now()

	for i := 0; i < total; i++ {
		offMS := int(float64(i) * stepMS)
		frame := gen.frame(offMS)
		res := eng.ProcessFrame(frame)

		if rec != nil {
			if err := rec.write(offMS, frame); err != nil {
				return fmt.Errorf("recording frame: %w", err)
			}
		}
		if live && i%lineEvery == 0 {
			printLive(offMS, res)
		}
	}
	if live {
		fmt.Println()
	}

	results := eng.Finalize(duration, c.Duration(committedFlag.Name))

	slog.Debug("simulation complete",
		"frames", total,
		"wall_time", time.Since(start).Round(time.Millisecond),
	)
	if rec != nil {
		slog.Info("frames recorded", "path", rec.path, "written", rec.written, "skipped", rec.skipped)
	}

	if outputFormat != formatText {
		return encode(results)
	}
	printReport(results, eng.Stats())
	return nil
}
