package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	focusengine "github.com/e7canasta/orion-focus-engine"
)

var replayCmd = &cli.Command{
	Name:      "replay",
	Aliases:   []string{"r"},
	Usage:     "Score a recorded JSONL frame stream",
	ArgsUsage: "FILE",
	UsageText: `focus-sim replay frames.jsonl
   focus-sim replay --committed 25m frames.jsonl`,
	Action: cmdReplay,
	Flags: []cli.Flag{
		committedFlag,
		quietFlag,
	},
}

func cmdReplay(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.ShowSubcommandHelp(c)
	}

	frames, err := readFrames(path)
	if err != nil {
		return err
	}

	cfg := getConfig(c)
	eng, err := focusengine.NewWithConfig(cfg.Engine)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	if cfg.Debug {
		eng.SetObserver(focusengine.NewLogObserver(nil, 30))
	}

	live := !c.Bool(quietFlag.Name) && outputFormat == formatText
	base := frames[0].Timestamp
	for i, f := range frames {
		res := eng.ProcessFrame(f)
		if live && i%32 == 0 {
			printLive(int(f.Timestamp.Sub(base).Milliseconds()), res)
		}
	}
	if live {
		fmt.Println()
	}

	elapsed := frames[len(frames)-1].Timestamp.Sub(base)
	results := eng.Finalize(elapsed, c.Duration(committedFlag.Name))

	slog.Debug("replay complete", "path", path, "frames", len(frames), "elapsed", elapsed)

	if outputFormat != formatText {
		return encode(results)
	}
	printReport(results, eng.Stats())
	return nil
}

// frameRecord is the JSONL wire form of one detector frame. Timestamps are
// stored as offsets so recordings replay identically at any wall time.
type frameRecord struct {
	TSMS         int     `json:"ts_ms"`
	Face         bool    `json:"face"`
	Yaw          float64 `json:"yaw,omitempty"`
	Pitch        float64 `json:"pitch,omitempty"`
	Roll         float64 `json:"roll,omitempty"`
	FaceX        float64 `json:"face_x,omitempty"`
	FaceY        float64 `json:"face_y,omitempty"`
	LeftEyeOpen  float64 `json:"left_eye,omitempty"`
	RightEyeOpen float64 `json:"right_eye,omitempty"`
}

func (r frameRecord) toFrame(base time.Time) focusengine.Frame {
	return focusengine.Frame{
		Timestamp:    base.Add(time.Duration(r.TSMS) * time.Millisecond),
		FaceDetected: r.Face,
		Yaw:          r.Yaw,
		Pitch:        r.Pitch,
		Roll:         r.Roll,
		FaceX:        r.FaceX,
		FaceY:        r.FaceY,
		LeftEyeOpen:  r.LeftEyeOpen,
		RightEyeOpen: r.RightEyeOpen,
	}
}

// readFrames loads a JSONL frame file. Blank lines are skipped; anything
// else that fails to parse aborts with the offending line number.
func readFrames(path string) ([]focusengine.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening frame file: %w", err)
	}
	defer f.Close()

	base := time.Now()
	var frames []focusengine.Frame

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec frameRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("parsing frame at line %d: %w", line, err)
		}
		frames = append(frames, rec.toFrame(base))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading frame file: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("frame file %s contains no frames", path)
	}
	return frames, nil
}

// recorder appends frames to a JSONL file as they are generated.
type recorder struct {
	path    string
	file    *os.File
	w       *bufio.Writer
	enc     *json.Encoder
	written int
	skipped int
}

func newRecorder(path string) (*recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating record file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &recorder{path: path, file: f, w: w, enc: json.NewEncoder(w)}, nil
}

// write appends one frame. Frames carrying NaN/Inf values cannot round-trip
// through JSON and never score anyway; they are skipped with a debug log.
func (r *recorder) write(offMS int, f focusengine.Frame) error {
	if f.FaceDetected {
		for _, v := range [...]float64{f.Yaw, f.Pitch, f.Roll, f.FaceX, f.FaceY, f.LeftEyeOpen, f.RightEyeOpen} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				r.skipped++
				slog.Debug("skipping malformed frame in recording", "ts_ms", offMS)
				return nil
			}
		}
	}

	rec := frameRecord{
		TSMS:         offMS,
		Face:         f.FaceDetected,
		Yaw:          f.Yaw,
		Pitch:        f.Pitch,
		Roll:         f.Roll,
		FaceX:        f.FaceX,
		FaceY:        f.FaceY,
		LeftEyeOpen:  f.LeftEyeOpen,
		RightEyeOpen: f.RightEyeOpen,
	}
	if err := r.enc.Encode(rec); err != nil {
		return err
	}
	r.written++
	return nil
}

func (r *recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
