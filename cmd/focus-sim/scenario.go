package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	focusengine "github.com/e7canasta/orion-focus-engine"
)

// scenario generates synthetic detector frames for one subject profile.
// Generators are deterministic for a given seed, so runs are reproducible.
type scenario struct {
	name string
	rng  *rand.Rand
	base time.Time

	closedLeft int // frames remaining in the current eye closure
	gen        func(s *scenario, offMS int) focusengine.Frame
}

var scenarios = map[string]func(s *scenario, offMS int) focusengine.Frame{
	"steady":   genSteady,
	"restless": genRestless,
	"drowsy":   genDrowsy,
	"flaky":    genFlaky,
	"absent":   genAbsent,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newScenario(name string, seed int64) (*scenario, error) {
	gen, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (have: %s)",
			name, strings.Join(scenarioNames(), ", "))
	}
	return &scenario{
		name: name,
		rng:  rand.New(rand.NewSource(seed)),
		base: time.Now(),
		gen:  gen,
	}, nil
}

func (s *scenario) frame(offMS int) focusengine.Frame {
	return s.gen(s, offMS)
}

func (s *scenario) at(offMS int) time.Time {
	return s.base.Add(time.Duration(offMS) * time.Millisecond)
}

// eyes advances the blink cycle. pClose is the per-frame chance a closure
// starts; closures last between minFrames and maxFrames.
func (s *scenario) eyes(pClose float64, minFrames, maxFrames int) (left, right float64) {
	if s.closedLeft > 0 {
		s.closedLeft--
		return 0.05 + s.rng.Float64()*0.1, 0.05 + s.rng.Float64()*0.1
	}
	if s.rng.Float64() < pClose {
		s.closedLeft = minFrames + s.rng.Intn(maxFrames-minFrames+1)
	}
	return 0.8 + s.rng.Float64()*0.2, 0.8 + s.rng.Float64()*0.2
}

// genSteady is a focused subject: sub-degree jitter, relaxed blink rate
// (~3/min at 6 fps).
func genSteady(s *scenario, offMS int) focusengine.Frame {
	left, right := s.eyes(0.008, 1, 2)
	return focusengine.Frame{
		Timestamp:    s.at(offMS),
		FaceDetected: true,
		Yaw:          2 + s.rng.NormFloat64()*0.15,
		Pitch:        -1 + s.rng.NormFloat64()*0.15,
		Roll:         0.5 + s.rng.NormFloat64()*0.1,
		FaceX:        0.5 + s.rng.NormFloat64()*0.005,
		FaceY:        0.45 + s.rng.NormFloat64()*0.005,
		LeftEyeOpen:  left,
		RightEyeOpen: right,
	}
}

// genRestless is a fidgeting subject: wide slow head sweeps with noise on
// top, blinking near the scoring ceiling (~25/min at 6 fps).
func genRestless(s *scenario, offMS int) focusengine.Frame {
	t := float64(offMS) / 1000
	left, right := s.eyes(0.07, 1, 3)
	return focusengine.Frame{
		Timestamp:    s.at(offMS),
		FaceDetected: true,
		Yaw:          12*math.Sin(t*1.3) + s.rng.NormFloat64()*2,
		Pitch:        8*math.Sin(t*0.9+1) + s.rng.NormFloat64()*1.5,
		Roll:         4*math.Sin(t*0.5) + s.rng.NormFloat64(),
		FaceX:        0.5 + 0.05*math.Sin(t*0.7),
		FaceY:        0.45 + 0.04*math.Cos(t*0.6),
		LeftEyeOpen:  left,
		RightEyeOpen: right,
	}
}

// genDrowsy is a tired subject: slow nodding drift and long eyelid droops.
// Each droop counts as a single blink however long it lasts.
func genDrowsy(s *scenario, offMS int) focusengine.Frame {
	t := float64(offMS) / 1000
	left, right := s.eyes(0.015, 6, 18)
	return focusengine.Frame{
		Timestamp:    s.at(offMS),
		FaceDetected: true,
		Yaw:          1.5*math.Sin(t*0.1) + s.rng.NormFloat64()*0.3,
		Pitch:        -2 - 1.5*math.Sin(t*0.07) + s.rng.NormFloat64()*0.3,
		Roll:         2*math.Sin(t*0.05) + s.rng.NormFloat64()*0.2,
		FaceX:        0.5 + s.rng.NormFloat64()*0.01,
		FaceY:        0.45 - 0.02*math.Sin(t*0.07),
		LeftEyeOpen:  left,
		RightEyeOpen: right,
	}
}

// genFlaky is a steady subject behind an unreliable detector: one frame in
// five drops the face, and a few carry NaN pose values.
func genFlaky(s *scenario, offMS int) focusengine.Frame {
	roll := s.rng.Float64()
	switch {
	case roll < 0.03:
		f := genSteady(s, offMS)
		f.Yaw = math.NaN()
		return f
	case roll < 0.23:
		return focusengine.Frame{Timestamp: s.at(offMS)}
	default:
		return genSteady(s, offMS)
	}
}

// genAbsent is a subject who calibrates and then walks away. The 3s of
// presence matches the default calibration window.
func genAbsent(s *scenario, offMS int) focusengine.Frame {
	if offMS < 3000 {
		return genSteady(s, offMS)
	}
	return focusengine.Frame{Timestamp: s.at(offMS)}
}
