// Package stats provides the small set of float statistics the scoring
// engine is built on: median, standard deviation, trimmed mean, clamping,
// linear range mapping, and exponential smoothing.
//
// All functions are pure and allocation-free except where a sorted copy is
// required. Empty inputs return 0 rather than NaN so callers never have to
// guard division by zero.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value of values (average of the two middle
// values for even counts), or 0 for an empty slice. The input is not
// modified.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// StdDev returns the population standard deviation of values, or 0 for an
// empty slice.
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(n))
}

// TrimmedMean returns the mean of values after discarding the lowest
// trimFraction of them (count truncated toward zero).
//
// This function:
//  1. Sorts a copy of the input ascending
//  2. Drops the bottom int(n * trimFraction) values
//  3. Averages the remainder
//
// Example: 180 values with trimFraction 0.10 → the 18 lowest are dropped
// and the remaining 162 averaged.
//
// At least one value is always kept; an empty input returns 0. Fractions
// outside [0,1) are clamped into range.
func TrimmedMean(values []float64, trimFraction float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if trimFraction < 0 {
		trimFraction = 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	cut := int(float64(n) * trimFraction)
	if cut >= n {
		cut = n - 1
	}
	return Mean(sorted[cut:])
}

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Position returns the normalized position of v within [lo, hi], clamped
// to [0, 1]: 0 at or below lo, 1 at or above hi. A degenerate range
// (hi <= lo) reports 0 below lo and 1 otherwise.
func Position(v, lo, hi float64) float64 {
	if hi <= lo {
		if v < lo {
			return 0
		}
		return 1
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// EMA blends a new sample into a previous exponential moving average:
// alpha weights the sample, (1-alpha) the history.
func EMA(prev, sample, alpha float64) float64 {
	return alpha*sample + (1-alpha)*prev
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
