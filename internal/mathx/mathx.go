// Package mathx holds the float helpers shared by the timing code.
package mathx

import "math"

const epsilon = 1.1920929e-7 // float32 machine epsilon

// Approximately compares two floats with a tolerance relative to their
// magnitude, falling back to a small absolute tolerance near zero.
func Approximately(a, b float64) bool {
	return math.Abs(b-a) < max(1e-6*max(math.Abs(a), math.Abs(b)), epsilon*8)
}

// Clamp limits v to [lo, hi].
func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 { return Clamp(v, 0, 1) }

// Lerp interpolates from a to b by t clamped to [0, 1].
func Lerp(a, b, t float64) float64 { return a + (b-a)*Clamp01(t) }

// Mod is a floating point remainder with a zero divisor yielding zero.
func Mod(v, d float64) float64 {
	if d == 0 {
		return 0
	}
	return math.Mod(v, d)
}
