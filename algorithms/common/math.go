package common

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Small numeric helpers shared by the tonal and temporal analyzers, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// MeanInts is Mean over integer samples (velocities, intervals, steps)
func MeanInts[T constraints.Integer](data []T) float64 {
	if len(data) == 0 {
		return 0.0
	}

	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return Mean(values)
}

// MinMax returns the smallest and largest value of data. Empty input yields (0, 0).
func MinMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0.0, 0.0
	}
	return floats.Min(data), floats.Max(data)
}

// ArgMax returns the index of the first occurrence of the largest value, or -1
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// ArgMin returns the index of the first occurrence of the smallest value, or -1
func ArgMin(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MinIdx(data)
}

// Clamp constrains a value to [lo, hi]
func Clamp[T constraints.Ordered](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Percent returns round(100*part/whole) clamped to [0, 100]. A zero whole yields 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return ClampPercent(100.0 * float64(part) / float64(whole))
}

// ClampPercent rounds a percentage to the nearest integer and clamps it to [0, 100]
func ClampPercent(value float64) int {
	if math.IsNaN(value) {
		return 0
	}
	return Clamp(int(math.Round(value)), 0, 100)
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
