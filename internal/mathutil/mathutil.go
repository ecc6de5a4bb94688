package mathutil

import (
	"math"
	"sort"
)

// NormalCDF calculates the cumulative distribution function of the standard normal distribution.
// P(Z <= z) where Z ~ N(0,1)
func NormalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

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

// StdDev returns the sample standard deviation of values.
// Returns 0 when fewer than two values are given.
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Median returns the middle value of values (average of the two middle
// values for even-length input). Returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// MAD returns the median absolute deviation from the median.
func MAD(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	med := Median(values)
	devs := make([]float64, len(values))
	for i, v := range values {
		devs[i] = math.Abs(v - med)
	}
	return Median(devs)
}

// Quartiles returns (Q1, Q3) using exclusive interpolation: cut points at
// fractional positions (n+1)/4 and 3(n+1)/4 of the sorted sample.
func Quartiles(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	if n == 1 {
		return values[0], values[0]
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	quantile := func(p float64) float64 {
		pos := p*float64(n+1) - 1 // zero-based fractional index
		if pos <= 0 {
			return sorted[0]
		}
		if pos >= float64(n-1) {
			return sorted[n-1]
		}
		lo := int(math.Floor(pos))
		frac := pos - float64(lo)
		return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
	}

	return quantile(0.25), quantile(0.75)
}

// IQR returns the interquartile range of values.
func IQR(values []float64) float64 {
	q1, q3 := Quartiles(values)
	return math.Max(0, q3-q1)
}
