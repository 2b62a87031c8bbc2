// Package ta computes rolling-window statistics over price series. Values are
// NaN wherever fewer than window samples are available.
package ta

import "math"

// RollingMean returns the trailing-window mean aligned 1:1 with vals. The
// first n-1 entries are NaN.
func RollingMean(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 0 || len(vals) < n {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RollingStd returns the trailing-window sample standard deviation (n−1
// denominator) aligned 1:1 with vals. The first n-1 entries are NaN.
func RollingStd(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	if n <= 1 || len(vals) < n {
		return out
	}
	means := RollingMean(vals, n)
	for i := n - 1; i < len(vals); i++ {
		m := means[i]
		s := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := vals[j] - m
			s += d * d
		}
		out[i] = math.Sqrt(s / float64(n-1))
	}
	return out
}

// Bands returns the rolling mean and mean±k·std envelopes over closes, each
// aligned 1:1 with the input. Pure: repeated calls on the same input yield
// identical output.
func Bands(closes []float64, window int, k float64) (mean, upper, lower []float64) {
	mean = RollingMean(closes, window)
	std := RollingStd(closes, window)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := range closes {
		if math.IsNaN(mean[i]) || math.IsNaN(std[i]) {
			continue
		}
		upper[i] = mean[i] + k*std[i]
		lower[i] = mean[i] - k*std[i]
	}
	return mean, upper, lower
}

// Defined reports whether a band value exists at index i.
func Defined(v float64) bool { return !math.IsNaN(v) }

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
