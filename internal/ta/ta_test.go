package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	mean := RollingMean(vals, 3)

	require.Len(t, mean, len(vals))
	assert.True(t, math.IsNaN(mean[0]))
	assert.True(t, math.IsNaN(mean[1]))
	assert.InDelta(t, 2.0, mean[2], 1e-12)
	assert.InDelta(t, 3.0, mean[3], 1e-12)
	assert.InDelta(t, 4.0, mean[4], 1e-12)
}

func TestRollingStdSampleConvention(t *testing.T) {
	// sample std of {1,2,3} is 1 exactly (N-1 denominator)
	std := RollingStd([]float64{1, 2, 3, 4}, 3)

	require.Len(t, std, 4)
	assert.True(t, math.IsNaN(std[0]))
	assert.True(t, math.IsNaN(std[1]))
	assert.InDelta(t, 1.0, std[2], 1e-12)
	assert.InDelta(t, 1.0, std[3], 1e-12)
}

func TestBandsSymmetry(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 8, 13, 10.5, 9.5, 11.5, 10}
	const window = 4
	const k = 2.0

	mean, upper, lower := Bands(closes, window, k)
	std := RollingStd(closes, window)

	require.Len(t, upper, len(closes))
	require.Len(t, lower, len(closes))

	for i := range closes {
		if i < window-1 {
			assert.False(t, Defined(upper[i]), "index %d should be undefined", i)
			assert.False(t, Defined(lower[i]), "index %d should be undefined", i)
			continue
		}
		require.True(t, Defined(upper[i]), "index %d should be defined", i)
		require.True(t, Defined(lower[i]), "index %d should be defined", i)
		assert.GreaterOrEqual(t, upper[i], lower[i], "upper below lower at %d", i)
		assert.InDelta(t, k*std[i], upper[i]-mean[i], 1e-9, "upper offset at %d", i)
		assert.InDelta(t, k*std[i], mean[i]-lower[i], 1e-9, "lower offset at %d", i)
	}
}

func TestBandsShorterThanWindow(t *testing.T) {
	closes := []float64{1, 2, 3}
	mean, upper, lower := Bands(closes, 5, 2)

	for i := range closes {
		assert.False(t, Defined(mean[i]))
		assert.False(t, Defined(upper[i]))
		assert.False(t, Defined(lower[i]))
	}
}

func TestBandsEmptyInput(t *testing.T) {
	mean, upper, lower := Bands(nil, 5, 2)
	assert.Empty(t, mean)
	assert.Empty(t, upper)
	assert.Empty(t, lower)
}

func TestBandsIdempotent(t *testing.T) {
	closes := []float64{10, 11, 9, 12, 8, 13, 10.5, 9.5, 11.5, 10}

	m1, u1, l1 := Bands(closes, 4, 2)
	m2, u2, l2 := Bands(closes, 4, 2)

	for i := range closes {
		assert.True(t, equalOrBothNaN(m1[i], m2[i]))
		assert.True(t, equalOrBothNaN(u1[i], u2[i]))
		assert.True(t, equalOrBothNaN(l1[i], l2[i]))
	}
}

func equalOrBothNaN(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
