// Package testutil provides reusable test helpers for the crossover packages:
// assertions, deterministic signal generators and coefficient fixtures.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance   = 1e-10
	MagnitudeTolerance = 1e-2
	DBTolerance        = 0.5
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertSamplesEqual verifies two sample slices are bit-exact.
func AssertSamplesEqual(t *testing.T, expected, actual []int32, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %d, got %d", i, expected[i], actual[i])
		}
	}
	return true
}

// AssertSamplesNear verifies two sample slices differ by at most tolerance LSBs.
func AssertSamplesNear(t *testing.T, expected, actual []int32, tolerance int64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		diff := int64(expected[i]) - int64(actual[i])
		if diff < -tolerance || diff > tolerance {
			return assert.Fail(t, "samples differ",
				"sample %d: expected %d, got %d (tolerance %d)", i, expected[i], actual[i], tolerance)
		}
	}
	return true
}

// AssertInRange verifies that a value is within [min, max].
func AssertInRange(t *testing.T, value, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range",
			"value %f is outside range [%f, %f]", value, minVal, maxVal)
	}
	return true
}
