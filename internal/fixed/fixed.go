// Package fixed provides the fixed-point primitives shared by the crossover
// DSP code: Q-format conversions with round-half-up and saturation.
//
// Formats are written Qm.n (m integer bits including sign, n fractional bits).
// Samples travel through the filters as Q1.31, biquad coefficients are Q2.30
// and output gains are Q2.14.
package fixed

import "math"

// Q-format fractional bit counts used across the filters.
const (
	// Q31 is the fractional width of a Q1.31 sample.
	Q31 = 31

	// Q30 is the fractional width of a Q2.30 coefficient.
	Q30 = 30

	// Q14 is the fractional width of a Q2.14 gain.
	Q14 = 14

	// Q15 is the fractional width of a Q1.15 (16-bit) sample.
	Q15 = 15

	// Q23 is the fractional width of a Q1.23 (24-bit) sample.
	Q23 = 23
)

const (
	maxShift = 63

	minInt24 = -(1 << 23)
	maxInt24 = 1<<23 - 1
)

// One returns 1.0 in a Q format with the given number of fractional bits.
// Q2.30 and Q2.14 can represent 1.0 exactly.
func One(frac int) int32 {
	return int32(1) << frac
}

// ShiftRound shifts x right by n bits rounding half up, i.e. it computes
// ((x >> (n-1)) + 1) >> 1. A zero n returns x unchanged and a negative n is
// a saturating left shift by -n bits.
func ShiftRound(x int64, n int) int64 {
	switch {
	case n > 0:
		if n > maxShift {
			n = maxShift
		}
		return ((x >> (n - 1)) + 1) >> 1
	case n == 0:
		return x
	default:
		return shiftLeftSat(x, -n)
	}
}

// QShiftRound converts x from Q(srcFrac) to Q(dstFrac) with rounding.
func QShiftRound(x int64, srcFrac, dstFrac int) int64 {
	return ShiftRound(x, srcFrac-dstFrac)
}

func shiftLeftSat(x int64, n int) int64 {
	if x == 0 {
		return 0
	}
	if n >= maxShift {
		if x > 0 {
			return math.MaxInt64
		}
		return math.MinInt64
	}
	if x > math.MaxInt64>>n {
		return math.MaxInt64
	}
	if x < math.MinInt64>>n {
		return math.MinInt64
	}
	return x << n
}

// SatInt32 clamps x to the signed 32-bit range.
func SatInt32(x int64) int32 {
	if x > math.MaxInt32 {
		return math.MaxInt32
	}
	if x < math.MinInt32 {
		return math.MinInt32
	}
	return int32(x)
}

// SatInt24 clamps x to the signed 24-bit range.
func SatInt24(x int64) int32 {
	if x > maxInt24 {
		return maxInt24
	}
	if x < minInt24 {
		return minInt24
	}
	return int32(x)
}

// SatInt16 clamps x to the signed 16-bit range.
func SatInt16(x int64) int16 {
	if x > math.MaxInt16 {
		return math.MaxInt16
	}
	if x < math.MinInt16 {
		return math.MinInt16
	}
	return int16(x)
}

// FromFloat quantizes v to a Q format with frac fractional bits, rounding to
// nearest and saturating to the 32-bit container.
func FromFloat(v float64, frac int) int32 {
	scaled := math.Round(v * float64(int64(1)<<frac))
	if scaled >= math.MaxInt32 {
		return math.MaxInt32
	}
	if scaled <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(scaled)
}

// ToFloat converts a Q value with frac fractional bits to float64.
func ToFloat(v int32, frac int) float64 {
	return float64(v) / float64(int64(1)<<frac)
}
