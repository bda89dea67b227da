// Package iir implements the fixed-point Direct Form II Transposed biquad and
// the Linkwitz-Riley 4th order (LR4) filter built from two of them.
//
//	X(z) --o--[b0]--> + ----------o--[gain]--[shift]--> Y(z)
//	       |          ^           |
//	       |        z^-1          |
//	       |          ^           |
//	       o--[b1]--> + <--[a1]---o
//	       |          ^           |
//	       |        z^-1          |
//	       |          ^           |
//	       o--[b2]--> + <--[a2]---o
//
// Feedback coefficients are stored with the sign that is added to the delay
// line, so a1 and a2 are the negated denominator coefficients of the transfer
// function.
package iir

import "github.com/tphakala/go-audio-crossover/internal/fixed"

// Number of delay slots used by a single biquad.
const BiquadDelays = 2

// Number of int32 words in one serialized coefficient record.
const CoefficientWords = 7

// Fixed-point layout of the accumulators.
const (
	// accFrac is the fractional width of coefficient x sample (Q2.30 x Q1.31 = Q3.61).
	accFrac = fixed.Q30 + fixed.Q31

	// gainFrac is the fractional width of gain x sample (Q2.14 x Q1.31 = Q3.45).
	gainFrac = fixed.Q14 + fixed.Q31
)

// Coefficients holds one biquad section: a2..b0 in Q2.30, Shift as a signed
// right-shift count applied with the gain, and Gain in Q2.14. The field order
// matches the serialized record order.
type Coefficients struct {
	A2    int32
	A1    int32
	B2    int32
	B1    int32
	B0    int32
	Shift int32
	Gain  int32
}

// Identity returns a flat-response section: b0 = 1.0, gain = 1.0, no shift.
func Identity() Coefficients {
	return Coefficients{
		B0:   fixed.One(fixed.Q30),
		Gain: fixed.One(fixed.Q14),
	}
}

// Words returns the coefficients in serialized record order.
func (c *Coefficients) Words() [CoefficientWords]int32 {
	return [CoefficientWords]int32{c.A2, c.A1, c.B2, c.B1, c.B0, c.Shift, c.Gain}
}

// FromWords builds coefficients from a serialized record.
func FromWords(w [CoefficientWords]int32) Coefficients {
	return Coefficients{
		A2:    w[0],
		A1:    w[1],
		B2:    w[2],
		B1:    w[3],
		B0:    w[4],
		Shift: w[5],
		Gain:  w[6],
	}
}

// ProcessBiquad filters one Q1.31 sample through a DF-II-T section. The
// caller owns the two delay slots, which hold Q3.61 partial sums.
//
// Overflow never fails: both the section output and the gain stage saturate
// to the 32-bit range.
func ProcessBiquad(in int32, c *Coefficients, delay *[BiquadDelays]int64) int32 {
	x := int64(in)

	acc := int64(c.B0)*x + delay[0]
	y := fixed.SatInt32(fixed.QShiftRound(acc, accFrac, fixed.Q31))

	delay[0] = delay[1] + int64(c.B1)*x + int64(c.A1)*int64(y)
	delay[1] = int64(c.B2)*x + int64(c.A2)*int64(y)

	acc = int64(c.Gain) * int64(y)
	return fixed.SatInt32(fixed.ShiftRound(acc, gainFrac+int(c.Shift)-fixed.Q31))
}
