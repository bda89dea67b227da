package testutil

import "github.com/tphakala/go-audio-crossover/internal/iir"

// unityGainQ14 is 1.0 in Q2.14.
const unityGainQ14 = 1 << 14

// Lowpass and highpass sections for three ascending crossover points, ordered
// {a2, a1, b2, b1, b0} in Q2.30 with no shift and unity gain. Index 0 is the
// lowest crossover, index 2 the highest. The feed-forward taps are scaled by
// one half, so each section has a passband gain of about 0.5.
var (
	lowpassFixture = [3][5]int32{
		{-1034714513, 2107733822, 90529, 181058, 90529},
		{-892285457, 1949207645, 2107447, 4214893, 2107447},
		{-512810774, 1373994854, 26632807, 53265614, 26632807},
	}
	highpassFixture = [3][5]int32{
		{-1034714513, 2107733822, 528275171, -1056550341, 528275171},
		{-892285457, 1949207645, 490566440, -981132881, 490566440},
		{-512810774, 1373994854, 370947147, -741894294, 370947147},
	}
)

func fixture(v [5]int32) iir.Coefficients {
	return iir.Coefficients{
		A2:   v[0],
		A1:   v[1],
		B2:   v[2],
		B1:   v[3],
		B0:   v[4],
		Gain: unityGainQ14,
	}
}

// LowpassFixture returns the i-th lowpass fixture section (0..2).
func LowpassFixture(i int) iir.Coefficients {
	return fixture(lowpassFixture[i])
}

// HighpassFixture returns the i-th highpass fixture section (0..2).
func HighpassFixture(i int) iir.Coefficients {
	return fixture(highpassFixture[i])
}

// ResponseFixture returns the 2*(numSinks-1) records of one response in
// traversal order lp0, hp0, lp1, hp1, ...
func ResponseFixture(numSinks int) []iir.Coefficients {
	records := make([]iir.Coefficients, 0, 2*(numSinks-1))
	for i := range numSinks - 1 {
		records = append(records, LowpassFixture(i), HighpassFixture(i))
	}
	return records
}

// IdentityResponse returns a response whose every section is flat.
func IdentityResponse(numSinks int) []iir.Coefficients {
	records := make([]iir.Coefficients, 2*(numSinks-1))
	for i := range records {
		records[i] = iir.Identity()
	}
	return records
}
