package iir

// LR4Delays is the delay line length of an LR4: two slots per biquad stage.
const LR4Delays = 2 * BiquadDelays

// LR4 is a Linkwitz-Riley 4th order filter: two identical biquads in series.
// Both stages read the same shared coefficient record; each has its own pair
// of delay slots. An LR4 without coefficients passes samples through.
type LR4 struct {
	coef  *Coefficients
	delay [LR4Delays]int64
}

// Bind attaches a coefficient record and clears the delay line.
func (f *LR4) Bind(c *Coefficients) {
	f.coef = c
	f.delay = [LR4Delays]int64{}
}

// Reset clears the delay line and drops the coefficient reference.
func (f *LR4) Reset() {
	f.coef = nil
	f.delay = [LR4Delays]int64{}
}

// Bound reports whether coefficients are attached.
func (f *LR4) Bound() bool {
	return f.coef != nil
}

// Coefficients returns the attached record, or nil when in pass-through.
func (f *LR4) Coefficients() *Coefficients {
	return f.coef
}

// Delay returns a copy of the delay line.
func (f *LR4) Delay() [LR4Delays]int64 {
	return f.delay
}

// Process filters one Q1.31 sample.
func (f *LR4) Process(x int32) int32 {
	if f.coef == nil {
		return x
	}
	z := ProcessBiquad(x, f.coef, (*[BiquadDelays]int64)(f.delay[0:BiquadDelays]))
	return ProcessBiquad(z, f.coef, (*[BiquadDelays]int64)(f.delay[BiquadDelays:LR4Delays]))
}
