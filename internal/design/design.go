// Package design computes Linkwitz-Riley crossover coefficients in floating
// point and quantizes them to the fixed-point section format.
//
// An LR4 is two identical 2nd order Butterworth sections (Q = 1/sqrt(2)) in
// series, so one designed section per lowpass or highpass is all a
// configuration record needs.
package design

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/fixed"
	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// butterworthQ is the quality factor of a 2nd order Butterworth section.
const butterworthQ = 1 / math.Sqrt2

// Q2.30 holds values in [-2, 2).
const coefLimit = 2.0

// maxPreShift bounds the feed-forward scaling moved into the output shift.
const maxPreShift = 8

var (
	// ErrFrequency indicates a crossover frequency outside (0, Nyquist).
	ErrFrequency = errors.New("crossover frequency out of range")

	// ErrUnstable indicates feedback coefficients that do not fit Q2.30.
	ErrUnstable = errors.New("section does not fit fixed-point format")

	// ErrSplit indicates an unsupported number of crossover points.
	ErrSplit = errors.New("unsupported number of crossover points")
)

// Section is a biquad with a0 normalized to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Section struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Lowpass designs a 2nd order Butterworth lowpass at freq Hz.
func Lowpass(freq, sampleRate float64) (Section, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Section{}, err
	}
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * butterworthQ)

	b := (1 - cw) / 2
	return normalize(b, 1-cw, b, 1+alpha, -2*cw, 1-alpha), nil
}

// Highpass designs a 2nd order Butterworth highpass at freq Hz.
func Highpass(freq, sampleRate float64) (Section, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Section{}, err
	}
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * butterworthQ)

	b := (1 + cw) / 2
	return normalize(b, -(1 + cw), b, 1+alpha, -2*cw, 1-alpha), nil
}

func normalizedW0(freq, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: sample rate %v", ErrFrequency, sampleRate)
	}
	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) {
		return 0, fmt.Errorf("%w: %v Hz at %v Hz sample rate", ErrFrequency, freq, sampleRate)
	}
	return 2 * math.Pi * freq / sampleRate, nil
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Section {
	return Section{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}

// Response evaluates the section at freq Hz.
func (s Section) Response(freq, sampleRate float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*freq/sampleRate))
	z2 := z1 * z1
	num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
	den := 1 + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
	return num / den
}

// Quantize converts s to a fixed-point record. Feed-forward taps that do not
// fit Q2.30 are scaled down by a power of two which the output shift undoes.
func Quantize(s Section) (iir.Coefficients, error) {
	if math.Abs(s.A1) >= coefLimit || math.Abs(s.A2) >= coefLimit {
		return iir.Coefficients{}, fmt.Errorf("%w: a1=%v a2=%v", ErrUnstable, s.A1, s.A2)
	}

	peak := max(math.Abs(s.B0), math.Abs(s.B1), math.Abs(s.B2))
	shift := 0
	for peak >= coefLimit {
		if shift == maxPreShift {
			return iir.Coefficients{}, fmt.Errorf("%w: feed-forward peak %v", ErrUnstable, peak)
		}
		peak /= 2
		shift++
	}
	scale := math.Ldexp(1, -shift)

	return iir.Coefficients{
		A2:    fixed.FromFloat(-s.A2, fixed.Q30),
		A1:    fixed.FromFloat(-s.A1, fixed.Q30),
		B2:    fixed.FromFloat(s.B2*scale, fixed.Q30),
		B1:    fixed.FromFloat(s.B1*scale, fixed.Q30),
		B0:    fixed.FromFloat(s.B0*scale, fixed.Q30),
		Shift: int32(-shift),
		Gain:  fixed.One(fixed.Q14),
	}, nil
}

// Dequantize returns the floating-point section a record implements,
// including its output shift and gain.
func Dequantize(c iir.Coefficients) Section {
	g := fixed.ToFloat(c.Gain, fixed.Q14) * math.Ldexp(1, -int(c.Shift))
	return Section{
		B0: fixed.ToFloat(c.B0, fixed.Q30) * g,
		B1: fixed.ToFloat(c.B1, fixed.Q30) * g,
		B2: fixed.ToFloat(c.B2, fixed.Q30) * g,
		A1: -fixed.ToFloat(c.A1, fixed.Q30),
		A2: -fixed.ToFloat(c.A2, fixed.Q30),
	}
}

// Response designs one configuration response for the ascending crossover
// points freqs. The number of bands is len(freqs)+1.
func Response(freqs []float64, sampleRate float64) (config.Response, error) {
	bands := len(freqs) + 1
	if bands < topology.MinBands || bands > topology.MaxBands {
		return config.Response{}, fmt.Errorf("%w: %d", ErrSplit, len(freqs))
	}
	if !slices.IsSorted(freqs) || len(slices.Compact(slices.Clone(freqs))) != len(freqs) {
		return config.Response{}, fmt.Errorf("%w: points must be strictly ascending: %v", ErrFrequency, freqs)
	}

	records := make([]iir.Coefficients, 0, 2*topology.LR4Count(bands))
	for i := range topology.LR4Count(bands) {
		f := freqs[topology.CrossoverIndex(bands, i)]

		lp, err := designQuantized(Lowpass, f, sampleRate)
		if err != nil {
			return config.Response{}, err
		}
		hp, err := designQuantized(Highpass, f, sampleRate)
		if err != nil {
			return config.Response{}, err
		}
		records = append(records, lp, hp)
	}
	return config.Response{LR4: records}, nil
}

func designQuantized(fn func(float64, float64) (Section, error), freq, sampleRate float64) (iir.Coefficients, error) {
	s, err := fn(freq, sampleRate)
	if err != nil {
		return iir.Coefficients{}, err
	}
	return Quantize(s)
}

// Params describes a configuration to design.
type Params struct {
	// SampleRate in Hz.
	SampleRate float64

	// Frequencies lists the crossover points in ascending order.
	Frequencies []float64

	// Channels is the number of configured channels; all share one response.
	Channels int

	// Sinks lists the pipeline ID each band is routed to. When empty, band j
	// goes to pipeline j.
	Sinks []int32
}

// Build designs and encodes a complete configuration blob.
func Build(p Params) ([]byte, error) {
	resp, err := Response(p.Frequencies, p.SampleRate)
	if err != nil {
		return nil, err
	}

	bands := len(p.Frequencies) + 1
	sinks := p.Sinks
	if len(sinks) == 0 {
		sinks = make([]int32, bands)
		for i := range sinks {
			sinks[i] = int32(i)
		}
	}
	if len(sinks) != bands {
		return nil, fmt.Errorf("%w: %d sinks for %d bands", ErrSplit, len(sinks), bands)
	}

	cfg := &config.Crossover{
		SinkAssignment:     sinks,
		ResponseAssignment: make([]int32, max(p.Channels, 1)),
		Responses:          []config.Response{resp},
	}
	blob := config.Encode(cfg)

	// Round-trip through the parser so callers only ever see valid blobs.
	if _, err := config.Parse(blob, config.MaxChannels); err != nil {
		return nil, err
	}
	return blob, nil
}
