// Package analysis measures crossover behaviour: band impulse responses from
// the fixed-point engine, their spectra and band levels.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/simd/c128"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/fixed"
	"github.com/tphakala/go-audio-crossover/internal/simdops"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// impulseLevel is the Q1.31 amplitude of the test impulse (0.5 full scale),
// leaving headroom for band peaking.
const impulseLevel = 1 << 30

// impulseGain maps an impulseLevel response back to unit scale.
const impulseGain = float64(1<<31) / impulseLevel

// minDB floors magnitudes so silent bins stay finite.
const minDB = -300.0

// ErrResponse indicates an invalid response index.
var ErrResponse = errors.New("response index out of range")

// ImpulseResponses runs a unit impulse of n samples through response resp of
// cfg and returns one float response per band, scaled so an identity section
// yields 1.0 at sample 0.
func ImpulseResponses(cfg *config.Crossover, resp, n int) ([][]float64, error) {
	if resp < 0 || resp >= len(cfg.Responses) {
		return nil, fmt.Errorf("%w: %d of %d", ErrResponse, resp, len(cfg.Responses))
	}

	split, err := topology.Select(cfg.Bands())
	if err != nil {
		return nil, err
	}

	var ch topology.Channel
	for i := range topology.LR4Count(cfg.Bands()) {
		ch.Lowpass[i].Bind(cfg.Lowpass(resp, i))
		ch.Highpass[i].Bind(cfg.Highpass(resp, i))
	}

	bands := make([][]float64, cfg.Bands())
	for b := range bands {
		bands[b] = make([]float64, n)
	}

	var out [topology.MaxBands]int32
	for i := range n {
		var x int32
		if i == 0 {
			x = impulseLevel
		}
		split(&ch, x, &out)
		for b := range bands {
			bands[b][i] = fixed.ToFloat(out[b], fixed.Q31)
		}
	}
	ops := simdops.For[float64]()
	for _, b := range bands {
		ops.Scale(b, b, impulseGain)
	}
	return bands, nil
}

// Spectrum returns the size/2+1 bin FFT of x zero-padded (or truncated) to size.
func Spectrum(x []float64, size int) []complex128 {
	padded := make([]float64, size)
	copy(padded, x)
	return fourier.NewFFT(size).Coefficients(nil, padded)
}

// Cascade multiplies two spectra bin by bin into dst.
func Cascade(dst, a, b []complex128) {
	c128.Mul(dst, a, b)
}

// MagnitudeDB converts a spectrum to decibels.
func MagnitudeDB(spec []complex128) []float64 {
	db := make([]float64, len(spec))
	for i, v := range spec {
		db[i] = DB(cmplx.Abs(v))
	}
	return db
}

// DB converts a linear magnitude to decibels.
func DB(mag float64) float64 {
	if mag <= 0 {
		return minDB
	}
	return max(20*math.Log10(mag), minDB)
}

// BinFrequency returns the centre frequency of bin k of a size-point FFT.
func BinFrequency(k, size int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(size)
}

// FrequencyBin returns the bin nearest to freq for a size-point FFT.
func FrequencyBin(freq float64, size int, sampleRate float64) int {
	return int(math.Round(freq * float64(size) / sampleRate))
}

// Sum adds band signals sample by sample.
func Sum(bands [][]float64) []float64 {
	if len(bands) == 0 {
		return nil
	}
	out := make([]float64, len(bands[0]))
	for _, b := range bands {
		for i := range min(len(out), len(b)) {
			out[i] += b[i]
		}
	}
	return out
}

// RMS returns the root-mean-square level of x.
func RMS[F simdops.Float](x []F) F {
	if len(x) == 0 {
		return 0
	}
	return F(math.Sqrt(float64(simdops.Energy(x)) / float64(len(x))))
}

// DCGain returns the DC gain of the system with impulse response h.
func DCGain(h []float64) float64 {
	return simdops.For[float64]().Sum(h)
}
