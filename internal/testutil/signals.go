package testutil

import (
	"math"
	"math/rand/v2"
)

// fullScaleQ31 is the largest positive Q1.31 sample as float.
const fullScaleQ31 = float64(math.MaxInt32)

// Impulse returns n samples with amplitude at index 0 and zeros elsewhere.
func Impulse(n int, amplitude int32) []int32 {
	s := make([]int32, n)
	if n > 0 {
		s[0] = amplitude
	}
	return s
}

// SineQ31 returns n samples of a sine at freq Hz, amplitude in (0, 1] of full
// scale, as Q1.31 integers.
func SineQ31(n int, freq, sampleRate, amplitude float64) []int32 {
	s := make([]int32, n)
	omega := 2 * math.Pi * freq / sampleRate
	for i := range s {
		s[i] = int32(math.Round(amplitude * fullScaleQ31 * math.Sin(omega*float64(i))))
	}
	return s
}

// Noise returns n deterministic pseudo-random samples in [-limit, limit].
func Noise(n int, limit int32, seed uint64) []int32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := make([]int32, n)
	span := int64(limit)*2 + 1
	for i := range s {
		s[i] = int32(rng.Int64N(span) - int64(limit))
	}
	return s
}

// Interleave builds an interleaved frame buffer from per-channel slices of
// equal length.
func Interleave(channels ...[]int32) []int32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]int32, frames*len(channels))
	for ch, data := range channels {
		for i, v := range data {
			out[i*len(channels)+ch] = v
		}
	}
	return out
}

// Deinterleave splits interleaved samples into per-channel slices.
func Deinterleave(data []int32, channels int) [][]int32 {
	frames := len(data) / channels
	out := make([][]int32, channels)
	for ch := range channels {
		out[ch] = make([]int32, frames)
		for i := range frames {
			out[ch][i] = data[i*channels+ch]
		}
	}
	return out
}
