package main

import (
	"math"
	"math/cmplx"

	"github.com/tphakala/go-audio-crossover/internal/analysis"
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/design"
	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// Table frequency range
const (
	minTableFreq  = 20.0
	maxTableRatio = 0.45 // of the sample rate
)

// bandResponse holds the measured spectra of one response.
type bandResponse struct {
	size       int
	sampleRate float64
	bands      [][]float64 // dB per bin, per band
	sum        []float64   // dB per bin of the band sum
	rms        []float64   // impulse response RMS per band
	dc         []float64   // DC gain per band
}

// measure runs an impulse through response resp and transforms every band.
func measure(cfg *config.Crossover, resp, size int, sampleRate float64) (*bandResponse, error) {
	impulses, err := analysis.ImpulseResponses(cfg, resp, size)
	if err != nil {
		return nil, err
	}

	r := &bandResponse{size: size, sampleRate: sampleRate}
	for _, x := range impulses {
		r.bands = append(r.bands, analysis.MagnitudeDB(analysis.Spectrum(x, size)))
		r.rms = append(r.rms, analysis.RMS(x))
		r.dc = append(r.dc, analysis.DCGain(x))
	}
	r.sum = analysis.MagnitudeDB(analysis.Spectrum(analysis.Sum(impulses), size))
	return r, nil
}

// row is one line of the magnitude table.
type row struct {
	freq  float64
	bands []float64
	sum   float64
}

// table samples r at points log-spaced frequencies.
func (r *bandResponse) table(points int) []row {
	hi := r.sampleRate * maxTableRatio
	rows := make([]row, 0, points)
	for i := range points {
		f := minTableFreq
		if points > 1 {
			f = minTableFreq * math.Pow(hi/minTableFreq, float64(i)/float64(points-1))
		}
		k := analysis.FrequencyBin(f, r.size, r.sampleRate)
		out := row{freq: analysis.BinFrequency(k, r.size, r.sampleRate), sum: r.sum[k]}
		for _, b := range r.bands {
			out.bands = append(out.bands, b[k])
		}
		rows = append(rows, out)
	}
	return rows
}

// sumDeviation returns the largest distance of the band sum from 0 dB
// between minTableFreq and the table ceiling.
func (r *bandResponse) sumDeviation() float64 {
	lo := analysis.FrequencyBin(minTableFreq, r.size, r.sampleRate)
	hi := analysis.FrequencyBin(r.sampleRate*maxTableRatio, r.size, r.sampleRate)
	dev := 0.0
	for k := lo; k <= hi; k++ {
		dev = max(dev, math.Abs(r.sum[k]))
	}
	return dev
}

// crossoverPoint describes where the low and high halves of one LR4 pair meet.
type crossoverPoint struct {
	pair  int
	freq  float64
	level float64 // dB of each half at freq
}

// crossovers evaluates the dequantized LR4 pairs of response resp and finds
// the bin where the lowpass and highpass magnitudes are closest.
func crossovers(cfg *config.Crossover, resp, size int, sampleRate float64) []crossoverPoint {
	bins := size/2 + 1
	points := make([]crossoverPoint, 0, topology.LR4Count(cfg.Bands()))
	for i := range topology.LR4Count(cfg.Bands()) {
		lp := lr4Spectrum(cfg.Lowpass(resp, i), bins, size, sampleRate)
		hp := lr4Spectrum(cfg.Highpass(resp, i), bins, size, sampleRate)

		best, bestDiff := 1, math.Inf(1)
		for k := 1; k < bins; k++ {
			diff := math.Abs(cmplx.Abs(lp[k]) - cmplx.Abs(hp[k]))
			if diff < bestDiff {
				best, bestDiff = k, diff
			}
		}
		points = append(points, crossoverPoint{
			pair:  i,
			freq:  analysis.BinFrequency(best, size, sampleRate),
			level: analysis.DB(cmplx.Abs(lp[best])),
		})
	}
	return points
}

// lr4Spectrum returns the response of c cascaded with itself.
func lr4Spectrum(c *iir.Coefficients, bins, size int, sampleRate float64) []complex128 {
	s := design.Dequantize(*c)
	h := make([]complex128, bins)
	for k := range h {
		h[k] = s.Response(analysis.BinFrequency(k, size, sampleRate), sampleRate)
	}
	out := make([]complex128, bins)
	analysis.Cascade(out, h, h)
	return out
}
