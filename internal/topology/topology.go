// Package topology selects and runs the band-split graph of a crossover
// channel. A channel holds up to three lowpass and three highpass LR4
// filters; the selected Splitter routes one input sample through them and
// produces one sample per band.
//
// 2-way:
//
//	x --o-- LP0 --> band0
//	    o-- HP0 --> band1
//
// 3-way:
//
//	x --o-- LP0 --o-- LP1 --> band0
//	    |         o-- HP1 --> band1
//	    o-- HP0 -----------> band2
//
// 4-way:
//
//	x --o-- LP1 --o-- LP0 --> band0
//	    |         o-- HP0 --> band1
//	    o-- HP1 --o-- LP2 --> band2
//	              o-- HP2 --> band3
package topology

import (
	"fmt"

	"github.com/tphakala/go-audio-crossover/internal/iir"
)

// Band and filter limits.
const (
	// MinBands is the smallest supported split.
	MinBands = 2

	// MaxBands is the largest supported split.
	MaxBands = 4

	// MaxLR4 is the number of lowpass (and highpass) LR4 filters per channel.
	MaxLR4 = MaxBands - 1
)

// ErrUnsupportedBands is returned by Select for a band count outside 2..4.
var ErrUnsupportedBands = fmt.Errorf("band count must be %d-%d", MinBands, MaxBands)

// Channel is the filter state of one audio channel.
type Channel struct {
	Lowpass  [MaxLR4]iir.LR4
	Highpass [MaxLR4]iir.LR4
}

// Reset returns every LR4 of the channel to pass-through.
func (c *Channel) Reset() {
	for i := range MaxLR4 {
		c.Lowpass[i].Reset()
		c.Highpass[i].Reset()
	}
}

// Bound reports whether any LR4 of the channel has coefficients attached.
func (c *Channel) Bound() bool {
	for i := range MaxLR4 {
		if c.Lowpass[i].Bound() || c.Highpass[i].Bound() {
			return true
		}
	}
	return false
}

// Splitter computes the band outputs of one Q1.31 input sample. Only the first
// Bands() entries of out are written.
type Splitter func(ch *Channel, in int32, out *[MaxBands]int32)

// LR4Count returns how many lowpass/highpass pairs a split into bands uses.
func LR4Count(bands int) int {
	return bands - 1
}

// Select returns the splitter for the given band count.
func Select(bands int) (Splitter, error) {
	switch bands {
	case 2:
		return split2, nil
	case 3:
		return split3, nil
	case 4:
		return split4, nil
	default:
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedBands, bands)
	}
}

func split2(ch *Channel, in int32, out *[MaxBands]int32) {
	out[0] = ch.Lowpass[0].Process(in)
	out[1] = ch.Highpass[0].Process(in)
}

func split3(ch *Channel, in int32, out *[MaxBands]int32) {
	lo := ch.Lowpass[0].Process(in)
	out[2] = ch.Highpass[0].Process(in)
	out[0] = ch.Lowpass[1].Process(lo)
	out[1] = ch.Highpass[1].Process(lo)
}

func split4(ch *Channel, in int32, out *[MaxBands]int32) {
	lo := ch.Lowpass[1].Process(in)
	hi := ch.Highpass[1].Process(in)
	out[0] = ch.Lowpass[0].Process(lo)
	out[1] = ch.Highpass[0].Process(lo)
	out[2] = ch.Lowpass[2].Process(hi)
	out[3] = ch.Highpass[2].Process(hi)
}

// Passthrough copies the input to the first bands outputs.
func Passthrough(in int32, out *[MaxBands]int32, bands int) {
	for i := range bands {
		out[i] = in
	}
}

// crossoverIndex maps each LR4 pair of a split to the crossover point it
// sits at, counting crossover points from the lowest frequency.
var crossoverIndex = [MaxBands + 1][]int{
	2: {0},
	3: {1, 0},
	4: {0, 1, 2},
}

// CrossoverIndex returns which of the bands-1 ascending crossover points the
// i-th lowpass/highpass pair of a split into bands implements.
func CrossoverIndex(bands, i int) int {
	return crossoverIndex[bands][i]
}
