package crossover

import (
	"fmt"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/design"
)

// Design builds a configuration blob with one LR4 response at the ascending
// crossover frequencies freqs, shared by channels channels. Band j is routed
// to pipeline j.
func Design(sampleRate float64, channels int, freqs ...float64) ([]byte, error) {
	blob, err := design.Build(design.Params{
		SampleRate:  sampleRate,
		Frequencies: freqs,
		Channels:    channels,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return blob, nil
}

// DesignForSinks is like Design but routes band j to pipeline sinks[j].
func DesignForSinks(sampleRate float64, channels int, sinks []int32, freqs ...float64) ([]byte, error) {
	blob, err := design.Build(design.Params{
		SampleRate:  sampleRate,
		Frequencies: freqs,
		Channels:    channels,
		Sinks:       sinks,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return blob, nil
}

// SplitInterleaved runs a whole interleaved buffer through a fresh filter
// configured with blob and returns one interleaved buffer per band.
func SplitInterleaved(samples []int32, format Format, channels int, blob []byte) ([][]int32, error) {
	cfg, err := config.Parse(blob, MaxChannels)
	if err != nil {
		return nil, err
	}

	f, err := New(nil)
	if err != nil {
		return nil, err
	}
	if err := f.Configure(StreamParams{Format: format, Channels: channels}); err != nil {
		return nil, err
	}
	if err := f.SetConfig(blob); err != nil {
		return nil, err
	}

	period := DefaultPeriodFrames
	source := NewStream(-1, format, channels, period)
	sinks := make([]*Stream, cfg.Bands())
	for b := range sinks {
		sinks[b] = NewStream(cfg.SinkAssignment[b], format, channels, period)
	}

	total := len(samples) / channels
	out := make([][]int32, len(sinks))
	for b := range out {
		out[b] = make([]int32, 0, total*channels)
	}
	buf := make([]int32, period*channels)

	for written := 0; written < total; {
		written += source.Write(samples[written*channels : total*channels])
		if _, err := f.Process(source, sinks); err != nil {
			return nil, err
		}
		for b, s := range sinks {
			n := s.Read(buf)
			out[b] = append(out[b], buf[:n*channels]...)
		}
	}
	return out, nil
}

// Interleave merges planar channels into one interleaved buffer. All
// channels must have the same length as the first.
func Interleave(planar [][]int32) []int32 {
	if len(planar) == 0 {
		return nil
	}
	frames := len(planar[0])
	out := make([]int32, frames*len(planar))
	for ch, p := range planar {
		for i := range frames {
			out[i*len(planar)+ch] = p[i]
		}
	}
	return out
}

// Deinterleave splits an interleaved buffer into planar channels. A trailing
// partial frame is dropped.
func Deinterleave(interleaved []int32, channels int) [][]int32 {
	if channels < 1 {
		return nil
	}
	frames := len(interleaved) / channels
	out := make([][]int32, channels)
	for ch := range out {
		out[ch] = make([]int32, frames)
		for i := range frames {
			out[ch][i] = interleaved[i*channels+ch]
		}
	}
	return out
}
