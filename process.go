package crossover

import (
	"fmt"

	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// Process consumes frames from source and writes each band to its routed
// sink. A pending configuration is swapped in before any sample is touched,
// so one call always runs on a single configuration. It returns the number
// of frames processed, which is the smaller of the frames available in
// source and the free space of every routed sink.
func (f *Filter) Process(source *Stream, sinks []*Stream) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.configured {
		return 0, ErrNotConfigured
	}
	if len(sinks) > MaxSinks {
		return 0, fmt.Errorf("%w: %d, max %d", ErrTooManySinks, len(sinks), MaxSinks)
	}
	if err := f.checkStream(source); err != nil {
		return 0, err
	}
	for _, s := range sinks {
		if err := f.checkStream(s); err != nil {
			return 0, err
		}
	}

	if cfg, changed := f.slot.Swap(); changed {
		if err := f.applyLocked(cfg); err != nil {
			return 0, err
		}
		f.logger.Debug("crossover configuration applied", "bands", f.bandsLocked())
	}
	f.updateRouteLocked(sinks)

	frames := source.AvailableFrames()
	for b := range f.route.bands {
		if s := f.route.sink[b]; s != noSink {
			frames = min(frames, sinks[s].FreeFrames())
		}
	}
	if frames == 0 {
		return 0, nil
	}

	if f.active == nil {
		f.bypass(source, sinks, frames)
	} else {
		f.filter(source, sinks, frames)
	}

	source.Consume(frames)
	for b := range f.route.bands {
		if s := f.route.sink[b]; s != noSink {
			sinks[s].Produce(frames)
		}
	}
	return frames, nil
}

func (f *Filter) checkStream(s *Stream) error {
	if s.Format() != f.params.Format || s.Channels() != f.params.Channels {
		return fmt.Errorf("%w: pipeline %d is %s/%d, want %s/%d", ErrStreamMismatch,
			s.PipelineID(), s.Format(), s.Channels(), f.params.Format, f.params.Channels)
	}
	return nil
}

// bypass copies container values verbatim to every routed sink.
func (f *Filter) bypass(source *Stream, sinks []*Stream, frames int) {
	for b := range f.route.bands {
		s := f.route.sink[b]
		if s == noSink {
			continue
		}
		for i := range frames {
			for ch := range f.params.Channels {
				sinks[s].SetSample(i, ch, source.Sample(i, ch))
			}
		}
	}
}

// filter runs the band split of every channel.
func (f *Filter) filter(source *Stream, sinks []*Stream, frames int) {
	bands := f.route.bands
	decode, encode := f.codec.Decode, f.codec.Encode

	for ch := range f.params.Channels {
		state := f.bank.Channel(ch)
		bypassed := f.bank.Bypassed(ch)

		for i := range frames {
			x := decode(source.Sample(i, ch))
			if bypassed {
				topology.Passthrough(x, &f.out, bands)
			} else {
				f.split(state, x, &f.out)
			}
			for b := range bands {
				if s := f.route.sink[b]; s != noSink {
					sinks[s].SetSample(i, ch, encode(f.out[b]))
				}
			}
		}
	}
}
