package crossover

import "github.com/tphakala/go-audio-crossover/internal/config"

// routing maps output bands to sink indexes for one processing call. It is
// comparable so a change can be detected without allocation.
type routing struct {
	sink  [MaxBands]int // sink index per band, noSink if none
	bands int

	ids       [MaxSinks]int32
	unmatched [MaxSinks]bool
	duplicate [MaxSinks]bool
	sinks     int
}

// route assigns sinks to bands. With a configuration, band j goes to the
// first sink whose pipeline ID equals the band's sink assignment; without
// one, sinks take bands in arrival order.
func route(cfg *config.Crossover, sinks []*Stream) routing {
	r := routing{sinks: len(sinks)}
	for b := range r.sink {
		r.sink[b] = noSink
	}
	for s, sink := range sinks {
		r.ids[s] = sink.PipelineID()
	}

	if cfg == nil {
		r.bands = len(sinks)
		for s := range sinks {
			r.sink[s] = s
		}
		return r
	}

	r.bands = cfg.Bands()
	for s := range sinks {
		band := bandFor(cfg, r.ids[s])
		switch {
		case band < 0:
			r.unmatched[s] = true
		case r.sink[band] != noSink:
			r.duplicate[s] = true
		default:
			r.sink[band] = s
		}
	}
	return r
}

func bandFor(cfg *config.Crossover, id int32) int {
	for b, want := range cfg.SinkAssignment {
		if want == id {
			return b
		}
	}
	return noSink
}

// updateRouteLocked recomputes the routing for sinks and logs warnings when
// the outcome differs from the previous call.
func (f *Filter) updateRouteLocked(sinks []*Stream) {
	r := route(f.active, sinks)
	if f.routed && r == f.route {
		return
	}
	f.route = r
	f.routed = true

	for s := range r.sinks {
		switch {
		case r.unmatched[s]:
			f.logger.Warn("crossover sink matches no band, it receives nothing",
				"pipeline", r.ids[s])
		case r.duplicate[s]:
			f.logger.Warn("crossover band already claimed by another sink, ignoring",
				"pipeline", r.ids[s])
		}
	}
}
