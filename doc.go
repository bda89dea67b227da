// Package crossover provides a fixed-point multi-way audio crossover.
//
// One interleaved PCM stream is split into two to four frequency bands with
// cascaded Linkwitz-Riley 4th order (LR4) filters. Every LR4 is two Direct
// Form II Transposed biquads sharing one coefficient record, evaluated with
// Q1.31 samples, Q2.30 coefficients and a Q2.14 output gain, so output is
// bit-exact across platforms.
//
// # Features
//
//   - 2, 3 and 4-way splits selected by the configuration
//   - Per-channel responses, with a short configuration extended to wider
//     streams by reusing its last channel
//   - S16_LE, S24_4LE and S32_LE streams
//   - Live reconfiguration swapped in at period boundaries
//   - Coefficient design from crossover frequencies
//
// # Quick Start
//
//	blob, err := crossover.Design(crossover.RateDAT, 2, 120, 2500)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := crossover.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Configure(crossover.StreamParams{Format: crossover.FormatS16LE, Channels: 2}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.SetConfig(blob); err != nil {
//	    log.Fatal(err)
//	}
//
//	source := crossover.NewStream(100, crossover.FormatS16LE, 2, 1024)
//	sinks := []*crossover.Stream{
//	    crossover.NewStream(0, crossover.FormatS16LE, 2, 1024),
//	    crossover.NewStream(1, crossover.FormatS16LE, 2, 1024),
//	    crossover.NewStream(2, crossover.FormatS16LE, 2, 1024),
//	}
//	for period := range periods {
//	    source.Write(period)
//	    if _, err := f.Process(source, sinks); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Topologies
//
//	2-way:  x -> LP0 -> band 0
//	        x -> HP0 -> band 1
//
//	3-way:  x -> LP0 -> LP1 -> band 0
//	                 -> HP1 -> band 1
//	        x -> HP0 -> band 2
//
//	4-way:  x -> LP1 -> LP0 -> band 0
//	                 -> HP0 -> band 1
//	        x -> HP1 -> LP2 -> band 2
//	                 -> HP2 -> band 3
//
// # Configuration Blob
//
// A configuration is a little-endian blob: a 32 byte header {size,
// channels_in_config, number_of_responses, num_sinks, reserved[4]}, the
// band-to-pipeline sink assignment, the channel-to-response assignment and
// the coefficient records {a2, a1, b2, b1, b0, shift, gain} of every
// response in the order lp0, hp0, lp1, hp1, lp2, hp2. A channel assigned a
// negative or unknown response passes audio through unfiltered.
//
// # Routing
//
// Band j is written to the sink whose pipeline ID equals the j-th sink
// assignment. Without a configuration every sink receives the input
// unchanged, in arrival order.
//
// # Thread Safety
//
// [Filter.SetConfig], [Filter.GetConfig] and [Filter.HandleCommand] may be
// called from a control goroutine while another goroutine calls
// [Filter.Process]. At most one update can be pending; a second one is
// rejected with [ErrConfigBusy] until the next Process call applies it.
package crossover
