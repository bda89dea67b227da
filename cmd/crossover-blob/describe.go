package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/design"
	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// describe prints the header, the routing tables and every coefficient
// record of cfg. Magnitudes at the section corner are evaluated at sampleRate.
func describe(w io.Writer, cfg *config.Crossover, sampleRate float64) error {
	h := cfg.Header()
	fmt.Fprintf(w, "Crossover configuration (%d bytes)\n", h.Size)
	fmt.Fprintf(w, "  Channels:  %d\n", h.ChannelsInConfig)
	fmt.Fprintf(w, "  Responses: %d\n", h.NumberOfResponses)
	fmt.Fprintf(w, "  Bands:     %d\n", h.NumSinks)
	fmt.Fprintf(w, "  Sinks:     %v\n", cfg.SinkAssignment)
	fmt.Fprintf(w, "  Channel responses: %v\n", cfg.ResponseAssignment)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nresp\tsection\tb0\tb1\tb2\ta1\ta2\tshift\tgain")
	for r := range cfg.Responses {
		for i := range topology.LR4Count(cfg.Bands()) {
			writeRecord(tw, r, fmt.Sprintf("lp%d", i), cfg.Lowpass(r, i))
			writeRecord(tw, r, fmt.Sprintf("hp%d", i), cfg.Highpass(r, i))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if sampleRate > 0 {
		for r := range cfg.Responses {
			for i := range topology.LR4Count(cfg.Bands()) {
				lp := design.Dequantize(*cfg.Lowpass(r, i))
				fmt.Fprintf(w, "  response %d lp%d: DC gain %.4f\n", r, i, real(lp.Response(0, sampleRate)))
			}
		}
	}
	return nil
}

func writeRecord(w io.Writer, resp int, name string, c *iir.Coefficients) {
	s := design.Dequantize(*c)
	fmt.Fprintf(w, "%d\t%s\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%d\t%d\n",
		resp, name, s.B0, s.B1, s.B2, s.A1, s.A2, c.Shift, c.Gain)
}
