// Command analyze-crossover prints the measured magnitude response of every
// band of a crossover configuration.
//
// Usage:
//
//	analyze-crossover -freqs 300,3000
//	analyze-crossover -blob xover.bin -rate 44100 -points 40
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	crossover "github.com/tphakala/go-audio-crossover"
	"github.com/tphakala/go-audio-crossover/internal/config"
)

const (
	defaultSampleRate = 48000.0
	defaultFFTSize    = 8192
	defaultPoints     = 24
	defaultChannels   = 1
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze-crossover", flag.ContinueOnError)
	var (
		freqs    = fs.String("freqs", "2500", "Comma-separated crossover frequencies in Hz")
		blobPath = fs.String("blob", "", "Analyze a configuration blob file instead of designing one")
		rate     = fs.Float64("rate", defaultSampleRate, "Sample rate in Hz")
		resp     = fs.Int("resp", 0, "Response index to analyze")
		size     = fs.Int("fft", defaultFFTSize, "FFT size (also the impulse response length)")
		points   = fs.Int("points", defaultPoints, "Number of table frequencies")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 2 || *points < 1 {
		return fmt.Errorf("invalid fft size %d or point count %d", *size, *points)
	}

	cfg, err := loadConfig(*blobPath, *freqs, *rate)
	if err != nil {
		return err
	}

	r, err := measure(cfg, *resp, *size, *rate)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "=== Crossover response %d: %d bands at %g Hz ===\n\n", *resp, cfg.Bands(), *rate)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"freq Hz"}
	for b := range cfg.Bands() {
		header = append(header, fmt.Sprintf("band%d dB", b))
	}
	header = append(header, "sum dB")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, row := range r.table(*points) {
		fields := []string{strconv.FormatFloat(row.freq, 'f', 1, 64)}
		for _, db := range row.bands {
			fields = append(fields, strconv.FormatFloat(db, 'f', 2, 64))
		}
		fields = append(fields, strconv.FormatFloat(row.sum, 'f', 2, 64))
		fmt.Fprintln(tw, strings.Join(fields, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nCrossover points:")
	for _, p := range crossovers(cfg, *resp, *size, *rate) {
		fmt.Fprintf(stdout, "  LR4 pair %d: %.1f Hz at %.2f dB\n", p.pair, p.freq, p.level)
	}

	fmt.Fprintln(stdout, "\nBand impulse RMS / DC gain:")
	for b, v := range r.rms {
		fmt.Fprintf(stdout, "  band%d: %.6f / %.6f\n", b, v, r.dc[b])
	}
	fmt.Fprintf(stdout, "\nSum deviation from flat: %.3f dB\n", r.sumDeviation())
	return nil
}

func loadConfig(path, freqs string, sampleRate float64) (*config.Crossover, error) {
	var blob []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read blob: %w", err)
		}
		blob = b
	} else {
		f, err := parseFloats(freqs)
		if err != nil {
			return nil, err
		}
		blob, err = crossover.Design(sampleRate, defaultChannels, f...)
		if err != nil {
			return nil, err
		}
	}
	return config.Parse(blob, crossover.MaxChannels)
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", field, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errors.New("no crossover frequencies given")
	}
	return out, nil
}
