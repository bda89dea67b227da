// Command crossover-blob designs and inspects crossover configuration blobs.
//
// Usage:
//
//	crossover-blob -freqs 2500 -o xover.bin             # 2-way, stereo, 48 kHz
//	crossover-blob -freqs 300,3000 -sinks 4,5,6 -format hex
//	crossover-blob -inspect xover.bin
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

	crossover "github.com/tphakala/go-audio-crossover"
	"github.com/tphakala/go-audio-crossover/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("crossover-blob", flag.ContinueOnError)
	var (
		freqs    = fs.String("freqs", defaultFreqs, "Comma-separated crossover frequencies in Hz (1 to 3 values)")
		rate     = fs.Float64("rate", defaultSampleRate, "Sample rate in Hz")
		channels = fs.Int("channels", defaultChannels, "Number of configured channels")
		sinks    = fs.String("sinks", "", "Comma-separated pipeline IDs per band (default: 0..bands-1)")
		output   = fs.String("o", "", "Output file (default: stdout)")
		format   = fs.String("format", formatBinary, "Output format: bin, hex, c")
		inspect  = fs.String("inspect", "", "Describe an existing blob instead of designing one")
		verbose  = fs.Bool("v", false, "Verbose output")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *inspect != "" {
		blob, err := os.ReadFile(*inspect)
		if err != nil {
			return fmt.Errorf("failed to read blob: %w", err)
		}
		cfg, err := config.Parse(blob, crossover.MaxChannels)
		if err != nil {
			return err
		}
		return describe(stdout, cfg, *rate)
	}

	f, err := parseFloats(*freqs)
	if err != nil {
		return err
	}
	s, err := parseIDs(*sinks)
	if err != nil {
		return err
	}

	blob, err := crossover.DesignForSinks(*rate, *channels, s, f...)
	if err != nil {
		return err
	}
	if *verbose {
		cfg, err := config.Parse(blob, crossover.MaxChannels)
		if err != nil {
			return err
		}
		if err := describe(os.Stderr, cfg, *rate); err != nil {
			return err
		}
	}

	w := stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = file.Close() }()
		w = file
	}
	return writeBlob(w, blob, *format)
}

// writeBlob writes blob in the requested format.
func writeBlob(w io.Writer, blob []byte, format string) error {
	switch format {
	case formatBinary:
		_, err := w.Write(blob)
		return err
	case formatHex:
		return dump(w, blob, "", " ", "%02x")
	case formatC:
		if _, err := fmt.Fprintf(w, "static const uint8_t crossover_blob[%d] = {\n", len(blob)); err != nil {
			return err
		}
		if err := dump(w, blob, "\t", ",", "0x%02x"); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, "};")
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func dump(w io.Writer, blob []byte, indent, sep, verb string) error {
	for off := 0; off < len(blob); off += bytesPerLine {
		line := blob[off:min(off+bytesPerLine, len(blob))]
		parts := make([]string, len(line))
		for i, b := range line {
			parts[i] = fmt.Sprintf(verb, b)
		}
		text := strings.Join(parts, sep)
		if sep == "," {
			text += ","
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, text); err != nil {
			return err
		}
	}
	return nil
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

func parseIDs(s string) ([]int32, error) {
	var out []int32
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid pipeline ID %q: %w", field, err)
		}
		out = append(out, int32(v))
	}
	return out, nil
}
