// Command crossover-wav splits a WAV file into one WAV file per crossover band.
//
// Usage:
//
//	crossover-wav -freqs 2500 input.wav                 # 2-way: input_band0.wav, input_band1.wav
//	crossover-wav -freqs 300,3000 -out split input.wav  # 3-way: split_band0.wav ...
//	crossover-wav -blob xover.bin input.wav             # use a prebuilt configuration blob
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	"github.com/go-audio/audio"
	"golang.org/x/sync/errgroup"

	crossover "github.com/tphakala/go-audio-crossover"
	"github.com/tphakala/go-audio-crossover/internal/pcm"
	"github.com/tphakala/simd/cpu"
)

const (
	// Frames read from the input per chunk
	bufferFrames = 16384

	progressInterval = 10 // Print progress every N%
	percentScale     = 100
	minRequiredArgs  = 1

	defaultFrequencies = "2500"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	freqs := flag.String("freqs", defaultFrequencies, "Comma-separated crossover frequencies in Hz (1 to 3 values)")
	blobPath := flag.String("blob", "", "Read the configuration blob from file instead of designing one")
	out := flag.String("out", "", "Output prefix (default: input path without extension)")
	format := flag.String("format", "", "Processing and output format: s16le, s24le, s32le (default: input format)")
	period := flag.Int("period", crossover.DefaultPeriodFrames, "Frames processed per period")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -freqs 2500 music.wav          # Woofer/tweeter split\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -freqs 300,3000 music.wav      # 3-way split\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -blob xover.bin music.wav      # Prebuilt configuration\n", os.Args[0])
		return errors.New("insufficient arguments")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	prefix := *out
	if prefix == "" {
		prefix = trimExt(inputPath)
	}

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output prefix: %s", prefix)
		log.Printf("Period: %d frames", *period)
		log.Printf("CPU: %s", cpu.Info())
	}

	start := time.Now()
	stats, err := splitWAV(splitOptions{
		inputPath: inputPath,
		prefix:    prefix,
		freqs:     *freqs,
		blobPath:  *blobPath,
		format:    *format,
		period:    *period,
		verbose:   *verbose,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Split %s into %d bands\n", filepath.Base(inputPath), len(stats.outputs))
	for _, p := range stats.outputs {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("  %d Hz, %d channels, %d-bit, %d frames\n",
		stats.rate, stats.channels, stats.bitDepth, stats.frames)
	if secs := elapsed.Seconds(); secs > 0 && stats.rate > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(stats.frames)/float64(stats.rate)/secs)
	}
	return nil
}

type splitOptions struct {
	inputPath string
	prefix    string
	freqs     string
	blobPath  string
	format    string
	period    int
	verbose   bool
}

type splitStats struct {
	rate     int
	channels int
	bitDepth int
	frames   int64
	outputs  []string
}

func splitWAV(opts splitOptions) (stats *splitStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(opts.inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. Load or design the configuration
	blob, err := loadBlob(opts.blobPath, opts.freqs, float64(input.rate), input.channels)
	if err != nil {
		return nil, err
	}

	// 3. Create the filter and its streams
	format := input.format
	if opts.format != "" {
		if format, err = pcm.ParseFormat(opts.format); err != nil {
			return nil, err
		}
	}
	convert, err := converter(input.format, format)
	if err != nil {
		return nil, err
	}
	proc, err := newBandProcessor(blob, format, input.channels, opts.period)
	if err != nil {
		return nil, err
	}
	proc.convert = convert
	if opts.verbose {
		log.Printf("Processing format: %s", format)
	}

	// 4. Create one output per band
	outputs, err := createBandOutputs(opts.prefix, proc.bands(), input.rate, format.BitDepth(), input.channels)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := outputs.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &splitStats{
		rate:     input.rate,
		channels: input.channels,
		bitDepth: format.BitDepth(),
		outputs:  outputs.paths(),
	}
	progress := newProgressTracker(input.totalFrames, opts.verbose, isTerminal(os.Stderr))

	buf := &audio.IntBuffer{
		Data:   make([]int, bufferFrames*input.channels),
		Format: input.audioFormat,
	}

	// 5. Main processing loop
	for {
		n, err := input.decoder.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}
		frames := n / input.channels
		stats.frames += int64(frames)

		bands, err := proc.process(buf.Data[:frames*input.channels])
		if err != nil {
			return nil, err
		}
		if err := outputs.WriteBands(bands); err != nil {
			return nil, err
		}
		progress.reportIfNeeded(stats.frames)
	}
	progress.finish()

	return stats, nil
}

// writeBandsConcurrently runs write once per band and returns the first error.
func writeBandsConcurrently(n int, write func(band int) error) error {
	var g errgroup.Group
	for b := range n {
		g.Go(func() error { return write(b) })
	}
	return g.Wait()
}
