package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/term"

	crossover "github.com/tphakala/go-audio-crossover"
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/pcm"
)

// wavPCMFormat is the WAVE_FORMAT_PCM tag.
const wavPCMFormat = 1

var errNoProgress = errors.New("crossover made no progress")

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      crossover.Format
	audioFormat *audio.Format
}

// openWAVInput opens a WAV file and checks its sample format is supported.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	audioFormat := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	format, err := pcm.FromBitDepth(bitDepth)
	if err != nil {
		_ = inputFile.Close()
		return nil, err
	}
	if audioFormat.NumChannels < 1 || audioFormat.NumChannels > crossover.MaxChannels {
		_ = inputFile.Close()
		return nil, fmt.Errorf("%w: %d channels", crossover.ErrChannelCountUnsupported, audioFormat.NumChannels)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", audioFormat.SampleRate, audioFormat.NumChannels, bitDepth)
	}

	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        audioFormat.SampleRate,
		channels:    audioFormat.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(audioFormat.SampleRate)),
		format:      format,
		audioFormat: audioFormat,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// parseFrequencies parses a comma-separated list of crossover frequencies.
func parseFrequencies(s string) ([]float64, error) {
	var freqs []float64
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid frequency %q: %w", field, err)
		}
		freqs = append(freqs, f)
	}
	if len(freqs) == 0 {
		return nil, errors.New("no crossover frequencies given")
	}
	return freqs, nil
}

// loadBlob reads the blob at path, or designs one from freqs when path is empty.
func loadBlob(path, freqs string, sampleRate float64, channels int) ([]byte, error) {
	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
		return blob, nil
	}

	f, err := parseFrequencies(freqs)
	if err != nil {
		return nil, err
	}
	return crossover.Design(sampleRate, channels, f...)
}

// bandProcessor pushes interleaved chunks through a crossover filter.
type bandProcessor struct {
	filter   *crossover.Filter
	source   *crossover.Stream
	sinks    []*crossover.Stream
	channels int

	// convert maps input container values to the processing format; nil
	// when they match.
	convert func(int32) int32

	in  []int32
	tmp []int32
	out [][]int
}

func newBandProcessor(blob []byte, format crossover.Format, channels, period int) (*bandProcessor, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: period %d", crossover.ErrInvalidConfig, period)
	}

	f, err := crossover.New(nil)
	if err != nil {
		return nil, err
	}
	if err := f.Configure(crossover.StreamParams{Format: format, Channels: channels}); err != nil {
		return nil, err
	}
	if err := f.SetConfig(blob); err != nil {
		return nil, err
	}

	cfg, err := config.Parse(blob, crossover.MaxChannels)
	if err != nil {
		return nil, err
	}

	sinks := make([]*crossover.Stream, cfg.Bands())
	for b := range sinks {
		sinks[b] = crossover.NewStream(cfg.SinkAssignment[b], format, channels, period)
	}

	return &bandProcessor{
		filter:   f,
		source:   crossover.NewStream(-1, format, channels, period),
		sinks:    sinks,
		channels: channels,
		tmp:      make([]int32, period*channels),
		out:      make([][]int, len(sinks)),
	}, nil
}

func (p *bandProcessor) bands() int { return len(p.sinks) }

// process splits data and returns one interleaved slice per band. The
// returned slices are reused by the next call.
func (p *bandProcessor) process(data []int) ([][]int, error) {
	if cap(p.in) < len(data) {
		p.in = make([]int32, len(data))
	}
	in := p.in[:len(data)]
	for i, v := range data {
		in[i] = int32(v)
	}
	if p.convert != nil {
		for i, v := range in {
			in[i] = p.convert(v)
		}
	}
	for b := range p.out {
		p.out[b] = p.out[b][:0]
	}

	frames := len(in) / p.channels
	for done := 0; done < frames || p.source.AvailableFrames() > 0; {
		wrote := p.source.Write(in[done*p.channels : frames*p.channels])
		done += wrote

		n, err := p.filter.Process(p.source, p.sinks)
		if err != nil {
			return nil, err
		}
		if wrote == 0 && n == 0 {
			return nil, errNoProgress
		}
		for b, s := range p.sinks {
			got := s.Read(p.tmp)
			for _, v := range p.tmp[:got*p.channels] {
				p.out[b] = append(p.out[b], int(v))
			}
		}
	}
	return p.out, nil
}

// converter returns a function mapping container values of from to to, or
// nil when the formats match.
func converter(from, to crossover.Format) (func(int32) int32, error) {
	if from == to {
		return nil, nil
	}
	in, err := pcm.Lookup(from)
	if err != nil {
		return nil, err
	}
	out, err := pcm.Lookup(to)
	if err != nil {
		return nil, err
	}
	return func(v int32) int32 { return out.Encode(in.Decode(v)) }, nil
}

// bandOutputs holds one WAV encoder per band.
type bandOutputs struct {
	names    []string
	files    []*os.File
	encoders []*wav.Encoder
	bufs     []*audio.IntBuffer
}

// bandPath returns the output file name of band b.
func bandPath(prefix string, b int) string {
	return fmt.Sprintf("%s_band%d.wav", prefix, b)
}

// trimExt strips the file extension from path.
func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// createBandOutputs creates the band files. Files already created are closed
// when a later one fails.
func createBandOutputs(prefix string, bands, sampleRate, bitDepth, channels int) (*bandOutputs, error) {
	o := &bandOutputs{}
	format := &audio.Format{NumChannels: channels, SampleRate: sampleRate}
	for b := range bands {
		name := bandPath(prefix, b)
		f, err := os.Create(name)
		if err != nil {
			_ = o.Close()
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		o.names = append(o.names, name)
		o.files = append(o.files, f)
		o.encoders = append(o.encoders, wav.NewEncoder(f, sampleRate, bitDepth, channels, wavPCMFormat))
		o.bufs = append(o.bufs, &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth})
	}
	return o, nil
}

func (o *bandOutputs) paths() []string { return o.names }

// WriteBands writes one chunk per band, encoding the bands concurrently.
func (o *bandOutputs) WriteBands(bands [][]int) error {
	if len(bands) != len(o.encoders) {
		return fmt.Errorf("got %d bands for %d outputs", len(bands), len(o.encoders))
	}
	return writeBandsConcurrently(len(bands), func(b int) error {
		if len(bands[b]) == 0 {
			return nil
		}
		o.bufs[b].Data = bands[b]
		if err := o.encoders[b].Write(o.bufs[b]); err != nil {
			return fmt.Errorf("failed to write band %d: %w", b, err)
		}
		return nil
	})
}

// Close finalizes every WAV header and closes the files.
func (o *bandOutputs) Close() error {
	var errs []error
	for _, e := range o.encoders {
		errs = append(errs, e.Close())
	}
	for _, f := range o.files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	verbose      bool
	tty          bool
	printed      bool
}

func newProgressTracker(totalFrames int64, verbose, tty bool) *progressTracker {
	return &progressTracker{
		totalFrames: totalFrames,
		verbose:     verbose,
		tty:         tty,
	}
}

// reportIfNeeded reports progress if threshold crossed. On a terminal the
// line is rewritten in place.
func (p *progressTracker) reportIfNeeded(frames int64) {
	if !p.verbose || p.totalFrames == 0 {
		return
	}

	progress := int(float64(frames) / float64(p.totalFrames) * percentScale)
	if progress < p.lastProgress+progressInterval {
		return
	}
	p.lastProgress = progress
	if p.tty {
		fmt.Fprintf(os.Stderr, "\rProgress: %3d%%", progress)
		p.printed = true
		return
	}
	log.Printf("Progress: %d%%", progress)
}

func (p *progressTracker) finish() {
	if p.printed {
		fmt.Fprintln(os.Stderr)
		p.printed = false
	}
}
