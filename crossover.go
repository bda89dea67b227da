package crossover

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tphakala/go-audio-crossover/internal/bank"
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/pcm"
	"github.com/tphakala/go-audio-crossover/internal/pipeline"
	"github.com/tphakala/go-audio-crossover/internal/reconfig"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// Format is the integer sample format of a stream.
type Format = pcm.Format

// Supported sample formats.
const (
	FormatS16LE = pcm.FormatS16LE
	FormatS24LE = pcm.FormatS24LE
	FormatS32LE = pcm.FormatS32LE
)

// Stream is an interleaved sample buffer between pipelines.
type Stream = pipeline.Stream

// NewStream creates a stream owned by pipeline id with room for frames frames.
func NewStream(id int32, format Format, channels, frames int) *Stream {
	return pipeline.NewStream(id, format, channels, frames)
}

// Errors returned by the crossover. Configuration errors leave the previously
// active configuration in force.
var (
	// ErrConfigTooLarge indicates a blob above MaxBlobSize.
	ErrConfigTooLarge = config.ErrTooLarge

	// ErrConfigMalformed indicates a blob whose fields or size do not match.
	ErrConfigMalformed = config.ErrMalformed

	// ErrChannelCountUnsupported indicates more channels than the platform supports.
	ErrChannelCountUnsupported = config.ErrChannelCount

	// ErrConfigBusy indicates a configuration update is already pending.
	ErrConfigBusy = reconfig.ErrBusy

	// ErrUnsupportedFormat indicates no processing routine for a sample format.
	ErrUnsupportedFormat = pcm.ErrUnsupportedFormat

	// ErrAllocationFailure indicates the filter bank cannot hold the stream.
	ErrAllocationFailure = bank.ErrAllocation

	// ErrInvalidConfig indicates invalid options or stream parameters.
	ErrInvalidConfig = errors.New("invalid crossover configuration")

	// ErrNoConfig indicates no configuration has been set.
	ErrNoConfig = errors.New("no crossover configuration set")

	// ErrBufferTooSmall indicates a destination buffer cannot hold the blob.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrNotConfigured indicates Process was called before Configure.
	ErrNotConfigured = errors.New("crossover stream not configured")

	// ErrStreamMismatch indicates a stream whose shape differs from the
	// configured stream parameters.
	ErrStreamMismatch = errors.New("stream does not match configured parameters")

	// ErrTooManySinks indicates more than MaxSinks output streams.
	ErrTooManySinks = errors.New("too many sink streams")
)

// Options configures a Filter.
type Options struct {
	// MaxChannels is the channel capacity of the filter bank and the limit
	// applied to channels_in_config. Zero selects MaxChannels.
	MaxChannels int

	// Logger receives non-fatal warnings such as channels downgraded to
	// pass-through or unroutable sinks. Nil discards them.
	Logger *slog.Logger
}

// Validate checks that options are in range.
func (o *Options) Validate() error {
	if o.MaxChannels < 0 || o.MaxChannels > MaxChannels {
		return fmt.Errorf("%w: max channels must be 0-%d", ErrInvalidConfig, MaxChannels)
	}
	return nil
}

// StreamParams describes the negotiated source and sink streams.
type StreamParams struct {
	// Format is shared by the source and every sink.
	Format Format

	// Channels is the interleaved channel count of every stream.
	Channels int
}

// Validate checks the parameters against the platform limits.
func (p StreamParams) Validate() error {
	if !p.Format.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, p.Format)
	}
	if p.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}
	if p.Channels > MaxChannels {
		return fmt.Errorf("%w: %d channels, max %d", ErrChannelCountUnsupported, p.Channels, MaxChannels)
	}
	return nil
}

// Filter is a multi-way LR4 crossover. Configuration calls (SetConfig,
// GetConfig, HandleCommand) may run concurrently with processing; Configure,
// Process and Reset are serialized internally.
type Filter struct {
	logger   *slog.Logger
	capacity int

	slot reconfig.Slot[config.Crossover]

	mu         sync.Mutex
	bank       *bank.Bank
	params     StreamParams
	codec      pcm.Codec
	configured bool
	active     *config.Crossover
	split      topology.Splitter
	route      routing
	routed     bool
	out        [MaxBands]int32
}

// New creates a filter. A nil opts selects the defaults.
func New(opts *Options) (*Filter, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	capacity := opts.MaxChannels
	if capacity == 0 {
		capacity = MaxChannels
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Filter{
		logger:   logger,
		capacity: capacity,
		bank:     bank.New(capacity, logger),
	}, nil
}

// Configure negotiates the stream parameters, selects the processing routine
// for the format and applies the current configuration. It may be called
// again to renegotiate; on error the previous parameters stay in force.
func (f *Filter) Configure(params StreamParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	codec, err := pcm.Lookup(params.Format)
	if err != nil {
		return err
	}
	if params.Channels > f.capacity {
		return fmt.Errorf("%w: %d channels requested, capacity %d", ErrAllocationFailure, params.Channels, f.capacity)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.params = params
	f.codec = codec
	cfg, _ := f.slot.Swap()
	if err := f.applyLocked(cfg); err != nil {
		return err
	}
	f.configured = true
	f.routed = false

	f.logger.Debug("crossover configured",
		"format", params.Format.String(), "channels", params.Channels, "bands", f.bandsLocked())
	return nil
}

// applyLocked rebuilds the filter bank for cfg. A nil cfg selects bypass.
func (f *Filter) applyLocked(cfg *config.Crossover) error {
	var split topology.Splitter
	if cfg != nil {
		var err error
		if split, err = topology.Select(cfg.Bands()); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigMalformed, err)
		}
	}
	if err := f.bank.Apply(cfg, f.params.Channels); err != nil {
		return err
	}
	f.active = cfg
	f.split = split
	return nil
}

func (f *Filter) bandsLocked() int {
	if f.active == nil {
		return 0
	}
	return f.active.Bands()
}

// Reset clears every delay line and forgets the routing state. The active
// and pending configurations are kept.
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.configured {
		// Cannot fail: the channel count was checked by Configure.
		_ = f.applyLocked(f.active)
	} else {
		f.bank.Reset()
	}
	f.routed = false
}

// Info describes the current state of a filter.
type Info struct {
	// Configured reports whether Configure has succeeded.
	Configured bool

	// Format and Channels are the negotiated stream parameters.
	Format   Format
	Channels int

	// Bands is the split of the applied configuration, 0 in bypass.
	Bands int

	// Bypassed lists the channels passing audio through unfiltered.
	Bypassed []int

	// Pending reports whether an update waits for the next Process.
	Pending bool
}

// Info returns the current state of the filter.
func (f *Filter) Info() Info {
	f.mu.Lock()
	defer f.mu.Unlock()

	info := Info{
		Configured: f.configured,
		Format:     f.params.Format,
		Channels:   f.params.Channels,
		Bands:      f.bandsLocked(),
		Pending:    f.slot.HasPending(),
	}
	if f.configured {
		for ch := range f.params.Channels {
			if f.bank.Bypassed(ch) {
				info.Bypassed = append(info.Bypassed, ch)
			}
		}
	}
	return info
}
