// Package bank owns the per-channel LR4 state of a crossover and binds it to
// a parsed configuration.
package bank

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// ErrAllocation is returned when more channels are requested than the bank
// was sized for.
var ErrAllocation = errors.New("filter bank channel capacity exceeded")

// Bank is the filter state of every channel of one stream. It is not safe
// for concurrent use.
type Bank struct {
	channels []topology.Channel
	bypassed []bool
	active   int
	logger   *slog.Logger
}

// New returns a bank with room for capacity channels, all in pass-through.
// A nil logger discards warnings.
func New(capacity int, logger *slog.Logger) *Bank {
	if capacity < 0 {
		capacity = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Bank{
		channels: make([]topology.Channel, capacity),
		bypassed: make([]bool, capacity),
		logger:   logger,
	}
	for i := range b.bypassed {
		b.bypassed[i] = true
	}
	return b
}

// Capacity returns the number of channels the bank can hold.
func (b *Bank) Capacity() int {
	return len(b.channels)
}

// Active returns the channel count of the last successful Apply.
func (b *Bank) Active() int {
	return b.active
}

// Apply resets the first active channels and binds each to its response in
// cfg. A channel past the configured width uses the last configured
// channel's response; a channel whose response index is out of range stays
// in pass-through. A nil cfg leaves every channel in pass-through.
//
// On error no channel state is modified.
func (b *Bank) Apply(cfg *config.Crossover, active int) error {
	if active < 0 || active > len(b.channels) {
		return fmt.Errorf("%w: %d channels requested, capacity %d", ErrAllocation, active, len(b.channels))
	}

	b.Reset()
	b.active = active
	if cfg == nil {
		return nil
	}

	pairs := topology.LR4Count(cfg.Bands())
	for ch := range active {
		resp := cfg.ResponseFor(ch)
		if resp < 0 || resp >= int32(cfg.NumberOfResponses) {
			b.logger.Warn("crossover channel has no valid response, passing through",
				"channel", ch, "response", resp, "responses", cfg.NumberOfResponses)
			continue
		}

		state := &b.channels[ch]
		for i := range pairs {
			state.Lowpass[i].Bind(cfg.Lowpass(int(resp), i))
			state.Highpass[i].Bind(cfg.Highpass(int(resp), i))
		}
		b.bypassed[ch] = false
	}
	return nil
}

// Reset returns every channel to pass-through with cleared delay lines.
func (b *Bank) Reset() {
	for i := range b.channels {
		b.channels[i].Reset()
		b.bypassed[i] = true
	}
}

// Channel returns the filter state of channel i.
func (b *Bank) Channel(i int) *topology.Channel {
	return &b.channels[i]
}

// Bypassed reports whether channel i passes samples through unfiltered.
func (b *Bank) Bypassed(i int) bool {
	return b.bypassed[i]
}
