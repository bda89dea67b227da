package crossover

import (
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// Channel and band limits
const (
	// MaxChannels is the platform channel maximum.
	MaxChannels = config.MaxChannels

	// MinBands is the smallest split (2-way).
	MinBands = topology.MinBands

	// MaxBands is the largest split (4-way).
	MaxBands = topology.MaxBands

	// MaxSinks is the number of output streams one filter can feed.
	MaxSinks = MaxBands
)

// Configuration blob limits
const (
	// MaxBlobSize is the largest accepted configuration blob in bytes.
	MaxBlobSize = config.MaxBlobSize

	// MaxResponses is the largest number of responses in one blob.
	MaxResponses = config.MaxResponses

	// HeaderSize is the size of the blob header in bytes.
	HeaderSize = config.HeaderSize
)

// Common sample rates
const (
	// RateCD is the CD quality sample rate.
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000
)

// Stream defaults
const (
	// DefaultPeriodFrames is the period used by the one-shot helpers.
	DefaultPeriodFrames = 1024

	noSink = -1
)
