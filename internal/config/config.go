// Package config decodes and encodes crossover configuration blobs.
//
// A blob is a little-endian byte stream:
//
//	header        8 x uint32  size, channels_in_config, number_of_responses,
//	                          num_sinks, reserved[4]
//	sinks         num_sinks x int32           band -> pipeline id
//	assignment    channels_in_config x int32  channel -> response index
//	responses     number_of_responses x 2*(num_sinks-1) records of
//	              7 x int32 {a2, a1, b2, b1, b0, shift, gain}
//
// Records of one response are stored in traversal order lp0, hp0, lp1, hp1,
// lp2, hp2. The declared size covers the whole blob including the header.
package config

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

// Blob limits.
const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 32

	// MaxBlobSize is the largest accepted blob.
	MaxBlobSize = 4096

	// MaxChannels is the platform channel maximum.
	MaxChannels = 8

	// MaxResponses is the largest number of distinct responses in one blob.
	MaxResponses = 8

	// RecordSize is the serialized size of one coefficient record.
	RecordSize = iir.CoefficientWords * wordSize

	wordSize     = 4
	reservedSize = 4
)

var (
	// ErrTooLarge indicates a blob longer than MaxBlobSize.
	ErrTooLarge = errors.New("configuration blob too large")

	// ErrMalformed indicates a blob that fails structural validation.
	ErrMalformed = errors.New("malformed configuration blob")

	// ErrChannelCount indicates more configured channels than supported.
	ErrChannelCount = errors.New("configuration channel count unsupported")
)

// Header is the fixed blob header.
type Header struct {
	Size              uint32
	ChannelsInConfig  uint32
	NumberOfResponses uint32
	NumSinks          uint32
	Reserved          [reservedSize]uint32
}

// Response is the full set of LR4 sections for one topology, in traversal
// order lp0, hp0, lp1, hp1, ...
type Response struct {
	LR4 []iir.Coefficients
}

// Crossover is a validated configuration. It is immutable once parsed and is
// shared by pointer with every filter bound to it.
type Crossover struct {
	ChannelsInConfig   uint32
	NumberOfResponses  uint32
	NumSinks           uint32
	SinkAssignment     []int32
	ResponseAssignment []int32
	Responses          []Response

	raw []byte
}

// SizeFor returns the blob size implied by the header counts.
func SizeFor(channels, responses, sinks uint32) int {
	records := 0
	if sinks >= topology.MinBands {
		records = int(responses) * 2 * topology.LR4Count(int(sinks))
	}
	return HeaderSize + wordSize*int(sinks) + wordSize*int(channels) + records*RecordSize
}

// Parse validates blob and builds a Crossover from it. maxChannels bounds
// channels_in_config; values below 1 fall back to MaxChannels. The blob is
// copied, so the caller may reuse it.
func Parse(blob []byte, maxChannels int) (*Crossover, error) {
	if maxChannels < 1 || maxChannels > MaxChannels {
		maxChannels = MaxChannels
	}

	switch {
	case len(blob) == 0:
		return nil, fmt.Errorf("%w: empty blob", ErrMalformed)
	case len(blob) > MaxBlobSize:
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(blob), MaxBlobSize)
	case len(blob) < HeaderSize:
		return nil, fmt.Errorf("%w: %d bytes is shorter than the %d byte header", ErrMalformed, len(blob), HeaderSize)
	}

	h := decodeHeader(blob)
	if h.ChannelsInConfig == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrMalformed)
	}
	if h.ChannelsInConfig > uint32(maxChannels) {
		return nil, fmt.Errorf("%w: %d channels, max %d", ErrChannelCount, h.ChannelsInConfig, maxChannels)
	}
	if h.NumberOfResponses > MaxResponses {
		return nil, fmt.Errorf("%w: %d responses, max %d", ErrMalformed, h.NumberOfResponses, MaxResponses)
	}
	if h.NumSinks < topology.MinBands || h.NumSinks > topology.MaxBands {
		return nil, fmt.Errorf("%w: num_sinks %d not in %d-%d",
			ErrMalformed, h.NumSinks, topology.MinBands, topology.MaxBands)
	}

	want := SizeFor(h.ChannelsInConfig, h.NumberOfResponses, h.NumSinks)
	if uint64(h.Size) != uint64(want) {
		return nil, fmt.Errorf("%w: declared size %d, layout needs %d", ErrMalformed, h.Size, want)
	}
	if len(blob) != want {
		return nil, fmt.Errorf("%w: blob is %d bytes, declared %d", ErrMalformed, len(blob), want)
	}

	cfg := &Crossover{
		ChannelsInConfig:   h.ChannelsInConfig,
		NumberOfResponses:  h.NumberOfResponses,
		NumSinks:           h.NumSinks,
		SinkAssignment:     make([]int32, h.NumSinks),
		ResponseAssignment: make([]int32, h.ChannelsInConfig),
		Responses:          make([]Response, h.NumberOfResponses),
		raw:                append([]byte(nil), blob...),
	}

	r := reader{buf: cfg.raw, off: HeaderSize}
	for i := range cfg.SinkAssignment {
		cfg.SinkAssignment[i] = r.int32()
	}
	for i := range cfg.ResponseAssignment {
		cfg.ResponseAssignment[i] = r.int32()
	}

	perResponse := 2 * topology.LR4Count(int(h.NumSinks))
	for i := range cfg.Responses {
		records := make([]iir.Coefficients, perResponse)
		for j := range records {
			var w [iir.CoefficientWords]int32
			for k := range w {
				w[k] = r.int32()
			}
			records[j] = iir.FromWords(w)
		}
		cfg.Responses[i].LR4 = records
	}

	return cfg, nil
}

// Encode serializes cfg. Counts are taken from the slice lengths, so a
// Crossover assembled by hand needs only its tables filled in. Encode does
// not validate; pass the result through Parse to check it.
func Encode(cfg *Crossover) []byte {
	sinks := uint32(len(cfg.SinkAssignment))
	channels := uint32(len(cfg.ResponseAssignment))
	responses := uint32(len(cfg.Responses))
	size := SizeFor(channels, responses, sinks)

	buf := make([]byte, 0, size)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = binary.LittleEndian.AppendUint32(buf, channels)
	buf = binary.LittleEndian.AppendUint32(buf, responses)
	buf = binary.LittleEndian.AppendUint32(buf, sinks)
	for range reservedSize {
		buf = binary.LittleEndian.AppendUint32(buf, 0)
	}

	for _, v := range cfg.SinkAssignment {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	for _, v := range cfg.ResponseAssignment {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	for i := range cfg.Responses {
		for j := range cfg.Responses[i].LR4 {
			for _, w := range cfg.Responses[i].LR4[j].Words() {
				buf = binary.LittleEndian.AppendUint32(buf, uint32(w))
			}
		}
	}
	return buf
}

// Bytes returns a copy of the validated blob.
func (c *Crossover) Bytes() []byte {
	return append([]byte(nil), c.raw...)
}

// Size returns the blob length in bytes.
func (c *Crossover) Size() int {
	return len(c.raw)
}

// Bands returns the number of output bands.
func (c *Crossover) Bands() int {
	return int(c.NumSinks)
}

// ResponseFor returns the response index assigned to channel ch. Channels past
// the configured width reuse the last configured channel's response.
func (c *Crossover) ResponseFor(ch int) int32 {
	if ch >= len(c.ResponseAssignment) {
		ch = len(c.ResponseAssignment) - 1
	}
	return c.ResponseAssignment[ch]
}

// Lowpass returns the i-th lowpass section of response resp.
func (c *Crossover) Lowpass(resp, i int) *iir.Coefficients {
	return &c.Responses[resp].LR4[2*i]
}

// Highpass returns the i-th highpass section of response resp.
func (c *Crossover) Highpass(resp, i int) *iir.Coefficients {
	return &c.Responses[resp].LR4[2*i+1]
}

// Header returns the header the blob was parsed from.
func (c *Crossover) Header() Header {
	return decodeHeader(c.raw)
}

func decodeHeader(blob []byte) Header {
	r := reader{buf: blob}
	h := Header{
		Size:              r.uint32(),
		ChannelsInConfig:  r.uint32(),
		NumberOfResponses: r.uint32(),
		NumSinks:          r.uint32(),
	}
	for i := range h.Reserved {
		h.Reserved[i] = r.uint32()
	}
	return h
}

// reader walks a blob whose length has already been checked.
type reader struct {
	buf []byte
	off int
}

func (r *reader) uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += wordSize
	return v
}

func (r *reader) int32() int32 {
	return int32(r.uint32())
}
