// Package pcm describes the supported integer sample formats and converts
// between their container values and Q1.31.
package pcm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-crossover/internal/fixed"
)

// ErrUnsupportedFormat is returned for formats without a conversion.
var ErrUnsupportedFormat = errors.New("unsupported sample format")

// Format is a little-endian integer sample format.
type Format int

// Supported formats. S24LE carries 24 significant bits in a 32-bit container.
const (
	FormatUnknown Format = iota
	FormatS16LE
	FormatS24LE
	FormatS32LE
)

// Bit widths.
const (
	bits16 = 16
	bits24 = 24
	bits32 = 32
)

func (f Format) String() string {
	switch f {
	case FormatS16LE:
		return "s16le"
	case FormatS24LE:
		return "s24le"
	case FormatS32LE:
		return "s32le"
	default:
		return "unknown"
	}
}

// BitDepth returns the number of significant bits per sample.
func (f Format) BitDepth() int {
	switch f {
	case FormatS16LE:
		return bits16
	case FormatS24LE:
		return bits24
	case FormatS32LE:
		return bits32
	default:
		return 0
	}
}

// ContainerBytes returns the storage size of one sample.
func (f Format) ContainerBytes() int {
	switch f {
	case FormatS16LE:
		return 2
	case FormatS24LE, FormatS32LE:
		return 4
	default:
		return 0
	}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	return f.BitDepth() != 0
}

// ParseFormat accepts the String form of a format, case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "s16le", "s16":
		return FormatS16LE, nil
	case "s24le", "s24", "s24_4le":
		return FormatS24LE, nil
	case "s32le", "s32":
		return FormatS32LE, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FromBitDepth maps a bit depth to a format.
func FromBitDepth(bits int) (Format, error) {
	switch bits {
	case bits16:
		return FormatS16LE, nil
	case bits24:
		return FormatS24LE, nil
	case bits32:
		return FormatS32LE, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, bits)
	}
}

// Codec converts container values of one format to and from Q1.31.
type Codec struct {
	Format Format
	Decode func(v int32) int32
	Encode func(q int32) int32
}

var codecs = map[Format]Codec{
	FormatS16LE: {FormatS16LE, decodeS16, encodeS16},
	FormatS24LE: {FormatS24LE, decodeS24, encodeS24},
	FormatS32LE: {FormatS32LE, decodeS32, encodeS32},
}

// Lookup returns the codec for f.
func Lookup(f Format) (Codec, error) {
	c, ok := codecs[f]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return c, nil
}

func decodeS16(v int32) int32 {
	return int32(int16(v)) << (bits32 - bits16)
}

func encodeS16(q int32) int32 {
	return int32(fixed.SatInt16(fixed.QShiftRound(int64(q), fixed.Q31, fixed.Q15)))
}

func decodeS24(v int32) int32 {
	// The container's top byte is shifted out.
	return v << (bits32 - bits24)
}

func encodeS24(q int32) int32 {
	return fixed.SatInt24(fixed.QShiftRound(int64(q), fixed.Q31, fixed.Q23))
}

func decodeS32(v int32) int32 { return v }

func encodeS32(q int32) int32 { return q }
