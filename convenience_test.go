package crossover

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-crossover/internal/analysis"
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/testutil"
)

func TestDesign(t *testing.T) {
	blob, err := Design(RateDAT, 2, 200, 2000)
	require.NoError(t, err)

	cfg, err := config.Parse(blob, MaxChannels)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Bands())
	assert.Equal(t, []int32{0, 1, 2}, cfg.SinkAssignment)

	_, err = Design(RateDAT, 2)
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = Design(RateDAT, 2, 30000)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDesignForSinks(t *testing.T) {
	blob, err := DesignForSinks(RateCD, 1, []int32{4, 9}, 1000)
	require.NoError(t, err)
	cfg, err := config.Parse(blob, MaxChannels)
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 9}, cfg.SinkAssignment)

	_, err = DesignForSinks(RateCD, 1, []int32{4}, 1000)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSplitInterleaved_SeparatesTones(t *testing.T) {
	const (
		frames   = 3 * DefaultPeriodFrames / 2
		channels = 2
	)
	blob, err := Design(RateDAT, channels, 1000)
	require.NoError(t, err)

	low := testutil.SineQ31(frames, 100, RateDAT, 0.25)
	high := testutil.SineQ31(frames, 10000, RateDAT, 0.25)
	input := testutil.Interleave(low, high)

	bands, err := SplitInterleaved(input, FormatS32LE, channels, blob)
	require.NoError(t, err)
	require.Len(t, bands, 2)
	require.Len(t, bands[0], len(input))
	require.Len(t, bands[1], len(input))

	level := func(band []int32, ch int) float64 {
		x := Deinterleave(band, channels)[ch][frames/2:]
		f := make([]float64, len(x))
		for i, v := range x {
			f[i] = float64(v) / math.MaxInt32
		}
		return analysis.RMS(f)
	}

	// Left carries the low tone, right the high tone.
	assert.Greater(t, level(bands[0], 0), 20*level(bands[1], 0))
	assert.Greater(t, level(bands[1], 1), 20*level(bands[0], 1))
}

func TestSplitInterleaved_Errors(t *testing.T) {
	_, err := SplitInterleaved(nil, FormatS16LE, 1, nil)
	require.ErrorIs(t, err, ErrConfigMalformed)

	blob, err := Design(RateDAT, 1, 500)
	require.NoError(t, err)
	_, err = SplitInterleaved(nil, FormatS16LE, 0, blob)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInterleave_RoundTrip(t *testing.T) {
	planar := [][]int32{{1, 2, 3}, {4, 5, 6}}
	inter := Interleave(planar)
	assert.Equal(t, []int32{1, 4, 2, 5, 3, 6}, inter)
	assert.Equal(t, planar, Deinterleave(inter, 2))

	assert.Nil(t, Interleave(nil))
	assert.Nil(t, Deinterleave(inter, 0))
	assert.Equal(t, [][]int32{{1, 2}, {4, 5}}, Deinterleave(inter[:5], 2))
}
