package bank_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-crossover/internal/bank"
	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/iir"
	"github.com/tphakala/go-audio-crossover/internal/testutil"
	"github.com/tphakala/go-audio-crossover/internal/topology"
)

func parse(t *testing.T, numSinks int, assignment []int32, responses int) *config.Crossover {
	t.Helper()
	src := &config.Crossover{
		SinkAssignment:     make([]int32, numSinks),
		ResponseAssignment: assignment,
		Responses:          make([]config.Response, responses),
	}
	for i := range src.Responses {
		src.Responses[i].LR4 = testutil.ResponseFixture(numSinks)
	}
	// Make responses distinguishable.
	for i := range src.Responses {
		src.Responses[i].LR4[0].Shift = int32(i)
	}
	cfg, err := config.Parse(config.Encode(src), config.MaxChannels)
	require.NoError(t, err)
	return cfg
}

func TestNew_StartsInPassThrough(t *testing.T) {
	b := bank.New(4, nil)
	assert.Equal(t, 4, b.Capacity())
	for i := range 4 {
		assert.True(t, b.Bypassed(i))
		assert.False(t, b.Channel(i).Bound())
	}
}

func TestApply_BindsSharedRecords(t *testing.T) {
	cfg := parse(t, 4, []int32{0, 1}, 2)
	b := bank.New(2, nil)
	require.NoError(t, b.Apply(cfg, 2))
	assert.Equal(t, 2, b.Active())

	for ch := range 2 {
		require.False(t, b.Bypassed(ch))
		state := b.Channel(ch)
		for i := range topology.MaxLR4 {
			assert.Same(t, cfg.Lowpass(ch, i), state.Lowpass[i].Coefficients())
			assert.Same(t, cfg.Highpass(ch, i), state.Highpass[i].Coefficients())
			assert.Equal(t, [iir.LR4Delays]int64{}, state.Lowpass[i].Delay())
			assert.Equal(t, [iir.LR4Delays]int64{}, state.Highpass[i].Delay())
		}
	}
}

func TestApply_TwoWayLeavesUpperFiltersUnbound(t *testing.T) {
	cfg := parse(t, 2, []int32{0}, 1)
	b := bank.New(1, nil)
	require.NoError(t, b.Apply(cfg, 1))

	state := b.Channel(0)
	assert.True(t, state.Lowpass[0].Bound())
	assert.False(t, state.Lowpass[1].Bound())
	assert.False(t, state.Highpass[2].Bound())
}

func TestApply_IsIdempotent(t *testing.T) {
	cfg := parse(t, 3, []int32{0, 0}, 1)
	b := bank.New(2, nil)
	split, err := topology.Select(3)
	require.NoError(t, err)

	run := func() [][topology.MaxBands]int32 {
		require.NoError(t, b.Apply(cfg, 2))
		var out [][topology.MaxBands]int32
		for _, x := range testutil.Noise(128, 1<<29, 5) {
			var o [topology.MaxBands]int32
			split(b.Channel(0), x, &o)
			out = append(out, o)
		}
		return out
	}

	first := run()
	second := run()
	assert.Equal(t, first, second, "re-applying clears delay state")
}

func TestApply_ExtendsLastConfiguredChannel(t *testing.T) {
	cfg := parse(t, 2, []int32{0, 1}, 2)
	b := bank.New(6, nil)
	require.NoError(t, b.Apply(cfg, 6))

	for ch := 1; ch < 6; ch++ {
		assert.Same(t, cfg.Lowpass(1, 0), b.Channel(ch).Lowpass[0].Coefficients(), "channel %d", ch)
	}
	assert.Same(t, cfg.Lowpass(0, 0), b.Channel(0).Lowpass[0].Coefficients())
}

func TestApply_OutOfRangeResponseBypassesWithWarning(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	cfg := parse(t, 2, []int32{0, -1, 7}, 1)
	b := bank.New(3, logger)
	require.NoError(t, b.Apply(cfg, 3))

	assert.False(t, b.Bypassed(0))
	assert.True(t, b.Bypassed(1))
	assert.True(t, b.Bypassed(2))
	assert.False(t, b.Channel(1).Bound())
	assert.Contains(t, logs.String(), "no valid response")
	assert.Contains(t, logs.String(), "channel=2")
}

func TestApply_CapacityExceededLeavesStateIntact(t *testing.T) {
	cfg := parse(t, 2, []int32{0}, 1)
	b := bank.New(2, nil)
	require.NoError(t, b.Apply(cfg, 2))

	err := b.Apply(nil, 3)
	require.ErrorIs(t, err, bank.ErrAllocation)
	assert.Equal(t, 2, b.Active())
	assert.False(t, b.Bypassed(0))
	assert.Same(t, cfg.Lowpass(0, 0), b.Channel(0).Lowpass[0].Coefficients())
}

func TestApply_NilResetsToPassThrough(t *testing.T) {
	cfg := parse(t, 4, []int32{0}, 1)
	b := bank.New(2, nil)
	require.NoError(t, b.Apply(cfg, 2))

	require.NoError(t, b.Apply(nil, 2))
	for ch := range 2 {
		assert.True(t, b.Bypassed(ch))
		assert.False(t, b.Channel(ch).Bound())
	}
}

func TestReset(t *testing.T) {
	cfg := parse(t, 2, []int32{0}, 1)
	b := bank.New(1, nil)
	require.NoError(t, b.Apply(cfg, 1))

	b.Reset()
	assert.True(t, b.Bypassed(0))
	assert.False(t, b.Channel(0).Bound())
}
