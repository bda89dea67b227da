package crossover

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-crossover/internal/config"
	"github.com/tphakala/go-audio-crossover/internal/iir"
)

// testFrames is the default source length used by the tests.
const testFrames = 512

// newFilter returns a configured filter that logs into a buffer.
func newFilter(t testing.TB, format Format, channels int) (*Filter, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	f, err := New(&Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	require.NoError(t, err)
	require.NoError(t, f.Configure(StreamParams{Format: format, Channels: channels}))
	return f, &logs
}

// makeBlob encodes a configuration routing band j to pipeline j.
func makeBlob(t testing.TB, numSinks int, assignment []int32, responses ...[]iir.Coefficients) []byte {
	t.Helper()
	cfg := &config.Crossover{
		SinkAssignment:     make([]int32, numSinks),
		ResponseAssignment: assignment,
	}
	for j := range cfg.SinkAssignment {
		cfg.SinkAssignment[j] = int32(j)
	}
	for _, r := range responses {
		cfg.Responses = append(cfg.Responses, config.Response{LR4: r})
	}
	blob := config.Encode(cfg)
	_, err := config.Parse(blob, MaxChannels)
	require.NoError(t, err)
	return blob
}

// makeSinks returns n sinks with pipeline IDs 0..n-1.
func makeSinks(format Format, channels, n, frames int) []*Stream {
	sinks := make([]*Stream, n)
	for i := range sinks {
		sinks[i] = NewStream(int32(i), format, channels, frames)
	}
	return sinks
}

// runOnce writes input into a fresh source, processes one call and drains
// every sink.
func runOnce(t testing.TB, f *Filter, input []int32, sinks []*Stream) [][]int32 {
	t.Helper()
	params := f.params
	source := NewStream(-1, params.Format, params.Channels, len(input)/params.Channels)
	source.Write(input)

	n, err := f.Process(source, sinks)
	require.NoError(t, err)
	require.Equal(t, len(input)/params.Channels, n)

	out := make([][]int32, len(sinks))
	for i, s := range sinks {
		out[i] = s.ReadAll()
	}
	return out
}
