package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	crossover "github.com/tphakala/go-audio-crossover"
	"github.com/tphakala/go-audio-crossover/internal/pcm"
)

const testRate = 48000

// writeTestWAV writes interleaved samples to a new WAV file.
func writeTestWAV(t *testing.T, path string, bitDepth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, testRate, bitDepth, channels, wavPCMFormat)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: testRate},
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

// readTestWAV decodes a whole WAV file.
func readTestWAV(t *testing.T, path string) *audio.IntBuffer {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf
}

func sineInts(frames, channels int, freq, amp float64) []int {
	data := make([]int, frames*channels)
	for i := range frames {
		v := int(amp * math.Sin(2*math.Pi*freq*float64(i)/testRate))
		for ch := range channels {
			data[i*channels+ch] = v
		}
	}
	return data
}

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	invalidFile := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := openWAVInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenWAVInput_Unsupported8Bit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in8.wav")
	writeTestWAV(t, path, 8, 1, make([]int, 64))

	_, err := openWAVInput(path, false)
	require.ErrorIs(t, err, crossover.ErrUnsupportedFormat)
}

func TestOpenWAVInput_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 24, 2, make([]int, 2*480))

	input, err := openWAVInput(path, false)
	require.NoError(t, err)
	defer func() { _ = input.Close() }()

	assert.Equal(t, testRate, input.rate)
	assert.Equal(t, 2, input.channels)
	assert.Equal(t, 24, input.bitDepth)
	assert.Equal(t, crossover.FormatS24LE, input.format)
}

func TestParseFrequencies(t *testing.T) {
	tests := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{in: "2500", want: []float64{2500}},
		{in: "300, 3000", want: []float64{300, 3000}},
		{in: "100,1000,10000,", want: []float64{100, 1000, 10000}},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFrequencies(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadBlob(t *testing.T) {
	blob, err := loadBlob("", "500,5000", testRate, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "xover.bin")
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	fromFile, err := loadBlob(path, "ignored", testRate, 2)
	require.NoError(t, err)
	assert.Equal(t, blob, fromFile)

	_, err = loadBlob("/nonexistent/xover.bin", "", testRate, 2)
	require.Error(t, err)

	_, err = loadBlob("", "30000", testRate, 2)
	require.ErrorIs(t, err, crossover.ErrInvalidConfig)
}

func TestBandPath(t *testing.T) {
	assert.Equal(t, "dir/song_band0.wav", bandPath(trimExt("dir/song.wav"), 0))
	assert.Equal(t, "split_band3.wav", bandPath("split", 3))
}

func TestNewBandProcessor_InvalidPeriod(t *testing.T) {
	blob, err := crossover.Design(testRate, 1, 1000)
	require.NoError(t, err)

	_, err = newBandProcessor(blob, crossover.FormatS16LE, 1, 0)
	require.ErrorIs(t, err, crossover.ErrInvalidConfig)
}

func TestBandProcessor_PreservesLength(t *testing.T) {
	blob, err := crossover.Design(testRate, 2, 300, 3000)
	require.NoError(t, err)

	proc, err := newBandProcessor(blob, crossover.FormatS16LE, 2, 100)
	require.NoError(t, err)
	require.Equal(t, 3, proc.bands())

	// Chunk sizes that do not divide the period.
	for _, frames := range []int{250, 1, 999} {
		bands, err := proc.process(sineInts(frames, 2, 1000, 8000))
		require.NoError(t, err)
		require.Len(t, bands, 3)
		for b := range bands {
			assert.Len(t, bands[b], frames*2, "band %d", b)
		}
	}
}

func TestSplitWAV_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	const frames = 4800
	writeTestWAV(t, input, 16, 2, sineInts(frames, 2, 200, 10000))

	stats, err := splitWAV(splitOptions{
		inputPath: input,
		prefix:    filepath.Join(dir, "out"),
		freqs:     "2000",
		period:    crossover.DefaultPeriodFrames,
	})
	require.NoError(t, err)
	require.Len(t, stats.outputs, 2)
	assert.Equal(t, int64(frames), stats.frames)

	var peaks [2]int
	for b, path := range stats.outputs {
		buf := readTestWAV(t, path)
		assert.Equal(t, 2, buf.Format.NumChannels)
		assert.Equal(t, testRate, buf.Format.SampleRate)
		require.Len(t, buf.Data, frames*2)
		for _, v := range buf.Data {
			peaks[b] = max(peaks[b], v, -v)
		}
	}
	// A 200 Hz tone lands in the low band.
	assert.Greater(t, peaks[0], 10*peaks[1])
}

func TestConverter(t *testing.T) {
	same, err := converter(crossover.FormatS16LE, crossover.FormatS16LE)
	require.NoError(t, err)
	assert.Nil(t, same)

	widen, err := converter(crossover.FormatS16LE, crossover.FormatS32LE)
	require.NoError(t, err)
	assert.Equal(t, int32(0x4000_0000), widen(0x4000))
	assert.Equal(t, int32(-0x8000_0000), widen(-0x8000))

	narrow, err := converter(crossover.FormatS32LE, crossover.FormatS24LE)
	require.NoError(t, err)
	assert.Equal(t, int32(0x12_3456), narrow(0x1234_5600))

	_, err = converter(crossover.FormatS16LE, pcm.FormatUnknown)
	require.ErrorIs(t, err, crossover.ErrUnsupportedFormat)
}

func TestSplitWAV_FormatOverride(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tone.wav")
	writeTestWAV(t, input, 16, 1, sineInts(2000, 1, 5000, 8000))

	stats, err := splitWAV(splitOptions{
		inputPath: input,
		prefix:    filepath.Join(dir, "wide"),
		freqs:     "500",
		format:    "s32le",
		period:    256,
	})
	require.NoError(t, err)
	assert.Equal(t, 32, stats.bitDepth)

	for _, path := range stats.outputs {
		out, err := openWAVInput(path, false)
		require.NoError(t, err)
		assert.Equal(t, 32, out.bitDepth)
		require.NoError(t, out.Close())
	}

	_, err = splitWAV(splitOptions{
		inputPath: input,
		prefix:    filepath.Join(dir, "bad"),
		freqs:     "500",
		format:    "f32le",
		period:    256,
	})
	require.ErrorIs(t, err, crossover.ErrUnsupportedFormat)
}

func TestCreateBandOutputs_InvalidDirectory(t *testing.T) {
	_, err := createBandOutputs("/nonexistent/dir/out", 2, testRate, 16, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestBandOutputs_BandCountMismatch(t *testing.T) {
	out, err := createBandOutputs(filepath.Join(t.TempDir(), "out"), 2, testRate, 16, 1)
	require.NoError(t, err)
	defer func() { _ = out.Close() }()

	require.Error(t, out.WriteBands([][]int{{1}}))
}

func TestWriteBandsConcurrently_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := writeBandsConcurrently(4, func(b int) error {
		if b == 2 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestProgressTracker_NonVerboseMode(t *testing.T) {
	tracker := newProgressTracker(1000, false, false)
	tracker.reportIfNeeded(500)
	assert.Equal(t, 0, tracker.lastProgress)
}

func TestProgressTracker_ZeroFrames(t *testing.T) {
	tracker := newProgressTracker(0, true, false)
	tracker.reportIfNeeded(100)
	assert.Equal(t, 0, tracker.lastProgress)
}

func TestProgressTracker_Threshold(t *testing.T) {
	tracker := newProgressTracker(1000, true, false)
	tracker.reportIfNeeded(50)
	assert.Equal(t, 0, tracker.lastProgress)
	tracker.reportIfNeeded(250)
	assert.Equal(t, 25, tracker.lastProgress)
	tracker.finish()
	assert.False(t, tracker.printed)
}
