package pipeline

import (
	"sync"

	"github.com/tphakala/go-audio-crossover/internal/pcm"
)

// Stream is a fixed-capacity circular buffer of interleaved samples that
// connects a producer and a consumer pipeline. Capacity never grows; writers
// see back-pressure through FreeFrames.
//
// Samples are stored as int32 container values of the stream format. The
// frame accessors (Sample, SetSample) are lock-free and meant for the single
// processing goroutine that owns the region between a size check and the
// matching Consume or Produce.
type Stream struct {
	data     []int32
	channels int
	capacity int // frames
	size     int // frames
	readPos  int // frame index
	writePos int // frame index
	format   pcm.Format
	id       int32
	mu       sync.Mutex
}

// NewStream creates a stream of the given shape. Out-of-range arguments are
// raised to the minimum of one channel and one frame.
func NewStream(id int32, format pcm.Format, channels, frames int) *Stream {
	if channels < 1 {
		channels = 1
	}
	if frames < 1 {
		frames = defaultStreamFrames
	}
	return &Stream{
		data:     make([]int32, channels*frames),
		channels: channels,
		capacity: frames,
		format:   format,
		id:       id,
	}
}

// PipelineID identifies the pipeline on the far side of the stream.
func (s *Stream) PipelineID() int32 { return s.id }

// Format returns the sample format carried by the stream.
func (s *Stream) Format() pcm.Format { return s.format }

// Channels returns the number of interleaved channels.
func (s *Stream) Channels() int { return s.channels }

// Capacity returns the capacity in frames.
func (s *Stream) Capacity() int { return s.capacity }

// Write appends whole frames from interleaved samples and returns the number
// of frames written. A trailing partial frame is ignored.
func (s *Stream) Write(samples []int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := min(len(samples)/s.channels, s.capacity-s.size)
	for f := range frames {
		dst := s.slot(s.writePos)
		copy(dst, samples[f*s.channels:(f+1)*s.channels])
		s.writePos = (s.writePos + 1) % s.capacity
	}
	s.size += frames
	return frames
}

// Read removes up to len(dst)/Channels() frames into dst and returns the
// number of frames read.
func (s *Stream) Read(dst []int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := min(len(dst)/s.channels, s.size)
	for f := range frames {
		copy(dst[f*s.channels:(f+1)*s.channels], s.slot(s.readPos))
		s.readPos = (s.readPos + 1) % s.capacity
	}
	s.size -= frames
	return frames
}

// ReadAll drains the stream into a new slice.
func (s *Stream) ReadAll() []int32 {
	out := make([]int32, s.AvailableFrames()*s.channels)
	n := s.Read(out)
	return out[:n*s.channels]
}

// AvailableFrames returns the number of frames ready to read.
func (s *Stream) AvailableFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// FreeFrames returns the number of frames that can be written.
func (s *Stream) FreeFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity - s.size
}

// Sample returns channel ch of the frame at offset i from the read position.
func (s *Stream) Sample(i, ch int) int32 {
	return s.data[((s.readPos+i)%s.capacity)*s.channels+ch]
}

// SetSample stores v as channel ch of the frame at offset i from the write
// position. The frame becomes readable after Produce.
func (s *Stream) SetSample(i, ch int, v int32) {
	s.data[((s.writePos+i)%s.capacity)*s.channels+ch] = v
}

// Consume releases frames that were read with Sample.
func (s *Stream) Consume(frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames = min(frames, s.size)
	s.readPos = (s.readPos + frames) % s.capacity
	s.size -= frames
}

// Produce publishes frames that were written with SetSample.
func (s *Stream) Produce(frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames = min(frames, s.capacity-s.size)
	s.writePos = (s.writePos + frames) % s.capacity
	s.size += frames
}

// Clear drops all buffered frames.
func (s *Stream) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size = 0
	s.readPos = 0
	s.writePos = 0
}

func (s *Stream) slot(frame int) []int32 {
	off := frame * s.channels
	return s.data[off : off+s.channels]
}
