// Package pipeline provides the sample streams that carry interleaved audio
// between processing pipelines.
package pipeline

// defaultStreamFrames is used when a stream is created without a size.
const defaultStreamFrames = 1024
