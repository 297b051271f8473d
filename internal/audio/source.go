// Package audio provides PCM frame sources for the transcription pipeline.
//
// A source produces mono 16-bit little-endian PCM frames of a fixed size at a
// fixed sample rate. Frames are delivered through a bounded channel; when the
// consumer lags behind real-time capture, the oldest frame is dropped so that
// memory use stays bounded (the alternative, an unbounded queue, grows without
// limit under sustained lag).
package audio

import "context"

// Source produces a stream of fixed-size PCM frames.
type Source interface {
	// Start begins producing frames. Fails if the underlying device cannot
	// be opened.
	Start(ctx context.Context) error

	// Frames returns the channel frames are delivered on. The channel is
	// closed when the source stops.
	Frames() <-chan []byte

	// Close stops the source and releases the device.
	Close() error
}

// Config holds common source settings.
type Config struct {
	SampleRateHz int
	FrameSamples int
	QueueFrames  int
	Device       string
}

// FrameBytes returns the size of one frame in bytes (16-bit mono samples).
func (c Config) FrameBytes() int {
	return c.FrameSamples * 2
}
