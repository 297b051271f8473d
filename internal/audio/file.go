package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// File replays raw PCM from disk at real-time pace. Useful for development
// and tests without an audio device.
type File struct {
	mu      sync.Mutex
	cfg     Config
	path    string
	frames  chan []byte
	running bool
	done    chan struct{}
}

// NewFile creates a file replay source for a raw 16-bit mono PCM file.
func NewFile(path string, cfg Config) *File {
	queue := cfg.QueueFrames
	if queue <= 0 {
		queue = 256
	}
	return &File{
		cfg:    cfg,
		path:   path,
		frames: make(chan []byte, queue),
		done:   make(chan struct{}),
	}
}

// Start opens the file and begins replaying frames.
func (f *File) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return fmt.Errorf("file source already running")
	}

	r, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open audio file: %w", err)
	}
	f.running = true

	go f.replayLoop(ctx, r)
	return nil
}

func (f *File) replayLoop(ctx context.Context, r *os.File) {
	defer close(f.frames)
	defer r.Close()

	// One frame of FrameSamples at SampleRateHz covers this much wall time.
	frameDur := time.Duration(f.cfg.FrameSamples) * time.Second / time.Duration(f.cfg.SampleRateHz)
	ticker := time.NewTicker(frameDur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
		}

		frame := make([]byte, f.cfg.FrameBytes())
		n, err := io.ReadFull(r, frame)
		if n > 0 {
			select {
			case f.frames <- frame[:n]:
			case <-f.done:
				return
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Frames returns the replay channel.
func (f *File) Frames() <-chan []byte {
	return f.frames
}

// Close stops the replay.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return nil
	}
	f.running = false
	close(f.done)
	return nil
}
