package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePCM(t *testing.T, samples int) string {
	t.Helper()
	data := make([]byte, samples*2)
	for i := range data {
		data[i] = byte(i)
	}
	path := filepath.Join(t.TempDir(), "audio.pcm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestFile_ReplaysWholeFileInFrames(t *testing.T) {
	cfg := Config{SampleRateHz: 16000, FrameSamples: 160, QueueFrames: 16}
	path := writePCM(t, 3*cfg.FrameSamples)

	src := NewFile(path, cfg)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer src.Close()

	var frames [][]byte
	timeout := time.After(2 * time.Second)
	for {
		select {
		case frame, ok := <-src.Frames():
			if !ok {
				if len(frames) != 3 {
					t.Fatalf("got %d frames, want 3", len(frames))
				}
				for i, f := range frames {
					if len(f) != cfg.FrameBytes() {
						t.Errorf("frame %d size = %d, want %d", i, len(f), cfg.FrameBytes())
					}
				}
				return
			}
			frames = append(frames, frame)
		case <-timeout:
			t.Fatalf("timed out, got %d frames", len(frames))
		}
	}
}

func TestFile_ShortTailFrameDelivered(t *testing.T) {
	cfg := Config{SampleRateHz: 16000, FrameSamples: 160, QueueFrames: 16}
	path := writePCM(t, cfg.FrameSamples+10)

	src := NewFile(path, cfg)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer src.Close()

	var sizes []int
	timeout := time.After(2 * time.Second)
	for {
		select {
		case frame, ok := <-src.Frames():
			if !ok {
				if len(sizes) != 2 || sizes[0] != cfg.FrameBytes() || sizes[1] != 20 {
					t.Errorf("frame sizes = %v, want [%d 20]", sizes, cfg.FrameBytes())
				}
				return
			}
			sizes = append(sizes, len(frame))
		case <-timeout:
			t.Fatalf("timed out, frame sizes so far %v", sizes)
		}
	}
}

func TestFile_MissingFile(t *testing.T) {
	src := NewFile(filepath.Join(t.TempDir(), "absent.pcm"), Config{SampleRateHz: 16000, FrameSamples: 160})

	if err := src.Start(context.Background()); err == nil {
		t.Error("Start succeeded for a missing file")
	}
}

func TestFile_CloseStopsReplay(t *testing.T) {
	cfg := Config{SampleRateHz: 16000, FrameSamples: 160, QueueFrames: 4}
	path := writePCM(t, 100*cfg.FrameSamples)

	src := NewFile(path, cfg)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	src.Close()

	// The frame channel closes once the replay loop observes the stop.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-src.Frames():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("frame channel not closed after Close")
		}
	}
}
