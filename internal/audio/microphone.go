package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"speech-translate-service/internal/observability/logging"
	"speech-translate-service/internal/observability/metrics"
)

// Microphone captures PCM frames from an input device via PortAudio.
type Microphone struct {
	mu      sync.Mutex
	cfg     Config
	stream  *portaudio.Stream
	frames  chan []byte
	running bool
	done    chan struct{}
}

// NewMicrophone creates a microphone source. PortAudio is initialized on
// Start and terminated on Close.
func NewMicrophone(cfg Config) *Microphone {
	queue := cfg.QueueFrames
	if queue <= 0 {
		queue = 256
	}
	return &Microphone{
		cfg:    cfg,
		frames: make(chan []byte, queue),
		done:   make(chan struct{}),
	}
}

// Start opens the input device and begins the capture goroutine.
func (m *Microphone) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("microphone already running")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	buffer := make([]int16, m.cfg.FrameSamples)

	stream, err := m.openStream(buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start audio stream: %w", err)
	}

	m.stream = stream
	m.running = true

	go m.captureLoop(ctx, buffer)
	return nil
}

func (m *Microphone) openStream(buffer []int16) (*portaudio.Stream, error) {
	if m.cfg.Device != "" && m.cfg.Device != "default" {
		if dev, err := findInputDevice(m.cfg.Device); err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   dev,
					Channels: 1,
					Latency:  dev.DefaultLowInputLatency,
				},
				SampleRate:      float64(m.cfg.SampleRateHz),
				FramesPerBuffer: m.cfg.FrameSamples,
			}
			return portaudio.OpenStream(params, buffer)
		}
		// Named device not found, fall back to default input.
		logging.WithComponent("audio").Warn().
			Str("device", m.cfg.Device).
			Msg("Input device not found, using default")
	}
	return portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRateHz), m.cfg.FrameSamples, buffer)
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("input device not found: %s", name)
}

func (m *Microphone) captureLoop(ctx context.Context, buffer []int16) {
	mtr := metrics.DefaultMetrics
	defer close(m.frames)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		default:
		}

		m.mu.Lock()
		stream := m.stream
		running := m.running
		m.mu.Unlock()
		if !running || stream == nil {
			return
		}

		if err := stream.Read(); err != nil {
			m.mu.Lock()
			still := m.running
			m.mu.Unlock()
			if !still {
				return
			}
			continue
		}

		frame := make([]byte, len(buffer)*2)
		for i, s := range buffer {
			binary.LittleEndian.PutUint16(frame[i*2:], uint16(s))
		}

		mtr.FramesCaptured.Inc()
		mtr.BytesCaptured.Add(float64(len(frame)))

		select {
		case m.frames <- frame:
		default:
			// Consumer lagging behind real-time capture: drop the oldest
			// frame to make room rather than grow without bound.
			select {
			case <-m.frames:
				mtr.FramesDropped.Inc()
			default:
			}
			select {
			case m.frames <- frame:
			default:
			}
		}
	}
}

// Frames returns the capture channel.
func (m *Microphone) Frames() <-chan []byte {
	return m.frames
}

// Close stops capture and releases the device.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil
	}
	m.running = false
	close(m.done)

	var err error
	if m.stream != nil {
		m.stream.Stop()
		err = m.stream.Close()
		m.stream = nil
	}
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}
	return err
}
