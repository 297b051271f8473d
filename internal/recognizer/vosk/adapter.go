// Package vosk provides a recognizer adapter for a vosk-server instance.
//
// vosk-server speaks a small websocket protocol: the client sends one JSON
// config message, then binary PCM frames; the server answers each frame with
// either {"partial": "..."} for an unstable hypothesis or {"text": "..."}
// when a speech segment is finalized. The acoustic model is loaded by the
// server process, not by this client.
package vosk

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"speech-translate-service/internal/recognizer"
)

// Adapter implements recognizer.Adapter over a vosk-server websocket.
type Adapter struct {
	url          string
	sampleRateHz int

	mu     sync.Mutex
	conn   *websocket.Conn
	cb     recognizer.Callback
	closed bool
}

type configMessage struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

type resultMessage struct {
	Partial string `json:"partial"`
	Text    string `json:"text"`
}

// New creates a vosk-server adapter.
func New(url string, sampleRateHz int) *Adapter {
	return &Adapter{url: url, sampleRateHz: sampleRateHz}
}

// Start dials the server, sends the sample-rate config and begins the
// receive loop.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, a.url, nil)
	if err != nil {
		return fmt.Errorf("dial vosk server %s: %w", a.url, err)
	}

	var cfg configMessage
	cfg.Config.SampleRate = a.sampleRateHz
	if err := conn.WriteJSON(cfg); err != nil {
		conn.Close()
		return fmt.Errorf("send vosk config: %w", err)
	}

	a.mu.Lock()
	a.conn = conn
	a.cb = cb
	a.closed = false
	a.mu.Unlock()

	go a.receiveLoop(conn, cb)
	return nil
}

func (a *Adapter) receiveLoop(conn *websocket.Conn, cb recognizer.Callback) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			a.mu.Lock()
			closed := a.closed
			a.mu.Unlock()
			if !closed {
				cb.OnError(err)
			}
			return
		}

		var res resultMessage
		if err := json.Unmarshal(payload, &res); err != nil {
			cb.OnError(fmt.Errorf("parse vosk result: %w", err))
			continue
		}

		switch {
		case res.Text != "":
			// vosk does not report per-segment confidence on this path.
			cb.OnFinal(res.Text, 0)
		case res.Partial != "":
			cb.OnPartial(res.Partial)
		}
	}
}

// SendAudio streams one PCM frame to the server.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("vosk session not started")
	}
	return conn.WriteMessage(websocket.BinaryMessage, audio)
}

// Close sends the end-of-stream marker and closes the connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.conn == nil {
		return nil
	}
	a.closed = true

	// Best effort: ask the server to flush its last segment.
	a.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`))
	err := a.conn.Close()
	a.conn = nil
	return err
}
