// Package mock provides a scripted recognizer for testing and for running
// the service without a speech engine. It simulates streaming behavior:
// progressive partial hypotheses as audio arrives, then exactly one final
// transcript per utterance.
package mock

import (
	"context"
	"sync"
	"time"

	"speech-translate-service/internal/recognizer"
)

// SimulatedUtterance is one scripted utterance with progressive partials.
type SimulatedUtterance struct {
	Partials   []string
	Final      string
	Confidence float64
}

// DefaultUtterances provides sample Chinese utterances for simulation.
var DefaultUtterances = []SimulatedUtterance{
	{
		Partials:   []string{"你", "你好", "你好 世界"},
		Final:      "你好世界",
		Confidence: 0.95,
	},
	{
		Partials:   []string{"今天", "今天 天气"},
		Final:      "今天天气很好",
		Confidence: 0.92,
	},
	{
		Partials:   []string{"我们", "我们 开始"},
		Final:      "我们开始吧",
		Confidence: 0.97,
	},
	{
		Partials:   []string{"谢谢"},
		Final:      "谢谢大家",
		Confidence: 0.98,
	},
}

// Adapter implements recognizer.Adapter with scripted responses. It cycles
// through its utterances, emitting one partial per audio frame and a final
// once an utterance's partials are exhausted.
type Adapter struct {
	mu           sync.Mutex
	cb           recognizer.Callback
	utterances   []SimulatedUtterance
	uttIndex     int
	partialIndex int
	delay        time.Duration
	closed       bool
}

// New creates a mock adapter cycling through DefaultUtterances.
func New() *Adapter {
	return &Adapter{
		utterances: DefaultUtterances,
		delay:      50 * time.Millisecond,
	}
}

// NewScripted creates a mock adapter with a custom script and no artificial
// delay, for deterministic tests.
func NewScripted(utterances []SimulatedUtterance) *Adapter {
	return &Adapter{utterances: utterances}
}

// Start records the callback receiver.
func (a *Adapter) Start(ctx context.Context, cb recognizer.Callback) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cb = cb
	a.closed = false
	return nil
}

// SendAudio advances the script: the next partial if one remains, otherwise
// the utterance's final, then moves on to the next utterance.
func (a *Adapter) SendAudio(ctx context.Context, audio []byte) error {
	a.mu.Lock()

	if a.closed || a.cb == nil || len(a.utterances) == 0 {
		a.mu.Unlock()
		return nil
	}

	cb := a.cb
	utt := a.utterances[a.uttIndex%len(a.utterances)]

	var deliver func()
	if a.partialIndex < len(utt.Partials) {
		partial := utt.Partials[a.partialIndex]
		a.partialIndex++
		deliver = func() { cb.OnPartial(partial) }
	} else {
		a.uttIndex++
		a.partialIndex = 0
		deliver = func() { cb.OnFinal(utt.Final, utt.Confidence) }
	}
	delay := a.delay
	a.mu.Unlock()

	if delay == 0 {
		deliver()
		return nil
	}
	// Mimic engine processing time.
	go func() {
		time.Sleep(delay)
		a.mu.Lock()
		closed := a.closed
		a.mu.Unlock()
		if !closed {
			deliver()
		}
	}()
	return nil
}

// Close ends the session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}
