// Package recognizer defines the interface for streaming speech recognizers.
package recognizer

import "context"

// Callback receives recognition results from the provider.
type Callback interface {
	// OnPartial is called when an interim/unstable transcript is received.
	// A partial may be superseded by a later partial or promoted to final.
	OnPartial(text string)

	// OnFinal is called when a stable transcript for a completed speech
	// segment is received. Final results are terminal for their segment.
	OnFinal(text string, confidence float64)

	// OnError is called when an error occurs during recognition.
	OnError(err error)
}

// Adapter defines the interface for recognition providers (vosk-server,
// Google Cloud Speech, mock).
type Adapter interface {
	// Start begins a streaming recognition session.
	Start(ctx context.Context, cb Callback) error

	// SendAudio feeds raw 16-bit mono PCM bytes to the recognizer.
	SendAudio(ctx context.Context, audio []byte) error

	// Close ends the session and releases resources.
	Close() error
}
