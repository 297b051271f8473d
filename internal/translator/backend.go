// Package translator defines the interface for translation backends.
package translator

import (
	"context"
	"fmt"
)

// Backend translates text between languages. Implementations must be safe
// for concurrent use; the pipeline issues one call per target language for
// every finalized utterance.
type Backend interface {
	// Translate converts text from the source to the target language code.
	// The context carries the per-call deadline.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// StatusError reports a non-2xx response from an HTTP translation service.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translation service returned status %d", e.Status)
}
