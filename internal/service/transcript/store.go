package transcript

import (
	"errors"
	"fmt"

	"speech-translate-service/internal/config"
	"speech-translate-service/internal/observability/metrics"
)

// Errors surfaced to callers.
var (
	ErrUnknownLanguage = errors.New("unknown language code")
	ErrNothingToExport = errors.New("nothing to export")
)

// Store owns one buffer per configured language: the source language first,
// then the targets in configured order. Buffers live for the process's
// lifetime; sinks come and go. Attach and detach are serialized per buffer,
// so a slow sink delivery on one language never blocks another.
type Store struct {
	order   []config.Language
	buffers map[string]*Buffer
	metrics *metrics.Metrics
}

// NewStore creates buffers for the source and every target language.
func NewStore(langs config.LanguagesConfig) *Store {
	order := append([]config.Language{langs.Source}, langs.Targets...)
	buffers := make(map[string]*Buffer, len(order))
	for _, l := range order {
		buffers[l.Code] = NewBuffer(l.Code)
	}
	return &Store{
		order:   order,
		buffers: buffers,
		metrics: metrics.DefaultMetrics,
	}
}

// Languages returns the configured languages, source first.
func (s *Store) Languages() []config.Language {
	out := make([]config.Language, len(s.order))
	copy(out, s.order)
	return out
}

// Buffer returns the buffer for a language code.
func (s *Store) Buffer(lang string) (*Buffer, error) {
	b, ok := s.buffers[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, lang)
	}
	return b, nil
}

// Toggle models open/close of a language view: when no sink is attached, the
// given sink is attached and backfilled with the buffer's current content;
// when one is attached, it is detached instead. Returns the detached sink
// (nil on attach) and whether the language is now attached.
func (s *Store) Toggle(lang string, sink Sink) (detached Sink, attached bool, err error) {
	b, err := s.Buffer(lang)
	if err != nil {
		return nil, false, err
	}

	prev, attached := b.toggle(sink)
	if attached {
		s.metrics.SinksAttached.Inc()
	} else {
		s.metrics.SinksAttached.Dec()
	}
	return prev, attached, nil
}

// DetachSink removes the given sink from a language only if it is still the
// attached one. Lets a disconnecting consumer clean up without clobbering a
// replacement that attached in the meantime.
func (s *Store) DetachSink(lang string, sink Sink) bool {
	b, err := s.Buffer(lang)
	if err != nil {
		return false
	}

	if !b.detachIf(sink) {
		return false
	}
	s.metrics.SinksAttached.Dec()
	return true
}

// Detach removes the sink for a language, if any. Buffer content is retained.
func (s *Store) Detach(lang string) (Sink, error) {
	b, err := s.Buffer(lang)
	if err != nil {
		return nil, err
	}

	prev := b.detach()
	if prev != nil {
		s.metrics.SinksAttached.Dec()
	}
	return prev, nil
}
