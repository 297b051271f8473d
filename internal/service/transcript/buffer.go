// Package transcript maintains per-language transcript buffers and their
// attached presentation sinks.
package transcript

import (
	"sync"
)

// Record is one finalized line in a transcript buffer. Error records mark
// utterances whose translation failed, so the transcript shows where and why
// content is missing instead of a silent gap.
type Record struct {
	Seq     uint64 `json:"seq"`
	Text    string `json:"text"`
	IsError bool   `json:"isError,omitempty"`
}

// Sink is a live consumer of one buffer's updates (a window, a projection
// view, a websocket client). All deliveries happen while the buffer's lock
// is held, so a sink sees exactly one ordering: the backfill first, then
// every later update. Implementations must not call back into the buffer or
// store from a delivery.
type Sink interface {
	// Backfill delivers the buffer's full current content on attach.
	Backfill(records []Record)

	// Append delivers one newly finalized record.
	Append(rec Record)

	// SetPartial replaces the transient partial line. Partials are
	// display-local and never become records.
	SetPartial(text string)

	// ClearPartial removes the transient partial line.
	ClearPartial()
}

// Buffer is the authoritative, append-only transcript for one language.
// The latest partial (if any) is tracked separately from the records and is
// replaceable, never appended. Safe for concurrent use.
type Buffer struct {
	mu      sync.Mutex
	lang    string
	records []Record
	partial string
	nextSeq uint64
	sink    Sink
}

// NewBuffer creates an empty buffer for a language code.
func NewBuffer(lang string) *Buffer {
	return &Buffer{lang: lang}
}

// Lang returns the buffer's language code.
func (b *Buffer) Lang() string {
	return b.lang
}

// Append adds a finalized record and forwards it to the attached sink.
func (b *Buffer) Append(text string) Record {
	return b.append(text, false)
}

// AppendError adds a visibly marked error record for a failed translation.
func (b *Buffer) AppendError(text string) Record {
	return b.append(text, true)
}

func (b *Buffer) append(text string, isErr bool) Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSeq++
	rec := Record{Seq: b.nextSeq, Text: text, IsError: isErr}
	b.records = append(b.records, rec)
	if b.sink != nil {
		b.sink.Append(rec)
	}
	return rec
}

// SetPartial replaces the transient partial line and notifies the sink.
// The partial is never persisted into the records.
func (b *Buffer) SetPartial(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partial = text
	if b.sink != nil {
		b.sink.SetPartial(text)
	}
}

// ClearPartial drops the transient partial line and notifies the sink.
func (b *Buffer) ClearPartial() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.partial = ""
	if b.sink != nil {
		b.sink.ClearPartial()
	}
}

// Partial returns the current transient partial line.
func (b *Buffer) Partial() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.partial
}

// Records returns a copy of the finalized records. The transient partial is
// not included.
func (b *Buffer) Records() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of finalized records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// toggle attaches the sink when none is present, or detaches the current
// one. The backfill (and any live partial) is delivered under the same lock
// that guards appends, so no record can reach the sink before its backfill
// and none can fall between snapshot and delivery. Returns the detached
// sink (nil on attach) and whether a sink is now attached.
func (b *Buffer) toggle(sink Sink) (Sink, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sink != nil {
		prev := b.sink
		b.sink = nil
		return prev, false
	}

	b.sink = sink
	snapshot := make([]Record, len(b.records))
	copy(snapshot, b.records)
	sink.Backfill(snapshot)
	if b.partial != "" {
		sink.SetPartial(b.partial)
	}
	return nil, true
}

// detach removes the sink, returning the previous one. Records are retained.
func (b *Buffer) detach() Sink {
	b.mu.Lock()
	prev := b.sink
	b.sink = nil
	b.mu.Unlock()
	return prev
}

// detachIf removes the sink only when it is the given one. Reports whether
// a detach happened.
func (b *Buffer) detachIf(sink Sink) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sink != sink {
		return false
	}
	b.sink = nil
	return true
}

// attached reports whether a sink is currently attached.
func (b *Buffer) attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sink != nil
}
