package transcript

import (
	"sync"
	"testing"
)

type testSink struct {
	mu       sync.Mutex
	backfill []Record
	appended []Record
	partials []string
	clears   int
}

func (s *testSink) Backfill(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backfill = records
}

func (s *testSink) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, rec)
}

func (s *testSink) SetPartial(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partials = append(s.partials, text)
}

func (s *testSink) ClearPartial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
}

func TestBuffer_AppendAssignsSequence(t *testing.T) {
	b := NewBuffer("en")

	r1 := b.Append("hello")
	r2 := b.Append("world")
	r3 := b.AppendError("⚠️ timeout")

	if r1.Seq != 1 || r2.Seq != 2 || r3.Seq != 3 {
		t.Errorf("sequences = %d, %d, %d, want 1, 2, 3", r1.Seq, r2.Seq, r3.Seq)
	}
	if !r3.IsError {
		t.Error("AppendError record not marked as error")
	}
	if r1.IsError || r2.IsError {
		t.Error("Append records marked as error")
	}
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
}

func TestBuffer_PartialIsNotARecord(t *testing.T) {
	b := NewBuffer("en")

	b.SetPartial("hel")
	b.SetPartial("hello")
	if b.Len() != 0 {
		t.Errorf("Len = %d after partials, want 0", b.Len())
	}
	if got := b.Partial(); got != "hello" {
		t.Errorf("Partial = %q, want %q", got, "hello")
	}

	b.ClearPartial()
	if got := b.Partial(); got != "" {
		t.Errorf("Partial = %q after clear, want empty", got)
	}
}

func TestBuffer_SinkReceivesUpdates(t *testing.T) {
	b := NewBuffer("en")
	b.Append("before attach")

	sink := &testSink{}
	if _, attached := b.toggle(sink); !attached {
		t.Fatal("toggle did not attach")
	}
	sink.mu.Lock()
	if len(sink.backfill) != 1 || sink.backfill[0].Text != "before attach" {
		t.Fatalf("backfill = %v, want the pre-attach record", sink.backfill)
	}
	sink.mu.Unlock()

	b.Append("after attach")
	b.SetPartial("typing")
	b.ClearPartial()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.appended) != 1 || sink.appended[0].Text != "after attach" {
		t.Errorf("appended = %v, want only the post-attach record", sink.appended)
	}
	if len(sink.partials) != 1 || sink.partials[0] != "typing" {
		t.Errorf("partials = %v, want [typing]", sink.partials)
	}
	if sink.clears != 1 {
		t.Errorf("clears = %d, want 1", sink.clears)
	}
}

func TestBuffer_DetachStopsUpdates(t *testing.T) {
	b := NewBuffer("en")
	sink := &testSink{}
	b.toggle(sink)

	prev := b.detach()
	if prev != Sink(sink) {
		t.Error("detach did not return the attached sink")
	}

	b.Append("after detach")
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.appended) != 0 {
		t.Errorf("detached sink received %v", sink.appended)
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, records must survive detach", b.Len())
	}
}

func TestBuffer_DetachIf(t *testing.T) {
	b := NewBuffer("en")
	first := &testSink{}
	second := &testSink{}

	b.toggle(first)
	if b.detachIf(second) {
		t.Error("detachIf removed a sink it does not own")
	}
	if !b.detachIf(first) {
		t.Error("detachIf refused to remove its own sink")
	}
	if b.attached() {
		t.Error("sink still attached after detachIf")
	}
}

// orderedSink records every delivery into one event log, so tests can
// assert the ordering a sink actually observes.
type orderedSink struct {
	mu     sync.Mutex
	events []orderedEvent
}

type orderedEvent struct {
	kind string // "backfill" or "append"
	seqs []uint64
}

func (s *orderedSink) Backfill(records []Record) {
	seqs := make([]uint64, len(records))
	for i, r := range records {
		seqs[i] = r.Seq
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, orderedEvent{kind: "backfill", seqs: seqs})
}

func (s *orderedSink) Append(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, orderedEvent{kind: "append", seqs: []uint64{rec.Seq}})
}

func (s *orderedSink) SetPartial(string) {}
func (s *orderedSink) ClearPartial()     {}

func TestBuffer_AttachDuringAppendsBackfillsFirst(t *testing.T) {
	const writers = 4
	const perWriter = 200

	b := NewBuffer("en")

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b.Append("text")
			}
		}()
	}

	sink := &orderedSink{}
	if _, attached := b.toggle(sink); !attached {
		t.Fatal("toggle did not attach")
	}
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) == 0 || sink.events[0].kind != "backfill" {
		t.Fatal("sink's first delivery was not the backfill")
	}

	// The backfill plus the appends in delivery order must form the full
	// contiguous sequence: no record before its backfill, none skipped,
	// none duplicated.
	var seqs []uint64
	for i, ev := range sink.events {
		if i > 0 && ev.kind != "append" {
			t.Fatalf("event %d is %q, want a single leading backfill", i, ev.kind)
		}
		seqs = append(seqs, ev.seqs...)
	}
	if len(seqs) != writers*perWriter {
		t.Fatalf("sink observed %d records, want %d", len(seqs), writers*perWriter)
	}
	for i, seq := range seqs {
		if seq != uint64(i+1) {
			t.Fatalf("delivery %d has seq %d, want %d", i, seq, i+1)
		}
	}
}

func TestBuffer_RecordsReturnsCopy(t *testing.T) {
	b := NewBuffer("en")
	b.Append("hello")

	records := b.Records()
	records[0].Text = "mutated"

	if got := b.Records()[0].Text; got != "hello" {
		t.Errorf("buffer record = %q, caller mutation leaked", got)
	}
}
