package transcript

import (
	"errors"
	"testing"
	"time"

	"speech-translate-service/internal/config"
)

func testLangs() config.LanguagesConfig {
	return config.LanguagesConfig{
		Source: config.Language{Code: "zh", Name: "Chinese"},
		Targets: []config.Language{
			{Code: "en", Name: "English"},
			{Code: "th", Name: "Thai"},
		},
	}
}

func TestStore_LanguagesSourceFirst(t *testing.T) {
	s := NewStore(testLangs())

	langs := s.Languages()
	if len(langs) != 3 {
		t.Fatalf("Languages len = %d, want 3", len(langs))
	}
	if langs[0].Code != "zh" {
		t.Errorf("first language = %s, want the source zh", langs[0].Code)
	}
	if langs[1].Code != "en" || langs[2].Code != "th" {
		t.Errorf("targets = %s, %s, want configured order en, th", langs[1].Code, langs[2].Code)
	}
}

func TestStore_BufferUnknownLanguage(t *testing.T) {
	s := NewStore(testLangs())

	if _, err := s.Buffer("fr"); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("Buffer(fr) err = %v, want ErrUnknownLanguage", err)
	}
}

func TestStore_ToggleAttachesThenDetaches(t *testing.T) {
	s := NewStore(testLangs())
	b, _ := s.Buffer("en")
	b.Append("first")
	b.Append("second")

	sink := &testSink{}
	detached, attached, err := s.Toggle("en", sink)
	if err != nil || !attached || detached != nil {
		t.Fatalf("first Toggle = (%v, %v, %v), want attach", detached, attached, err)
	}

	sink.mu.Lock()
	if len(sink.backfill) != 2 || sink.backfill[0].Text != "first" || sink.backfill[1].Text != "second" {
		t.Errorf("backfill = %v, want the full existing transcript", sink.backfill)
	}
	sink.mu.Unlock()

	detached, attached, err = s.Toggle("en", &testSink{})
	if err != nil || attached {
		t.Fatalf("second Toggle = (%v, %v), want detach", attached, err)
	}
	if detached != Sink(sink) {
		t.Error("second Toggle did not return the previously attached sink")
	}

	b.Append("third")
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.appended) != 0 {
		t.Errorf("detached sink received %v", sink.appended)
	}
}

func TestStore_ToggleBackfillsCurrentPartial(t *testing.T) {
	s := NewStore(testLangs())
	b, _ := s.Buffer("zh")
	b.SetPartial("你好")

	sink := &testSink{}
	if _, attached, err := s.Toggle("zh", sink); err != nil || !attached {
		t.Fatalf("Toggle: attached=%v err=%v", attached, err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.partials) != 1 || sink.partials[0] != "你好" {
		t.Errorf("partials = %v, want the live partial delivered on attach", sink.partials)
	}
}

func TestStore_ToggleUnknownLanguage(t *testing.T) {
	s := NewStore(testLangs())

	if _, _, err := s.Toggle("fr", &testSink{}); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("Toggle(fr) err = %v, want ErrUnknownLanguage", err)
	}
}

func TestStore_ReattachBackfillsEverything(t *testing.T) {
	s := NewStore(testLangs())
	b, _ := s.Buffer("en")

	sink := &testSink{}
	s.Toggle("en", sink)
	b.Append("while open")
	s.Toggle("en", nil) // detach; the argument is unused on detach
	b.Append("while closed")

	reattached := &testSink{}
	s.Toggle("en", reattached)

	reattached.mu.Lock()
	defer reattached.mu.Unlock()
	want := []string{"while open", "while closed"}
	if len(reattached.backfill) != len(want) {
		t.Fatalf("backfill = %v, want %v", reattached.backfill, want)
	}
	for i, rec := range reattached.backfill {
		if rec.Text != want[i] {
			t.Errorf("backfill[%d] = %q, want %q", i, rec.Text, want[i])
		}
	}
}

func TestStore_DetachSinkOnlyRemovesOwn(t *testing.T) {
	s := NewStore(testLangs())
	first := &testSink{}
	second := &testSink{}

	s.Toggle("en", first)
	if s.DetachSink("en", second) {
		t.Error("DetachSink removed a sink it does not own")
	}
	if !s.DetachSink("en", first) {
		t.Error("DetachSink refused its own sink")
	}
	if s.DetachSink("en", first) {
		t.Error("DetachSink succeeded twice")
	}
}

// blockingSink stalls its backfill until released, standing in for a sink
// with a slow consumer behind it.
type blockingSink struct {
	testSink
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSink) Backfill(records []Record) {
	close(s.entered)
	<-s.release
	s.testSink.Backfill(records)
}

func TestStore_SlowAttachDoesNotBlockOtherLanguages(t *testing.T) {
	s := NewStore(testLangs())
	slow := &blockingSink{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	defer close(slow.release)

	go s.Toggle("en", slow)

	select {
	case <-slow.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the slow attach to start")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Toggle("th", &testSink{})
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("attach on th blocked behind a slow attach on en")
	}
}

func TestStore_DetachWithoutSink(t *testing.T) {
	s := NewStore(testLangs())

	prev, err := s.Detach("en")
	if err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if prev != nil {
		t.Errorf("Detach returned %v with nothing attached", prev)
	}
}
