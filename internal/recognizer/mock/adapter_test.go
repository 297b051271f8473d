package mock

import (
	"context"
	"sync"
	"testing"
)

type captureCallback struct {
	mu       sync.Mutex
	partials []string
	finals   []string
	confs    []float64
	errs     []error
}

func (c *captureCallback) OnPartial(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partials = append(c.partials, text)
}

func (c *captureCallback) OnFinal(text string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finals = append(c.finals, text)
	c.confs = append(c.confs, confidence)
}

func (c *captureCallback) OnError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func TestScripted_EmitsPartialsThenFinal(t *testing.T) {
	a := NewScripted([]SimulatedUtterance{
		{Partials: []string{"你", "你好"}, Final: "你好世界", Confidence: 0.95},
	})
	cb := &captureCallback{}
	if err := a.Start(context.Background(), cb); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := a.SendAudio(context.Background(), make([]byte, 8)); err != nil {
			t.Fatalf("SendAudio: %v", err)
		}
	}

	if len(cb.partials) != 2 || cb.partials[0] != "你" || cb.partials[1] != "你好" {
		t.Errorf("partials = %v", cb.partials)
	}
	if len(cb.finals) != 1 || cb.finals[0] != "你好世界" {
		t.Errorf("finals = %v", cb.finals)
	}
	if cb.confs[0] != 0.95 {
		t.Errorf("confidence = %v, want 0.95", cb.confs[0])
	}
}

func TestScripted_CyclesThroughUtterances(t *testing.T) {
	a := NewScripted([]SimulatedUtterance{
		{Final: "第一句", Confidence: 0.9},
		{Final: "第二句", Confidence: 0.9},
	})
	cb := &captureCallback{}
	a.Start(context.Background(), cb)

	// Three sends wrap around to the first utterance again.
	for i := 0; i < 3; i++ {
		a.SendAudio(context.Background(), nil)
	}

	want := []string{"第一句", "第二句", "第一句"}
	if len(cb.finals) != len(want) {
		t.Fatalf("finals = %v, want %v", cb.finals, want)
	}
	for i, f := range cb.finals {
		if f != want[i] {
			t.Errorf("finals[%d] = %q, want %q", i, f, want[i])
		}
	}
}

func TestScripted_SilentAfterClose(t *testing.T) {
	a := NewScripted([]SimulatedUtterance{{Final: "你好", Confidence: 0.9}})
	cb := &captureCallback{}
	a.Start(context.Background(), cb)

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	a.SendAudio(context.Background(), nil)

	if len(cb.finals) != 0 || len(cb.partials) != 0 {
		t.Error("adapter emitted after Close")
	}
}

func TestScripted_SendWithoutStart(t *testing.T) {
	a := NewScripted([]SimulatedUtterance{{Final: "你好", Confidence: 0.9}})

	if err := a.SendAudio(context.Background(), nil); err != nil {
		t.Errorf("SendAudio before Start = %v, want nil", err)
	}
}
