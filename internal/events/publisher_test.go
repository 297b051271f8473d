package events

import (
	"context"
	"testing"

	"speech-translate-service/internal/config"
	"speech-translate-service/internal/models"
)

func TestPublisher_DisabledModeIsNoop(t *testing.T) {
	p := New(&config.KafkaConfig{
		Enabled:          false,
		TopicPartial:     "speech.transcript.partial",
		TopicFinal:       "speech.transcript.final",
		TopicTranslation: "speech.translation",
		Principal:        "svc-test",
	})

	ev := models.TranscriptFinal{
		EventType:   "speech.transcript.final",
		UtteranceID: "u-1",
		SourceLang:  "zh",
		Text:        "你好世界",
		Confidence:  0.95,
	}
	if err := p.PublishFinal(context.Background(), "u-1", ev); err != nil {
		t.Errorf("PublishFinal in disabled mode: %v", err)
	}
	if err := p.PublishPartial(context.Background(), "u-1", ev); err != nil {
		t.Errorf("PublishPartial in disabled mode: %v", err)
	}
	if err := p.PublishTranslation(context.Background(), "u-1", ev); err != nil {
		t.Errorf("PublishTranslation in disabled mode: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPublisher_NilConfig(t *testing.T) {
	p := New(nil)

	if err := p.PublishFinal(context.Background(), "u-1", map[string]string{"text": "你好"}); err != nil {
		t.Errorf("PublishFinal with nil config: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPublisher_UnmarshalableEvent(t *testing.T) {
	p := New(nil)

	if err := p.PublishFinal(context.Background(), "u-1", func() {}); err == nil {
		t.Error("publishing an unmarshalable event succeeded")
	}
}
