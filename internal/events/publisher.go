// Package events publishes transcript and translation events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"speech-translate-service/internal/config"
	"speech-translate-service/internal/observability/metrics"
)

// Publisher publishes pipeline events to per-kind Kafka topics. When
// disabled it degrades to log-only mode, which is the default for local use.
type Publisher struct {
	writerPartial     *kafka.Writer
	writerFinal       *kafka.Writer
	writerTranslation *kafka.Writer
	principal         string
	topicPartial      string
	topicFinal        string
	topicTranslation  string
	enabled           bool
	metrics           *metrics.Metrics
}

// New creates a Kafka event publisher from configuration.
func New(cfg *config.KafkaConfig) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{enabled: false, metrics: m}
	}

	p := &Publisher{
		principal:        cfg.Principal,
		topicPartial:     cfg.TopicPartial,
		topicFinal:       cfg.TopicFinal,
		topicTranslation: cfg.TopicTranslation,
		metrics:          m,
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{Dial: dialer.DialFunc}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	p.writerPartial = newWriter(cfg.TopicPartial)
	p.writerFinal = newWriter(cfg.TopicFinal)
	p.writerTranslation = newWriter(cfg.TopicTranslation)
	p.enabled = true

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicPartial", cfg.TopicPartial).
		Str("topicFinal", cfg.TopicFinal).
		Str("topicTranslation", cfg.TopicTranslation).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return p
}

// PublishPartial publishes a partial transcript event.
func (p *Publisher) PublishPartial(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerPartial, p.topicPartial, "partial", key, event)
}

// PublishFinal publishes a final transcript event.
func (p *Publisher) PublishFinal(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerFinal, p.topicFinal, "final", key, event)
}

// PublishTranslation publishes a translation completion or failure event.
func (p *Publisher) PublishTranslation(ctx context.Context, key string, event any) error {
	return p.publish(ctx, p.writerTranslation, p.topicTranslation, "translation", key, event)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(topic)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes all Kafka writers.
func (p *Publisher) Close() error {
	var err error
	for _, w := range []*kafka.Writer{p.writerPartial, p.writerFinal, p.writerTranslation} {
		if w == nil {
			continue
		}
		if e := w.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing Kafka writer")
			err = e
		}
	}
	return err
}
