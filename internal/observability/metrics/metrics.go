// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_translate"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Pipeline metrics
	PipelineStarts prometheus.Counter
	PipelineStops  prometheus.Counter
	PipelineActive prometheus.Gauge

	// Audio metrics
	FramesCaptured prometheus.Counter
	FramesDropped  prometheus.Counter
	BytesCaptured  prometheus.Counter

	// Recognition metrics
	PartialsTotal    prometheus.Counter
	PartialsDeduped  prometheus.Counter
	FinalsTotal      prometheus.Counter
	RecognizerErrors prometheus.Counter

	// Translation metrics
	TranslationsTotal  *prometheus.CounterVec // labels: lang, outcome
	TranslationLatency *prometheus.HistogramVec
	TranslationsQueued *prometheus.GaugeVec

	// Sink metrics
	SinksAttached prometheus.Gauge

	// Export metrics
	ExportsTotal  prometheus.Counter
	ExportsFailed prometheus.Counter

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PipelineStarts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_starts_total",
			Help:      "Number of times the pipeline entered the listening state",
		}),
		PipelineStops: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stops_total",
			Help:      "Number of times the pipeline was stopped",
		}),
		PipelineActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_active",
			Help:      "1 while the pipeline is listening, 0 otherwise",
		}),
		FramesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_captured_total",
			Help:      "Audio frames pulled from the capture device",
		}),
		FramesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_dropped_total",
			Help:      "Audio frames dropped because the frame queue was full",
		}),
		BytesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_captured_total",
			Help:      "Raw PCM bytes pulled from the capture device",
		}),
		PartialsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_partials_total",
			Help:      "Partial recognition results received",
		}),
		PartialsDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_partials_deduped_total",
			Help:      "Partial results skipped because the text did not change",
		}),
		FinalsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_finals_total",
			Help:      "Finalized utterances received",
		}),
		RecognizerErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_errors_total",
			Help:      "Errors reported by the speech recognizer",
		}),
		TranslationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation calls by target language and outcome",
		}, []string{"lang", "outcome"}),
		TranslationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translation_latency_seconds",
			Help:      "Translation backend latency by target language",
			Buckets:   prometheus.DefBuckets,
		}, []string{"lang"}),
		TranslationsQueued: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "translations_queued",
			Help:      "Translation jobs waiting in per-language dispatch queues",
		}, []string{"lang"}),
		SinksAttached: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sinks_attached",
			Help:      "Presentation sinks currently attached to transcript buffers",
		}),
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Successful transcript exports",
		}),
		ExportsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_failed_total",
			Help:      "Failed transcript exports",
		}),
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Kafka publish attempts by topic and event type",
		}, []string{"topic", "eventType"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Kafka publish failures by topic and event type",
		}, []string{"topic", "eventType"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency by topic",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
	}
}

// RecordTranslation records the outcome and latency of one translation call.
func (m *Metrics) RecordTranslation(lang string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.TranslationsTotal.WithLabelValues(lang, outcome).Inc()
	m.TranslationLatency.WithLabelValues(lang).Observe(d.Seconds())
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, seconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(seconds)
}
