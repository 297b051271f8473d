// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Language pairs a language code with its display name.
type Language struct {
	Code string
	Name string
}

// ServiceConfig holds service identity and ports.
type ServiceConfig struct {
	Name        string
	HTTPPort    string
	MetricsPort string
}

// AudioConfig holds microphone capture settings.
type AudioConfig struct {
	Source       string // "mic" or "file"
	Device       string // input device name, empty for default
	FilePath     string // PCM file for the "file" source
	SampleRateHz int
	FrameSamples int // samples per captured frame
	QueueFrames  int // frame queue capacity between capture and recognition
}

// RecognizerConfig holds speech recognizer settings.
type RecognizerConfig struct {
	Provider       string // "vosk", "google" or "mock"
	VoskURL        string // vosk-server websocket endpoint
	LanguageCode   string // BCP-47 code for the google provider
	InterimResults bool
}

// TranslatorConfig holds translation backend settings.
type TranslatorConfig struct {
	Provider string // "libre" or "openai"
	Endpoint string // LibreTranslate endpoint
	APIKey   string
	Model    string // chat model for the openai provider
	Timeout  time.Duration
}

// LanguagesConfig holds the source language and the ordered target set.
type LanguagesConfig struct {
	Source  Language
	Targets []Language
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	TopicPartial     string
	TopicFinal       string
	TopicTranslation string
	Principal        string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // "json" or "console"
}

// Configuration is the root configuration for the service.
type Configuration struct {
	Service       ServiceConfig
	Audio         AudioConfig
	Recognizer    RecognizerConfig
	Translator    TranslatorConfig
	Languages     LanguagesConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults.
func Load() *Configuration {
	return &Configuration{
		Service: ServiceConfig{
			Name:        envOrDefault("SERVICE_NAME", "speech-translate-service"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Audio: AudioConfig{
			Source:       envOrDefault("AUDIO_SOURCE", "mic"),
			Device:       os.Getenv("AUDIO_DEVICE"),
			FilePath:     os.Getenv("AUDIO_FILE"),
			SampleRateHz: envIntOrDefault("AUDIO_SAMPLE_RATE_HZ", 16000),
			FrameSamples: envIntOrDefault("AUDIO_FRAME_SAMPLES", 4000),
			QueueFrames:  envIntOrDefault("AUDIO_QUEUE_FRAMES", 256),
		},
		Recognizer: RecognizerConfig{
			Provider:       envOrDefault("RECOGNIZER_PROVIDER", "mock"),
			VoskURL:        envOrDefault("VOSK_SERVER_URL", "ws://localhost:2700"),
			LanguageCode:   envOrDefault("RECOGNIZER_LANGUAGE_CODE", "zh-CN"),
			InterimResults: envBoolOrDefault("RECOGNIZER_INTERIM_RESULTS", true),
		},
		Translator: TranslatorConfig{
			Provider: envOrDefault("TRANSLATOR_PROVIDER", "libre"),
			Endpoint: envOrDefault("TRANSLATOR_ENDPOINT", "http://localhost:5000/translate"),
			APIKey:   os.Getenv("TRANSLATOR_API_KEY"),
			Model:    envOrDefault("TRANSLATOR_MODEL", "gpt-4o-mini"),
			Timeout:  envDurationOrDefault("TRANSLATOR_TIMEOUT", 10*time.Second),
		},
		Languages: LanguagesConfig{
			Source: Language{
				Code: envOrDefault("SOURCE_LANG", "zh"),
				Name: envOrDefault("SOURCE_LANG_NAME", "Chinese"),
			},
			Targets: parseLanguages(envOrDefault("TARGET_LANGS",
				"en:English,tl:Tagalog,id:Indonesian,th:Thai,vi:Vietnamese")),
		},
		Kafka: KafkaConfig{
			Enabled:          envBoolOrDefault("KAFKA_ENABLED", false),
			Brokers:          splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			TopicPartial:     envOrDefault("KAFKA_TOPIC_PARTIAL", "speech.transcript.partial"),
			TopicFinal:       envOrDefault("KAFKA_TOPIC_FINAL", "speech.transcript.final"),
			TopicTranslation: envOrDefault("KAFKA_TOPIC_TRANSLATION", "speech.translation"),
			Principal:        envOrDefault("SERVICE_PRINCIPAL", "svc-speech-translate"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

// parseLanguages parses an ordered "code:Name,code:Name" list.
// Entries without a display name use the code as the name.
func parseLanguages(s string) []Language {
	var langs []Language
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		code, name, found := strings.Cut(entry, ":")
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		name = strings.TrimSpace(name)
		if !found || name == "" {
			name = code
		}
		langs = append(langs, Language{Code: code, Name: name})
	}
	return langs
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBoolOrDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationOrDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
