// Command speech-translate-service runs the streaming transcription and
// translation pipeline with its control API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	api "speech-translate-service/internal/api/http"
	"speech-translate-service/internal/app"
	"speech-translate-service/internal/audio"
	"speech-translate-service/internal/config"
	"speech-translate-service/internal/events"
	"speech-translate-service/internal/observability"
	"speech-translate-service/internal/recognizer"
	"speech-translate-service/internal/recognizer/google"
	"speech-translate-service/internal/recognizer/mock"
	"speech-translate-service/internal/recognizer/vosk"
	"speech-translate-service/internal/service/pipeline"
	"speech-translate-service/internal/service/transcript"
	"speech-translate-service/internal/translator"
	"speech-translate-service/internal/translator/libre"
	"speech-translate-service/internal/translator/openai"
)

const drainTimeout = 5 * time.Second

func main() {
	cfg := config.Load()
	application := app.New(cfg)

	if err := run(application); err != nil {
		application.Logger.Fatal().Err(err).Msg("Service failed")
	}
}

func run(application *app.Application) error {
	cfg := application.Cfg
	logger := application.Logger

	if err := application.Start(); err != nil {
		return fmt.Errorf("application start: %w", err)
	}

	store := transcript.NewStore(cfg.Languages)
	publisher := events.New(&cfg.Kafka)

	rec, err := newRecognizer(cfg)
	if err != nil {
		return fmt.Errorf("create recognizer: %w", err)
	}

	backend, err := newBackend(cfg)
	if err != nil {
		return fmt.Errorf("create translator: %w", err)
	}

	pipe := pipeline.New(pipeline.Options{
		Source:           newSourceFactory(cfg),
		Recognizer:       rec,
		Backend:          backend,
		Store:            store,
		Publisher:        publisher,
		SourceLang:       cfg.Languages.Source.Code,
		Targets:          cfg.Languages.Targets,
		TranslateTimeout: cfg.Translator.Timeout,
	})

	// Readiness flips on once the control API is up and off again the
	// moment shutdown starts, so orchestrators stop routing before the
	// pipeline drains.
	var ready atomic.Bool
	obsServer := observability.NewServer(":"+cfg.Service.MetricsPort, ready.Load)
	obsServer.Start()

	apiServer := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      api.NewRouter(pipe, store),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", apiServer.Addr).Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("API server failed")
		}
	}()
	ready.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	ready.Store(false)

	pipe.Stop()
	if !pipe.Drain(drainTimeout) {
		logger.Warn().Dur("timeout", drainTimeout).Msg("Translations still in flight at shutdown")
	}
	pipe.Close()

	if path := os.Getenv("EXPORT_PATH"); path != "" {
		if err := store.ExportFile(path); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Transcript export failed")
		} else {
			logger.Info().Str("path", path).Msg("Transcript exported")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API server shutdown failed")
	}
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Observability server shutdown failed")
	}
	if err := publisher.Close(); err != nil {
		logger.Error().Err(err).Msg("Publisher close failed")
	}

	application.Shutdown()
	return nil
}

// newSourceFactory returns a factory that opens a fresh capture source per
// listening session. Sources are single-use; each start gets a new one.
func newSourceFactory(cfg *config.Configuration) pipeline.SourceFactory {
	audioCfg := audio.Config{
		SampleRateHz: cfg.Audio.SampleRateHz,
		FrameSamples: cfg.Audio.FrameSamples,
		QueueFrames:  cfg.Audio.QueueFrames,
		Device:       cfg.Audio.Device,
	}
	return func() (audio.Source, error) {
		switch cfg.Audio.Source {
		case "file":
			return audio.NewFile(cfg.Audio.FilePath, audioCfg), nil
		case "mic":
			return audio.NewMicrophone(audioCfg), nil
		default:
			return nil, fmt.Errorf("unknown audio source %q", cfg.Audio.Source)
		}
	}
}

func newRecognizer(cfg *config.Configuration) (recognizer.Adapter, error) {
	switch cfg.Recognizer.Provider {
	case "vosk":
		return vosk.New(cfg.Recognizer.VoskURL, cfg.Audio.SampleRateHz), nil
	case "google":
		return google.New(context.Background(), google.Config{
			LanguageCode:   cfg.Recognizer.LanguageCode,
			SampleRateHz:   cfg.Audio.SampleRateHz,
			InterimResults: cfg.Recognizer.InterimResults,
		})
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown recognizer provider %q", cfg.Recognizer.Provider)
	}
}

func newBackend(cfg *config.Configuration) (translator.Backend, error) {
	switch cfg.Translator.Provider {
	case "libre":
		return libre.New(cfg.Translator.Endpoint, cfg.Translator.APIKey, cfg.Translator.Timeout), nil
	case "openai":
		return openai.New(cfg.Translator.APIKey, "", cfg.Translator.Model), nil
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.Translator.Provider)
	}
}
