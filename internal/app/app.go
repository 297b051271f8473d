// Package app holds process-wide state for the service.
package app

import (
	"time"

	"github.com/rs/zerolog"

	"speech-translate-service/internal/config"
	"speech-translate-service/internal/observability/logging"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration
}

// New constructs a new Application from the provided configuration.
func New(cfg *config.Configuration) *Application {
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	a := &Application{
		Cfg:    cfg,
		Logger: logging.Logger().With().Str("service", cfg.Service.Name).Logger(),
	}

	a.Logger.Info().Msg("Speech translate service application created")
	return a
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Str("recognizer", a.Cfg.Recognizer.Provider).
		Str("translator", a.Cfg.Translator.Provider).
		Int("targetLanguages", len(a.Cfg.Languages.Targets)).
		Msg("Speech translate service starting")
	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Speech translate service shutting down")
}
