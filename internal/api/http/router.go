// Package http exposes the control API: pipeline start/stop, transcript
// reads, export, and websocket streaming of per-language transcripts.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"speech-translate-service/internal/service/transcript"
)

// Controller is the pipeline surface the API drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(ctrl Controller, store *transcript.Store) http.Handler {
	h := &handlers{ctrl: ctrl, store: store}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/pipeline/start", h.startPipeline)
		r.Post("/pipeline/stop", h.stopPipeline)
		r.Get("/pipeline", h.pipelineStatus)
		r.Get("/languages", h.languages)
		r.Get("/transcript/{lang}", h.getTranscript)
		r.Post("/export", h.export)
		r.Get("/stream/{lang}", h.stream)
	})

	return r
}
