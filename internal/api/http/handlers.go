package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"speech-translate-service/internal/service/pipeline"
	"speech-translate-service/internal/service/transcript"
)

type handlers struct {
	ctrl  Controller
	store *transcript.Store
}

type statusResponse struct {
	State string `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type languageResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type transcriptResponse struct {
	Lang    string              `json:"lang"`
	Records []transcript.Record `json:"records"`
	Partial string              `json:"partial,omitempty"`
}

type exportRequest struct {
	Path string `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// startPipeline transitions the pipeline to listening. The pipeline outlives
// the request, so it runs on a background context rather than the request's.
func (h *handlers) startPipeline(w http.ResponseWriter, _ *http.Request) {
	if err := h.ctrl.Start(context.Background()); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{State: "listening"})
}

func (h *handlers) stopPipeline(w http.ResponseWriter, _ *http.Request) {
	h.ctrl.Stop()
	writeJSON(w, http.StatusOK, statusResponse{State: "idle"})
}

func (h *handlers) pipelineStatus(w http.ResponseWriter, _ *http.Request) {
	state := "idle"
	if h.ctrl.Running() {
		state = "listening"
	}
	writeJSON(w, http.StatusOK, statusResponse{State: state})
}

func (h *handlers) languages(w http.ResponseWriter, _ *http.Request) {
	langs := h.store.Languages()
	resp := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		resp = append(resp, languageResponse{Code: l.Code, Name: l.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getTranscript(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	b, err := h.store.Buffer(lang)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, transcriptResponse{
		Lang:    lang,
		Records: b.Records(),
		Partial: b.Partial(),
	})
}

// export writes the full multi-language transcript. With a path in the body
// it writes a file on the server; with an empty body the document streams
// back in the response.
func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if req.Path != "" {
		if err := h.store.ExportFile(req.Path); err != nil {
			if errors.Is(err, transcript.ErrNothingToExport) {
				writeError(w, http.StatusConflict, err)
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.store.Export(w); err != nil {
		if errors.Is(err, transcript.ErrNothingToExport) {
			writeError(w, http.StatusConflict, err)
		}
		return
	}
}
