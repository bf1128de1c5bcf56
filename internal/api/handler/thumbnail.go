package handler

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

// ThumbnailHandler serves still-frame previews of live streams.
type ThumbnailHandler struct {
	svc usecase.ThumbnailService
}

// NewThumbnailHandler creates a new ThumbnailHandler.
func NewThumbnailHandler(svc usecase.ThumbnailService) *ThumbnailHandler {
	return &ThumbnailHandler{svc: svc}
}

// Get handles GET /v1/streams/{creator}/thumbnail
func (h *ThumbnailHandler) Get(w http.ResponseWriter, r *http.Request) {
	creator := chi.URLParam(r, "creator")

	path, err := h.svc.GetOrRefresh(r.Context(), creator)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, path)
	case errors.Is(err, repository.ErrStreamNotFound):
		Error(w, http.StatusNotFound, "stream_not_found", "Stream not found")
	case errors.Is(err, usecase.ErrThumbnailGeneration):
		h.serveStale(w, r, creator)
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// serveStale falls back to the last successful capture when a fresh one
// could not be taken. A stale preview beats no preview.
func (h *ThumbnailHandler) serveStale(w http.ResponseWriter, r *http.Request, creator string) {
	path := h.svc.Path(creator)
	if _, err := os.Stat(path); err != nil {
		Error(w, http.StatusNotFound, "thumbnail_unavailable", "No thumbnail could be generated")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, path)
}
