package handler

import (
	"errors"
	"net/http"

	"github.com/hszk-dev/streamdir/internal/upstream"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

// AdmissionHandler terminates the ingest instance's publish callbacks. The
// ingest side speaks form-encoded callbacks, not JSON: on publish it sends
// the stream key as "name" plus the publisher's "addr", and expects a 302
// whose Location is the rewritten stream name.
type AdmissionHandler struct {
	svc usecase.AdmissionService
}

// NewAdmissionHandler creates a new AdmissionHandler.
func NewAdmissionHandler(svc usecase.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{svc: svc}
}

// Start handles POST /v1/ingest/start
func (h *AdmissionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Malformed form body")
		return
	}

	ingestKey := r.PostFormValue("name")
	if ingestKey == "" {
		Error(w, http.StatusBadRequest, "missing_name", "Stream key is required")
		return
	}

	creator, err := h.svc.StartStream(r.Context(), ingestKey, r.PostFormValue("addr"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	// Redirect target is the resolved creator name; the ingest instance
	// republishes the stream under it.
	w.Header().Set("Location", creator)
	w.WriteHeader(http.StatusFound)
}

// Stop handles POST /v1/ingest/stop
func (h *AdmissionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Malformed form body")
		return
	}

	ingestKey := r.PostFormValue("name")
	if ingestKey == "" {
		Error(w, http.StatusBadRequest, "missing_name", "Stream key is required")
		return
	}

	if err := h.svc.StopStream(r.Context(), ingestKey); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *AdmissionHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, upstream.ErrKeyRejected):
		Error(w, http.StatusNotFound, "unknown_stream_key", "Stream key does not match any creator")
	case errors.Is(err, usecase.ErrAlreadyLive):
		Error(w, http.StatusConflict, "already_live", "Creator already has a live stream")
	case errors.Is(err, upstream.ErrUnavailable):
		Error(w, http.StatusBadGateway, "upstream_unavailable", "Key matching service is unreachable")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
