package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/upstream"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

const (
	defaultListCount = 20
	maxListCount     = 100
)

// Request/Response types

type UpdateStreamRequest struct {
	Username string  `json:"username"`
	Title    *string `json:"title"`
	Category *string `json:"category"`
	IsPublic *bool   `json:"is_public"`
}

type AttachMediaServerRequest struct {
	Quality  string `json:"quality"`
	IP       string `json:"ip"`
	Region   string `json:"region"`
	MediaURL string `json:"media_url"`
}

type MediaServerResponse struct {
	Quality  string `json:"quality"`
	IP       string `json:"ip"`
	Region   string `json:"region"`
	MediaURL string `json:"media_url"`
}

type StreamResponse struct {
	Creator      string                `json:"creator"`
	Title        string                `json:"title"`
	Category     string                `json:"category"`
	IsPublic     bool                  `json:"is_public"`
	ViewCount    int64                 `json:"view_count"`
	StartedAt    string                `json:"started_at"`
	MediaServers []MediaServerResponse `json:"media_servers"`
}

type StreamInfoResponse struct {
	Title       string               `json:"title"`
	Creator     string               `json:"creator"`
	Category    string               `json:"category"`
	MediaServer *MediaServerResponse `json:"media_server"`
}

type StreamListResponse struct {
	Streams []StreamResponse `json:"streams"`
}

// StreamHandler handles directory and resolution HTTP requests.
type StreamHandler struct {
	directory usecase.DirectoryService
	resolver  usecase.ResolverService
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(directory usecase.DirectoryService, resolver usecase.ResolverService) *StreamHandler {
	return &StreamHandler{directory: directory, resolver: resolver}
}

// Get handles GET /v1/streams/{creator}
func (h *StreamHandler) Get(w http.ResponseWriter, r *http.Request) {
	creator := chi.URLParam(r, "creator")

	stream, err := h.directory.GetByCreator(r.Context(), creator)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toStreamResponse(stream))
}

// Update handles POST /v1/streams/{creator}
func (h *StreamHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Username == "" {
		Error(w, http.StatusBadRequest, "missing_username", "Username is required")
		return
	}

	stream, err := h.directory.UpdateStream(r.Context(), usecase.UpdateStreamInput{
		Creator:  chi.URLParam(r, "creator"),
		Username: req.Username,
		Cookies:  r.Cookies(),
		Update: model.StreamUpdate{
			Title:    req.Title,
			Category: req.Category,
			IsPublic: req.IsPublic,
		},
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toStreamResponse(stream))
}

// Info handles GET /v1/streams/{creator}/info
func (h *StreamHandler) Info(w http.ResponseWriter, r *http.Request) {
	creator := chi.URLParam(r, "creator")
	region := r.URL.Query().Get("region")
	if region == "" {
		Error(w, http.StatusBadRequest, "missing_region", "Region query parameter is required")
		return
	}

	info, err := h.resolver.ResolveStreamInfo(r.Context(), creator, region)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := StreamInfoResponse{
		Title:    info.Title,
		Creator:  info.Creator,
		Category: info.Category,
	}
	if info.MediaServer != nil {
		ms := toMediaServerResponse(*info.MediaServer)
		resp.MediaServer = &ms
	}

	JSON(w, http.StatusOK, resp)
}

// List handles GET /v1/categories/{category}/streams
func (h *StreamHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseNonNegative(q.Get("start"), 0)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_start", "Start must be a non-negative integer")
		return
	}
	count, err := parseNonNegative(q.Get("count"), defaultListCount)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_count", "Count must be a non-negative integer")
		return
	}
	if count > maxListCount {
		count = maxListCount
	}

	streams, err := h.directory.ListByCategory(r.Context(), repository.ListQuery{
		Category: chi.URLParam(r, "category"),
		Region:   q.Get("region"),
		Start:    start,
		Count:    count,
		Ordering: repository.ParseOrdering(q.Get("ordering")),
	})
	if err != nil {
		// A failing listing degrades to an empty page: browse surfaces
		// prefer a blank shelf over an error page.
		JSON(w, http.StatusOK, StreamListResponse{Streams: []StreamResponse{}})
		return
	}

	resp := StreamListResponse{Streams: make([]StreamResponse, 0, len(streams))}
	for _, s := range streams {
		resp.Streams = append(resp.Streams, toStreamResponse(s))
	}

	JSON(w, http.StatusOK, resp)
}

// AttachMediaServer handles POST /v1/streams/{creator}/media-servers
func (h *StreamHandler) AttachMediaServer(w http.ResponseWriter, r *http.Request) {
	var req AttachMediaServerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	server, err := model.NewMediaServer(req.Quality, req.IP, req.Region, req.MediaURL)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_ip", "IP must be a valid IPv4 address")
		return
	}

	if err := h.directory.AttachMediaServer(r.Context(), chi.URLParam(r, "creator"), server); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DetachMediaServer handles DELETE /v1/streams/{creator}/media-servers/{ip}
func (h *StreamHandler) DetachMediaServer(w http.ResponseWriter, r *http.Request) {
	addr, err := model.AddrToInt(chi.URLParam(r, "ip"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_ip", "IP must be a valid IPv4 address")
		return
	}

	if err := h.directory.DetachMediaServer(r.Context(), chi.URLParam(r, "creator"), addr); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StreamHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrStreamNotFound):
		Error(w, http.StatusNotFound, "stream_not_found", "Stream not found")
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", "Title exceeds maximum length")
	case errors.Is(err, model.ErrInvalidAddr):
		Error(w, http.StatusBadRequest, "invalid_ip", "IP must be a valid IPv4 address")
	case errors.Is(err, upstream.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized", "Session is not authorized for this user")
	case errors.Is(err, upstream.ErrUnavailable):
		Error(w, http.StatusBadGateway, "upstream_unavailable", "A collaborator service is unreachable")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func parseNonNegative(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}

func toMediaServerResponse(m model.MediaServer) MediaServerResponse {
	return MediaServerResponse{
		Quality:  m.Quality,
		IP:       m.IP(),
		Region:   m.Region,
		MediaURL: m.MediaURL,
	}
}

func toStreamResponse(s *model.Stream) StreamResponse {
	servers := make([]MediaServerResponse, 0, len(s.MediaServers))
	for _, m := range s.MediaServers {
		servers = append(servers, toMediaServerResponse(m))
	}
	return StreamResponse{
		Creator:      s.Creator,
		Title:        s.Title,
		Category:     s.Category,
		IsPublic:     s.IsPublic,
		ViewCount:    s.ViewCount,
		StartedAt:    s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		MediaServers: servers,
	}
}
