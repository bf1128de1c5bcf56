package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hszk-dev/streamdir/internal/config"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
	"github.com/hszk-dev/streamdir/internal/thumbnail"
)

// ErrThumbnailGeneration is returned when a frame could not be captured
// from the stream. Any thumbnail from a previous capture stays on disk.
var ErrThumbnailGeneration = errors.New("thumbnail generation failed")

// ThumbnailService produces and caches still-frame previews of live streams.
type ThumbnailService interface {
	// GetOrRefresh returns the path to a thumbnail for the creator's
	// stream, capturing a fresh frame if the cached one has expired.
	GetOrRefresh(ctx context.Context, creator string) (string, error)

	// Path returns where the creator's thumbnail lives on disk, whether or
	// not one has been captured yet.
	Path(creator string) string
}

type thumbnailService struct {
	repo     repository.StreamRepository
	capturer thumbnail.FrameCapturer
	storage  repository.ObjectStorage
	fresh    *gocache.Cache
	cfg      config.ThumbnailConfig
}

// NewThumbnailService creates a new ThumbnailService instance. storage may
// be nil, in which case captured thumbnails are kept on local disk only.
func NewThumbnailService(
	repo repository.StreamRepository,
	capturer thumbnail.FrameCapturer,
	storage repository.ObjectStorage,
	cfg config.ThumbnailConfig,
) ThumbnailService {
	return &thumbnailService{
		repo:     repo,
		capturer: capturer,
		storage:  storage,
		fresh:    gocache.New(cfg.TTL, 2*cfg.TTL),
		cfg:      cfg,
	}
}

func (s *thumbnailService) Path(creator string) string {
	return filepath.Join(s.cfg.Dir, creator+".jpg")
}

func (s *thumbnailService) GetOrRefresh(ctx context.Context, creator string) (string, error) {
	stream, err := s.repo.GetByCreator(ctx, creator)
	if err != nil {
		return "", err
	}

	path := s.Path(creator)

	if _, ok := s.fresh.Get(creator); ok {
		return path, nil
	}

	streamURL := stream.LowestQualityURL(s.cfg.CaptureQuality)
	if streamURL == "" {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: no media server carries the stream", ErrThumbnailGeneration)
	}

	captureCtx, cancel := context.WithTimeout(ctx, s.cfg.CaptureTimeout)
	defer cancel()

	if err := s.capturer.CaptureFrame(captureCtx, streamURL, path); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(metrics.StatusError).Inc()
		return "", fmt.Errorf("%w: %v", ErrThumbnailGeneration, err)
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	s.fresh.SetDefault(creator, path)
	s.uploadCopy(ctx, creator, path)

	return path, nil
}

// uploadCopy mirrors the fresh thumbnail to object storage so other
// instances can serve it. Failures are logged, never surfaced.
func (s *thumbnailService) uploadCopy(ctx context.Context, creator, path string) {
	if s.storage == nil {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Warn("failed to open thumbnail for upload", "creator", creator, "error", err)
		return
	}
	defer f.Close()

	key := "tnails/" + creator + ".jpg"
	if err := s.storage.Upload(ctx, key, f, "image/jpeg"); err != nil {
		slog.Warn("failed to upload thumbnail", "creator", creator, "key", key, "error", err)
	}
}
