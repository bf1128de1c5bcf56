package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/infrastructure/cache"
	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

// cachedDirectoryService wraps DirectoryService with caching capabilities.
// It implements the decorator pattern to add caching without modifying the
// underlying service.
type cachedDirectoryService struct {
	delegate DirectoryService
	cache    cache.StreamCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedDirectoryService creates a new cached DirectoryService wrapping
// the provided delegate.
func NewCachedDirectoryService(
	delegate DirectoryService,
	streamCache cache.StreamCache,
	cacheTTL time.Duration,
) DirectoryService {
	return &cachedDirectoryService{
		delegate: delegate,
		cache:    streamCache,
		cacheTTL: cacheTTL,
	}
}

// GetByCreator retrieves stream metadata with caching.
// Uses singleflight to prevent cache stampede on concurrent requests for
// the same creator.
func (s *cachedDirectoryService) GetByCreator(ctx context.Context, creator string) (*model.Stream, error) {
	result, err, shared := s.sfGroup.Do(creator, func() (any, error) {
		return s.getWithCache(ctx, creator)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}

	return result.(*model.Stream), nil
}

// getWithCache implements the cache-aside pattern.
func (s *cachedDirectoryService) getWithCache(ctx context.Context, creator string) (*model.Stream, error) {
	stream, err := s.cache.Get(ctx, creator)
	if err != nil {
		// Log cache error but continue to database
		slog.Warn("cache get failed, falling back to database",
			"creator", creator,
			"error", err,
		)
	}

	if stream != nil {
		return stream, nil // Cache hit
	}

	stream, err = s.delegate.GetByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, stream, s.cacheTTL); err != nil {
		slog.Warn("failed to cache stream",
			"creator", creator,
			"error", err,
		)
	}

	return stream, nil
}

// UpdateStream invalidates the cache and delegates to the underlying
// service. Invalidation happens before the write so a stale copy is not
// served past the delegate's completion.
func (s *cachedDirectoryService) UpdateStream(ctx context.Context, input UpdateStreamInput) (*model.Stream, error) {
	s.invalidate(ctx, input.Creator)
	return s.delegate.UpdateStream(ctx, input)
}

// ListByCategory delegates to the underlying service. Listings are not
// cached: every ordering/pagination combination would need its own entry.
func (s *cachedDirectoryService) ListByCategory(ctx context.Context, query repository.ListQuery) ([]*model.Stream, error) {
	return s.delegate.ListByCategory(ctx, query)
}

// AttachMediaServer invalidates the cache and delegates to the underlying service.
func (s *cachedDirectoryService) AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error {
	s.invalidate(ctx, creator)
	return s.delegate.AttachMediaServer(ctx, creator, server)
}

// DetachMediaServer invalidates the cache and delegates to the underlying service.
func (s *cachedDirectoryService) DetachMediaServer(ctx context.Context, creator string, addr uint32) error {
	s.invalidate(ctx, creator)
	return s.delegate.DetachMediaServer(ctx, creator, addr)
}

func (s *cachedDirectoryService) invalidate(ctx context.Context, creator string) {
	if err := s.cache.Delete(ctx, creator); err != nil {
		// Cache invalidation failure is non-critical; the entry expires on
		// its own TTL.
		slog.Warn("failed to invalidate stream cache",
			"creator", creator,
			"error", err,
		)
	}
}
