package cache

import (
	"context"
	"time"

	"github.com/hszk-dev/streamdir/internal/domain/model"
)

// StreamCache defines the interface for caching live stream records by
// creator. Implementations should handle serialization transparently.
type StreamCache interface {
	// Get retrieves a stream from cache by creator.
	// Returns nil, nil if the creator is not cached (cache miss).
	Get(ctx context.Context, creator string) (*model.Stream, error)

	// Set stores a stream in cache with the specified TTL.
	Set(ctx context.Context, stream *model.Stream, ttl time.Duration) error

	// Delete removes a creator's entry from cache.
	// Returns nil if the creator was not cached.
	Delete(ctx context.Context, creator string) error
}
