package repository

import (
	"context"

	"github.com/hszk-dev/streamdir/internal/domain/model"
)

// Ordering selects the total order used for category listings. The scoring
// behind Recommended and Views is maintained by the analytics collaborator;
// the registry only guarantees a stable, paginated order per mode.
type Ordering string

const (
	OrderingRecommended Ordering = "Recommended"
	OrderingViews       Ordering = "Views"
	OrderingNone        Ordering = "None"
)

// ParseOrdering maps a request parameter to an Ordering, falling back to
// OrderingNone for anything unrecognized.
func ParseOrdering(s string) Ordering {
	switch Ordering(s) {
	case OrderingRecommended, OrderingViews:
		return Ordering(s)
	default:
		return OrderingNone
	}
}

// ListQuery describes one page of a category listing.
type ListQuery struct {
	Category string
	Region   string
	Start    int
	Count    int
	Ordering Ordering
}

// StreamRepository defines persistence for live stream records. It is the
// sole writer of stream state: record creation and deletion are the only two
// liveness-changing operations in the system.
//
// Implementations must serialize concurrent endpoint attach/detach calls for
// the same creator so that no committed mutation is lost.
type StreamRepository interface {
	// Create persists a new empty live record.
	// Returns ErrDuplicateStream if the creator is already live.
	Create(ctx context.Context, stream *model.Stream) error

	// GetByCreator retrieves the live record for a creator, endpoints included.
	// Returns ErrStreamNotFound if the creator is not live.
	GetByCreator(ctx context.Context, creator string) (*model.Stream, error)

	// GetByIngestKey retrieves the live record matching an ingest key.
	// Returns ErrStreamNotFound if no record matches.
	GetByIngestKey(ctx context.Context, ingestKey string) (*model.Stream, error)

	// UpdateInfo applies the non-nil fields of update to an existing record.
	// Returns ErrStreamNotFound if the creator is not live.
	UpdateInfo(ctx context.Context, creator string, update model.StreamUpdate) error

	// AttachMediaServer registers an endpoint against a live stream.
	// Attaching an address that is already present is a no-op success.
	// Returns ErrStreamNotFound if the creator is not live.
	AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error

	// DetachMediaServer removes the endpoint with the given address.
	// Detaching from an absent stream, or an address that was never attached,
	// is a no-op success: the ingest stop and the CDN last-packet detach race
	// legitimately.
	DetachMediaServer(ctx context.Context, creator string, addr uint32) error

	// DeleteByCreator removes the live record and all its endpoints.
	// Deleting an absent record is a no-op success.
	DeleteByCreator(ctx context.Context, creator string) error

	// DeleteByIngestKey removes the live record matching an ingest key.
	// Returns the creator of the deleted record, or ErrStreamNotFound.
	DeleteByIngestKey(ctx context.Context, ingestKey string) (string, error)

	// ListByCategory returns one page of live streams in a category. Each
	// returned record's endpoint set is narrowed to the requested region;
	// records left with zero matching endpoints are still returned.
	ListByCategory(ctx context.Context, q ListQuery) ([]*model.Stream, error)
}
