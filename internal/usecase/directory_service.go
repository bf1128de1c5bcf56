package usecase

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/upstream"
)

// UpdateStreamInput carries a creator's metadata update together with the
// acting user's identity and forwarded session credentials.
type UpdateStreamInput struct {
	Creator  string
	Username string
	Cookies  []*http.Cookie
	Update   model.StreamUpdate
}

// DirectoryService answers the operator- and CDN-facing registry requests:
// lookups, metadata updates, category listings, and endpoint registration.
type DirectoryService interface {
	// GetByCreator retrieves the live record for a creator.
	// Returns repository.ErrStreamNotFound when the creator is not live.
	GetByCreator(ctx context.Context, creator string) (*model.Stream, error)

	// UpdateStream authorizes the acting user and applies the provided
	// metadata fields. Returns upstream.ErrUnauthorized when the auth
	// collaborator rejects the session.
	UpdateStream(ctx context.Context, input UpdateStreamInput) (*model.Stream, error)

	// ListByCategory returns one page of live streams in a category,
	// endpoint sets narrowed to the requested region.
	ListByCategory(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error)

	// AttachMediaServer registers a media-server endpoint against a live stream.
	AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error

	// DetachMediaServer removes the endpoint with the given address.
	// No-op success when the stream or the address is already gone.
	DetachMediaServer(ctx context.Context, creator string, addr uint32) error
}

type directoryService struct {
	repo repository.StreamRepository
	auth upstream.Authorizer
}

// NewDirectoryService creates a new DirectoryService instance.
func NewDirectoryService(repo repository.StreamRepository, auth upstream.Authorizer) DirectoryService {
	return &directoryService{
		repo: repo,
		auth: auth,
	}
}

// GetByCreator retrieves the live record for a creator.
func (s *directoryService) GetByCreator(ctx context.Context, creator string) (*model.Stream, error) {
	return s.repo.GetByCreator(ctx, creator)
}

// UpdateStream authorizes the acting user, applies the update, and returns
// the refreshed record.
func (s *directoryService) UpdateStream(ctx context.Context, input UpdateStreamInput) (*model.Stream, error) {
	if err := input.Update.Validate(); err != nil {
		return nil, err
	}

	if err := s.auth.Authorize(ctx, input.Username, input.Cookies); err != nil {
		return nil, fmt.Errorf("authorize %s: %w", input.Username, err)
	}

	if err := s.repo.UpdateInfo(ctx, input.Creator, input.Update); err != nil {
		return nil, err
	}

	return s.repo.GetByCreator(ctx, input.Creator)
}

// ListByCategory returns one page of live streams in a category. A failing
// read degrades to an empty page at the handler; visibility is not filtered
// here: listings show private streams' metadata, only per-stream resolution
// hides them.
func (s *directoryService) ListByCategory(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error) {
	return s.repo.ListByCategory(ctx, q)
}

// AttachMediaServer registers a media-server endpoint against a live stream.
func (s *directoryService) AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error {
	return s.repo.AttachMediaServer(ctx, creator, server)
}

// DetachMediaServer removes the endpoint with the given address.
func (s *directoryService) DetachMediaServer(ctx context.Context, creator string, addr uint32) error {
	return s.repo.DetachMediaServer(ctx, creator, addr)
}
