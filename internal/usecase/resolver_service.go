package usecase

import (
	"context"
	"fmt"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/upstream"
)

// ResolverService answers viewer playback requests: which single media
// server, if any, carries a creator's stream for the viewer's region.
type ResolverService interface {
	// ResolveStreamInfo returns the viewer projection of a live stream.
	// A stream with no endpoint in the requested region resolves with
	// MediaServer == nil; that is a valid outcome, not an error.
	// Returns repository.ErrStreamNotFound for absent AND private streams.
	ResolveStreamInfo(ctx context.Context, creator, region string) (*model.StreamInfo, error)
}

type resolverService struct {
	repo    repository.StreamRepository
	regions upstream.RegionMatcher
}

// NewResolverService creates a new ResolverService instance.
func NewResolverService(repo repository.StreamRepository, regions upstream.RegionMatcher) ResolverService {
	return &resolverService{
		repo:    repo,
		regions: regions,
	}
}

// ResolveStreamInfo intersects the stream's own endpoint set with the
// region-match collaborator's pick for the viewer's region.
func (s *resolverService) ResolveStreamInfo(ctx context.Context, creator, region string) (*model.StreamInfo, error) {
	stream, err := s.repo.GetByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}

	// Private streams answer with the exact same error as absent ones so an
	// unauthorized caller cannot probe for their existence.
	if !stream.IsPublic {
		return nil, repository.ErrStreamNotFound
	}

	endpoint, err := s.regions.MatchRegion(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("match region %s: %w", region, err)
	}

	info := &model.StreamInfo{
		Title:    stream.Title,
		Creator:  stream.Creator,
		Category: stream.Category,
	}

	addr, err := model.AddrToInt(endpoint.IP)
	if err != nil {
		return nil, fmt.Errorf("%w: region match returned bad address: %v", upstream.ErrUnavailable, err)
	}

	info.MediaServer = stream.EndpointFor(addr)

	return info, nil
}
