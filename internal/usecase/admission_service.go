package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/upstream"
)

var (
	// ErrAlreadyLive is returned when admission is attempted for a creator
	// that already has a live record. A second start must fail rather than
	// silently overwrite the running stream.
	ErrAlreadyLive = errors.New("creator is already live")
)

// AdmissionService brokers the ingest handshake: an opaque ingest key in, a
// routed live stream record out.
type AdmissionService interface {
	// StartStream validates the ingest key with the key-match collaborator,
	// creates the empty live record, and returns the resolved creator
	// identity for the ingest instance to redirect the media push to.
	StartStream(ctx context.Context, ingestKey, sourceAddr string) (string, error)

	// StopStream deletes the live record matching the ingest key. Stopping an
	// already-stopped stream is a no-op success: the ingest path and the
	// CDN's last-packet detach legitimately race on cleanup.
	StopStream(ctx context.Context, ingestKey string) error
}

type admissionService struct {
	repo   repository.StreamRepository
	keys   upstream.KeyMatcher
	events repository.EventPublisher
}

// NewAdmissionService creates a new AdmissionService instance.
func NewAdmissionService(
	repo repository.StreamRepository,
	keys upstream.KeyMatcher,
	events repository.EventPublisher,
) AdmissionService {
	return &admissionService{
		repo:   repo,
		keys:   keys,
		events: events,
	}
}

// StartStream runs the admission handshake. Record creation is the liveness
// transition itself; there is no separate status to flip.
func (s *admissionService) StartStream(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
	creator, err := s.keys.MatchKey(ctx, ingestKey)
	if err != nil {
		return "", fmt.Errorf("match ingest key: %w", err)
	}

	stream, err := model.NewStream(creator, sourceAddr, ingestKey)
	if err != nil {
		return "", err
	}

	if err := s.repo.Create(ctx, stream); err != nil {
		if errors.Is(err, repository.ErrDuplicateStream) {
			return "", fmt.Errorf("%w: %s", ErrAlreadyLive, creator)
		}
		return "", fmt.Errorf("create stream: %w", err)
	}

	s.publish(ctx, repository.StreamStarted, creator)

	return creator, nil
}

// StopStream tears down the live record keyed by ingest key.
func (s *admissionService) StopStream(ctx context.Context, ingestKey string) error {
	creator, err := s.repo.DeleteByIngestKey(ctx, ingestKey)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return nil
		}
		return fmt.Errorf("delete stream: %w", err)
	}

	s.publish(ctx, repository.StreamStopped, creator)

	return nil
}

// publish emits a lifecycle event best-effort. The registry record is the
// source of truth; a lost event never fails the admission path.
func (s *admissionService) publish(ctx context.Context, t repository.StreamEventType, creator string) {
	if err := s.events.PublishStreamEvent(ctx, repository.NewStreamEvent(t, creator)); err != nil {
		slog.Warn("failed to publish stream event",
			"type", t,
			"creator", creator,
			"error", err,
		)
	}
}
