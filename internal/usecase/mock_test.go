package usecase

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/upstream"
)

// mockStreamRepository provides a configurable mock for StreamRepository.
type mockStreamRepository struct {
	createFn            func(ctx context.Context, stream *model.Stream) error
	getByCreatorFn      func(ctx context.Context, creator string) (*model.Stream, error)
	getByIngestKeyFn    func(ctx context.Context, ingestKey string) (*model.Stream, error)
	updateInfoFn        func(ctx context.Context, creator string, update model.StreamUpdate) error
	attachFn            func(ctx context.Context, creator string, server model.MediaServer) error
	detachFn            func(ctx context.Context, creator string, addr uint32) error
	deleteByCreatorFn   func(ctx context.Context, creator string) error
	deleteByIngestKeyFn func(ctx context.Context, ingestKey string) (string, error)
	listByCategoryFn    func(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error)
}

func (m *mockStreamRepository) Create(ctx context.Context, stream *model.Stream) error {
	if m.createFn != nil {
		return m.createFn(ctx, stream)
	}
	return nil
}

func (m *mockStreamRepository) GetByCreator(ctx context.Context, creator string) (*model.Stream, error) {
	if m.getByCreatorFn != nil {
		return m.getByCreatorFn(ctx, creator)
	}
	return nil, repository.ErrStreamNotFound
}

func (m *mockStreamRepository) GetByIngestKey(ctx context.Context, ingestKey string) (*model.Stream, error) {
	if m.getByIngestKeyFn != nil {
		return m.getByIngestKeyFn(ctx, ingestKey)
	}
	return nil, repository.ErrStreamNotFound
}

func (m *mockStreamRepository) UpdateInfo(ctx context.Context, creator string, update model.StreamUpdate) error {
	if m.updateInfoFn != nil {
		return m.updateInfoFn(ctx, creator, update)
	}
	return nil
}

func (m *mockStreamRepository) AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error {
	if m.attachFn != nil {
		return m.attachFn(ctx, creator, server)
	}
	return nil
}

func (m *mockStreamRepository) DetachMediaServer(ctx context.Context, creator string, addr uint32) error {
	if m.detachFn != nil {
		return m.detachFn(ctx, creator, addr)
	}
	return nil
}

func (m *mockStreamRepository) DeleteByCreator(ctx context.Context, creator string) error {
	if m.deleteByCreatorFn != nil {
		return m.deleteByCreatorFn(ctx, creator)
	}
	return nil
}

func (m *mockStreamRepository) DeleteByIngestKey(ctx context.Context, ingestKey string) (string, error) {
	if m.deleteByIngestKeyFn != nil {
		return m.deleteByIngestKeyFn(ctx, ingestKey)
	}
	return "", repository.ErrStreamNotFound
}

func (m *mockStreamRepository) ListByCategory(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, q)
	}
	return nil, nil
}

// mockKeyMatcher provides a configurable mock for KeyMatcher.
type mockKeyMatcher struct {
	matchKeyFn func(ctx context.Context, key string) (string, error)
}

func (m *mockKeyMatcher) MatchKey(ctx context.Context, key string) (string, error) {
	if m.matchKeyFn != nil {
		return m.matchKeyFn(ctx, key)
	}
	return "", upstream.ErrKeyRejected
}

// mockAuthorizer provides a configurable mock for Authorizer.
type mockAuthorizer struct {
	authorizeFn func(ctx context.Context, username string, cookies []*http.Cookie) error
}

func (m *mockAuthorizer) Authorize(ctx context.Context, username string, cookies []*http.Cookie) error {
	if m.authorizeFn != nil {
		return m.authorizeFn(ctx, username, cookies)
	}
	return nil
}

// mockRegionMatcher provides a configurable mock for RegionMatcher.
type mockRegionMatcher struct {
	matchRegionFn func(ctx context.Context, region string) (*upstream.RegionEndpoint, error)
}

func (m *mockRegionMatcher) MatchRegion(ctx context.Context, region string) (*upstream.RegionEndpoint, error) {
	if m.matchRegionFn != nil {
		return m.matchRegionFn(ctx, region)
	}
	return nil, upstream.ErrUnavailable
}

// mockEventPublisher provides a configurable mock for EventPublisher.
type mockEventPublisher struct {
	publishFn func(ctx context.Context, event repository.StreamEvent) error
	published []repository.StreamEvent
}

func (m *mockEventPublisher) PublishStreamEvent(ctx context.Context, event repository.StreamEvent) error {
	m.published = append(m.published, event)
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

func (m *mockEventPublisher) Close() error {
	return nil
}

// mockFrameCapturer provides a configurable mock for FrameCapturer.
type mockFrameCapturer struct {
	captureFrameFn func(ctx context.Context, streamURL, outputPath string) error
	calls          int
}

func (m *mockFrameCapturer) CaptureFrame(ctx context.Context, streamURL, outputPath string) error {
	m.calls++
	if m.captureFrameFn != nil {
		return m.captureFrameFn(ctx, streamURL, outputPath)
	}
	return nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	uploadFn func(ctx context.Context, key string, reader io.Reader, contentType string) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "http://example.com/download", nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockStreamCache provides a configurable mock for StreamCache.
type mockStreamCache struct {
	getFn    func(ctx context.Context, creator string) (*model.Stream, error)
	setFn    func(ctx context.Context, stream *model.Stream, ttl time.Duration) error
	deleteFn func(ctx context.Context, creator string) error
}

func (m *mockStreamCache) Get(ctx context.Context, creator string) (*model.Stream, error) {
	if m.getFn != nil {
		return m.getFn(ctx, creator)
	}
	return nil, nil
}

func (m *mockStreamCache) Set(ctx context.Context, stream *model.Stream, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, stream, ttl)
	}
	return nil
}

func (m *mockStreamCache) Delete(ctx context.Context, creator string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, creator)
	}
	return nil
}
