package handler

import (
	"context"
	"path/filepath"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

// mockAdmissionService provides a configurable mock for AdmissionService.
type mockAdmissionService struct {
	startStreamFn func(ctx context.Context, ingestKey, sourceAddr string) (string, error)
	stopStreamFn  func(ctx context.Context, ingestKey string) error
}

func (m *mockAdmissionService) StartStream(ctx context.Context, ingestKey, sourceAddr string) (string, error) {
	if m.startStreamFn != nil {
		return m.startStreamFn(ctx, ingestKey, sourceAddr)
	}
	return "", nil
}

func (m *mockAdmissionService) StopStream(ctx context.Context, ingestKey string) error {
	if m.stopStreamFn != nil {
		return m.stopStreamFn(ctx, ingestKey)
	}
	return nil
}

// mockDirectoryService provides a configurable mock for DirectoryService.
type mockDirectoryService struct {
	getByCreatorFn   func(ctx context.Context, creator string) (*model.Stream, error)
	updateStreamFn   func(ctx context.Context, input usecase.UpdateStreamInput) (*model.Stream, error)
	listByCategoryFn func(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error)
	attachFn         func(ctx context.Context, creator string, server model.MediaServer) error
	detachFn         func(ctx context.Context, creator string, addr uint32) error
}

func (m *mockDirectoryService) GetByCreator(ctx context.Context, creator string) (*model.Stream, error) {
	if m.getByCreatorFn != nil {
		return m.getByCreatorFn(ctx, creator)
	}
	return nil, repository.ErrStreamNotFound
}

func (m *mockDirectoryService) UpdateStream(ctx context.Context, input usecase.UpdateStreamInput) (*model.Stream, error) {
	if m.updateStreamFn != nil {
		return m.updateStreamFn(ctx, input)
	}
	return nil, repository.ErrStreamNotFound
}

func (m *mockDirectoryService) ListByCategory(ctx context.Context, q repository.ListQuery) ([]*model.Stream, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, q)
	}
	return nil, nil
}

func (m *mockDirectoryService) AttachMediaServer(ctx context.Context, creator string, server model.MediaServer) error {
	if m.attachFn != nil {
		return m.attachFn(ctx, creator, server)
	}
	return nil
}

func (m *mockDirectoryService) DetachMediaServer(ctx context.Context, creator string, addr uint32) error {
	if m.detachFn != nil {
		return m.detachFn(ctx, creator, addr)
	}
	return nil
}

// mockResolverService provides a configurable mock for ResolverService.
type mockResolverService struct {
	resolveFn func(ctx context.Context, creator, region string) (*model.StreamInfo, error)
}

func (m *mockResolverService) ResolveStreamInfo(ctx context.Context, creator, region string) (*model.StreamInfo, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, creator, region)
	}
	return nil, repository.ErrStreamNotFound
}

// mockThumbnailService provides a configurable mock for ThumbnailService.
type mockThumbnailService struct {
	getOrRefreshFn func(ctx context.Context, creator string) (string, error)
	dir            string
}

func (m *mockThumbnailService) GetOrRefresh(ctx context.Context, creator string) (string, error) {
	if m.getOrRefreshFn != nil {
		return m.getOrRefreshFn(ctx, creator)
	}
	return "", repository.ErrStreamNotFound
}

func (m *mockThumbnailService) Path(creator string) string {
	return filepath.Join(m.dir, creator+".jpg")
}
