package usecase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hszk-dev/streamdir/internal/config"
	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/domain/repository"
)

func thumbnailTestConfig(t *testing.T, ttl time.Duration) config.ThumbnailConfig {
	t.Helper()
	return config.ThumbnailConfig{
		Dir:            t.TempDir(),
		TTL:            ttl,
		Width:          300,
		CaptureQuality: "subsd",
		CaptureTimeout: time.Second,
	}
}

func thumbnailTestRepo(servers ...model.MediaServer) *mockStreamRepository {
	return &mockStreamRepository{
		getByCreatorFn: func(ctx context.Context, creator string) (*model.Stream, error) {
			return &model.Stream{Creator: creator, IsPublic: true, MediaServers: servers}, nil
		},
	}
}

func TestGetOrRefresh(t *testing.T) {
	subsd, _ := model.NewMediaServer("subsd", "203.0.113.7", "eu", "http://203.0.113.7/live/alice_subsd")
	hd, _ := model.NewMediaServer("hd", "203.0.113.8", "eu", "http://203.0.113.8/live/alice_hd")

	t.Run("captures once within the freshness window", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				if streamURL != subsd.MediaURL {
					t.Errorf("captured from %q, want the subsd tier %q", streamURL, subsd.MediaURL)
				}
				return os.WriteFile(outputPath, []byte("jpeg"), 0o644)
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(hd, subsd), capturer, nil, cfg)

		first, err := svc.GetOrRefresh(context.Background(), "alice")
		if err != nil {
			t.Fatalf("first GetOrRefresh() error = %v", err)
		}
		second, err := svc.GetOrRefresh(context.Background(), "alice")
		if err != nil {
			t.Fatalf("second GetOrRefresh() error = %v", err)
		}

		if first != second {
			t.Errorf("paths differ: %q vs %q", first, second)
		}
		if want := filepath.Join(cfg.Dir, "alice.jpg"); first != want {
			t.Errorf("path = %q, want %q", first, want)
		}
		if capturer.calls != 1 {
			t.Errorf("captured %d frames within the window, want 1", capturer.calls)
		}
	})

	t.Run("recaptures after the window expires", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, 20*time.Millisecond)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				return os.WriteFile(outputPath, []byte("jpeg"), 0o644)
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(subsd), capturer, nil, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "alice"); err != nil {
			t.Fatalf("GetOrRefresh() error = %v", err)
		}
		time.Sleep(40 * time.Millisecond)
		if _, err := svc.GetOrRefresh(context.Background(), "alice"); err != nil {
			t.Fatalf("GetOrRefresh() after expiry error = %v", err)
		}

		if capturer.calls != 2 {
			t.Errorf("captured %d frames across the expiry, want 2", capturer.calls)
		}
	})

	t.Run("capture failure keeps the window cold", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				return errors.New("connection refused")
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(subsd), capturer, nil, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "alice"); !errors.Is(err, ErrThumbnailGeneration) {
			t.Fatalf("GetOrRefresh() error = %v, want ErrThumbnailGeneration", err)
		}

		// A later call must retry instead of treating the failure as fresh.
		if _, err := svc.GetOrRefresh(context.Background(), "alice"); !errors.Is(err, ErrThumbnailGeneration) {
			t.Fatalf("retry error = %v, want ErrThumbnailGeneration", err)
		}
		if capturer.calls != 2 {
			t.Errorf("captured %d times, want a retry on every call after failure", capturer.calls)
		}
	})

	t.Run("fails when the stream has no endpoints", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				t.Error("CaptureFrame should not run without an endpoint")
				return nil
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(), capturer, nil, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "alice"); !errors.Is(err, ErrThumbnailGeneration) {
			t.Errorf("GetOrRefresh() error = %v, want ErrThumbnailGeneration", err)
		}
	})

	t.Run("not live passes the lookup error through", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		repo := &mockStreamRepository{
			getByCreatorFn: func(ctx context.Context, creator string) (*model.Stream, error) {
				return nil, repository.ErrStreamNotFound
			},
		}

		svc := NewThumbnailService(repo, &mockFrameCapturer{}, nil, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "ghost"); !errors.Is(err, repository.ErrStreamNotFound) {
			t.Errorf("GetOrRefresh() error = %v, want ErrStreamNotFound", err)
		}
	})

	t.Run("mirrors a fresh capture to object storage", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				return os.WriteFile(outputPath, []byte("jpeg"), 0o644)
			},
		}

		var uploadedKey string
		var uploadedBody []byte
		storage := &mockObjectStorage{
			uploadFn: func(ctx context.Context, key string, reader io.Reader, contentType string) error {
				uploadedKey = key
				uploadedBody, _ = io.ReadAll(reader)
				if contentType != "image/jpeg" {
					t.Errorf("contentType = %q, want image/jpeg", contentType)
				}
				return nil
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(subsd), capturer, storage, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "alice"); err != nil {
			t.Fatalf("GetOrRefresh() error = %v", err)
		}
		if uploadedKey != "tnails/alice.jpg" {
			t.Errorf("uploaded key = %q, want tnails/alice.jpg", uploadedKey)
		}
		if string(uploadedBody) != "jpeg" {
			t.Errorf("uploaded body = %q, want the captured frame", uploadedBody)
		}
	})

	t.Run("upload failure does not fail the request", func(t *testing.T) {
		cfg := thumbnailTestConfig(t, time.Minute)
		capturer := &mockFrameCapturer{
			captureFrameFn: func(ctx context.Context, streamURL, outputPath string) error {
				return os.WriteFile(outputPath, []byte("jpeg"), 0o644)
			},
		}
		storage := &mockObjectStorage{
			uploadFn: func(ctx context.Context, key string, reader io.Reader, contentType string) error {
				return errors.New("bucket unreachable")
			},
		}

		svc := NewThumbnailService(thumbnailTestRepo(subsd), capturer, storage, cfg)

		if _, err := svc.GetOrRefresh(context.Background(), "alice"); err != nil {
			t.Errorf("GetOrRefresh() error = %v, want nil despite the upload failure", err)
		}
	})
}
