package repository

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for thumbnail artifact storage.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object, overwriting any previous version.
	// key is the object path within the bucket (e.g., "tnails/{creator}.jpg").
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// GeneratePresignedDownloadURL creates a presigned URL for downloading an
	// object, valid for the specified duration.
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes an object from the storage.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)
}
