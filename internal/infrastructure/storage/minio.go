package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hszk-dev/streamdir/internal/domain/repository"
)

// minioClient defines the interface for MinIO operations.
// This abstraction allows for easier unit testing with mocks.
type minioClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// ClientConfig holds configuration for the MinIO client.
type ClientConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Client wraps a MinIO client and implements repository.ObjectStorage for
// thumbnail artifacts.
type Client struct {
	client minioClient
	bucket string
}

// NewClient creates a new MinIO client.
// It verifies the bucket exists during initialization to fail fast on
// misconfiguration.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return newClientWithMinioClient(ctx, client, cfg.Bucket)
}

// newClientWithMinioClient creates a Client with a given minioClient
// implementation. This is used for dependency injection in tests.
func newClientWithMinioClient(ctx context.Context, client minioClient, bucket string) (*Client, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", repository.ErrBucketNotFound, bucket)
	}

	return &Client{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload stores an object, overwriting any previous version. Object size -1
// lets the client stream without knowing the length upfront.
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// GeneratePresignedDownloadURL creates a presigned URL for downloading an
// object.
func (c *Client) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	reqParams := make(url.Values)
	presignedURL, err := c.client.PresignedGetObject(ctx, c.bucket, key, expiry, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
	}
	return presignedURL.String(), nil
}

// Delete removes an object from the storage.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists checks if an object exists in the storage.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// Ping verifies the MinIO connection is alive by checking bucket access.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to ping minio: %w", err)
	}
	return nil
}

// Compile-time verification that Client implements repository.ObjectStorage.
var _ repository.ObjectStorage = (*Client)(nil)
