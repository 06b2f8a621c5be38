package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// EnsureBucket creates the backing bucket when it does not exist yet
	EnsureBucket(ctx context.Context) error

	// PresignPut returns a presigned URL that accepts a single PUT of the
	// object bytes with the given content type, valid for ttl.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download downloads an object from storage
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for accessing an object
	GetURL(key string) string

	// Delete deletes an object from storage
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists
	Exists(ctx context.Context, key string) (bool, error)
}
