package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage holds the media attached to workout exercises. Clients upload
// and download through presigned URLs; the server itself never proxies bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary URL that accepts a PUT of
	// one object with the given content type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a temporary URL for a GET of one object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object. Removing a missing object is not an error.
	DeleteObject(ctx context.Context, objectKey string) error
}
