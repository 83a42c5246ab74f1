package storage

import (
	"alcyxob/trainer-marketplace/internal/config"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Save writes the content of r under key, replacing any existing object.
	Save(ctx context.Context, key string, r io.Reader, contentType string) error

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a link clients can use to fetch the object.
	URL(ctx context.Context, key string) (string, error)
}

// New builds the storage driver selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (FileStorage, error) {
	switch cfg.Storage.Driver {
	case "local":
		return NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
