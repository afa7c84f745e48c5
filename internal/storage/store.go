// Package storage writes product images to the configured backend and hands back the
// reference that is stored in product_images.image_url.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"catalog-service/pkg/config"
)

// ErrForeignReference is returned by Delete when ref was not produced by the store
var ErrForeignReference = errors.New("storage: reference does not belong to this store")

// Store saves image objects under a key and removes them by the reference Save returned
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// New builds the store selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.LocalURLPath)
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryURL)
	case "s3":
		return NewS3(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3BaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
