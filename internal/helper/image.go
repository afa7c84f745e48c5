// Package helper holds the collaborators of the products controller: image upload, drop-down
// combos and conversion between entities and form view models.
package helper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"catalog-service/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidImage  = errors.New("only JPEG, PNG, GIF and WEBP images are allowed")
	ErrImageTooLarge = errors.New("image is too large")
	ErrNoImage       = errors.New("no image file was provided")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageHelper validates uploaded images and writes them to the image store
type ImageHelper struct {
	store    storage.Store
	maxBytes int64
}

func NewImageHelper(store storage.Store, maxBytes int64) *ImageHelper {
	return &ImageHelper{store: store, maxBytes: maxBytes}
}

// UploadImage stores file as <folder>/<uuid><ext> and returns the reference to persist
func (h *ImageHelper) UploadImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file == nil {
		return "", ErrNoImage
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrImageTooLarge, file.Size, h.maxBytes)
	}

	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mime, err := sniffMIME(f)
	if err != nil {
		return "", err
	}
	ext, ok := imageExtensions[mime]
	if !ok {
		return "", fmt.Errorf("%w: got %s", ErrInvalidImage, mime)
	}

	key := path.Join(strings.Trim(folder, "/"), uuid.New().String()+ext)
	ref, err := h.store.Save(ctx, key, f, mime)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return ref, nil
}

// RemoveImage deletes a reference previously returned by UploadImage
func (h *ImageHelper) RemoveImage(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	return h.store.Delete(ctx, ref)
}

func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read: %w", err)
	}
	mime := http.DetectContentType(buf[:n])

	// reset so later reads start from byte 0
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reset: %w", err)
	}
	return mime, nil
}
