package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedType = errors.New("unsupported image type")

// BlobStore defines the interface for uploaded file storage. Paths returned
// by Save are relative to the store root and are what callers persist.
type BlobStore interface {
	// Save writes data under key and returns the stored path
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes a stored file. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks whether a stored file is present
	Exists(ctx context.Context, path string) (bool, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

// ImageExtension maps an accepted image content type to a file extension.
func ImageExtension(contentType string) (string, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return ext, nil
}
