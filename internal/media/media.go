// Package media stores uploaded post images and resolves their references
// into displayable URLs. Two interchangeable strategies exist: a local
// filesystem store and an S3-compatible object store.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidFormat is returned when an uploaded file's extension is not allowed.
var ErrInvalidFormat = errors.New("invalid image format")

// allowedExtensions is the upload allow-list. Keys include the leading dot.
var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// Store is the contract both storage strategies satisfy. A reference is an
// opaque name valid only with the store that produced it.
type Store interface {
	// Store persists the bytes under a collision-resistant generated name
	// and returns the reference. Fails with ErrInvalidFormat when the
	// original filename's extension is not allowed.
	Store(ctx context.Context, r io.Reader, originalFilename string) (string, error)
	// URL resolves a reference into a displayable URL.
	URL(reference string) string
	// Delete removes the stored bytes for a reference.
	Delete(ctx context.Context, reference string) error
}

// uniqueName validates the extension and generates a fresh object name.
func uniqueName(originalFilename string) (name, contentType string, err error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidFormat, ext)
	}
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "") + ext, contentType, nil
}
