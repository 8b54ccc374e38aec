package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore persists uploads under a fixed directory on the local filesystem.
// References are bare filenames served by the /media/ route.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a DiskStore, ensuring the upload directory exists.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the upload directory, for the static file server.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Store writes the upload to a uniquely named file in the upload directory.
func (s *DiskStore) Store(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	name, _, err := uniqueName(originalFilename)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Don't leave a truncated file behind.
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return name, nil
}

// URL resolves a filename reference to the local media route.
func (s *DiskStore) URL(reference string) string {
	return "/media/" + reference
}

// Delete removes the file for a reference. A missing file is not an error,
// so deletes stay idempotent.
func (s *DiskStore) Delete(ctx context.Context, reference string) error {
	// References are generated names; reject anything path-like.
	if reference != filepath.Base(reference) {
		return fmt.Errorf("invalid media reference %q", reference)
	}
	err := os.Remove(filepath.Join(s.dir, reference))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete media file: %w", err)
	}
	return nil
}
