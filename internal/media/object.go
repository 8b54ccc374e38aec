package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go-blog-app/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore persists uploads in a fixed bucket of an S3-compatible object
// store. References are object names; URLs point at the public bucket.
type ObjectStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewObjectStore creates an ObjectStore from the S3 configuration.
func NewObjectStore(cfg config.S3Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &ObjectStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Store uploads the bytes under a uniquely named object.
func (s *ObjectStore) Store(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	name, contentType, err := uniqueName(originalFilename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return name, nil
}

// URL resolves an object name to its publicly accessible URL.
func (s *ObjectStore) URL(reference string) string {
	return s.publicURL + "/" + reference
}

// Delete removes the object for a reference.
func (s *ObjectStore) Delete(ctx context.Context, reference string) error {
	err := s.client.RemoveObject(ctx, s.bucket, reference, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
