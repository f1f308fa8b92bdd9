package gateway

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
)

// CloudBlobStore implements BlobStore against a Cloud Storage bucket.
type CloudBlobStore struct {
	bucket     *storage.BucketHandle
	bucketName string
}

// NewCloudBlobStore wraps the given bucket handle.
func NewCloudBlobStore(bucket *storage.BucketHandle, bucketName string) *CloudBlobStore {
	return &CloudBlobStore{bucket: bucket, bucketName: bucketName}
}

func (s *CloudBlobStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, path), nil
}

func (s *CloudBlobStore) Delete(ctx context.Context, path string) error {
	if err := s.bucket.Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("delete blob %s: %w", path, err)
	}
	return nil
}

// PathFromURL recovers the object path from either the plain storage URL
// form or the Firebase download-URL form.
func (s *CloudBlobStore) PathFromURL(rawURL string) (string, bool) {
	plain := fmt.Sprintf("https://storage.googleapis.com/%s/", s.bucketName)
	if strings.HasPrefix(rawURL, plain) {
		return strings.TrimPrefix(rawURL, plain), true
	}

	// https://firebasestorage.googleapis.com/v0/b/{bucket}/o/{escaped path}?alt=media
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "firebasestorage.googleapis.com" {
		return "", false
	}
	prefix := fmt.Sprintf("/v0/b/%s/o/", s.bucketName)
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	escaped := strings.TrimPrefix(u.Path, prefix)
	path, err := url.PathUnescape(escaped)
	if err != nil || path == "" {
		return "", false
	}
	return path, true
}
