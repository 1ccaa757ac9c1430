package ml

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// Source fetches raw artifact bytes.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Location() string
}

// FileSource reads an artifact from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch implements Source.
func (s *FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact file: %w", err)
	}
	return data, nil
}

// Location implements Source.
func (s *FileSource) Location() string { return s.path }

// GCSSource reads an artifact object from a Cloud Storage bucket.
type GCSSource struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSSource creates a GCSSource for a gs://bucket/object URI.
func NewGCSSource(ctx context.Context, uri string, opts ...option.ClientOption) (*GCSSource, error) {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSSource{client: client, bucket: bucket, object: object}, nil
}

// Fetch implements Source.
func (s *GCSSource) Fetch(ctx context.Context) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.bucket, s.object, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", s.bucket, s.object, err)
	}
	return data, nil
}

// Location implements Source.
func (s *GCSSource) Location() string { return "gs://" + s.bucket + "/" + s.object }

// Close releases the storage client.
func (s *GCSSource) Close() error { return s.client.Close() }

// NewSource picks a Source from the location scheme: gs:// URIs go to Cloud
// Storage, anything else is a local path.
func NewSource(ctx context.Context, location string, opts ...option.ClientOption) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: artifact location is empty", ErrArtifactUnavailable)
	}
	if strings.HasPrefix(location, "gs://") {
		return NewGCSSource(ctx, location, opts...)
	}
	return NewFileSource(location), nil
}

func parseGCSURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// URI needs a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}
