package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS is a Google Cloud Storage backend. The client is created once and
// shared; it is safe for concurrent use.
type GCS struct {
	client *gcs.Client
}

// NewGCS opens a client. credentialsFile may be empty to use Application
// Default Credentials.
func NewGCS(ctx context.Context, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCS{client: client}, nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}

func (s *GCS) Read(ctx context.Context, bucket, name string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError(bucket, name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCS) Write(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	return s.write(ctx, s.client.Bucket(bucket).Object(name), bucket, name, data, contentType)
}

// CreateIfAbsent uses a DoesNotExist precondition, so two writers racing
// on the same name cannot both succeed.
func (s *GCS) CreateIfAbsent(ctx context.Context, bucket, name string, data []byte, contentType string) error {
	obj := s.client.Bucket(bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	return s.write(ctx, obj, bucket, name, data, contentType)
}

func (s *GCS) write(ctx context.Context, obj *gcs.ObjectHandle, bucket, name string, data []byte, contentType string) error {
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return mapGCSError(bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return mapGCSError(bucket, name, err)
	}
	return nil
}

func (s *GCS) Exists(ctx context.Context, bucket, name string) (bool, error) {
	_, err := s.client.Bucket(bucket).Object(name).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s/%s: %w", bucket, name, err)
	}
	return true, nil
}

func (s *GCS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		names = append(names, attrs.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *GCS) Delete(ctx context.Context, bucket, name string) error {
	if err := s.client.Bucket(bucket).Object(name).Delete(ctx); err != nil {
		return mapGCSError(bucket, name, err)
	}
	return nil
}

func mapGCSError(bucket, name string, err error) error {
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrNotExist)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrExists)
	}
	return fmt.Errorf("%s/%s: %w", bucket, name, err)
}
