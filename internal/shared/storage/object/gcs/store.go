package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"offertanalys/internal/shared/storage/object"
)

// Store keeps documents in a Google Cloud Storage bucket.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

// New opens a GCS client. credentialsJSON may be empty to use ambient credentials.
func New(ctx context.Context, bucket, prefix, credentialsJSON string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(credentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		now:    time.Now,
	}, nil
}

func (s *Store) Upload(ctx context.Context, data []byte, fileName string) (string, error) {
	key := object.NewUploadPath(fileName, s.now())
	name := objectName(s.prefix, key)

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = http.DetectContentType(data)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write bucket=%s object=%s: %w", s.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close bucket=%s object=%s: %w", s.bucket, name, err)
	}
	return key, nil
}

func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	name := objectName(s.prefix, key)
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, key)
		}
		return nil, fmt.Errorf("gcs read bucket=%s object=%s: %w", s.bucket, name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read body object=%s: %w", name, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	name := objectName(s.prefix, key)
	err := s.client.Bucket(s.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete bucket=%s object=%s: %w", s.bucket, name, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func objectName(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

var _ object.BlobStore = (*Store)(nil)
