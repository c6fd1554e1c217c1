package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/krishkalaria12/imagehost/config"
)

const gcsTimeout = 50 * time.Second

type GCSStore struct {
	cl         *gcs.Client
	bucketName string
	baseURL    string
}

// NewGCSStore uses application default credentials.
func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs: create client: %w", err)
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}

	return &GCSStore{cl: client, bucketName: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *GCSStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	wc := s.cl.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("gcs: write %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("gcs: close %s: %w", key, err)
	}

	return publicURL(s.baseURL, key), nil
}

func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsTimeout)
	defer cancel()

	rc, err := s.cl.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs: %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("gcs: open %s: %w", key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gcs: read %s: %w", key, err)
	}
	return data, nil
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	err := s.cl.Bucket(s.bucketName).Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("gcs: delete %s: %w", key, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.cl.Close()
}
