package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/krishkalaria12/imagehost/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioStore struct {
	mc      *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio: create bucket %s: %w", cfg.Bucket, err)
		}
	}

	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}

	return &MinioStore{mc: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *MinioStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.mc.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio: put %s: %w", key, err)
	}
	return publicURL(s.baseURL, key), nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.mc.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, err)
	}
	defer obj.Close()

	// GetObject is lazy, a missing key surfaces on first read
	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("minio: %s: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("minio: read %s: %w", key, err)
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.mc.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: delete %s: %w", key, err)
	}
	return nil
}
