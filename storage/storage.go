// Package storage puts, gets and deletes image blobs by key and builds
// their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/config"
)

var ErrObjectNotFound = errors.New("object not found")

type Store interface {
	// Put writes data under key and returns its public URL.
	Put(ctx context.Context, data []byte, key, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "gcs":
		return NewGCSStore(ctx, cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinioStore(ctx, cfg)
	case "memory":
		return NewMemoryStore(cfg.PublicURL), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}

// OriginalKey is where an upload of the given format is stored for userID.
func OriginalKey(userID, ext string) (key, filename string) {
	filename = uuid.NewString() + "." + ext
	return "images/" + userID + "/" + filename, filename
}

// TransformedKey is where a derived asset is stored for userID.
func TransformedKey(userID, ext string) string {
	return "images/" + userID + "/transformed/" + uuid.NewString() + "." + ext
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
