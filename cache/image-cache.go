package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/logger"
	"github.com/krishkalaria12/imagehost/models"
	"github.com/redis/go-redis/v9"
)

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, page, limit int) (*models.ImagePage, error)
	UpdateTransformation(ctx context.Context, image *models.Image) error
}

// Images caches FindByID results. Redis failures are logged and the
// lookup falls through to the wrapped repository.
type Images struct {
	next ImageRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	log  *logger.Logger
}

func NewImages(next ImageRepository, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *Images {
	return &Images{next: next, rdb: rdb, ttl: ttl, log: log}
}

func imageKey(id uuid.UUID) string {
	return "image:" + id.String()
}

func (c *Images) Create(ctx context.Context, image *models.Image) error {
	return c.next.Create(ctx, image)
}

func (c *Images) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	raw, err := c.rdb.Get(ctx, imageKey(id)).Bytes()
	switch {
	case err == nil:
		var image models.Image
		if err := json.Unmarshal(raw, &image); err == nil {
			return &image, nil
		}
		c.log.WithImageID(id.String()).Warn("discarding corrupt cached image")
	case !errors.Is(err, redis.Nil):
		c.log.WithImageID(id.String()).WithError(err).Warn("image cache read failed")
	}

	image, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// SetNX so a fill that read the row before a concurrent update never
	// replaces the record that update wrote.
	if raw, err := json.Marshal(image); err == nil {
		if err := c.rdb.SetNX(ctx, imageKey(id), raw, c.ttl).Err(); err != nil {
			c.log.WithImageID(id.String()).WithError(err).Warn("image cache write failed")
		}
	}
	return image, nil
}

func (c *Images) ListByOwner(ctx context.Context, owner uuid.UUID, page, limit int) (*models.ImagePage, error) {
	return c.next.ListByOwner(ctx, owner, page, limit)
}

// UpdateTransformation writes the updated record through to the cache. If
// that write fails the key is dropped instead.
func (c *Images) UpdateTransformation(ctx context.Context, image *models.Image) error {
	if err := c.next.UpdateTransformation(ctx, image); err != nil {
		return err
	}

	log := c.log.WithImageID(image.ID.String())
	raw, err := json.Marshal(image)
	if err == nil {
		err = c.rdb.Set(ctx, imageKey(image.ID), raw, c.ttl).Err()
	}
	if err == nil {
		return nil
	}

	log.WithError(err).Warn("image cache write-through failed")
	if err := c.rdb.Del(ctx, imageKey(image.ID)).Err(); err != nil {
		log.WithError(err).Error("image cache invalidation failed")
	}
	return nil
}
