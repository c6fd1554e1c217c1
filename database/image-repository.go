package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/models"
	"gorm.io/gorm"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("create image: %w", err)
	}
	return nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error
	if err != nil {
		return nil, translate(err, "find image")
	}
	return &image, nil
}

// ListByOwner returns one page of the owner's images, newest first.
func (r *ImageRepository) ListByOwner(ctx context.Context, owner uuid.UUID, page, limit int) (*models.ImagePage, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Image{}).Where("user_id = ?", owner).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	pagination := models.NewPagination(page, limit, total)

	images := make([]models.Image, 0, pagination.ImagesPerPage)
	err := db.Where("user_id = ?", owner).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.ImagesPerPage).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	return &models.ImagePage{Images: images, Pagination: pagination}, nil
}

// UpdateTransformation writes only the derived asset columns of image.
func (r *ImageRepository) UpdateTransformation(ctx context.Context, image *models.Image) error {
	res := r.db.WithContext(ctx).
		Model(image).
		Select("transformed_key", "transformed_url", "transformations", "updated_at").
		Updates(image)
	if res.Error != nil {
		return fmt.Errorf("update image %s: %w", image.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
