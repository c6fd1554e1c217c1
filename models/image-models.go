package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/transform"
	"gorm.io/gorm"
)

// Image is an uploaded original plus a pointer to its latest derived asset.
// UserID never changes after creation.
type Image struct {
	ID               uuid.UUID          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID          `json:"userId" gorm:"type:uuid;not null;index:idx_images_user_created,priority:1"`
	OriginalKey      string             `json:"cloudStorageKey" gorm:"not null"`
	OriginalURL      string             `json:"originalUrl" gorm:"not null"`
	Filename         string             `json:"filename" gorm:"not null"`
	OriginalFilename string             `json:"originalFilename" gorm:"not null"`
	Format           transform.Format   `json:"format" gorm:"size:8;not null"`
	Size             int64              `json:"size" gorm:"not null"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	TransformedKey   *string            `json:"transformedKey"`
	TransformedURL   *string            `json:"transformedUrl"`
	Transformations  *transform.Request `json:"transformations" gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time          `json:"createdAt" gorm:"index:idx_images_user_created,priority:2,sort:desc"`
	UpdatedAt        time.Time          `json:"updatedAt"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (i *Image) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether userID uploaded the image.
func (i *Image) OwnedBy(userID uuid.UUID) bool {
	return i.UserID == userID
}
