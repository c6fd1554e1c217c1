package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/krishkalaria12/imagehost/apperror"
	"github.com/krishkalaria12/imagehost/database"
	"github.com/krishkalaria12/imagehost/middleware"
	"github.com/krishkalaria12/imagehost/models"
	"github.com/krishkalaria12/imagehost/storage"
	"github.com/krishkalaria12/imagehost/transform"
)

// UploadImage stores the multipart "image" field and records it. The blob
// is removed again if the record cannot be written.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return apperror.InvalidInput("No image file provided.")
	}

	blobFile, err := file.Open()
	if err != nil {
		return apperror.Internal("Image upload failed.", err)
	}
	defer blobFile.Close()

	data, err := io.ReadAll(blobFile)
	if err != nil {
		return apperror.Internal("Image upload failed.", err)
	}

	info, err := transform.Inspect(data)
	if errors.Is(err, transform.ErrTooLarge) {
		return apperror.InvalidInput(fmt.Sprintf("Image dimensions must not exceed %d pixels.", transform.MaxDimension))
	}
	if err != nil {
		return apperror.InvalidInput("Only image files (jpeg, png, webp, gif) are allowed.")
	}

	ctx := c.UserContext()
	key, filename := storage.OriginalKey(user.ID.String(), info.Format.Extension())
	url, err := h.blobs.Put(ctx, data, key, info.Format.ContentType())
	if err != nil {
		return apperror.Internal("Image upload failed.", err)
	}

	image := &models.Image{
		UserID:           user.ID,
		OriginalKey:      key,
		OriginalURL:      url,
		Filename:         filename,
		OriginalFilename: file.Filename,
		Format:           info.Format,
		Size:             int64(len(data)),
		Width:            info.Width,
		Height:           info.Height,
	}
	if err := h.images.Create(ctx, image); err != nil {
		if delErr := h.blobs.Delete(ctx, key); delErr != nil {
			h.log.WithUserID(user.ID.String()).WithError(delErr).Warn("failed to remove orphaned upload")
		}
		return apperror.Internal("Image upload failed.", err)
	}

	h.metrics.Uploaded(len(data))
	h.log.WithImageID(image.ID.String()).WithField("size", len(data)).Info("image uploaded")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Image uploaded successfully.",
		"data":    image,
	})
}

// ListImages pages through the caller's images, newest first.
func (h *Handler) ListImages(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	page, limit := models.NormalizePage(c.QueryInt("page", models.DefaultPage), c.QueryInt("limit", models.DefaultLimit))
	result, err := h.images.ListByOwner(c.UserContext(), user.ID, page, limit)
	if err != nil {
		return apperror.Internal("Failed to list images.", err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":    true,
		"data":       result.Images,
		"pagination": result.Pagination,
	})
}

func (h *Handler) GetImage(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	image, err := h.ownedImage(c, user)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    image,
	})
}

// ownedImage loads the :id image. Malformed ids read as missing images.
func (h *Handler) ownedImage(c *fiber.Ctx, user *models.User) (*models.Image, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, apperror.NotFound("Image not found.")
	}

	image, err := h.images.FindByID(c.UserContext(), id)
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, apperror.NotFound("Image not found.")
	}
	if err != nil {
		return nil, apperror.Internal("Failed to load image.", err)
	}

	if !image.OwnedBy(user.ID) {
		return nil, apperror.Authorization("Access denied. You do not own this image.")
	}
	return image, nil
}
